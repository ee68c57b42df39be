// Package vfsx implements the Shadow Virtual File System: an in-memory
// mirror of a target folder that operations are staged against before any
// real mutation happens, grounded on original_source's
// src-tauri/src/ai/v2/vfs.rs (ShadowVFS) and src-tauri/src/vfs/graph.rs.
package vfsx

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// VirtualFile is the read-only snapshot of one filesystem entry as the
// shadow tree knows it. It implements rules.FileRecord so the rule DSL can
// evaluate conditions against it without rules importing vfsx (vfsx
// imports rules to apply rule sets).
type VirtualFile struct {
	path        string
	name        string
	ext         string
	size        int64
	isDirectory bool
	modifiedAt  time.Time
	createdAt   time.Time
	mimeType    string
	hidden      bool
}

func (v *VirtualFile) Name() string          { return v.name }
func (v *VirtualFile) Ext() string           { return v.ext }
func (v *VirtualFile) Size() int64           { return v.size }
func (v *VirtualFile) Path() string          { return v.path }
func (v *VirtualFile) ModifiedAt() time.Time { return v.modifiedAt }
func (v *VirtualFile) CreatedAt() time.Time  { return v.createdAt }
func (v *VirtualFile) MimeType() string      { return v.mimeType }
func (v *VirtualFile) IsHidden() bool        { return v.hidden }
func (v *VirtualFile) IsDirectory() bool     { return v.isDirectory }

// SourceText is the string the semantic index embeds for this file: its
// name, mirroring original_source's SimpleVectorIndex::build_from_files
// which indexes on file name rather than content.
func (v *VirtualFile) SourceText() string { return v.name }

func ext(name string) string {
	e := filepath.Ext(name)
	return strings.TrimPrefix(e, ".")
}

func isHiddenName(name string) bool {
	return strings.HasPrefix(name, ".")
}

// detectMime sniffs a regular file's content type; directories and
// unreadable files get an empty mime type rather than an error, since a
// VFS scan must not abort on one unreadable entry.
func detectMime(path string, isDir bool) string {
	if isDir {
		return ""
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	return mt.String()
}
