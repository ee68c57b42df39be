// Package safeio implements the write→fsync→rename→dir-fsync discipline
// used by every destructive filesystem operation in Sentinel, grounded on
// backend/local.go's os.Rename-based Move/DirMove and the teacher's
// lib/file package (atomic Create/rename-while-open semantics). Every op
// here refuses to follow symlinks, the same TOCTOU guard backend/local
// applies via os.Lstat before trusting a path's type.
package safeio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sentinelfs/sentinel/internal/logging"
)

var log = logging.For("safeio")

// AtomicWrite writes data to path via a sibling temp file, fsyncs it,
// renames it into place, then fsyncs the parent directory. On any
// failure the temp file is removed and the failing stage is reported.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return wrap(KindWrite, "mkdir", dir, err)
	}

	tmp := filepath.Join(dir, tempFileName(filepath.Base(path)))

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return wrap(KindWrite, "create temp", tmp, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return wrap(KindWrite, "write temp", tmp, err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return wrap(KindSync, "fsync temp", tmp, err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return wrap(KindSync, "close temp", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return wrap(KindRename, "rename", path, err)
	}

	if err := SyncDirectory(dir); err != nil {
		// The rename already landed; report but do not unwind it, matching
		// the teacher's treatment of directory-fsync as best-effort where
		// the host does not support it (sync_directory is a documented
		// no-op on such hosts).
		log.WithError(err).WithField("path", path).Warn("directory fsync failed after rename")
		return wrap(KindSync, "fsync dir", dir, err)
	}

	return nil
}

// tempFileName embeds the process id, per spec.md §4.A, so that two
// concurrent Sentinel processes writing the same path never collide.
func tempFileName(base string) string {
	return fmt.Sprintf(".%s.tmp.%d", base, os.Getpid())
}
