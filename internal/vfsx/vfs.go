package vfsx

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sentinelfs/sentinel/internal/logging"
	"github.com/sentinelfs/sentinel/internal/pathguard"
	"github.com/sentinelfs/sentinel/internal/vectorindex"
)

var log = logging.For("vfsx")

// VFS is the shadow tree for one target root: a snapshot of the real
// filesystem plus a queue of operations staged against it. Nothing here
// touches disk beyond the initial scan; internal/executor is what turns
// staged operations into real mutations.
type VFS struct {
	root       string
	guard      *pathguard.Guard
	files      map[string]*VirtualFile
	order      []string // insertion (scan) order, for stable iteration
	operations []PlannedOperation
	opCounter  int
	index      *vectorindex.Index
	maxOps     int
}

// Options configures construction of a VFS.
type Options struct {
	MaxOperations int
	Guard         *pathguard.Guard
	Index         *vectorindex.Index // shared index; a fresh one is created if nil
}

// New scans root recursively and builds a shadow tree plus semantic index
// over every discovered file, grounded on ShadowVFS::new /
// scan_directory.
func New(root string, opts Options) (*VFS, error) {
	if opts.Guard == nil {
		opts.Guard = pathguard.New()
	}
	if opts.MaxOperations <= 0 {
		opts.MaxOperations = 5000
	}
	idx := opts.Index
	if idx == nil {
		idx = vectorindex.New(vectorindex.Config{})
	}

	absRoot := pathguard.Normalize(root)
	v := &VFS{
		root:   absRoot,
		guard:  opts.Guard,
		files:  make(map[string]*VirtualFile),
		index:  idx,
		maxOps: opts.MaxOperations,
	}

	if err := v.scan(absRoot); err != nil {
		return nil, fmt.Errorf("vfsx: scanning %s: %w", absRoot, err)
	}
	return v, nil
}

func (v *VFS) scan(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := os.Lstat(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("skipping unreadable entry")
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			log.WithField("path", path).Debug("skipping symlink during scan")
			continue
		}

		vf := &VirtualFile{
			path:        path,
			name:        entry.Name(),
			ext:         ext(entry.Name()),
			size:        info.Size(),
			isDirectory: info.IsDir(),
			modifiedAt:  info.ModTime(),
			createdAt:   info.ModTime(),
			hidden:      isHiddenName(entry.Name()),
		}
		if !vf.isDirectory {
			vf.mimeType = detectMime(path, false)
		}

		v.files[path] = vf
		v.order = append(v.order, path)
		v.index.Upsert(path, vf.SourceText())

		if vf.isDirectory {
			if err := v.scan(path); err != nil {
				return err
			}
		}
	}
	return nil
}

// Root returns the target folder's normalized absolute path.
func (v *VFS) Root() string { return v.root }

// Index exposes the semantic index backing this tree, e.g. so a caller
// can wire rules.SimilarityFunc to it.
func (v *VFS) Index() *vectorindex.Index { return v.index }

// Files returns every non-directory entry.
func (v *VFS) Files() []*VirtualFile {
	var out []*VirtualFile
	for _, path := range v.order {
		if f := v.files[path]; !f.isDirectory {
			out = append(out, f)
		}
	}
	return out
}

// Directories returns every directory entry.
func (v *VFS) Directories() []*VirtualFile {
	var out []*VirtualFile
	for _, path := range v.order {
		if f := v.files[path]; f.isDirectory {
			out = append(out, f)
		}
	}
	return out
}

// AllEntries returns every scanned entry, files and directories alike, in
// scan order.
func (v *VFS) AllEntries() []*VirtualFile {
	out := make([]*VirtualFile, 0, len(v.order))
	for _, path := range v.order {
		out = append(out, v.files[path])
	}
	return out
}

// DirectoryCount reports how many directories were scanned.
func (v *VFS) DirectoryCount() int {
	n := 0
	for _, f := range v.files {
		if f.isDirectory {
			n++
		}
	}
	return n
}

// Get returns the scanned entry at path, if any.
func (v *VFS) Get(path string) (*VirtualFile, bool) {
	f, ok := v.files[path]
	return f, ok
}

// Exists reports whether path was seen during the scan.
func (v *VFS) Exists(path string) bool {
	_, ok := v.files[path]
	return ok
}

// Operations returns the currently staged operations in execution order.
func (v *VFS) Operations() []PlannedOperation {
	return v.operations
}

// ClearOperations discards every staged operation.
func (v *VFS) ClearOperations() {
	v.operations = nil
}

func (v *VFS) nextOpID() string {
	v.opCounter++
	return fmt.Sprintf("op-%d", v.opCounter)
}

// sortedKeys is a small helper used by preview grouping for deterministic
// iteration over Go's randomized map order.
func sortedKeys(m map[string][]PlannedOperation) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
