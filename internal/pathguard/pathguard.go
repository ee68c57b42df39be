// Package pathguard classifies filesystem paths as protected or safe to
// mutate, and lexically normalizes/contains paths within a root. It is
// grounded on original_source's security::PathValidator (is_protected_path,
// validate_for_delete) translated into Go, using go-homedir the way
// jra3-linear-fuse and the teacher's own go.mod use go-homedir/UserHomeDir
// for home-directory resolution instead of canonicalizing (canonicalize
// can fail on names containing apostrophes on some hosts, per spec.md §4.B).
package pathguard

import (
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
)

// systemDirs lists OS-owned locations protected on every host, combining
// the POSIX and Windows sets from spec.md §4.B / original_source's
// PathValidator::is_protected_path.
var systemDirs = []string{
	"/",
	"/System", "/usr", "/bin", "/sbin", "/Library", "/Applications", "/private", "/var",
	`C:\Windows`, `C:\Program Files`, `C:\Program Files (x86)`,
}

// Guard classifies and normalizes paths relative to a discovered home
// directory. New resolves the home directory via go-homedir; tests can
// construct one with an explicit home for isolation. A zero-value Guard
// has no home directory, so its home-directory rules are skipped.
type Guard struct {
	home string
}

// New returns a Guard using the real user's home directory.
func New() *Guard {
	home, _ := homedir.Dir()
	return &Guard{home: Normalize(home)}
}

// NewWithHome returns a Guard pinned to an explicit home directory,
// primarily for tests.
func NewWithHome(home string) *Guard {
	return &Guard{home: Normalize(home)}
}

// Normalize performs lexical path cleanup: it makes the path absolute
// (relative to the process cwd when needed) and resolves "." and ".."
// components by popping, without calling filepath.EvalSymlinks or any
// syscall that could fail on exotic filenames — spec.md §4.B requires
// never canonicalizing.
func Normalize(path string) string {
	abs := path
	if !filepath.IsAbs(abs) {
		if wd, err := filepath.Abs(abs); err == nil {
			abs = wd
		}
	}
	return filepath.Clean(abs)
}

// IsProtected reports whether path is a protected system location: the
// filesystem root itself (not its descendants), a well-known system
// directory or anything beneath one (unless that descendant lies under
// the user's home), or the home
// directory itself (its children are not protected by this rule).
func (g *Guard) IsProtected(path string) bool {
	check := Normalize(path)

	if g.home != "" && check == g.home {
		return true
	}

	for _, protected := range systemDirs {
		protected = filepath.Clean(protected)
		if check == protected {
			return true
		}
		if protected == string(filepath.Separator) {
			continue
		}
		if hasPrefix(check, protected) {
			if g.home != "" && hasPrefix(check, g.home) {
				return false
			}
			return true
		}
	}

	return false
}

// ValidatePathWithin requires the normalized path to lie strictly under
// base: base must be a path prefix and the relative remainder must carry
// no ".." component. It returns false for path == base (a path is not
// "within" itself for the purposes of move/rename containment checks).
func ValidatePathWithin(path, base string) bool {
	np := Normalize(path)
	nb := Normalize(base)
	if np == nb {
		return false
	}
	rel, err := filepath.Rel(nb, np)
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}

// hasPrefix reports whether child is dir itself or a path beneath it,
// using a separator-aware comparison so "/usrx" is not treated as a
// child of "/usr".
func hasPrefix(child, dir string) bool {
	if child == dir {
		return true
	}
	if dir == string(filepath.Separator) {
		return strings.HasPrefix(child, dir)
	}
	return strings.HasPrefix(child, dir+string(filepath.Separator))
}
