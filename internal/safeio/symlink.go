package safeio

import (
	"errors"
	"os"
)

// FileTypeInfo reports a path's type without ever dereferencing a
// symlink, the os.Lstat-based discipline backend/local.go applies before
// every destructive operation (its lstat field defaults to os.Lstat, only
// switching to os.Stat when the user opts into following links).
type FileTypeInfo struct {
	IsDir     bool
	IsSymlink bool
	IsRegular bool
	Size      int64
}

// IsSymlink reports whether path is itself a symbolic link, using lstat
// semantics so it never follows the link.
func IsSymlink(path string) (bool, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return false, wrap(KindPath, "lstat", path, err)
	}
	return fi.Mode()&os.ModeSymlink != 0, nil
}

// FileTypeNoFollow lstats path and classifies it without ever
// dereferencing a symlink target.
func FileTypeNoFollow(path string) (FileTypeInfo, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return FileTypeInfo{}, wrap(KindPath, "lstat", path, err)
	}
	mode := fi.Mode()
	return FileTypeInfo{
		IsDir:     mode.IsDir(),
		IsSymlink: mode&os.ModeSymlink != 0,
		IsRegular: mode.IsRegular(),
		Size:      fi.Size(),
	}, nil
}

// EnsureNotSymlink returns a *Error of KindSymlink if path is a symbolic
// link. Every destructive Safe I/O operation calls this on its source
// before doing anything else, blocking the classic TOCTOU escape out of
// the target root.
func EnsureNotSymlink(path string) error {
	isLink, err := IsSymlink(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if isLink {
		return wrap(KindSymlink, "ensure-not-symlink", path, os.ErrInvalid)
	}
	return nil
}
