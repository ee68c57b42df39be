package safeio

import (
	"io"
	"os"
	"path/filepath"
)

// CopyDirSafe recursively copies src into dst. It refuses if src is a
// symlink, creates dst, copies regular files and directories, and skips
// symlinks it encounters along the way with a logged warning rather than
// following them — the same posture backend/local.go takes when
// SkipSymlinks is set, except here it is unconditional because Safe I/O
// never has a "follow" mode. Returns the count of files/directories
// copied.
func CopyDirSafe(src, dst string) (int, error) {
	if isLink, err := IsSymlink(src); err != nil {
		return 0, err
	} else if isLink {
		return 0, wrap(KindSymlink, "copy-dir", src, os.ErrInvalid)
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, wrap(KindPath, "stat", src, err)
	}
	if !srcInfo.IsDir() {
		n, err := copyFileSafe(src, dst, srcInfo.Mode())
		if err != nil {
			return 0, err
		}
		return n, nil
	}

	return copyTree(src, dst)
}

func copyTree(src, dst string) (int, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, wrap(KindPath, "stat", src, err)
	}
	if err := os.MkdirAll(dst, info.Mode()); err != nil {
		return 0, wrap(KindWrite, "mkdir", dst, err)
	}
	count := 1 // the directory itself

	entries, err := os.ReadDir(src)
	if err != nil {
		return count, wrap(KindPath, "readdir", src, err)
	}

	for _, entry := range entries {
		srcChild := filepath.Join(src, entry.Name())
		dstChild := filepath.Join(dst, entry.Name())

		fi, err := entry.Info()
		if err != nil {
			return count, wrap(KindPath, "stat", srcChild, err)
		}

		if fi.Mode()&os.ModeSymlink != 0 {
			log.WithField("path", srcChild).Warn("skipping symlink during safe copy")
			continue
		}

		if fi.IsDir() {
			n, err := copyTree(srcChild, dstChild)
			count += n
			if err != nil {
				return count, err
			}
			continue
		}

		n, err := copyFileSafe(srcChild, dstChild, fi.Mode())
		count += n
		if err != nil {
			return count, err
		}
	}

	return count, nil
}

func copyFileSafe(src, dst string, mode os.FileMode) (int, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, wrap(KindPath, "open", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o777); err != nil {
		return 0, wrap(KindWrite, "mkdir", filepath.Dir(dst), err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return 0, wrap(KindWrite, "create", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return 0, wrap(KindWrite, "copy", dst, err)
	}

	if err := out.Sync(); err != nil {
		_ = out.Close()
		return 0, wrap(KindSync, "fsync", dst, err)
	}

	if err := out.Close(); err != nil {
		return 0, wrap(KindSync, "close", dst, err)
	}

	return 1, nil
}
