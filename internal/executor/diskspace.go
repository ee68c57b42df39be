package executor

import (
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
)

// hasSpaceFor reports whether the volume holding destination has enough
// free space to receive source, consulted only on the cross-device
// rename fallback path where we're about to pay for a real copy.
func hasSpaceFor(destination, source string) (bool, error) {
	size, err := dirSize(source)
	if err != nil {
		return false, err
	}

	usage, err := disk.Usage(filepath.Dir(destination))
	if err != nil {
		return false, err
	}
	return usage.Free >= uint64(size), nil
}

func dirSize(path string) (int64, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}

	var total int64
	err = filepath.Walk(path, func(p string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !fi.IsDir() {
			total += fi.Size()
		}
		return nil
	})
	return total, err
}
