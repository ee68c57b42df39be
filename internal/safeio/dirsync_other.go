//go:build windows || plan9

package safeio

// SyncDirectory is a no-op on hosts where the rename itself is already
// durable without a directory fsync (Windows, plan9), per spec.md §4.A.
func SyncDirectory(dir string) error {
	return nil
}
