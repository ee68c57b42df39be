//go:build !windows && !plan9

package safeio

import "os"

// SyncDirectory opens dir and fsyncs it so a preceding rename is durable,
// matching spec.md §4.A: "opens the directory for read ... and fsyncs;
// no-op on hosts where directory sync is unsupported."
func SyncDirectory(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return wrap(KindSync, "open dir", dir, err)
	}
	defer f.Close()
	if err := f.Sync(); err != nil {
		return wrap(KindSync, "fsync dir", dir, err)
	}
	return nil
}
