package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskUsageBytes returns the total size in bytes of the given paths.
// Each path may be a file or a directory (recursively summed).
// Missing paths are skipped (contribute 0); other errors are returned.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return 0, err
		}
		if !info.IsDir() {
			total += info.Size()
			continue
		}
		err = filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			total += fi.Size()
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// LocalUsage returns the on-disk size of a store's local files, or 0 for remote backends.
// SQLite counts the database together with its WAL and shared-memory files.
func LocalUsage(s BlobStore, name string) (int64, error) {
	switch st := s.(type) {
	case *FileStore:
		return DiskUsageBytes(st.Location(name))
	case *SQLiteStore:
		return DiskUsageBytes(st.Path(), st.Path()+"-wal", st.Path()+"-shm")
	default:
		return 0, nil
	}
}
