package cleaner

import (
	"errors"
	"os"
	"path/filepath"
)

// Remover deletes resolved paths and accounts for the bytes reclaimed.
//
// Removal is best-effort: a child that cannot be removed is skipped
// and reported through OnError, its siblings are still attempted, and
// its size never counts toward the total. The zero value is usable and
// absorbs child failures silently.
type Remover struct {
	// OnError receives the per-child failures a directory removal
	// skips over. Nil absorbs them.
	OnError func(*RemoveError)
}

// Remove deletes path, recursing depth-first through directories, and
// returns the bytes reclaimed. The count stays meaningful alongside an
// error: children removed before a directory removal failed are still
// included.
//
// Paths are inspected with Lstat and symlinks are never followed; the
// link itself is unlinked and contributes zero bytes. Other non-regular
// entries (sockets, devices, fifos) are left untouched and count as a
// zero-byte success.
func (r *Remover) Remove(path string) (int64, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return 0, &RemoveError{Op: OpInspect, Path: path, Err: err}
	}

	switch {
	case info.Mode().IsRegular():
		if err := os.Remove(path); err != nil {
			return 0, &RemoveError{Op: OpRemoveFile, Path: path, Err: err}
		}
		return info.Size(), nil

	case info.IsDir():
		entries, err := os.ReadDir(path)
		if err != nil {
			return 0, &RemoveError{Op: OpReadDirectory, Path: path, Err: err}
		}

		var size int64
		for _, entry := range entries {
			n, err := r.Remove(filepath.Join(path, entry.Name()))
			size += n
			if err != nil {
				r.report(err)
			}
		}

		if err := os.Remove(path); err != nil {
			return size, &RemoveError{Op: OpRemoveDirectory, Path: path, Err: err}
		}
		return size, nil

	case info.Mode()&os.ModeSymlink != 0:
		if err := os.Remove(path); err != nil {
			return 0, &RemoveError{Op: OpRemoveFile, Path: path, Err: err}
		}
		return 0, nil

	default:
		return 0, nil
	}
}

func (r *Remover) report(err error) {
	if r.OnError == nil {
		return
	}
	var re *RemoveError
	if errors.As(err, &re) {
		r.OnError(re)
	}
}
