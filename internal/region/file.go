package region

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// File is a region stored in a regular file. Writes are positional and
// durable once Sync returns.
type File struct {
	mu   sync.RWMutex
	f    *os.File
	path string
	size int64
}

// OpenFile opens or creates path and grows it to at least size bytes.
// New bytes read as zero, matching an erased region.
func OpenFile(path string, size int64) (*File, error) {
	f, err := openSized(path, size)
	if err != nil {
		return nil, err
	}

	return &File{f: f, path: path, size: size}, nil
}

func openSized(path string, size int64) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening region file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat region file: %w", err)
	}

	if info.Size() < size {
		if err := f.Truncate(size); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("sizing region file: %w", err)
		}
	}

	return f, nil
}

// replaced reports whether path now names a different file than f.
// A path that is missing mid-rename counts as unchanged.
func replaced(f *os.File, path string) (bool, error) {
	now, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("stat region file: %w", err)
	}

	held, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat open region file: %w", err)
	}

	return !os.SameFile(now, held), nil
}

// ReadAt implements io.ReaderAt.
func (r *File) ReadAt(p []byte, off int64) (int, error) {
	if err := checkBounds(off, len(p), r.size); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.f.ReadAt(p, off)
}

// WriteAt implements io.WriterAt.
func (r *File) WriteAt(p []byte, off int64) (int, error) {
	if err := checkBounds(off, len(p), r.size); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.f.WriteAt(p, off)
}

// Sync flushes the file to disk.
func (r *File) Sync() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.f.Sync()
}

// Reopen implements ports.Reopener. After another process renamed a new
// file over the path, reads and writes go to the new file.
func (r *File) Reopen() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed, err := replaced(r.f, r.path)
	if err != nil || !changed {
		return false, err
	}

	f, err := openSized(r.path, r.size)
	if err != nil {
		return false, err
	}

	old := r.f
	r.f = f

	if err := old.Close(); err != nil {
		return true, fmt.Errorf("closing replaced region file: %w", err)
	}

	return true, nil
}

// Size returns the region size, which may be smaller than the file.
func (r *File) Size() int64 {
	return r.size
}

// Path returns the backing file path.
func (r *File) Path() string {
	return r.path
}

// Close closes the backing file.
func (r *File) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.f.Close()
}
