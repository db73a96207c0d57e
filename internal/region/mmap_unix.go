//go:build unix

package region

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Mapped is a region backed by a shared memory mapping of a file.
type Mapped struct {
	mu   sync.RWMutex
	f    *os.File
	path string
	data []byte
}

// OpenMapped maps exactly size bytes of path, creating and growing it as needed.
func OpenMapped(path string, size int64) (*Mapped, error) {
	f, data, err := mapFile(path, size)
	if err != nil {
		return nil, err
	}

	return &Mapped{f: f, path: path, data: data}, nil
}

func mapFile(path string, size int64) (*os.File, []byte, error) {
	f, err := openSized(path, size)
	if err != nil {
		return nil, nil, err
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("mmap region: %w", err)
	}

	return f, data, nil
}

// ReadAt implements io.ReaderAt.
func (m *Mapped) ReadAt(p []byte, off int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := checkBounds(off, len(p), int64(len(m.data))); err != nil {
		return 0, err
	}

	return copy(p, m.data[off:]), nil
}

// WriteAt implements io.WriterAt.
func (m *Mapped) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := checkBounds(off, len(p), int64(len(m.data))); err != nil {
		return 0, err
	}

	return copy(m.data[off:], p), nil
}

// Sync flushes the mapping synchronously.
func (m *Mapped) Sync() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := unix.Msync(m.data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("msync: %w", err)
	}

	return nil
}

// Reopen implements ports.Reopener by mapping the file now at the path
// when it was replaced.
func (m *Mapped) Reopen() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	changed, err := replaced(m.f, m.path)
	if err != nil || !changed {
		return false, err
	}

	f, data, err := mapFile(m.path, int64(len(m.data)))
	if err != nil {
		return false, err
	}

	oldFile, oldData := m.f, m.data
	m.f, m.data = f, data

	err = unix.Munmap(oldData)
	if cerr := oldFile.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return true, fmt.Errorf("releasing replaced region: %w", err)
	}

	return true, nil
}

// Size returns the mapped size.
func (m *Mapped) Size() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.data))
}

// Close unmaps the region and closes the file.
func (m *Mapped) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := unix.Munmap(m.data)
	m.data = nil

	if cerr := m.f.Close(); err == nil {
		err = cerr
	}

	return err
}
