package region

import "sync"

// Memory is a volatile medium used in tests and dry runs.
// WriteErr and SyncErr inject failures.
type Memory struct {
	mu       sync.RWMutex
	buf      []byte
	WriteErr error
	SyncErr  error
	syncs    int
}

// NewMemory returns a zero-filled medium of size bytes.
func NewMemory(size int64) *Memory {
	return &Memory{buf: make([]byte, size)}
}

// ReadAt implements io.ReaderAt.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := checkBounds(off, len(p), int64(len(m.buf))); err != nil {
		return 0, err
	}

	return copy(p, m.buf[off:]), nil
}

// WriteAt implements io.WriterAt.
func (m *Memory) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteErr != nil {
		return 0, m.WriteErr
	}

	if err := checkBounds(off, len(p), int64(len(m.buf))); err != nil {
		return 0, err
	}

	return copy(m.buf[off:], p), nil
}

// Sync counts the call and returns SyncErr.
func (m *Memory) Sync() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SyncErr != nil {
		return m.SyncErr
	}

	m.syncs++

	return nil
}

// Syncs returns how many successful syncs were issued.
func (m *Memory) Syncs() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.syncs
}

// Bytes returns a copy of the region contents.
func (m *Memory) Bytes() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]byte, len(m.buf))
	copy(out, m.buf)

	return out
}

// Size returns the region size.
func (m *Memory) Size() int64 {
	return int64(len(m.buf))
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
