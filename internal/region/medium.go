package region

import (
	"fmt"
	"io"

	"github.com/jostojic/quotescreen/internal/ports"
)

// Medium kinds accepted by Open.
const (
	KindMemory = "memory"
	KindFile   = "file"
	KindMmap   = "mmap"
)

// Open returns the medium of the given kind sized to exactly size bytes.
// The memory kind ignores path.
func Open(kind, path string, size int64) (ports.Medium, error) {
	switch kind {
	case KindMemory:
		return NewMemory(size), nil
	case KindFile:
		f, err := OpenFile(path, size)
		if err != nil {
			return nil, err
		}

		return f, nil
	case KindMmap:
		m, err := OpenMapped(path, size)
		if err != nil {
			return nil, err
		}

		return m, nil
	default:
		return nil, fmt.Errorf("unknown medium kind %q", kind)
	}
}

// checkBounds rejects accesses that fall outside [0, size).
func checkBounds(off int64, n int, size int64) error {
	if off < 0 || off+int64(n) > size {
		return fmt.Errorf("access [%d, %d) outside region of %d bytes: %w",
			off, off+int64(n), size, io.ErrUnexpectedEOF)
	}

	return nil
}
