//go:build !unix

package region

import (
	"errors"

	"github.com/jostojic/quotescreen/internal/ports"
)

// OpenMapped is not supported on this platform.
func OpenMapped(string, int64) (ports.Medium, error) {
	return nil, errors.New("mmap medium requires a unix platform")
}
