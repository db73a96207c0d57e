// Package region owns the byte layout of the non-volatile region and the
// media it can live on.
//
// Layout (all offsets in bytes):
//
//	0          configured flag (1 = credentials saved), 1..9 reserved
//	10..41     network name, NUL-terminated
//	50..81     network credential, NUL-terminated
//	100        quote count, 101..109 reserved
//	110+i*s    quote slot i, NUL-terminated and zero-padded
package region

import (
	"fmt"

	"github.com/jostojic/quotescreen/internal/domain"
)

// Header offsets.
const (
	OffsetConfigured = 0
	OffsetSSID       = 10
	OffsetPassword   = 50
	OffsetCount      = 100
	OffsetQuotes     = 110

	// CredentialSlotSize is the size of each credential sub-slot, terminator included.
	CredentialSlotSize = 32

	// ConfiguredMarker is the flag value written once credentials are saved.
	ConfiguredMarker = 1
)

// Quote section defaults.
const (
	DefaultSlotSize = 120
	DefaultCapacity = 100

	// MaxCapacity is bounded by the single count byte.
	MaxCapacity = 255

	// MinSlotSize leaves room for at least one byte and its terminator.
	MinSlotSize = 2
)

// Layout fixes the geometry of the quote section.
type Layout struct {
	Capacity int
	SlotSize int
}

// DefaultLayout returns the stock geometry (12110 bytes).
func DefaultLayout() Layout {
	return Layout{Capacity: DefaultCapacity, SlotSize: DefaultSlotSize}
}

// NewLayout validates and returns a quote section geometry.
func NewLayout(capacity, slotSize int) (Layout, error) {
	if capacity < 1 || capacity > MaxCapacity {
		return Layout{}, domain.NewValidationErrorWithValue("capacity",
			fmt.Sprintf("must be between 1 and %d", MaxCapacity), capacity)
	}

	if slotSize < MinSlotSize {
		return Layout{}, domain.NewValidationErrorWithValue("slot_size",
			fmt.Sprintf("must be at least %d", MinSlotSize), slotSize)
	}

	return Layout{Capacity: capacity, SlotSize: slotSize}, nil
}

// Size returns the total region size S = OffsetQuotes + capacity*slot size.
func (l Layout) Size() int64 {
	return int64(OffsetQuotes) + int64(l.Capacity)*int64(l.SlotSize)
}

// MaxQuoteLen returns the longest storable quote in bytes.
func (l Layout) MaxQuoteLen() int {
	return l.SlotSize - 1
}

// SlotOffset returns the address of slot i. No slot extends past Size.
func (l Layout) SlotOffset(i int) (int64, error) {
	if i < 0 || i >= l.Capacity {
		return 0, domain.NewIndexOutOfRangeError(i, l.Capacity)
	}

	return int64(OffsetQuotes) + int64(i)*int64(l.SlotSize), nil
}
