// Package quotes implements the bounded, ordered quote collection and its
// codec to and from the persisted region.
package quotes

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/jostojic/quotescreen/internal/domain"
	"github.com/jostojic/quotescreen/internal/ports"
	"github.com/jostojic/quotescreen/internal/region"
)

// Store is a fixed-capacity ordered list of quotes with contiguous indices
// [0, Len()). It never persists on its own; callers call Persist after
// mutating, which lets several mutations share one write.
//
// Store is not safe for concurrent use.
type Store struct {
	layout region.Layout
	items  []string
	logger *slog.Logger

	// persisted is the count last written to or read from the region.
	// Slots in [Len(), persisted) are zeroed on the next Persist.
	persisted int
}

// New returns an empty store with the given geometry.
func New(layout region.Layout, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		layout: layout,
		items:  make([]string, 0, layout.Capacity),
		logger: logger.With(slog.String("component", "quotes.Store")),
	}
}

// Len returns the number of stored quotes.
func (s *Store) Len() int {
	return len(s.items)
}

// Cap returns the fixed capacity.
func (s *Store) Cap() int {
	return s.layout.Capacity
}

// Layout returns the store geometry.
func (s *Store) Layout() region.Layout {
	return s.layout
}

// At returns the quote at index i.
func (s *Store) At(i int) (string, error) {
	if i < 0 || i >= len(s.items) {
		return "", domain.NewIndexOutOfRangeError(i, len(s.items))
	}

	return s.items[i], nil
}

// Snapshot returns a copy of the stored quotes in order.
func (s *Store) Snapshot() []string {
	return slices.Clone(s.items)
}

// Validate reports whether q can be stored without truncation.
func (s *Store) Validate(q string) error {
	if strings.TrimSpace(q) == "" {
		return domain.NewValidationError("quote", "must not be empty")
	}

	if strings.IndexByte(q, 0) >= 0 {
		return domain.NewValidationError("quote", "must not contain NUL bytes")
	}

	if len(q) > s.layout.MaxQuoteLen() {
		return domain.NewValidationErrorWithValue("quote",
			fmt.Sprintf("must be at most %d bytes", s.layout.MaxQuoteLen()), len(q))
	}

	return nil
}

// Append adds q at the end and returns its index.
func (s *Store) Append(q string) (int, error) {
	if len(s.items) >= s.layout.Capacity {
		return 0, domain.NewCapacityError(s.layout.Capacity)
	}

	if err := s.Validate(q); err != nil {
		return 0, err
	}

	s.items = append(s.items, q)

	return len(s.items) - 1, nil
}

// DeleteAt removes the quote at i and shifts later quotes down by one.
func (s *Store) DeleteAt(i int) error {
	if i < 0 || i >= len(s.items) {
		return domain.NewIndexOutOfRangeError(i, len(s.items))
	}

	s.items = slices.Delete(s.items, i, i+1)

	return nil
}

// ClearAndLoadDefaults empties the store and fills it with the built-in
// quotes, as many as fit.
func (s *Store) ClearAndLoadDefaults() {
	s.items = s.items[:0]

	for _, q := range domain.DefaultQuotes() {
		if _, err := s.Append(q); err != nil {
			s.logger.Warn("default quote skipped", slog.Any("error", err))
		}
	}
}

// Load replaces the contents with the quote section of m. Slots without a
// terminator or with empty content are skipped. A count larger than the
// capacity is treated as zero.
func (s *Store) Load(m ports.Medium) error {
	countBuf := make([]byte, 1)
	if _, err := m.ReadAt(countBuf, region.OffsetCount); err != nil {
		return domain.NewStorageReadError(region.OffsetCount, err)
	}

	count := int(countBuf[0])
	if count > s.layout.Capacity {
		s.logger.Warn("stored count exceeds capacity, starting empty",
			slog.Int("count", count),
			slog.Int("capacity", s.layout.Capacity),
		)

		count = 0
	}

	items := make([]string, 0, s.layout.Capacity)
	slot := make([]byte, s.layout.SlotSize)

	for i := range count {
		off, err := s.layout.SlotOffset(i)
		if err != nil {
			return err
		}

		if _, err := m.ReadAt(slot, off); err != nil {
			return domain.NewStorageReadError(off, err)
		}

		q, ok := region.DecodeCString(slot)
		if !ok || q == "" {
			s.logger.Warn("skipping malformed slot",
				slog.Int("slot", i),
				slog.Bool("terminated", ok),
			)

			continue
		}

		items = append(items, q)
	}

	s.items = items
	s.persisted = count

	return nil
}

// Persist writes every occupied slot, zeroes slots vacated since the last
// write, syncs, and only then writes the count byte and syncs again. A crash
// before the count write leaves the previous list readable.
func (s *Store) Persist(m ports.Medium) error {
	end := max(len(s.items), min(s.persisted, s.layout.Capacity))

	for i := range end {
		var q string
		if i < len(s.items) {
			q = s.items[i]
		}

		off, err := s.layout.SlotOffset(i)
		if err != nil {
			return err
		}

		if _, err := m.WriteAt(region.EncodeCString(q, s.layout.SlotSize), off); err != nil {
			return domain.NewStorageWriteError(off, err)
		}
	}

	if err := m.Sync(); err != nil {
		return domain.NewStorageWriteError(region.OffsetQuotes, err)
	}

	if _, err := m.WriteAt([]byte{byte(len(s.items))}, region.OffsetCount); err != nil {
		return domain.NewStorageWriteError(region.OffsetCount, err)
	}

	if err := m.Sync(); err != nil {
		return domain.NewStorageWriteError(region.OffsetCount, err)
	}

	s.persisted = len(s.items)

	return nil
}
