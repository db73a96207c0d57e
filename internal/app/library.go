package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jostojic/quotescreen/internal/domain"
	"github.com/jostojic/quotescreen/internal/layout"
	"github.com/jostojic/quotescreen/internal/ports"
	"github.com/jostojic/quotescreen/internal/rotation"
)

// Listing is a consistent snapshot of the store and the rotation state.
type Listing struct {
	Quotes   []string
	Count    int
	Capacity int
	Current  int
	State    rotation.State
}

// List returns the stored quotes together with the displayed index.
func (s *Service) List(ctx context.Context) Listing {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Listing{
		Quotes:   s.store.Snapshot(),
		Count:    s.store.Len(),
		Capacity: s.store.Cap(),
		Current:  s.rotation.Index(),
		State:    s.rotation.State(),
	}
}

// Current returns the displayed quote. ok is false when the store is empty.
func (s *Service) Current(ctx context.Context) (domain.Quote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Len() == 0 {
		return domain.Quote{}, false
	}

	idx := s.rotation.Index()

	text, err := s.store.At(idx)
	if err != nil {
		return domain.Quote{}, false
	}

	return domain.Quote{Index: idx, Text: text}, true
}

// Append stores a quote and persists the store. The first quote of an empty
// store is drawn right away. A persist failure is returned after the quote
// has been added in memory.
func (s *Service) Append(ctx context.Context, q string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.store.Append(q)
	if err != nil {
		return 0, fmt.Errorf("appending quote: %w", err)
	}

	s.logger.InfoContext(ctx, "quote added", slog.Int("index", idx), slog.Int("count", s.store.Len()))

	return idx, s.afterMutationLocked(ctx, false)
}

// DeleteAt removes a quote and persists the store. The panel is redrawn when
// the displayed text changed.
func (s *Service) DeleteAt(ctx context.Context, i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteAt(i); err != nil {
		return fmt.Errorf("deleting quote: %w", err)
	}

	s.logger.InfoContext(ctx, "quote deleted", slog.Int("index", i), slog.Int("count", s.store.Len()))

	return s.afterMutationLocked(ctx, i <= s.rotation.Index())
}

// Clear replaces the store with the built-in quotes and shows the first one.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.ClearAndLoadDefaults()
	s.rotation.SetCount(s.store.Len())
	s.rotation.Reset()

	s.logger.InfoContext(ctx, "quotes reset to defaults", slog.Int("count", s.store.Len()))

	return s.afterMutationLocked(ctx, true)
}

// ImportResult reports a batch import. Count is the list size right after
// the batch was stored.
type ImportResult struct {
	Imported int
	Count    int
}

// Import appends a batch of quotes. Nothing is stored unless every quote is
// valid and the batch fits.
func (s *Service) Import(ctx context.Context, batch []string) (ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, q := range batch {
		if err := s.store.Validate(q); err != nil {
			return ImportResult{}, fmt.Errorf("importing quote %d: %w", i, err)
		}
	}

	if s.store.Len()+len(batch) > s.store.Cap() {
		return ImportResult{}, domain.NewCapacityError(s.store.Cap())
	}

	for _, q := range batch {
		if _, err := s.store.Append(q); err != nil {
			return ImportResult{}, fmt.Errorf("importing quote: %w", err)
		}
	}

	res := ImportResult{Imported: len(batch), Count: s.store.Len()}

	s.logger.InfoContext(ctx, "quotes imported", slog.Int("imported", res.Imported), slog.Int("count", res.Count))

	return res, s.afterMutationLocked(ctx, false)
}

// Reload reads the store back from the region, for example after another
// process rewrote the backing file. A file-backed medium first switches to a
// file renamed over its path.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.medium.(ports.Reopener); ok {
		replaced, err := r.Reopen()
		if err != nil {
			s.metrics.StorageError()
			return fmt.Errorf("reopening region: %w", err)
		}

		if replaced {
			s.logger.InfoContext(ctx, "region file replaced, reopened")
		}
	}

	before := s.store.Snapshot()

	if err := s.store.Load(s.medium); err != nil {
		s.metrics.StorageError()
		return fmt.Errorf("reloading quotes: %w", err)
	}

	// The watcher also sees our own writes.
	if slices.Equal(before, s.store.Snapshot()) {
		return nil
	}

	s.rotation.SetCount(s.store.Len())
	s.rotation.Request()
	s.observeLocked()

	s.logger.InfoContext(ctx, "quotes reloaded", slog.Int("count", s.store.Len()))

	_ = s.renderPendingLocked(ctx)

	return nil
}

// Preview lays out the quote at i without drawing it.
func (s *Service) Preview(ctx context.Context, i int, opts ...layout.Option) (*layout.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, err := s.store.At(i)
	if err != nil {
		return nil, err
	}

	return s.renderer.Layout(text, opts...), nil
}

// afterMutationLocked persists, updates the rotation and redraws if needed.
// Render failures stay pending for the loop and are not returned: the
// mutation itself succeeded.
func (s *Service) afterMutationLocked(ctx context.Context, redraw bool) error {
	persistErr := s.persistLocked(ctx)

	s.rotation.SetCount(s.store.Len())
	if redraw {
		s.rotation.Request()
	}

	s.observeLocked()

	_ = s.renderPendingLocked(ctx)

	return persistErr
}
