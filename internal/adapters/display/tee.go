package display

import (
	"context"
	"errors"
	"strings"

	"github.com/jostojic/quotescreen/internal/ports"
)

// Tee forwards every draw command to all sinks. Commit presents on each sink
// in order and returns the joined failures.
type Tee []ports.FrameSink

// Name joins the sink names with "+".
func (t Tee) Name() string {
	names := make([]string, len(t))
	for i, s := range t {
		names[i] = s.Name()
	}

	return strings.Join(names, "+")
}

// BeginFrame starts a frame on every sink.
func (t Tee) BeginFrame(fullWindow bool) {
	for _, s := range t {
		s.BeginFrame(fullWindow)
	}
}

// Clear clears every sink.
func (t Tee) Clear() {
	for _, s := range t {
		s.Clear()
	}
}

// DrawRun draws on every sink.
func (t Tee) DrawRun(x, y int, text string, font ports.FontID) {
	for _, s := range t {
		s.DrawRun(x, y, text, font)
	}
}

// Commit commits every sink, even after a failure.
func (t Tee) Commit(ctx context.Context) error {
	var errs []error

	for _, s := range t {
		if err := s.Commit(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
