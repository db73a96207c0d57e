package app

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPollInterval is how often the loop checks whether a rotation is due.
const DefaultPollInterval = time.Second

// Tick performs one rotation check: it advances the index when the interval
// has elapsed and draws any pending render, including one left over from a
// failed commit.
func (s *Service) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.rotation.Index()

	idx, due := s.rotation.Tick()
	if !due {
		return nil
	}

	if idx != before {
		s.logger.DebugContext(ctx, "rotating", slog.Int("from", before), slog.Int("to", idx))
	}

	return s.renderPendingLocked(ctx)
}

// Run calls Tick every poll interval until ctx is canceled. Render failures
// are logged and retried on the next tick.
func (s *Service) Run(ctx context.Context, poll time.Duration) error {
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "rotation loop started",
		slog.Duration("poll", poll),
		slog.Duration("interval", s.interval()),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "rotation loop stopped")
			return nil
		case <-ticker.C:
			_ = s.Tick(ctx)
		}
	}
}

// Next advances to the following quote and draws it now.
func (s *Service) Next(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.rotation.Next()

	return idx, s.renderPendingLocked(ctx)
}

// Refresh redraws the current quote.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rotation.Request()

	return s.renderPendingLocked(ctx)
}

func (s *Service) interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rotation.Interval()
}
