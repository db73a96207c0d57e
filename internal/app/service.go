// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// Service owns the one lock of the process. Every store mutation and every
// "read current quote, lay it out, commit the frame" sequence runs under it,
// so HTTP handlers and the rotation loop never interleave.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jostojic/quotescreen/internal/platform/logging"
	"github.com/jostojic/quotescreen/internal/platform/telemetry"
	"github.com/jostojic/quotescreen/internal/ports"
	"github.com/jostojic/quotescreen/internal/quotes"
	"github.com/jostojic/quotescreen/internal/rotation"
)

// Service coordinates the quote store, the persisted region, the rotation
// controller and the renderer.
//
// Example usage:
//
//	svc := app.NewService(store, medium, rotation.New(time.Minute), renderer, nil)
//	if err := svc.Start(ctx); err != nil { ... }
//	go svc.Run(ctx, time.Second)
//	idx, err := svc.Append(ctx, "Stay hungry. - Steve Jobs")
type Service struct {
	mu sync.Mutex

	store    *quotes.Store
	medium   ports.Medium
	rotation *rotation.Controller
	renderer *Renderer
	metrics  *telemetry.Collectors
	logger   *slog.Logger
}

// ServiceConfig holds optional configuration for the service.
type ServiceConfig struct {
	Logger  *slog.Logger
	Metrics *telemetry.Collectors
}

// NewService creates a new application service with the given dependencies.
func NewService(
	store *quotes.Store,
	medium ports.Medium,
	ctrl *rotation.Controller,
	renderer *Renderer,
	cfg *ServiceConfig,
) *Service {
	logger := slog.Default()

	var metrics *telemetry.Collectors

	if cfg != nil {
		if cfg.Logger != nil {
			logger = cfg.Logger
		}

		metrics = cfg.Metrics
	}

	return &Service{
		store:    store,
		medium:   medium,
		rotation: ctrl,
		renderer: renderer,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "app.Service")),
	}
}

// Start shows the startup message, loads the region and draws the first
// quote. An empty region is seeded with the built-in quotes and persisted.
// A failed render is left pending for the loop and does not fail Start.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.renderer.ShowMessage(ctx, MessageStarting); err != nil {
		s.logger.WarnContext(ctx, "startup message not shown", slog.Any("error", err))
	}

	if err := s.store.Load(s.medium); err != nil {
		s.metrics.StorageError()
		return fmt.Errorf("loading quotes: %w", err)
	}

	if s.store.Len() == 0 {
		s.logger.InfoContext(ctx, "store is empty, loading defaults")
		s.store.ClearAndLoadDefaults()

		if err := s.persistLocked(ctx); err != nil {
			return err
		}
	}

	s.rotation.SetCount(s.store.Len())
	s.rotation.Request()
	s.observeLocked()

	s.logger.InfoContext(ctx, "quotes loaded",
		slog.Int("count", s.store.Len()),
		slog.Int("capacity", s.store.Cap()),
	)

	_ = s.renderPendingLocked(ctx)

	return nil
}

// persistLocked writes the store to the region. The in-memory state stays
// authoritative when the write fails.
func (s *Service) persistLocked(ctx context.Context) error {
	if err := s.store.Persist(s.medium); err != nil {
		s.metrics.StorageError()
		s.logger.ErrorContext(ctx, "persisting quotes failed", slog.Any("error", err))

		return fmt.Errorf("persisting quotes: %w", err)
	}

	return nil
}

// renderPendingLocked draws the current quote when a render is owed.
// On failure the render stays pending and the next tick retries it.
func (s *Service) renderPendingLocked(ctx context.Context) error {
	if !s.rotation.Pending() {
		return nil
	}

	var err error

	idx := s.rotation.Index()
	ctx = logging.With(ctx, slog.Int("quote", idx))

	if s.store.Len() == 0 {
		err = s.renderer.ShowMessage(ctx, MessageEmpty)
	} else {
		var text string

		text, err = s.store.At(idx)
		if err == nil {
			err = s.renderer.Render(ctx, text)
		}
	}

	if err != nil {
		s.logger.WarnContext(ctx, "render failed, will retry",
			slog.Int("index", idx),
			slog.Any("error", err),
		)

		return err
	}

	s.rotation.Rendered()
	s.metrics.ObserveIndex(idx)

	return nil
}

func (s *Service) observeLocked() {
	s.metrics.ObserveStore(s.store.Len(), s.store.Cap())
	s.metrics.ObserveIndex(s.rotation.Index())
}
