//go:build integration

package integration

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jostojic/quotescreen/internal/adapters/display"
	"github.com/jostojic/quotescreen/internal/adapters/display/fonts"
	httpadapter "github.com/jostojic/quotescreen/internal/adapters/http"
	"github.com/jostojic/quotescreen/internal/adapters/http/handlers"
	"github.com/jostojic/quotescreen/internal/app"
	"github.com/jostojic/quotescreen/internal/layout"
	"github.com/jostojic/quotescreen/internal/platform/config"
	"github.com/jostojic/quotescreen/internal/ports"
	"github.com/jostojic/quotescreen/internal/quotes"
	"github.com/jostojic/quotescreen/internal/region"
	"github.com/jostojic/quotescreen/internal/rotation"
)

const (
	panelWidth  = 250
	panelHeight = 122
	margin      = 5
)

// textArea is the drawable rectangle a scenario starts with.
var textArea = layout.Rect{X: margin, Y: margin, Width: panelWidth - 2*margin, Height: panelHeight - 2*margin}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// flakyPanel counts presented frames and can be told to refuse them.
type flakyPanel struct {
	mu        sync.Mutex
	failing   bool
	presented int
}

func (p *flakyPanel) Name() string { return "flaky" }

func (p *flakyPanel) Bounds() image.Rectangle { return image.Rect(0, 0, panelWidth, panelHeight) }

func (p *flakyPanel) Present(context.Context, *image.Gray, bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failing {
		return errors.New("busy line stuck high")
	}

	p.presented++

	return nil
}

func (p *flakyPanel) setFailing(v bool) {
	p.mu.Lock()
	p.failing = v
	p.mu.Unlock()
}

func (p *flakyPanel) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.presented
}

// textSink remembers the words of the last frame that reached it.
type textSink struct {
	mu      sync.Mutex
	current []string
	last    []string
}

func (s *textSink) Name() string { return "text" }

func (s *textSink) BeginFrame(bool) {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

func (s *textSink) Clear() {}

func (s *textSink) DrawRun(_, _ int, text string, _ ports.FontID) {
	s.mu.Lock()
	s.current = append(s.current, text)
	s.mu.Unlock()
}

func (s *textSink) Commit(context.Context) error {
	s.mu.Lock()
	s.last = s.current
	s.mu.Unlock()

	return nil
}

func (s *textSink) text() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return strings.Join(s.last, " ")
}

// manualClock drives rotation without sleeping.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *manualClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// world is the state of one scenario: a region that survives restarts and
// the service currently running on top of it.
type world struct {
	geometry region.Layout
	medium   *region.Memory
	clock    *manualClock
	panel    *flakyPanel
	shown    *textSink
	faces    *fonts.Set
	area     layout.Rect

	svc    *app.Service
	server *httptest.Server

	status int
	body   []byte
}

func newWorld() *world {
	return &world{
		clock: &manualClock{now: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)},
		panel: &flakyPanel{},
		shown: &textSink{},
		area:  textArea,
	}
}

func (w *world) useRegion(capacity int) error {
	geometry, err := region.NewLayout(capacity, region.DefaultSlotSize)
	if err != nil {
		return err
	}

	w.geometry = geometry
	w.medium = region.NewMemory(geometry.Size())

	return nil
}

// start boots a fresh service over the current region, as a power cycle would.
func (w *world) start() error {
	w.stop()

	if w.faces == nil {
		faces, err := fonts.Load(fonts.Config{})
		if err != nil {
			return err
		}

		w.faces = faces
	}

	logger := quietLogger()
	raster := display.NewRasterSink(w.panel, w.faces, logger)

	renderer := app.NewRenderer(display.Tee{raster, w.shown}, w.faces, app.RendererConfig{
		Area:   w.area,
		Policy: layout.Truncate,
		Logger: logger,
	})

	w.svc = app.NewService(
		quotes.New(w.geometry, logger),
		w.medium,
		rotation.New(time.Minute, rotation.WithClock(w.clock.Now)),
		renderer,
		&app.ServiceConfig{Logger: logger},
	)

	if err := w.svc.Start(context.Background()); err != nil {
		return err
	}

	gin.SetMode(gin.TestMode)

	srv := httpadapter.New(&config.ServerConfig{
		Host:            "127.0.0.1",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		IdleTimeout:     5 * time.Second,
		ShutdownTimeout: time.Second,
		MaxRequestSize:  config.DefaultMaxRequestSize,
	}, logger)

	httpadapter.SetupRouter(srv.Engine(), httpadapter.RouterConfig{
		ServiceName: "quotescreen-integration",
		Health:      handlers.NewHealthHandler(ports.NewHealthRegistry(), handlers.NewBuildInfo("test", "test", "test")),
		Quotes:      handlers.NewQuoteHandler(w.svc),
		Display:     handlers.NewDisplayHandler(w.svc),
		Network:     handlers.NewNetworkHandler(w.svc),
		Timeout:     5 * time.Second,
	})

	w.server = httptest.NewServer(srv.Engine())

	return nil
}

func (w *world) stop() {
	if w.server != nil {
		w.server.Close()
		w.server = nil
	}
}

func (w *world) close() {
	w.stop()

	if w.faces != nil {
		_ = w.faces.Close()
	}
}
