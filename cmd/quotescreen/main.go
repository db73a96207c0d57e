// Package main runs the quote display: the rotation loop, the HTTP control
// surface and, when enabled, the region file watcher.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jostojic/quotescreen/internal/adapters/clients"
	"github.com/jostojic/quotescreen/internal/adapters/clients/acl"
	"github.com/jostojic/quotescreen/internal/adapters/display"
	"github.com/jostojic/quotescreen/internal/adapters/display/fonts"
	"github.com/jostojic/quotescreen/internal/adapters/http"
	"github.com/jostojic/quotescreen/internal/adapters/http/handlers"
	"github.com/jostojic/quotescreen/internal/app"
	"github.com/jostojic/quotescreen/internal/layout"
	"github.com/jostojic/quotescreen/internal/platform/config"
	"github.com/jostojic/quotescreen/internal/platform/logging"
	"github.com/jostojic/quotescreen/internal/platform/telemetry"
	"github.com/jostojic/quotescreen/internal/ports"
	"github.com/jostojic/quotescreen/internal/quotes"
	"github.com/jostojic/quotescreen/internal/region"
	"github.com/jostojic/quotescreen/internal/rotation"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting quotescreen",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("display", cfg.Display.Driver),
		slog.String("medium", cfg.Store.Medium),
	)

	tel, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Error("telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewCollectors(reg)

	health := ports.NewHealthRegistry()

	geometry, err := region.NewLayout(cfg.Store.Capacity, cfg.Store.SlotSize)
	if err != nil {
		return fmt.Errorf("region layout: %w", err)
	}

	medium, err := region.Open(cfg.Store.Medium, cfg.Store.Path, geometry.Size())
	if err != nil {
		return fmt.Errorf("opening region: %w", err)
	}
	defer closeLogged(logger, "region", medium)

	if err := health.Register(ports.NewCheckFunc("region", regionCheck(medium))); err != nil {
		return err
	}

	faces, err := fonts.Load(fonts.Config{
		BodyPath: cfg.Display.Fonts.BodyPath,
		BoldPath: cfg.Display.Fonts.BoldPath,
		BodySize: cfg.Display.Fonts.BodySize,
		BoldSize: cfg.Display.Fonts.BoldSize,
		DPI:      cfg.Display.Fonts.DPI,
	})
	if err != nil {
		return fmt.Errorf("loading fonts: %w", err)
	}
	defer closeLogged(logger, "fonts", faces)

	panel, err := openPanel(cfg, logger)
	if err != nil {
		return fmt.Errorf("opening display: %w", err)
	}

	if c, ok := panel.(io.Closer); ok {
		defer closeLogged(logger, "panel", c)
	}

	if c, ok := panel.(ports.HealthChecker); ok {
		if err := health.Register(c); err != nil {
			return err
		}
	}

	raster := display.NewRasterSink(panel, faces, logger)

	var sink ports.FrameSink = raster

	if cfg.Display.PDFPath != "" {
		b := raster.Bounds()

		pdf, err := display.NewPDFSink(cfg.Display.PDFPath, b.Dx(), b.Dy(), faces)
		if err != nil {
			return fmt.Errorf("opening pdf preview: %w", err)
		}

		sink = display.Tee{raster, pdf}
	}

	policy, err := layout.ParsePolicy(cfg.Display.Policy)
	if err != nil {
		return err
	}

	renderer := app.NewRenderer(sink, faces, app.RendererConfig{
		Area:    textArea(raster, cfg.Display.Margin),
		Policy:  policy,
		Logger:  logger,
		Metrics: metrics,
	})

	svc := app.NewService(
		quotes.New(geometry, logger),
		medium,
		rotation.New(cfg.Rotation.Interval),
		renderer,
		&app.ServiceConfig{Logger: logger, Metrics: metrics},
	)

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("starting service: %w", err)
	}

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Health: handlers.NewHealthHandler(health,
			handlers.NewBuildInfo(Version, Commit, BuildTime),
			handlers.WithGatherer(reg),
		),
		Quotes:  handlers.NewQuoteHandler(svc),
		Display: handlers.NewDisplayHandler(svc),
		Network: handlers.NewNetworkHandler(svc),
		Timeout: http.DefaultRequestTimeout,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error { return svc.Run(gctx, cfg.Rotation.PollInterval) })

	if cfg.Store.Watch && cfg.Store.Medium != region.KindMemory {
		watcher := region.NewWatcher(cfg.Store.Path, cfg.Store.Debounce, logger)

		g.Go(func() error {
			return watcher.Run(gctx, func(ctx context.Context) {
				if err := svc.Reload(ctx); err != nil {
					logger.WarnContext(ctx, "reloading region failed", slog.Any("error", err))
				}
			})
		})
	}

	err = g.Wait()

	logger.Info("shutdown complete")

	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// openPanel creates the configured panel. The Quote/0 device is driven
// through its cloud API; every other driver is local.
func openPanel(cfg *config.Config, logger *slog.Logger) (display.Panel, error) {
	if cfg.Display.Driver != acl.Quote0ServiceName {
		return display.Open(display.Config{
			Driver:  cfg.Display.Driver,
			Width:   cfg.Display.Width,
			Height:  cfg.Display.Height,
			PNGPath: cfg.Display.PNGPath,
			EPaper: display.EPaperConfig{
				SPIPort:   cfg.EPaper.SPIPort,
				Landscape: cfg.Display.Landscape,
				Threshold: cfg.EPaper.Threshold,
			},
		}, logger)
	}

	client, err := clients.New(&clients.Config{
		BaseURL:     cfg.Quote0.BaseURL,
		ServiceName: acl.Quote0ServiceName,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		AuthFunc:    acl.BearerAuth(cfg.Quote0.APIKey),
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if cfg.Quote0.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Quote0.RateLimit), 1)
	}

	panel, err := acl.NewQuote0Panel(acl.Quote0Config{
		Client:     client,
		DeviceID:   cfg.Quote0.DeviceID,
		Border:     cfg.Quote0.Border,
		DitherType: cfg.Quote0.DitherType,
		Limiter:    limiter,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	return panel, nil
}

// textArea insets the panel bounds by margin on every side.
func textArea(sink *display.RasterSink, margin int) layout.Rect {
	b := sink.Bounds()

	return layout.Rect{
		X:      b.Min.X + margin,
		Y:      b.Min.Y + margin,
		Width:  b.Dx() - 2*margin,
		Height: b.Dy() - 2*margin,
	}
}

// regionCheck reads the configured flag byte so a vanished or unreadable
// backing file shows up on /-/ready.
func regionCheck(m ports.Medium) func(context.Context) error {
	return func(context.Context) error {
		var b [1]byte
		if _, err := m.ReadAt(b[:], 0); err != nil {
			return fmt.Errorf("reading region header: %w", err)
		}

		return nil
	}
}

func closeLogged(logger *slog.Logger, what string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Warn("close failed", slog.String("resource", what), slog.Any("error", err))
	}
}
