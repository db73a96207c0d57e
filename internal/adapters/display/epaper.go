package display

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"sync"

	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/devices/v3/waveshare2in13v4"
	"periph.io/x/host/v3"
)

// epd is the subset of the waveshare driver the panel uses.
type epd interface {
	Init() error
	Clear(color.Color) error
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Sleep() error
	Halt() error
}

// EPaperConfig configures the waveshare 2.13" HAT.
type EPaperConfig struct {
	// SPIPort is the periph port name. Empty selects the first port.
	SPIPort string

	// Landscape draws frames wider than tall and rotates them for the controller.
	Landscape bool

	// Threshold is the gray level below which a pixel is inked.
	Threshold uint8
}

// EPaper presents frames on a waveshare e-paper HAT. The controller is put to
// sleep after every refresh and woken before the next one.
type EPaper struct {
	cfg    EPaperConfig
	dev    epd
	port   spi.PortCloser
	logger *slog.Logger

	mu       sync.Mutex
	sleeping bool
	lastErr  error
}

// OpenEPaper initializes the host, opens the SPI port and clears the panel.
func OpenEPaper(cfg EPaperConfig, logger *slog.Logger) (*EPaper, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initializing host: %w", err)
	}

	port, err := spireg.Open(cfg.SPIPort)
	if err != nil {
		return nil, fmt.Errorf("opening spi port %q: %w", cfg.SPIPort, err)
	}

	opts := waveshare2in13v4.EPD2in13v4

	dev, err := waveshare2in13v4.NewHat(port, &opts)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("opening e-paper hat: %w", err)
	}

	p, err := newEPaper(cfg, dev, logger)
	if err != nil {
		_ = dev.Halt()
		_ = port.Close()

		return nil, err
	}

	p.port = port

	return p, nil
}

func newEPaper(cfg EPaperConfig, dev epd, logger *slog.Logger) (*EPaper, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Threshold == 0 {
		cfg.Threshold = 0x80
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("initializing e-paper: %w", err)
	}

	if err := dev.Clear(color.White); err != nil {
		return nil, fmt.Errorf("clearing e-paper: %w", err)
	}

	return &EPaper{cfg: cfg, dev: dev, logger: logger}, nil
}

// Name returns "epaper".
func (p *EPaper) Name() string {
	return "epaper"
}

// Bounds returns the frame size, swapped when drawing in landscape.
func (p *EPaper) Bounds() image.Rectangle {
	b := p.dev.Bounds()
	if p.cfg.Landscape {
		return image.Rect(0, 0, b.Dy(), b.Dx())
	}

	return image.Rect(0, 0, b.Dx(), b.Dy())
}

// Present wakes the controller, pushes the frame and puts it back to sleep.
// Once the transfer starts it runs to completion regardless of ctx.
func (p *EPaper) Present(ctx context.Context, frame *image.Gray, _ bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.present(frame)
	p.lastErr = err

	return err
}

func (p *EPaper) present(frame *image.Gray) error {
	if p.sleeping {
		if err := p.dev.Init(); err != nil {
			return fmt.Errorf("waking e-paper: %w", err)
		}

		p.sleeping = false
	}

	if p.cfg.Landscape {
		frame = Rotate90(frame)
	}

	frame = Threshold(frame, p.cfg.Threshold)

	bounds := p.dev.Bounds()
	img := image1bit.NewVerticalLSB(bounds)
	draw.Draw(img, img.Bounds(), frame, image.Point{}, draw.Src)

	if err := p.dev.Draw(bounds, img, image.Point{}); err != nil {
		return fmt.Errorf("drawing e-paper: %w", err)
	}

	if err := p.dev.Sleep(); err != nil {
		p.logger.Warn("e-paper sleep failed", slog.Any("error", err))
		return nil
	}

	p.sleeping = true

	return nil
}

// Check reports the outcome of the last refresh.
func (p *EPaper) Check(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.lastErr
}

// Close clears the panel, halts the controller and releases the port.
func (p *EPaper) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error

	if p.sleeping {
		if err := p.dev.Init(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := p.dev.Clear(color.White); err != nil {
		errs = append(errs, err)
	}

	if err := p.dev.Halt(); err != nil {
		errs = append(errs, err)
	}

	if p.port != nil {
		if err := p.port.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
