// Package display turns draw commands into frames and hands them to a panel.
//
// RasterSink implements ports.FrameSink on an 8-bit grayscale frame. A Panel
// receives the finished frame on Commit: the waveshare e-paper HAT, the
// Quote/0 cloud device, a PNG file, or the log.
package display

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/jostojic/quotescreen/internal/adapters/display/fonts"
	"github.com/jostojic/quotescreen/internal/domain"
	"github.com/jostojic/quotescreen/internal/ports"
)

// Panel presents a finished frame.
type Panel interface {
	// Name identifies the panel in logs and errors.
	Name() string

	// Bounds is the frame size the panel expects.
	Bounds() image.Rectangle

	// Present shows frame. full requests a full refresh.
	Present(ctx context.Context, frame *image.Gray, full bool) error
}

// Frame is the last committed frame.
type Frame struct {
	Image       *image.Gray
	CommittedAt time.Time
}

// RasterSink draws runs into a grayscale frame and presents it on Commit.
type RasterSink struct {
	panel  Panel
	fonts  *fonts.Set
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	frame *image.Gray
	full  bool
	last  Frame
}

// NewRasterSink creates a sink drawing with faces from set onto panel.
func NewRasterSink(panel Panel, set *fonts.Set, logger *slog.Logger) *RasterSink {
	if logger == nil {
		logger = slog.Default()
	}

	return &RasterSink{
		panel:  panel,
		fonts:  set,
		logger: logger.With(slog.String("panel", panel.Name())),
		now:    time.Now,
		frame:  blank(panel.Bounds()),
	}
}

// Name returns the panel name.
func (s *RasterSink) Name() string {
	return s.panel.Name()
}

// Bounds returns the frame bounds.
func (s *RasterSink) Bounds() image.Rectangle {
	return s.panel.Bounds()
}

// BeginFrame starts a new white frame.
func (s *RasterSink) BeginFrame(fullWindow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frame = blank(s.panel.Bounds())
	s.full = fullWindow
}

// Clear fills the frame with white.
func (s *RasterSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	draw.Draw(s.frame, s.frame.Bounds(), image.White, image.Point{}, draw.Src)
}

// DrawRun draws text in black with its baseline origin at (x, y).
// Pixels outside the frame are dropped.
func (s *RasterSink) DrawRun(x, y int, text string, id ports.FontID) {
	face := s.fonts.Face(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.fonts.Lock()
	defer s.fonts.Unlock()

	d := font.Drawer{
		Dst:  s.frame,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// Commit presents a copy of the frame on the panel.
func (s *RasterSink) Commit(ctx context.Context) error {
	s.mu.Lock()
	frame := clone(s.frame)
	full := s.full
	s.mu.Unlock()

	start := s.now()
	if err := s.panel.Present(ctx, frame, full); err != nil {
		s.logger.Error("frame commit failed", slog.Any("error", err))
		return domain.NewRenderError(s.panel.Name(), err)
	}

	s.mu.Lock()
	s.last = Frame{Image: frame, CommittedAt: s.now()}
	s.mu.Unlock()

	s.logger.Debug("frame committed",
		slog.Bool("full", full),
		slog.Duration("duration", s.now().Sub(start)),
	)

	return nil
}

// Last returns the last committed frame. ok is false before the first commit.
func (s *RasterSink) Last() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last, s.last.Image != nil
}

func blank(r image.Rectangle) *image.Gray {
	img := image.NewGray(r)
	draw.Draw(img, r, image.White, image.Point{}, draw.Src)

	return img
}

func clone(src *image.Gray) *image.Gray {
	dst := image.NewGray(src.Bounds())
	copy(dst.Pix, src.Pix)

	return dst
}

// Threshold maps a grayscale frame to pure black and white.
func Threshold(src *image.Gray, cut uint8) *image.Gray {
	dst := image.NewGray(src.Bounds())
	for i, v := range src.Pix {
		if v < cut {
			dst.Pix[i] = 0
		} else {
			dst.Pix[i] = 0xff
		}
	}

	return dst
}

// Rotate90 rotates a frame a quarter turn clockwise, turning a landscape
// frame into the portrait orientation the HAT controller scans.
func Rotate90(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, h, w))

	for y := range w {
		for x := range h {
			dst.SetGray(x, y, src.GrayAt(b.Min.X+y, b.Min.Y+h-1-x))
		}
	}

	return dst
}
