package display

import (
	"context"
	"image"
	"log/slog"
	"sync/atomic"
)

// LogPanel discards frames and logs what would have been shown.
type LogPanel struct {
	bounds image.Rectangle
	logger *slog.Logger
	frames atomic.Int64
}

// NewLogPanel creates a log-only panel of the given size.
func NewLogPanel(width, height int, logger *slog.Logger) *LogPanel {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogPanel{bounds: image.Rect(0, 0, width, height), logger: logger}
}

// Name returns "log".
func (p *LogPanel) Name() string {
	return "log"
}

// Bounds returns the configured frame size.
func (p *LogPanel) Bounds() image.Rectangle {
	return p.bounds
}

// Present logs the inked area of the frame.
func (p *LogPanel) Present(_ context.Context, frame *image.Gray, full bool) error {
	n := p.frames.Add(1)
	ink, box := inked(frame)

	p.logger.Info("frame presented",
		slog.Int64("frame", n),
		slog.Bool("full", full),
		slog.Int("ink_pixels", ink),
		slog.String("ink_box", box.String()),
	)

	return nil
}

// Frames returns how many frames were presented.
func (p *LogPanel) Frames() int64 {
	return p.frames.Load()
}

// inked counts dark pixels and returns their bounding box.
func inked(img *image.Gray) (int, image.Rectangle) {
	var (
		n   int
		box image.Rectangle
	)

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.GrayAt(x, y).Y >= 0x80 {
				continue
			}

			n++
			box = box.Union(image.Rect(x, y, x+1, y+1))
		}
	}

	return n, box
}
