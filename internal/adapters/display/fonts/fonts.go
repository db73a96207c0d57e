// Package fonts loads the body and bold faces and measures text with them.
// It implements ports.MetricsProvider.
package fonts

import (
	"fmt"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/jostojic/quotescreen/internal/ports"
)

// Default sizes in points at 72 DPI, which makes points equal pixels.
const (
	DefaultBodySize = 14
	DefaultBoldSize = 12
	DefaultDPI      = 72
)

// Config selects the faces. Empty paths use the embedded Go fonts.
type Config struct {
	BodyPath string
	BoldPath string
	BodySize float64
	BoldSize float64
	DPI      float64
}

// Face is a loaded face with its source data and size.
type Face struct {
	font.Face

	// TTF is the raw font file, kept for vector renderers.
	TTF  []byte
	Size float64

	// DPI maps Size to pixels: one point is DPI/72 pixels.
	DPI float64

	metrics ports.FontMetrics
}

// Set holds the faces used for rendering and measuring.
// Faces from x/image are not safe for concurrent use, so access is serialized.
type Set struct {
	mu    sync.Mutex
	faces map[ports.FontID]*Face
}

// Load parses the configured faces.
func Load(cfg Config) (*Set, error) {
	if cfg.BodySize <= 0 {
		cfg.BodySize = DefaultBodySize
	}

	if cfg.BoldSize <= 0 {
		cfg.BoldSize = DefaultBoldSize
	}

	if cfg.DPI <= 0 {
		cfg.DPI = DefaultDPI
	}

	body, err := loadFace(cfg.BodyPath, goregular.TTF, cfg.BodySize, cfg.DPI)
	if err != nil {
		return nil, fmt.Errorf("loading body font: %w", err)
	}

	bold, err := loadFace(cfg.BoldPath, gobold.TTF, cfg.BoldSize, cfg.DPI)
	if err != nil {
		return nil, fmt.Errorf("loading bold font: %w", err)
	}

	return &Set{faces: map[ports.FontID]*Face{
		ports.FontBody: body,
		ports.FontBold: bold,
	}}, nil
}

// loadFace reads a TrueType file with freetype, or the embedded OpenType
// fallback with x/image when path is empty.
func loadFace(path string, fallback []byte, size, dpi float64) (*Face, error) {
	var (
		face font.Face
		data []byte
	)

	if path == "" {
		f, err := opentype.Parse(fallback)
		if err != nil {
			return nil, err
		}

		face, err = opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size,
			DPI:     dpi,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, err
		}

		data = fallback
	} else {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		f, err := truetype.Parse(b)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		face = truetype.NewFace(f, &truetype.Options{
			Size:    size,
			DPI:     dpi,
			Hinting: font.HintingFull,
		})
		data = b
	}

	m := face.Metrics()

	return &Face{
		Face: face,
		TTF:  data,
		Size: size,
		DPI:  dpi,
		metrics: ports.FontMetrics{
			Ascent:  m.Ascent.Ceil(),
			Descent: m.Descent.Ceil(),
			Height:  m.Height.Ceil(),
		},
	}, nil
}

// Face returns the face for id, falling back to the body face.
func (s *Set) Face(id ports.FontID) *Face {
	if f, ok := s.faces[id]; ok {
		return f
	}

	return s.faces[ports.FontBody]
}

// Lock serializes use of the faces by a drawer.
func (s *Set) Lock() { s.mu.Lock() }

// Unlock releases Lock.
func (s *Set) Unlock() { s.mu.Unlock() }

// Measure returns the rounded-up advance width and the line height.
func (s *Set) Measure(text string, id ports.FontID) ports.Extent {
	f := s.Face(id)

	s.mu.Lock()
	adv := font.MeasureString(f.Face, text)
	s.mu.Unlock()

	return ports.Extent{Width: adv.Ceil(), Height: f.metrics.LineHeight()}
}

// Metrics returns the vertical metrics of the face.
func (s *Set) Metrics(id ports.FontID) ports.FontMetrics {
	return s.Face(id).metrics
}

// Close releases the faces.
func (s *Set) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.faces {
		if err := f.Close(); err != nil {
			return err
		}
	}

	return nil
}
