package display

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/jostojic/quotescreen/internal/adapters/display/fonts"
	"github.com/jostojic/quotescreen/internal/domain"
	"github.com/jostojic/quotescreen/internal/ports"
)

const mmPerInch = 25.4

type placedRun struct {
	x, y int
	text string
	font ports.FontID
}

// PDFSink records a frame as vector text and writes it as a one page PDF.
// It shares glyph metrics with the raster panels, so the preview breaks
// lines exactly where the panel does.
type PDFSink struct {
	path          string
	width, height int

	// mmPerPx follows the font DPI so a pixel on the page covers what it
	// covers on the panel. Point sizes then carry over unchanged.
	mmPerPx float64

	mu       sync.Mutex
	families map[ports.FontID]*canvas.FontFamily
	sizes    map[ports.FontID]float64
	runs     []placedRun
}

// NewPDFSink loads the faces of set into canvas font families. The page is
// scaled by the DPI the faces were loaded at.
func NewPDFSink(path string, width, height int, set *fonts.Set) (*PDFSink, error) {
	dpi := set.Face(ports.FontBody).DPI
	if dpi <= 0 {
		dpi = fonts.DefaultDPI
	}

	s := &PDFSink{
		path:     path,
		width:    width,
		height:   height,
		mmPerPx:  mmPerInch / dpi,
		families: make(map[ports.FontID]*canvas.FontFamily),
		sizes:    make(map[ports.FontID]float64),
	}

	for _, id := range []ports.FontID{ports.FontBody, ports.FontBold} {
		face := set.Face(id)

		family := canvas.NewFontFamily(id.String())
		if err := family.LoadFont(face.TTF, 0, canvas.FontRegular); err != nil {
			return nil, fmt.Errorf("loading %s font into pdf family: %w", id, err)
		}

		s.families[id] = family
		s.sizes[id] = face.Size
	}

	return s, nil
}

// Name returns "pdf".
func (s *PDFSink) Name() string {
	return "pdf"
}

// BeginFrame drops the recorded runs.
func (s *PDFSink) BeginFrame(bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = s.runs[:0]
}

// Clear drops the recorded runs. The page background is always white.
func (s *PDFSink) Clear() {
	s.BeginFrame(true)
}

// DrawRun records a run with its baseline origin at (x, y).
func (s *PDFSink) DrawRun(x, y int, text string, font ports.FontID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, placedRun{x: x, y: y, text: text, font: font})
}

// Commit renders the recorded runs and replaces the output file.
func (s *PDFSink) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return domain.NewRenderError(s.Name(), err)
	}

	s.mu.Lock()
	runs := append([]placedRun(nil), s.runs...)
	s.mu.Unlock()

	err := writeAtomic(s.path, func(f *os.File) error {
		return s.render(f, runs)
	})
	if err != nil {
		return domain.NewRenderError(s.Name(), err)
	}

	return nil
}

// pageSize returns the page in millimetres.
func (s *PDFSink) pageSize() (w, h float64) {
	return float64(s.width) * s.mmPerPx, float64(s.height) * s.mmPerPx
}

func (s *PDFSink) render(f *os.File, runs []placedRun) error {
	w, h := s.pageSize()

	writer := pdf.New(f, w, h, nil)

	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)

	ctx.SetFillColor(canvas.White)
	ctx.DrawPath(0, 0, canvas.Rectangle(w, h))

	for _, r := range runs {
		id := r.font
		if _, ok := s.families[id]; !ok {
			id = ports.FontBody
		}

		face := s.families[id].Face(s.sizes[id], canvas.Black, canvas.FontRegular, canvas.FontNormal)
		line := canvas.NewTextLine(face, r.text, canvas.Left)
		ctx.DrawText(float64(r.x)*s.mmPerPx, float64(r.y)*s.mmPerPx, line)
	}

	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}

	return nil
}
