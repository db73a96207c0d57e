package layout

import "github.com/jostojic/quotescreen/internal/ports"

// placed is a word positioned horizontally on the pending line.
type placed struct {
	x       int
	text    string
	font    ports.FontID
	clipped bool
}

// walker holds the cursor state of one pass.
type walker struct {
	r       *Result
	yield   func(Run) bool
	lineTop int
	page    int
	pages   int
	line    []placed
	stopped bool
}

// walk runs the greedy algorithm, yielding runs line by line. It returns
// whether text was dropped and how many pages received runs.
func (r *Result) walk(yield func(Run) bool) (overflow bool, pages int) {
	if len(r.tokens) == 0 || r.area.Empty() || r.metrics == nil {
		return false, 0
	}

	w := &walker{r: r, yield: yield, lineTop: r.area.Y}
	x := r.area.X

	for _, tok := range r.tokens {
		if tok.forced {
			if !w.flush(tok.font) {
				return w.overflow(), w.pages
			}

			x = r.area.X

			continue
		}

		width := r.metrics.Measure(tok.text, tok.font).Width

		if x > r.area.X && x+width > r.area.Right() {
			if !w.flush(tok.font) {
				return w.overflow(), w.pages
			}

			x = r.area.X
		}

		w.line = append(w.line, placed{
			x:       x,
			text:    tok.text,
			font:    tok.font,
			clipped: x+width > r.area.Right(),
		})

		x += width + r.metrics.Measure(" ", tok.font).Width
	}

	if !w.flush(ports.FontBody) {
		return w.overflow(), w.pages
	}

	return false, w.pages
}

// overflow reports dropped text unless the consumer stopped iterating.
func (w *walker) overflow() bool {
	return !w.stopped
}

// flush emits the pending line, moving to a new page or stopping when it
// does not fit. An empty line advances by the line height of font.
// Returns false when the pass must stop.
func (w *walker) flush(font ports.FontID) bool {
	ascent, height := w.lineMetrics(font)

	if w.lineTop+height > w.r.area.Bottom() {
		if w.r.policy != Paginate || w.lineTop == w.r.area.Y {
			return false
		}

		w.page++
		w.lineTop = w.r.area.Y

		if w.lineTop+height > w.r.area.Bottom() {
			return false
		}
	}

	if len(w.line) > 0 {
		w.pages = w.page + 1
	}

	baseline := w.lineTop + ascent
	for _, p := range w.line {
		run := Run{X: p.x, Y: baseline, Text: p.text, Font: p.font, Page: w.page, Clipped: p.clipped}
		if !w.yield(run) {
			w.stopped = true
			return false
		}
	}

	w.line = w.line[:0]
	w.lineTop += height

	return true
}

// lineMetrics returns the tallest ascent and line height among the faces on
// the pending line, or of font when the line is empty.
func (w *walker) lineMetrics(font ports.FontID) (ascent, height int) {
	if len(w.line) == 0 {
		m := w.r.metrics.Metrics(font)
		return m.Ascent, m.LineHeight()
	}

	var descent int

	for _, p := range w.line {
		m := w.r.metrics.Metrics(p.font)
		ascent = max(ascent, m.Ascent)
		descent = max(descent, m.Descent)
		height = max(height, m.Height)
	}

	return ascent, max(ascent+descent, height)
}
