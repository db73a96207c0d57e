// Package layout places text inside a drawable rectangle using greedy word
// wrap. Widths and line heights come from a ports.MetricsProvider, so the
// result follows the real glyph geometry of the configured faces.
//
// The result is lazy: nothing is measured until Runs is iterated or
// Overflow/Pages is queried, and every iteration recomputes from the source.
package layout

import (
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/jostojic/quotescreen/internal/ports"
)

// Rect is the drawable rectangle in pixels.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Bottom returns the first row below the rectangle.
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Right returns the first column right of the rectangle.
func (r Rect) Right() int {
	return r.X + r.Width
}

// Empty reports whether the rectangle has no drawable area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Policy selects what happens when text runs past the bottom of the area.
type Policy int

const (
	// Truncate drops the remaining text and reports overflow.
	Truncate Policy = iota

	// Paginate continues on a new page at the top of the area.
	Paginate
)

// ParsePolicy accepts "truncate" or "paginate". An empty name is Truncate.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(name) {
	case "", "truncate":
		return Truncate, nil
	case "paginate":
		return Paginate, nil
	default:
		return Truncate, fmt.Errorf("unknown overflow policy %q", name)
	}
}

// String returns the policy name.
func (p Policy) String() string {
	if p == Paginate {
		return "paginate"
	}

	return "truncate"
}

// Span is a piece of source text set in one face.
type Span struct {
	Text string
	Font ports.FontID

	// BreakBefore starts the span on a new line.
	BreakBefore bool
}

// Run is one placed word. (X, Y) is the baseline origin.
type Run struct {
	X, Y int
	Text string
	Font ports.FontID

	// Page is the zero-based page index. Always 0 under Truncate.
	Page int

	// Clipped marks a word wider than the area, placed at line start
	// and overflowing the right edge.
	Clipped bool
}

// Option configures a layout.
type Option func(*options)

type options struct {
	policy Policy
	font   ports.FontID
}

// WithPolicy sets the bottom overflow policy. The default is Truncate.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithFont sets the face used by Layout. The default is ports.FontBody.
func WithFont(f ports.FontID) Option {
	return func(o *options) { o.font = f }
}

// Result is a lazy, restartable sequence of placed runs.
type Result struct {
	tokens  []token
	area    Rect
	metrics ports.MetricsProvider
	policy  Policy

	once     sync.Once
	overflow bool
	pages    int
}

// Layout places text in area using a single face.
func Layout(text string, area Rect, metrics ports.MetricsProvider, opts ...Option) *Result {
	o := applyOptions(opts)
	return newResult([]Span{{Text: text, Font: o.font}}, area, metrics, o)
}

// LayoutSpans places multi-face text in area.
func LayoutSpans(spans []Span, area Rect, metrics ports.MetricsProvider, opts ...Option) *Result {
	return newResult(spans, area, metrics, applyOptions(opts))
}

func applyOptions(opts []Option) options {
	o := options{policy: Truncate, font: ports.FontBody}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

func newResult(spans []Span, area Rect, metrics ports.MetricsProvider, o options) *Result {
	return &Result{
		tokens:  tokenize(spans),
		area:    area,
		metrics: metrics,
		policy:  o.policy,
	}
}

// Runs returns the placed runs in reading order. Each call recomputes.
func (r *Result) Runs() iter.Seq[Run] {
	return func(yield func(Run) bool) {
		r.walk(yield)
	}
}

// Collect returns all runs as a slice.
func (r *Result) Collect() []Run {
	var out []Run
	for run := range r.Runs() {
		out = append(out, run)
	}

	return out
}

// Overflow reports whether text was dropped at the bottom of the area.
func (r *Result) Overflow() bool {
	r.summarize()
	return r.overflow
}

// Pages returns the number of pages holding at least one run.
func (r *Result) Pages() int {
	r.summarize()
	return r.pages
}

func (r *Result) summarize() {
	r.once.Do(func() {
		r.overflow, r.pages = r.walk(func(Run) bool { return true })
	})
}

// token is a word or a forced break.
type token struct {
	text   string
	font   ports.FontID
	forced bool
}

func tokenize(spans []Span) []token {
	var tokens []token

	for _, span := range spans {
		if span.BreakBefore && len(tokens) > 0 {
			tokens = append(tokens, token{font: span.Font, forced: true})
		}

		for i, line := range strings.Split(span.Text, "\n") {
			if i > 0 {
				tokens = append(tokens, token{font: span.Font, forced: true})
			}

			for _, word := range strings.Fields(line) {
				tokens = append(tokens, token{text: word, font: span.Font})
			}
		}
	}

	// Trailing breaks place nothing.
	for len(tokens) > 0 && tokens[len(tokens)-1].forced {
		tokens = tokens[:len(tokens)-1]
	}

	return tokens
}
