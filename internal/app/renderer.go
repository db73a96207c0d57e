package app

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jostojic/quotescreen/internal/domain"
	"github.com/jostojic/quotescreen/internal/layout"
	"github.com/jostojic/quotescreen/internal/platform/telemetry"
	"github.com/jostojic/quotescreen/internal/ports"
)

// Status messages shown instead of a quote.
const (
	MessageStarting = "Quote Display Starting..."
	MessageEmpty    = "No quotes available"
)

// RendererConfig configures a Renderer.
type RendererConfig struct {
	// Area is the drawable rectangle inside the panel margins.
	Area layout.Rect

	// Policy decides what happens to text past the bottom of Area.
	// Only the first page is drawn under Paginate.
	Policy layout.Policy

	Logger  *slog.Logger
	Metrics *telemetry.Collectors
}

// Renderer lays out one quote and commits it as a full frame.
// It is not safe for concurrent use; Service serializes calls.
type Renderer struct {
	sink    ports.FrameSink
	fonts   ports.MetricsProvider
	area    layout.Rect
	policy  layout.Policy
	logger  *slog.Logger
	metrics *telemetry.Collectors
	tracer  trace.Tracer
}

// NewRenderer creates a renderer drawing on sink with glyph metrics from fonts.
func NewRenderer(sink ports.FrameSink, fonts ports.MetricsProvider, cfg RendererConfig) *Renderer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Renderer{
		sink:    sink,
		fonts:   fonts,
		area:    cfg.Area,
		policy:  cfg.Policy,
		logger:  logger.With(slog.String("component", "app.Renderer")),
		metrics: cfg.Metrics,
		tracer:  otel.Tracer("github.com/jostojic/quotescreen/internal/app"),
	}
}

// Render draws a stored quote: the body in the regular face and the
// attribution, if any, on its own line in the bold face.
func (r *Renderer) Render(ctx context.Context, quote string) error {
	return r.draw(ctx, "quote", quoteSpans(quote))
}

// ShowMessage draws a status message in the regular face.
func (r *Renderer) ShowMessage(ctx context.Context, msg string) error {
	return r.draw(ctx, "message", []layout.Span{{Text: msg, Font: ports.FontBody}})
}

// Layout returns the placement a quote would get, without drawing it.
// opts override the configured policy.
func (r *Renderer) Layout(quote string, opts ...layout.Option) *layout.Result {
	opts = append([]layout.Option{layout.WithPolicy(r.policy)}, opts...)
	return layout.LayoutSpans(quoteSpans(quote), r.area, r.fonts, opts...)
}

func quoteSpans(quote string) []layout.Span {
	body, author := domain.SplitAttribution(quote)

	spans := []layout.Span{{Text: body, Font: ports.FontBody}}
	if author != "" {
		spans = append(spans, layout.Span{Text: author, Font: ports.FontBold, BreakBefore: true})
	}

	return spans
}

func (r *Renderer) draw(ctx context.Context, kind string, spans []layout.Span) error {
	ctx, span := r.tracer.Start(ctx, "render "+kind,
		trace.WithAttributes(attribute.String("sink", r.sink.Name())),
	)
	defer span.End()

	start := time.Now()
	result := layout.LayoutSpans(spans, r.area, r.fonts, layout.WithPolicy(r.policy))

	r.sink.BeginFrame(true)
	r.sink.Clear()

	runs := 0
	for run := range result.Runs() {
		if run.Page > 0 {
			break
		}

		r.sink.DrawRun(run.X, run.Y, run.Text, run.Font)
		runs++
	}

	if result.Overflow() || result.Pages() > 1 {
		r.logger.DebugContext(ctx, "text does not fit the display area",
			slog.Int("pages", result.Pages()),
			slog.Bool("truncated", result.Overflow()),
		)
	}

	// A commit is never interrupted: the panel would be left half drawn.
	err := r.sink.Commit(context.WithoutCancel(ctx))
	r.metrics.ObserveRender(err, time.Since(start))

	span.SetAttributes(attribute.Int("runs", runs))

	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		if !domain.IsRenderFailure(err) {
			err = domain.NewRenderError(r.sink.Name(), err)
		}

		return err
	}

	return nil
}
