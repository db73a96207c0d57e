// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter on blocking operations
//   - Return domain types, never driver or wire types
//   - Error returns use domain error types (ErrStorageWrite, ErrRenderFailure, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"
	"io"
)

// FontID selects one of the faces known to a MetricsProvider.
type FontID int

const (
	// FontBody is the regular face used for quote text.
	FontBody FontID = iota

	// FontBold is the emphasized face used for the attribution line.
	FontBold
)

// String returns the face name used in logs.
func (f FontID) String() string {
	switch f {
	case FontBody:
		return "body"
	case FontBold:
		return "bold"
	default:
		return "unknown"
	}
}

// Extent is the measured size of a text run in pixels.
type Extent struct {
	Width  int
	Height int
}

// FontMetrics describes the vertical geometry of a face in pixels.
type FontMetrics struct {
	// Ascent is the distance from the baseline to the top of the tallest glyph.
	Ascent int

	// Descent is the distance from the baseline to the bottom of the lowest glyph.
	Descent int

	// Height is the recommended line height as reported by the face.
	Height int
}

// LineHeight returns the larger of ascent+descent and the reported height.
func (m FontMetrics) LineHeight() int {
	return max(m.Ascent+m.Descent, m.Height)
}

// MetricsProvider measures text for the layout engine.
// Implementations must be deterministic for a fixed font configuration.
//
// Example usage:
//
//	w := metrics.Measure("hello", ports.FontBody).Width
//	lh := metrics.Metrics(ports.FontBody).LineHeight()
type MetricsProvider interface {
	// Measure returns the advance width and line height of text in the given face.
	Measure(text string, font FontID) Extent

	// Metrics returns the vertical metrics of the given face.
	Metrics(font FontID) FontMetrics
}

// FrameSink accepts draw commands for one full frame and presents them.
// Commit is slow on e-paper hardware and must not be interrupted once started.
type FrameSink interface {
	// Name identifies the sink in logs, health checks and errors.
	Name() string

	// BeginFrame starts a new frame. fullWindow requests a full refresh.
	BeginFrame(fullWindow bool)

	// Clear fills the frame with the background color.
	Clear()

	// DrawRun places text with its baseline origin at (x, y).
	DrawRun(x, y int, text string, font FontID)

	// Commit presents the frame. Returns domain.ErrRenderFailure on failure.
	Commit(ctx context.Context) error
}

// Medium is the fixed-size non-volatile region backing the quote store.
// WriteAt is not durable until Sync returns.
type Medium interface {
	io.ReaderAt
	io.WriterAt

	// Sync flushes pending writes to durable storage.
	Sync() error

	// Size returns the fixed region size in bytes.
	Size() int64

	// Close releases the medium.
	Close() error
}

// Reopener is implemented by media whose backing file another process may
// replace by rename. Reopen switches to the file currently at the path and
// reports whether it differs from the one held before.
type Reopener interface {
	Reopen() (bool, error)
}
