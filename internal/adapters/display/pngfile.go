package display

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// PNGFile writes each frame to a PNG file, replacing it atomically.
// Useful on a workstation without a panel attached.
type PNGFile struct {
	path   string
	bounds image.Rectangle
}

// NewPNGFile creates a panel of the given size writing to path.
func NewPNGFile(path string, width, height int) *PNGFile {
	return &PNGFile{path: path, bounds: image.Rect(0, 0, width, height)}
}

// Name returns "png".
func (p *PNGFile) Name() string {
	return "png"
}

// Bounds returns the configured frame size.
func (p *PNGFile) Bounds() image.Rectangle {
	return p.bounds
}

// Present encodes frame next to the target and renames it into place.
func (p *PNGFile) Present(ctx context.Context, frame *image.Gray, _ bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return writeAtomic(p.path, func(f *os.File) error {
		return png.Encode(f, frame)
	})
}

// Path returns the output file.
func (p *PNGFile) Path() string {
	return p.path
}

func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}

	return nil
}
