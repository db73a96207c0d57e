package display

import (
	"fmt"
	"log/slog"
)

// Local panel drivers.
const (
	DriverEPaper = "epaper"
	DriverPNG    = "png"
	DriverLog    = "log"
)

// Config selects and sizes a local panel.
type Config struct {
	Driver  string
	Width   int
	Height  int
	PNGPath string
	EPaper  EPaperConfig
}

// Open creates the configured local panel.
func Open(cfg Config, logger *slog.Logger) (Panel, error) {
	switch cfg.Driver {
	case DriverEPaper:
		p, err := OpenEPaper(cfg.EPaper, logger)
		if err != nil {
			return nil, err
		}

		return p, nil
	case DriverPNG:
		return NewPNGFile(cfg.PNGPath, cfg.Width, cfg.Height), nil
	case DriverLog, "":
		return NewLogPanel(cfg.Width, cfg.Height, logger), nil
	default:
		return nil, fmt.Errorf("unknown display driver %q", cfg.Driver)
	}
}
