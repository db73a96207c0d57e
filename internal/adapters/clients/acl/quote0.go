package acl

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jostojic/quotescreen/internal/adapters/clients"
	"github.com/jostojic/quotescreen/internal/domain"
	"github.com/jostojic/quotescreen/internal/platform/logging"
)

const (
	// Quote0ServiceName names the device in logs, health checks and errors.
	Quote0ServiceName = "quote0"

	// Quote0DefaultBaseURL is the public API host.
	Quote0DefaultBaseURL = "https://dot.mindreset.tech"

	// Quote0Width and Quote0Height are the panel size the API accepts.
	Quote0Width  = 296
	Quote0Height = 152

	quote0ImagePath = "/api/open/image"
)

// Quote0Config configures the Quote/0 panel.
type Quote0Config struct {
	// Client is the HTTP client. Its BaseURL points at the API host and its
	// AuthFunc sets the bearer token.
	Client *clients.Client

	// DeviceID is the device serial number.
	DeviceID string

	// Border is the screen edge color: 0 white, 1 black.
	Border int

	// DitherType is NONE, DIFFUSION or ORDERED. Frames are already
	// black and white, so NONE is the default.
	DitherType string

	// Limiter gates uploads. Defaults to one request per second.
	Limiter *rate.Limiter

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Quote0Panel pushes frames to a Quote/0 device through the cloud API.
type Quote0Panel struct {
	BaseAdapter

	deviceID string
	border   int
	dither   string
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// imageRequest is the /api/open/image payload.
type imageRequest struct {
	RefreshNow *bool  `json:"refreshNow,omitempty"`
	DeviceID   string `json:"deviceId"`
	Image      string `json:"image"`
	Border     int    `json:"border,omitempty"`
	DitherType string `json:"ditherType,omitempty"`
}

// apiResponse is the envelope returned on 2xx.
type apiResponse struct {
	Code    any    `json:"code"`
	Message string `json:"message"`
}

// NewQuote0Panel creates the panel.
func NewQuote0Panel(cfg Quote0Config) (*Quote0Panel, error) {
	if cfg.Client == nil {
		return nil, errors.New("quote0: client is required")
	}

	if strings.TrimSpace(cfg.DeviceID) == "" {
		return nil, domain.NewValidationError("device_id", "is required")
	}

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(time.Second), 1)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dither := strings.ToUpper(strings.TrimSpace(cfg.DitherType))
	if dither == "" {
		dither = "NONE"
	}

	return &Quote0Panel{
		BaseAdapter: NewBaseAdapter(cfg.Client, Quote0ServiceName),
		deviceID:    cfg.DeviceID,
		border:      cfg.Border,
		dither:      dither,
		limiter:     limiter,
		logger:      logger.With(slog.String("device_id", cfg.DeviceID)),
	}, nil
}

// Name returns "quote0".
func (p *Quote0Panel) Name() string {
	return Quote0ServiceName
}

// Bounds returns the 296x152 frame the API accepts.
func (p *Quote0Panel) Bounds() image.Rectangle {
	return image.Rect(0, 0, Quote0Width, Quote0Height)
}

// Present encodes the frame as PNG and uploads it. full maps to refreshNow.
func (p *Quote0Panel) Present(ctx context.Context, frame *image.Gray, full bool) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return domain.NewUnavailableError(Quote0ServiceName, "rate limit wait: "+err.Error())
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}

	payload, err := json.Marshal(imageRequest{
		RefreshNow: &full,
		DeviceID:   p.deviceID,
		Image:      base64.StdEncoding.EncodeToString(buf.Bytes()),
		Border:     p.border,
		DitherType: p.dither,
	})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	p.logger.Log(ctx, logging.LevelTrace, "uploading frame",
		slog.Int("png_bytes", buf.Len()),
		slog.Bool("refresh_now", full),
	)

	body, err := p.PostJSON(ctx, quote0ImagePath, payload, "send image")
	if err != nil {
		return err
	}

	resp, err := DecodeResponse[apiResponse](body)
	if err != nil {
		// Some deployments answer with plain text on success.
		p.logger.DebugContext(ctx, "non-json response from device api", slog.Any("error", err))
		return nil
	}

	code := (&ErrorResponse{Code: resp.Code}).GetCode()

	return MapAPICode(code, resp.Message, Quote0ServiceName)
}

// Check reports the device API as unavailable while the circuit is open.
func (p *Quote0Panel) Check(context.Context) error {
	if p.Client().CircuitState() == clients.StateOpen {
		return domain.NewUnavailableError(Quote0ServiceName, "circuit breaker open")
	}

	return nil
}
