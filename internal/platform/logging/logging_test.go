package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/m-mizutani/masq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, b []byte) map[string]any {
	t.Helper()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(b, &entry))

	return entry
}

func TestFromContext(t *testing.T) {
	stored := slog.New(slog.DiscardHandler)

	tests := []struct {
		name string
		ctx  context.Context //nolint:containedctx // table input
		want *slog.Logger
	}{
		{name: "nil context", ctx: nil, want: fallback.Load()},
		{name: "empty context", ctx: context.Background(), want: fallback.Load()},
		{name: "stored logger", ctx: WithContext(context.Background(), stored), want: stored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, FromContext(tt.ctx))
		})
	}
}

func TestWith_Accumulates(t *testing.T) {
	var buf bytes.Buffer

	ctx := WithContext(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx = WithRequestID(ctx, "req-123")
	ctx = WithCorrelationID(ctx, "corr-789")
	ctx = With(ctx, slog.Int("quote", 4))

	FromContext(ctx).InfoContext(ctx, "rendered")

	entry := decodeLine(t, buf.Bytes())
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "corr-789", entry["correlation_id"])
	assert.InDelta(t, 4, entry["quote"], 0)
}

func TestSetDefault(t *testing.T) {
	prev := fallback.Load()
	prevSlog := slog.Default()

	t.Cleanup(func() {
		fallback.Store(prev)
		slog.SetDefault(prevSlog)
	})

	var buf bytes.Buffer

	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	SetDefault(logger)

	assert.Same(t, logger, FromContext(context.Background()))

	slog.Info("via slog")
	assert.Contains(t, buf.String(), "via slog")
}

func TestNewWithWriter_Formats(t *testing.T) {
	tests := []struct {
		format string
		level  string
		json   bool
	}{
		{format: "json", level: "info", json: true},
		{format: "text", level: "debug"},
		{format: "pretty", level: "info"},
		{format: "unknown", level: "info", json: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer

			logger := NewWithWriter(&Config{
				Level:   tt.level,
				Format:  tt.format,
				Service: "quotescreen",
				Version: "1.0.0",
			}, &buf)

			logger.Info("panel ready", slog.String("driver", "png"))

			assert.Contains(t, buf.String(), "panel ready")

			if tt.json {
				entry := decodeLine(t, buf.Bytes())
				assert.Equal(t, "quotescreen", entry["service_name"])
				assert.Equal(t, "1.0.0", entry["service_version"])
				assert.Equal(t, "png", entry["driver"])
			}
		})
	}
}

func TestNewWithWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	var buf bytes.Buffer

	logger := NewWithWriter(&Config{
		Level:  "info",
		Format: "pretty",
		File: FileConfig{
			Enabled:    true,
			Path:       path,
			MaxSizeMB:  1,
			MaxBackups: 1,
			MaxAgeDays: 1,
		},
	}, &buf)

	logger.Info("quote advanced", slog.Int("index", 2))

	assert.Contains(t, buf.String(), "quote advanced")

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	entry := decodeLine(t, bytes.TrimSpace(content))
	assert.Equal(t, "quote advanced", entry["msg"])
	assert.InDelta(t, 2, entry["index"], 0)
}

func TestNewWithWriter_TraceLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "trace", Format: "json"}, &buf)
	logger.Log(context.Background(), LevelTrace, "upload body", slog.Int("bytes", 4096))

	entry := decodeLine(t, buf.Bytes())
	assert.Equal(t, "TRACE", entry["level"])
	assert.Equal(t, "upload body", entry["msg"])

	buf.Reset()

	logger = NewWithWriter(&Config{Level: "debug", Format: "json"}, &buf)
	logger.Log(context.Background(), LevelTrace, "hidden")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace":   LevelTrace,
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, parseLevel(in))
		})
	}
}

func TestSlogToCharmLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, slogToCharmLevel(LevelTrace))
	assert.Equal(t, log.DebugLevel, slogToCharmLevel(slog.LevelDebug))
	assert.Equal(t, log.InfoLevel, slogToCharmLevel(slog.LevelInfo))
	assert.Equal(t, log.WarnLevel, slogToCharmLevel(slog.LevelWarn))
	assert.Equal(t, log.ErrorLevel, slogToCharmLevel(slog.LevelError))
	assert.Equal(t, log.ErrorLevel, slogToCharmLevel(slog.LevelError+4))
}

// recordingHandler keeps the messages it handled.
type recordingHandler struct {
	level slog.Level
	attrs []slog.Attr
	group string
	msgs  *[]string
	err   error
}

func newRecording(level slog.Level) *recordingHandler {
	return &recordingHandler{level: level, msgs: new([]string)}
}

func (h *recordingHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error { //nolint:gocritic // slog.Handler signature
	*h.msgs = append(*h.msgs, r.Message)
	return h.err
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)

	return &c
}

func (h *recordingHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.group = name

	return &c
}

func TestFanout_RoutesByLevel(t *testing.T) {
	terminal := newRecording(slog.LevelWarn)
	file := newRecording(slog.LevelDebug)

	logger := slog.New(fanout{terminal, file})
	logger.Debug("layout done")
	logger.Warn("panel busy")

	assert.Equal(t, []string{"panel busy"}, *terminal.msgs)
	assert.Equal(t, []string{"layout done", "panel busy"}, *file.msgs)

	assert.False(t, fanout{terminal}.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, fanout{terminal, file}.Enabled(context.Background(), slog.LevelInfo))
}

func TestFanout_JoinsErrors(t *testing.T) {
	first := newRecording(slog.LevelInfo)
	first.err = errors.New("disk full")

	second := newRecording(slog.LevelInfo)
	second.err = errors.New("pipe closed")

	err := fanout{first, second}.Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "x", 0))

	require.Error(t, err)
	assert.ErrorIs(t, err, first.err)
	assert.ErrorIs(t, err, second.err)
	assert.Len(t, *second.msgs, 1, "a failing handler does not stop the others")
}

func TestFanout_WithAttrsAndGroup(t *testing.T) {
	a := newRecording(slog.LevelInfo)
	b := newRecording(slog.LevelInfo)

	h := fanout{a, b}.WithAttrs([]slog.Attr{slog.String("panel", "epaper")}).WithGroup("frame")

	out, ok := h.(fanout)
	require.True(t, ok)
	require.Len(t, out, 2)

	for _, child := range out {
		rec, ok := child.(*recordingHandler)
		require.True(t, ok)
		assert.Equal(t, "frame", rec.group)
		assert.Equal(t, "epaper", rec.attrs[0].Value.String())
	}

	assert.Empty(t, a.attrs, "the original handlers are untouched")
}

func TestNewWithWriter_Redacts(t *testing.T) {
	type credentials struct {
		SSID     string
		Password string
	}

	var buf bytes.Buffer

	logger := NewWithWriter(&Config{Level: "info", Format: "json"}, &buf)
	logger.Info("joining network",
		slog.String("ssid", "home"),
		slog.String("password", "hunter22"),
		slog.String("api_key", "dot_app_secret"),
		slog.String("header", "Bearer dot_app_token"),
		slog.Any("creds", credentials{SSID: "office", Password: "letmein"}),
	)

	output := buf.String()
	assert.Contains(t, output, "home")
	assert.Contains(t, output, "office")

	for _, secret := range []string{"hunter22", "dot_app_secret", "dot_app_token", "letmein"} {
		assert.NotContains(t, output, secret)
	}
}

func TestNewReplaceAttr_ExtraOptions(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: NewReplaceAttr(masq.WithFieldName("device_id")),
	}))
	logger.Info("uploading", slog.String("device_id", "ABCD1234"), slog.String("border", "0"))

	assert.NotContains(t, buf.String(), "ABCD1234")
	assert.Contains(t, buf.String(), `"border":"0"`)
}
