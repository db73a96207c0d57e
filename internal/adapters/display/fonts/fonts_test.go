package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/jostojic/quotescreen/internal/ports"
)

func TestLoad_Defaults(t *testing.T) {
	set, err := Load(Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = set.Close() })

	body := set.Metrics(ports.FontBody)
	assert.Positive(t, body.Ascent)
	assert.Positive(t, body.Descent)
	assert.GreaterOrEqual(t, body.LineHeight(), body.Ascent+body.Descent)

	assert.Equal(t, float64(DefaultBodySize), set.Face(ports.FontBody).Size)
	assert.Equal(t, float64(DefaultBoldSize), set.Face(ports.FontBold).Size)
	assert.Equal(t, float64(DefaultDPI), set.Face(ports.FontBody).DPI)
	assert.NotEmpty(t, set.Face(ports.FontBold).TTF)
}

func TestMeasure_Deterministic(t *testing.T) {
	set, err := Load(Config{})
	require.NoError(t, err)

	a := set.Measure("Innovation distinguishes", ports.FontBody)
	b := set.Measure("Innovation distinguishes", ports.FontBody)
	assert.Equal(t, a, b)

	assert.Zero(t, set.Measure("", ports.FontBody).Width)
	assert.Greater(t, set.Measure("wide words", ports.FontBody).Width, set.Measure("wide", ports.FontBody).Width)
	assert.Positive(t, set.Measure(" ", ports.FontBody).Width)
}

func TestMeasure_ProportionalNotFixedWidth(t *testing.T) {
	set, err := Load(Config{})
	require.NoError(t, err)

	assert.NotEqual(t,
		set.Measure("iiii", ports.FontBody).Width,
		set.Measure("MMMM", ports.FontBody).Width,
	)
}

func TestLoad_SizeScalesMetrics(t *testing.T) {
	small, err := Load(Config{BodySize: 10})
	require.NoError(t, err)

	large, err := Load(Config{BodySize: 28})
	require.NoError(t, err)

	assert.Greater(t, large.Metrics(ports.FontBody).Ascent, small.Metrics(ports.FontBody).Ascent)
	assert.Greater(t, large.Measure("quote", ports.FontBody).Width, small.Measure("quote", ports.FontBody).Width)
}

func TestLoad_TrueTypeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.ttf")
	require.NoError(t, os.WriteFile(path, gomono.TTF, 0o600))

	set, err := Load(Config{BodyPath: path})
	require.NoError(t, err)

	assert.Equal(t,
		set.Measure("iiii", ports.FontBody).Width,
		set.Measure("MMMM", ports.FontBody).Width,
		"monospaced face gives equal widths",
	)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(Config{BodyPath: filepath.Join(t.TempDir(), "missing.ttf")})
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.ttf")
	require.NoError(t, os.WriteFile(bad, []byte("not a font"), 0o600))

	_, err = Load(Config{BoldPath: bad})
	require.Error(t, err)
}

func TestFace_UnknownFallsBackToBody(t *testing.T) {
	set, err := Load(Config{})
	require.NoError(t, err)

	assert.Same(t, set.Face(ports.FontBody), set.Face(ports.FontID(42)))
}
