package charts

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"provcluster/internal/analysis"
	"provcluster/internal/config"
)

const cities = `City,Avg_Household_Size,Pct_Divorced,Pct_Single,Pct_Married
Adana,3.31,0.021,0.29,0.62
Ankara,2.98,0.034,0.31,0.58
Batman,5.01,0.008,0.36,0.59
Bayburt,3.10,0.012,0.30,0.61
Bitlis,4.91,0.006,0.37,0.60
Çorum,2.86,0.019,0.24,0.66
İzmir,2.83,0.041,0.30,0.57
Şırnak,5.45,0.005,0.39,0.57
`

func analyzed(t *testing.T) (*config.Config, *analysis.Result) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "validated.csv")
	require.NoError(t, os.WriteFile(input, []byte(cities), 0o644))

	cfg := config.DefaultConfig()
	cfg.Paths.Input = input
	cfg.Paths.OutputDir = filepath.Join(dir, "output")
	res, err := analysis.Analyze(cfg, nil)
	require.NoError(t, err)
	return cfg, res
}

func TestRender(t *testing.T) {
	cfg, res := analyzed(t)
	cfg.Charts.TopN = 5
	cfg.Charts.Rankings = append(cfg.Charts.Rankings, "Pct_Married", "Median_Age")

	core, logs := observer.New(zapcore.WarnLevel)
	pages, err := Render(cfg, res, zap.New(core))
	require.NoError(t, err)
	// 3 rankings x 2, 1 histogram, 1 scatter
	assert.Equal(t, 8, pages)
	assert.Equal(t, 1, logs.FilterMessage("ranking feature not found").Len())

	data, err := os.ReadFile(cfg.OutputPath(cfg.Charts.Output))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRender_NothingToDraw(t *testing.T) {
	cfg, res := analyzed(t)
	cfg.Charts.Rankings = []string{"Unknown"}
	cfg.Charts.Histograms = nil
	cfg.Charts.Scatter = nil

	_, err := Render(cfg, res, nil)
	assert.Error(t, err)
}

func TestColumn(t *testing.T) {
	cfg, res := analyzed(t)

	s, ok := column(cfg, res, "Pct_Divorced")
	require.True(t, ok)
	assert.Len(t, s.values, 8)
	assert.InDelta(t, 2.1, s.values[0], 1e-9)

	s, ok = column(cfg, res, "Pct_Married")
	require.True(t, ok)
	assert.Equal(t, "Adana", s.cities[0])
	assert.InDelta(t, 62, s.values[0], 1e-9)

	_, ok = column(cfg, res, "Median_Age")
	assert.False(t, ok)
}

func TestPalette(t *testing.T) {
	p := Palette([]string{"#e41a1c", "nope"})
	assert.Equal(t, color.RGBA{R: 0xe4, G: 0x1a, B: 0x1c, A: 255}, p[0])
	assert.Equal(t, color.RGBA{R: 128, G: 128, B: 128, A: 255}, p[1])
	assert.Len(t, Palette(nil), 4)
}
