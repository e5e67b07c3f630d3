// Package charts renders ranking, distribution and cluster scatter charts
// into a single multi-page PDF.
package charts

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"provcluster/internal/analysis"
	"provcluster/internal/config"
)

const (
	pageWidth  = 11.69 * vg.Inch
	pageHeight = 8.27 * vg.Inch
)

// series is one named numeric column over the clustered cities.
type series struct {
	name   string
	cities []string
	values []float64
	labels []int
}

// column returns a feature over the clustered cities. Features that were not
// clustered are read from the loaded table, skipping unparseable cells.
func column(cfg *config.Config, res *analysis.Result, name string) (*series, bool) {
	s := &series{name: name}
	scale := 1.0
	if cfg.IsPercent(name) {
		scale = 100
	}
	for d, f := range res.Features {
		if f != name {
			continue
		}
		for i, city := range res.Cities {
			_, label := res.Assignment.City(i)
			s.cities = append(s.cities, city)
			s.values = append(s.values, res.Raw[i][d]*scale)
			s.labels = append(s.labels, label)
		}
		return s, true
	}

	idx := -1
	for c, h := range res.Table.Header {
		if strings.EqualFold(h, name) {
			idx = c
		}
	}
	if idx < 0 {
		return nil, false
	}
	for i, rec := range res.Table.Records {
		row := res.Table.Rows[rec.Row]
		if idx >= len(row) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
		if err != nil || math.IsNaN(v) {
			continue
		}
		_, label := res.Assignment.City(i)
		s.cities = append(s.cities, rec.City)
		s.values = append(s.values, v*scale)
		s.labels = append(s.labels, label)
	}
	return s, len(s.values) > 0
}

func axisLabel(cfg *config.Config, name string) string {
	if cfg.IsPercent(name) {
		return cfg.Label(name) + " (%)"
	}
	return cfg.Label(name)
}

// Render draws every configured chart and writes the PDF. It returns the
// number of pages written.
func Render(cfg *config.Config, res *analysis.Result, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var plots []*plot.Plot
	for _, name := range cfg.Charts.Rankings {
		s, ok := column(cfg, res, name)
		if !ok {
			logger.Warn("ranking feature not found", zap.String("feature", name))
			continue
		}
		top, err := rankingPlot(cfg, s, cfg.Charts.TopN, true)
		if err != nil {
			return 0, err
		}
		bottom, err := rankingPlot(cfg, s, cfg.Charts.TopN, false)
		if err != nil {
			return 0, err
		}
		plots = append(plots, top, bottom)
	}
	for _, name := range cfg.Charts.Histograms {
		s, ok := column(cfg, res, name)
		if !ok {
			logger.Warn("histogram feature not found", zap.String("feature", name))
			continue
		}
		p, err := histogramPlot(cfg, s, cfg.Charts.Bins)
		if err != nil {
			return 0, err
		}
		plots = append(plots, p)
	}
	for _, sc := range cfg.Charts.Scatter {
		x, okX := column(cfg, res, sc.X)
		y, okY := column(cfg, res, sc.Y)
		if !okX || !okY || len(x.values) != len(y.values) {
			logger.Warn("scatter features not found", zap.String("x", sc.X), zap.String("y", sc.Y))
			continue
		}
		p, err := scatterPlot(cfg, x, y, sc.LabelAbove, res.Clusters())
		if err != nil {
			return 0, err
		}
		plots = append(plots, p)
	}
	if len(plots) == 0 {
		return 0, fmt.Errorf("charts: nothing to draw")
	}

	path := cfg.OutputPath(cfg.Charts.Output)
	if err := save(path, plots); err != nil {
		return 0, err
	}
	logger.Info("charts written", zap.String("path", path), zap.Int("pages", len(plots)))
	return len(plots), nil
}

func save(path string, plots []*plot.Plot) error {
	c := vgpdf.New(pageWidth, pageHeight)
	for i, p := range plots {
		if i > 0 {
			c.NextPage()
		}
		p.Draw(draw.New(c))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// rankingPlot draws the n highest (top) or lowest cities as horizontal bars,
// extreme value at the top of the chart.
func rankingPlot(cfg *config.Config, s *series, n int, top bool) (*plot.Plot, error) {
	order := make([]int, len(s.values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if top {
			return s.values[order[a]] > s.values[order[b]]
		}
		return s.values[order[a]] < s.values[order[b]]
	})
	if n <= 0 || n > len(order) {
		n = len(order)
	}
	order = order[:n]

	values := make(plotter.Values, n)
	labels := make([]string, n)
	for i, idx := range order {
		// bars are drawn bottom-up
		values[n-1-i] = s.values[idx]
		labels[n-1-i] = s.cities[idx]
	}

	p := plot.New()
	which := "En Yüksek"
	barColor := color.RGBA{R: 70, G: 130, B: 180, A: 255}
	if !top {
		which = "En Düşük"
		barColor = color.RGBA{R: 220, G: 20, B: 60, A: 255}
	}
	p.Title.Text = fmt.Sprintf("%s %d İl: %s", which, n, cfg.Label(s.name))
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = axisLabel(cfg, s.name)

	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalY(labels...)

	xys := make([]plotter.XY, n)
	texts := make([]string, n)
	for i, v := range values {
		xys[i] = plotter.XY{X: v, Y: float64(i)}
		texts[i] = fmt.Sprintf(" %.2f", v)
	}
	lbls, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, err
	}
	p.Add(lbls)
	p.Add(plotter.NewGrid())

	p.X.Min = math.Min(0, floats.Min(values))
	p.X.Max = floats.Max(values) * 1.15
	return p, nil
}

func histogramPlot(cfg *config.Config, s *series, bins int) (*plot.Plot, error) {
	if bins <= 0 {
		bins = 20
	}
	p := plot.New()
	mean, std := stat.MeanStdDev(s.values, nil)
	p.Title.Text = fmt.Sprintf("Dağılım: %s (ort. %.2f, s.s. %.2f)", cfg.Label(s.name), mean, std)
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = axisLabel(cfg, s.name)
	p.Y.Label.Text = "İl Sayısı"

	h, err := plotter.NewHist(plotter.Values(s.values), bins)
	if err != nil {
		return nil, err
	}
	h.FillColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	p.Add(h)
	p.Add(plotter.NewGrid())
	return p, nil
}

// scatterPlot colours cities by cluster. Points above labelAbove, or more
// than one standard deviation above the mean when it is nil, are named.
func scatterPlot(cfg *config.Config, x, y *series, labelAbove *float64, k int) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s / %s", cfg.Label(x.name), cfg.Label(y.name))
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = axisLabel(cfg, x.name)
	p.Y.Label.Text = axisLabel(cfg, y.name)
	p.Legend.Top = true

	palette := Palette(cfg.Map.Colors)
	for j := 0; j < k; j++ {
		var pts plotter.XYs
		for i, l := range x.labels {
			if l == j {
				pts = append(pts, plotter.XY{X: x.values[i], Y: y.values[i]})
			}
		}
		if len(pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = palette[j%len(palette)]
		sc.GlyphStyle.Radius = vg.Points(5)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add(fmt.Sprintf("Küme %d", j), sc)
	}

	threshold := 0.0
	if labelAbove != nil {
		threshold = *labelAbove
		if cfg.IsPercent(y.name) {
			threshold *= 100
		}
	} else {
		mean, std := stat.MeanStdDev(y.values, nil)
		threshold = mean + std
	}
	var xys []plotter.XY
	var texts []string
	for i, v := range y.values {
		if v > threshold {
			xys = append(xys, plotter.XY{X: x.values[i], Y: v})
			texts = append(texts, x.cities[i])
		}
	}
	if len(xys) > 0 {
		lbls, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
		if err != nil {
			return nil, err
		}
		p.Add(lbls)
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

// Palette parses "#rrggbb" colours, falling back to grey on bad input.
func Palette(hex []string) []color.Color {
	if len(hex) == 0 {
		hex = []string{"#e41a1c", "#377eb8", "#4daf4a", "#984ea3"}
	}
	out := make([]color.Color, len(hex))
	for i, h := range hex {
		var r, g, b uint8
		if _, err := fmt.Sscanf(h, "#%02x%02x%02x", &r, &g, &b); err != nil {
			out[i] = color.RGBA{R: 128, G: 128, B: 128, A: 255}
			continue
		}
		out[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}
