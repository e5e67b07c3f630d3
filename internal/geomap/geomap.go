package geomap

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"provcluster/internal/analysis"
	"provcluster/internal/config"
	"provcluster/internal/report"
)

const mapTitle = "Türkiye Aile Yapısı Kümeleri"

// Render loads the boundaries, joins the clustering result onto them and
// writes the enriched GeoJSON, the Leaflet map and the explorer page.
func Render(ctx context.Context, cfg *config.Config, res *analysis.Result, logger *zap.Logger) (*Join, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := 30 * time.Second
	if cfg.Map.Timeout != "" {
		d, err := time.ParseDuration(cfg.Map.Timeout)
		if err != nil {
			return nil, fmt.Errorf("map.timeout: %w", err)
		}
		timeout = d
	}

	fc, src, err := LoadBoundaries(ctx, cfg.Map.GeoJSON, timeout, logger)
	if err != nil {
		return nil, err
	}
	j := Enrich(fc, cfg, res)
	logger.Info("boundaries joined",
		zap.String("source", src),
		zap.Int("matched", j.Matched),
		zap.Int("unmatched", len(j.Unmatched)))
	for _, name := range j.Unmatched {
		logger.Warn("province has no cluster", zap.String("name", name))
	}
	for _, city := range j.Missing {
		logger.Warn("city has no boundary", zap.String("city", city))
	}

	profiles := report.Profiles(res.Summaries, res.Features, cfg.Report.Rules)
	profileNames := make([]string, len(profiles))
	legend := make([]LegendEntry, 0, len(profiles)+1)
	palette := cfg.Map.Colors
	if len(palette) == 0 {
		palette = []string{"#e41a1c", "#377eb8", "#4daf4a", "#984ea3"}
	}
	for i, p := range profiles {
		profileNames[i] = p.Name
		legend = append(legend, LegendEntry{Color: palette[i%len(palette)], Label: p.Name})
	}
	legend = append(legend, LegendEntry{Color: "#d3d3d3", Label: NoData})

	tooltip := make([]TooltipField, 0, len(cfg.Map.Tooltip))
	for _, f := range cfg.Map.Tooltip {
		tf := TooltipField{Property: f, Label: cfg.Label(f)}
		if cfg.IsPercent(f) {
			tf.Suffix = "%"
		}
		tooltip = append(tooltip, tf)
	}

	if name := cfg.Map.GeoJSONOut; name != "" {
		if err := writeFile(cfg.OutputPath(name), func(w io.Writer) error {
			data, err := fc.MarshalJSON()
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}); err != nil {
			return j, err
		}
	}
	if name := cfg.Map.HTML; name != "" {
		if err := writeFile(cfg.OutputPath(name), func(w io.Writer) error {
			return WriteLeaflet(w, fc, mapTitle, cfg.Map.Center, cfg.Map.Zoom, palette, legend, tooltip)
		}); err != nil {
			return j, err
		}
	}
	if name := cfg.Map.ChartsHTML; name != "" {
		if err := writeFile(cfg.OutputPath(name), func(w io.Writer) error {
			return WriteExplorer(w, mapTitle, j, profileNames, palette)
		}); err != nil {
			return j, err
		}
	}
	return j, nil
}

// ReadEnriched loads a previously written enriched GeoJSON.
func ReadEnriched(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return geojson.UnmarshalFeatureCollection(data)
}

func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
