// Package analysis runs the clustering pipeline over a loaded feature table:
// standardize, cluster, pick representatives and summarize each cluster.
package analysis

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"provcluster/internal/cluster"
	"provcluster/internal/config"
	"provcluster/internal/features"
)

// CityDistance is one representative city and its distance to the centroid
// in scaled feature space.
type CityDistance struct {
	City     string
	Distance float64
}

// Result is everything downstream renderers need from one run.
type Result struct {
	RunID    string
	Features []string
	Table    *features.Table

	// Raw holds the unscaled values of the clustered cities, in Cities order.
	Raw    [][]float64
	Cities []string
	Scaled *mat.Dense

	Scaler     *cluster.Scaler
	Model      *cluster.Model
	Assignment Assignment

	Summaries       []cluster.Summary
	Representatives [][]CityDistance
}

// Excluded is the number of rows left out because a required feature was
// missing or not a finite number.
func (r *Result) Excluded() int {
	return len(r.Table.Missing)
}

// Clusters returns K.
func (r *Result) Clusters() int {
	return len(r.Summaries)
}

// Schema builds the loader schema from the feature configuration.
func Schema(cfg *config.Config) features.Schema {
	return features.Schema{
		IDColumn: cfg.Features.IDColumn,
		Features: cfg.Features.Columns,
		Aliases:  cfg.Features.Aliases,
	}
}

// Analyze loads the configured feature table and runs the pipeline on it.
func Analyze(cfg *config.Config, logger *zap.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	table, err := features.LoadFile(cfg.Paths.Input, Schema(cfg))
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return Run(cfg.Clustering.Options(), table, logger)
}

// Run clusters the complete records of table. Configuration errors are
// reported before any computation. Errors from later stages keep their
// type and are wrapped with the stage name.
func Run(opts cluster.Options, table *features.Table, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:    uuid.NewString(),
		Features: table.Features,
		Table:    table,
		Raw:      table.Matrix(),
		Cities:   table.Cities(),
	}
	logger = logger.With(zap.String("run_id", res.RunID))

	for _, m := range table.Missing {
		logger.Warn("row excluded from clustering",
			zap.String("city", m.City),
			zap.String("feature", m.Feature),
			zap.String("value", m.Value))
	}
	for _, city := range table.Duplicates {
		logger.Warn("duplicate city ignored", zap.String("city", city))
	}
	logger.Info("feature table loaded",
		zap.Int("records", len(res.Raw)),
		zap.Int("excluded", len(table.Missing)),
		zap.Strings("features", table.Features))

	if len(res.Raw) < opts.Clusters {
		return nil, fmt.Errorf("cluster: %w", &cluster.InsufficientDataError{Records: len(res.Raw), Clusters: opts.Clusters})
	}

	scaler, scaled, err := cluster.FitTransform(table.Features, res.Raw)
	if err != nil {
		return nil, fmt.Errorf("scale: %w", err)
	}
	res.Scaler, res.Scaled = scaler, scaled

	km, err := cluster.NewKMeans(opts, logger)
	if err != nil {
		return nil, err
	}
	model, err := km.Fit(scaled)
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}
	res.Model = model
	res.Assignment = NewAssignment(res.Cities, model.Labels)

	res.Summaries = cluster.Summarize(model.Labels, res.Raw, opts.Clusters)
	for _, reps := range cluster.AllRepresentatives(scaled, model, opts.Representatives) {
		out := make([]CityDistance, len(reps))
		for i, r := range reps {
			out[i] = CityDistance{City: res.Cities[r.Row], Distance: r.Distance}
		}
		res.Representatives = append(res.Representatives, out)
	}

	logger.Info("analysis finished",
		zap.Ints("sizes", model.Sizes()),
		zap.Float64("inertia", model.Inertia),
		zap.Int("reseeds", model.Reseeds))
	return res, nil
}
