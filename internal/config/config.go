// Package config holds the provcluster run configuration. One Config is
// loaded per invocation and handed to every stage.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"provcluster/internal/cluster"
)

// Config holds all provcluster configuration.
type Config struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`

	Clustering ClusteringConfig `yaml:"clustering"`
	Features   FeaturesConfig   `yaml:"features"`
	Paths      PathsConfig      `yaml:"paths"`

	Ingest IngestConfig `yaml:"ingest"`
	Merge  MergeConfig  `yaml:"merge"`

	Report ReportConfig `yaml:"report"`
	Charts ChartsConfig `yaml:"charts"`
	Map    MapConfig    `yaml:"map"`

	Logging LoggingConfig `yaml:"logging"`
}

// ClusteringConfig configures the k-means core.
type ClusteringConfig struct {
	Clusters        int    `yaml:"clusters"`
	Seed            int64  `yaml:"seed"`
	Restarts        int    `yaml:"restarts"`
	MaxIterations   int    `yaml:"max_iterations"`
	Representatives int    `yaml:"representatives"`
	Init            string `yaml:"init"` // k-means++ or random
}

// FeaturesConfig selects the clustering features.
type FeaturesConfig struct {
	IDColumn string              `yaml:"id_column"`
	Columns  []string            `yaml:"columns"`
	Aliases  map[string][]string `yaml:"aliases"`
	// Percent lists fractional features rendered as percentages.
	Percent []string `yaml:"percent"`
	// Labels are display names used in reports and tooltips.
	Labels map[string]string `yaml:"labels"`
}

// PathsConfig locates inputs and outputs.
type PathsConfig struct {
	Input        string `yaml:"input"`
	OutputDir    string `yaml:"output_dir"`
	ValidatedDir string `yaml:"validated_dir"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// Options converts the clustering section for the core.
func (c ClusteringConfig) Options() cluster.Options {
	return cluster.Options{
		Clusters:        c.Clusters,
		Restarts:        c.Restarts,
		MaxIterations:   c.MaxIterations,
		Seed:            c.Seed,
		Representatives: c.Representatives,
		Init:            c.Init,
	}
}

// OutputPath joins name onto the output directory unless it is absolute.
func (c *Config) OutputPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.OutputDir, name)
}

// ValidatedPath joins name onto the validated-data directory.
func (c *Config) ValidatedPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.ValidatedDir, name)
}

// IsPercent reports whether a feature is stored as a fraction.
func (c *Config) IsPercent(feature string) bool {
	for _, p := range c.Features.Percent {
		if p == feature {
			return true
		}
	}
	return false
}

// Label returns the display name of a feature.
func (c *Config) Label(feature string) string {
	if l, ok := c.Features.Labels[feature]; ok && l != "" {
		return l
	}
	return feature
}

// Load reads a YAML config on top of the defaults of its variant, then
// applies .env and environment overrides. A missing file yields defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		if err := cfg.loadEnv(filepath.Dir(path)); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var probe struct {
		Variant string `yaml:"variant"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg, err := Variant(probe.Variant)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.loadEnv(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the configuration before any computation starts.
// Clustering problems surface as *cluster.InvalidConfigurationError.
func (c *Config) Validate() error {
	if err := c.Clustering.Options().Validate(); err != nil {
		return err
	}
	if len(c.Features.Columns) == 0 {
		return &cluster.InvalidConfigurationError{Field: "features.columns", Value: c.Features.Columns, Reason: "at least one feature is required"}
	}
	if c.Paths.Input == "" {
		return &cluster.InvalidConfigurationError{Field: "paths.input", Value: "", Reason: "input feature table required"}
	}
	for i, r := range c.Report.Rules {
		if r.Op != ">" && r.Op != "<" {
			return &cluster.InvalidConfigurationError{Field: fmt.Sprintf("report.rules[%d].op", i), Value: r.Op, Reason: "must be > or <"}
		}
	}
	switch c.Merge.How {
	case "", "inner", "outer":
	default:
		return &cluster.InvalidConfigurationError{Field: "merge.how", Value: c.Merge.How, Reason: "must be inner or outer"}
	}
	return nil
}
