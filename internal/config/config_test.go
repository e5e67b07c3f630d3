package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"provcluster/internal/cluster"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 4, cfg.Clustering.Clusters)
	assert.Equal(t, int64(42), cfg.Clustering.Seed)
	assert.Equal(t, 10, cfg.Clustering.Restarts)
	assert.Equal(t, []string{"Avg_Household_Size", "Pct_Divorced", "Pct_Never_Married"}, cfg.Features.Columns)
	assert.True(t, cfg.IsPercent("Pct_Divorced"))
	assert.False(t, cfg.IsPercent("Avg_Household_Size"))
	assert.Equal(t, "Bekar Oranı", cfg.Label("Pct_Never_Married"))
	assert.Equal(t, "Unknown", cfg.Label("Unknown"))
	assert.Equal(t, filepath.Join("output", "city_clusters.csv"), cfg.OutputPath(cfg.Report.Assignments))
}

func TestVariant(t *testing.T) {
	full, err := Variant(VariantFull)
	require.NoError(t, err)
	require.NoError(t, full.Validate())
	assert.Len(t, full.Features.Columns, 6)
	assert.Equal(t, "city_demographics_final.csv", full.Paths.Input)
	assert.Equal(t, "outer", full.Merge.How)
	for _, r := range full.Report.Rules {
		assert.NotEqual(t, "Pct_Never_Married", r.Feature)
	}

	// The full preset must not leak into later defaults.
	assert.Equal(t, "Pct_Never_Married", DefaultConfig().Report.Rules[4].Feature)

	_, err = Variant("bogus")
	var cfgErr *cluster.InvalidConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "variant", cfgErr.Field)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"clusters", func(c *Config) { c.Clustering.Clusters = 1 }, "clusters"},
		{"restarts", func(c *Config) { c.Clustering.Restarts = 0 }, "restarts"},
		{"init", func(c *Config) { c.Clustering.Init = "forgy" }, "init"},
		{"features", func(c *Config) { c.Features.Columns = nil }, "features.columns"},
		{"input", func(c *Config) { c.Paths.Input = "" }, "paths.input"},
		{"rule op", func(c *Config) { c.Report.Rules[0].Op = ">=" }, "report.rules[0].op"},
		{"merge", func(c *Config) { c.Merge.How = "left" }, "merge.how"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			var cfgErr *cluster.InvalidConfigurationError
			require.ErrorAs(t, cfg.Validate(), &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "provcluster.yaml")

	cfg, err := Variant(VariantFull)
	require.NoError(t, err)
	cfg.Clustering.Seed = 7
	cfg.Map.Zoom = 5
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, VariantFull, loaded.Variant)
	assert.Equal(t, int64(7), loaded.Clustering.Seed)
	assert.Equal(t, 5, loaded.Map.Zoom)
	assert.Equal(t, cfg.Features.Columns, loaded.Features.Columns)
	assert.Equal(t, cfg.Map.Center, loaded.Map.Center)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "provcluster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("clustering:\n  clusters: 3\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Clustering.Clusters)
	assert.Equal(t, 10, cfg.Clustering.Restarts)
	assert.Equal(t, VariantValidated, cfg.Variant)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Features, cfg.Features)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PROVCLUSTER_RESTARTS=3\n"), 0o644))
	t.Setenv("PROVCLUSTER_SEED", "99")
	t.Setenv("PROVCLUSTER_CLUSTERS", "5")
	t.Setenv("PROVCLUSTER_OUTPUT_DIR", "elsewhere")
	t.Cleanup(func() { os.Unsetenv("PROVCLUSTER_RESTARTS") })

	cfg, err := Load(filepath.Join(dir, "provcluster.yaml"))
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Clustering.Seed)
	assert.Equal(t, 5, cfg.Clustering.Clusters)
	assert.Equal(t, 3, cfg.Clustering.Restarts)
	assert.Equal(t, "elsewhere", cfg.Paths.OutputDir)

	t.Setenv("PROVCLUSTER_CLUSTERS", "many")
	_, err = Load(filepath.Join(dir, "provcluster.yaml"))
	require.Error(t, err)
}
