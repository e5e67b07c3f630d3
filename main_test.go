package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"provcluster/internal/config"
)

const demographics = `City,Avg_Household_Size,Pct_Divorced,Pct_Never_Married
Adana,3.31,0.021,0.29
Ankara,2.98,0.034,0.31
İzmir,2.83,0.041,0.30
Şırnak,5.45,0.005,0.39
Batman,5.01,0.008,0.36
Çorum,2.86,0.019,0.24
Sinop,2.70,0.022,0.22
Van,4.80,0.006,0.37
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "demographics.csv")
	require.NoError(t, os.WriteFile(input, []byte(demographics), 0o644))

	cfg := config.DefaultConfig()
	cfg.Clustering.Clusters = 2
	cfg.Clustering.Representatives = 2
	cfg.Paths.Input = input
	cfg.Paths.OutputDir = filepath.Join(dir, "output")
	cfgPath := filepath.Join(dir, "provcluster.yaml")
	require.NoError(t, cfg.Save(cfgPath))

	t.Run("analyze", func(t *testing.T) {
		_, err := execute(t, "analyze", "--config", cfgPath)
		require.NoError(t, err)
		for _, name := range []string{"analysis_report.md", "analysis_report.txt", "city_clusters.csv", "cluster_analysis.xlsx"} {
			assert.FileExists(t, filepath.Join(dir, "output", name))
		}
	})

	t.Run("output flag", func(t *testing.T) {
		other := filepath.Join(dir, "other")
		_, err := execute(t, "analyze", "--config", cfgPath, "--output", other)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(other, "city_clusters.csv"))
		outputDir = ""
	})

	t.Run("config print", func(t *testing.T) {
		out, err := execute(t, "config", "--config", cfgPath)
		require.NoError(t, err)
		assert.Contains(t, out, "clusters: 2")
		assert.Contains(t, out, input)
	})

	t.Run("config write", func(t *testing.T) {
		target := filepath.Join(dir, "copy.yaml")
		_, err := execute(t, "config", "--config", cfgPath, "--write", target)
		require.NoError(t, err)
		writeConfig = ""

		loaded, err := config.Load(target)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.Clustering.Clusters)
		assert.Equal(t, input, loaded.Paths.Input)
	})

	t.Run("missing input", func(t *testing.T) {
		broken := config.DefaultConfig()
		broken.Paths.Input = filepath.Join(dir, "absent.csv")
		brokenPath := filepath.Join(dir, "broken.yaml")
		require.NoError(t, broken.Save(brokenPath))

		_, err := execute(t, "analyze", "--config", brokenPath)
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown variant", func(t *testing.T) {
		_, err := execute(t, "config", "--variant", "bogus")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "variant")
		variant = ""
	})
}
