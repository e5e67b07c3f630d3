package report

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"provcluster/internal/analysis"
	"provcluster/internal/cluster"
	"provcluster/internal/config"
)

var validatedFeatures = []string{"Avg_Household_Size", "Pct_Divorced", "Pct_Never_Married"}

func TestProfiles(t *testing.T) {
	summaries := []cluster.Summary{
		{Label: 0, Means: []float64{4.2, 0.008, 0.35}},
		{Label: 1, Means: []float64{2.8, 0.03, 0.25}},
		{Label: 2, Means: []float64{3.4, 0.015, 0.28}},
		{Label: 3, Means: []float64{math.NaN(), math.NaN(), math.NaN()}},
	}
	profiles := Profiles(summaries, validatedFeatures, config.DefaultConfig().Report.Rules)

	require.Len(t, profiles, 4)
	assert.Equal(t, "Profil 1: Geniş Aile & Düşük Boşanma & Genç/Bekar Nüfus", profiles[0].Name)
	assert.Equal(t, "Profil 2: Çekirdek/Küçük Aile & Yüksek Boşanma", profiles[1].Name)
	assert.Equal(t, "Profil 3", profiles[2].Name)
	assert.Empty(t, profiles[2].Traits)
	assert.Equal(t, "Profil 4", profiles[3].Name)
}

func TestProfiles_FirstMatchPerFeature(t *testing.T) {
	rules := []config.LabelRule{
		{Feature: "A", Op: ">", Threshold: 1, Label: "big"},
		{Feature: "A", Op: ">", Threshold: 2, Label: "huge"},
		{Feature: "Missing", Op: "<", Threshold: 100, Label: "never"},
	}
	profiles := Profiles([]cluster.Summary{{Label: 0, Means: []float64{3}}}, []string{"A"}, rules)
	assert.Equal(t, []string{"big"}, profiles[0].Traits)
}

func TestFormatValue(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, "2.5%", formatValue(cfg, "Pct_Divorced", 0.025))
	assert.Equal(t, "3.46", formatValue(cfg, "Avg_Household_Size", 3.456))
	assert.Equal(t, "-", formatValue(cfg, "Avg_Household_Size", math.NaN()))
}

const cities = `City,Avg_Household_Size,Pct_Divorced,Pct_Single,Pct_Married
Adana,3.31,0.021,0.29,0.62
Ankara,2.98,0.034,0.31,0.58
Batman,5.01,0.008,0.36,0.59
Bayburt,3.10,0.012,0.30,0.61
Bitlis,4.91,0.006,0.37,0.60
Çorum,2.86,0.019,0.24,0.66
İzmir,2.83,0.041,0.30,0.57
Şırnak,5.45,0.005,0.39,0.57
Kilis,,0.011,0.33,0.60
`

func analyzed(t *testing.T) (*config.Config, *analysis.Result) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "validated.csv")
	require.NoError(t, os.WriteFile(input, []byte(cities), 0o644))

	cfg := config.DefaultConfig()
	cfg.Paths.Input = input
	cfg.Paths.OutputDir = filepath.Join(dir, "output")
	cfg.Clustering.Representatives = 3
	res, err := analysis.Analyze(cfg, nil)
	require.NoError(t, err)
	return cfg, res
}

func TestWriteAll(t *testing.T) {
	cfg, res := analyzed(t)

	written, err := WriteAll(cfg, res, nil)
	require.NoError(t, err)
	assert.Len(t, written, 4)
	for _, path := range written {
		assert.FileExists(t, path)
	}

	md, err := os.ReadFile(cfg.OutputPath(cfg.Report.Markdown))
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Demographic Analysis & City Segmentation")
	assert.Contains(t, string(md), "Based on data from 8 cities.")
	assert.Contains(t, string(md), "### Cluster 0: Profil 1")
	assert.Contains(t, string(md), "- Kilis: Avg_Household_Size")
	assert.Equal(t, 4, strings.Count(string(md), "**Representative Cities:**"))

	txt, err := os.ReadFile(cfg.OutputPath(cfg.Report.Text))
	require.NoError(t, err)
	assert.Contains(t, string(txt), "NİTEL ARAŞTIRMA SAHA SEÇİM RAPORU")
	assert.Contains(t, string(txt), "1. KÜME ORTALAMALARI (YÜZDELER)")
	assert.Contains(t, string(txt), "Ort. Hane Büyüklüğü")
	assert.Equal(t, 4, strings.Count(string(txt), "Önerilen Şehirler (Örnekler):"))

	csv, err := os.ReadFile(cfg.OutputPath(cfg.Report.Assignments))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	require.Len(t, lines, 10)
	assert.True(t, strings.HasSuffix(lines[0], ",Cluster"))
	assert.True(t, strings.HasSuffix(lines[9], ","), "excluded city has no label")

	f, err := excelize.OpenFile(cfg.OutputPath(cfg.Report.Workbook))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Assignments", "Cluster_Means", "Representatives"}, f.GetSheetList())
	rows, err := f.GetRows("Assignments")
	require.NoError(t, err)
	assert.Len(t, rows, 9)
	assert.Equal(t, []string{"City", "Avg_Household_Size", "Pct_Divorced", "Pct_Never_Married", "Cluster", "Profile"}, rows[0])
	means, err := f.GetRows("Cluster_Means")
	require.NoError(t, err)
	assert.Len(t, means, 5)
}

func TestWriteAll_SkipsEmptyNames(t *testing.T) {
	cfg, res := analyzed(t)
	cfg.Report.Workbook = ""
	cfg.Report.Text = ""

	written, err := WriteAll(cfg, res, nil)
	require.NoError(t, err)
	assert.Len(t, written, 2)
	assert.NoFileExists(t, filepath.Join(cfg.Paths.OutputDir, "cluster_analysis.xlsx"))
}
