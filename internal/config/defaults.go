package config

import (
	"fmt"

	"provcluster/internal/cluster"
)

const (
	VariantValidated = "validated"
	VariantFull      = "full"
)

// DefaultConfig returns the validated variant: household size, divorce and
// never-married share over city_demographics_validated_final.csv.
func DefaultConfig() *Config {
	opts := cluster.DefaultOptions()
	return &Config{
		Name:    "provcluster",
		Variant: VariantValidated,
		Clustering: ClusteringConfig{
			Clusters:        opts.Clusters,
			Seed:            opts.Seed,
			Restarts:        opts.Restarts,
			MaxIterations:   opts.MaxIterations,
			Representatives: opts.Representatives,
			Init:            opts.Init,
		},
		Features: FeaturesConfig{
			IDColumn: "City",
			Columns:  []string{"Avg_Household_Size", "Pct_Divorced", "Pct_Never_Married"},
			Aliases:  map[string][]string{"Pct_Never_Married": {"Pct_Single"}},
			Percent: []string{
				"Pct_Divorced", "Pct_Never_Married", "Pct_Single", "Pct_Married",
				"Pct_Widowed", "Pct_Divorced_Ever_Married",
			},
			Labels: map[string]string{
				"Avg_Household_Size": "Ort. Hane Büyüklüğü",
				"Pct_Divorced":       "Boşanma Oranı",
				"Pct_Never_Married":  "Bekar Oranı",
				"Pct_Single":         "Bekar Oranı",
				"Pct_Married":        "Evli Oranı",
				"Median_Age":         "Ortanca Yaş",
				"Dependency_Ratio":   "Bağımlılık Oranı",
			},
		},
		Paths: PathsConfig{
			Input:        "city_demographics_validated_final.csv",
			OutputDir:    "output",
			ValidatedDir: "data_validated",
		},
		Ingest: IngestConfig{
			Marker:   "Adana",
			ScanRows: 20,
			Sources: []SourceConfig{
				{Kind: "household", Path: "İllere Göre Ortalama Hanehalkı Büyüklüğü.xlsx", Output: "household_size_clean.csv"},
				{Kind: "marital", Path: "İl, medeni durum ve cinsiyete göre nüfus-2.xlsx", Output: "marital_status_clean.csv"},
				{Kind: "dependency", Path: "İllere Göre Yaş Bağımlılık Oranı.xlsx", Output: "dependency_ratio_clean.csv"},
			},
		},
		Merge: MergeConfig{
			Inputs: []MergeInput{
				{Path: "household_size_clean.csv", LatestYear: "Avg_Household_Size"},
				{Path: "marital_status_clean.csv"},
			},
			How:     "inner",
			Columns: []string{"City", "Avg_Household_Size", "Pct_Divorced", "Pct_Never_Married", "Pct_Married"},
			Output:  "city_demographics_validated_final.csv",
		},
		Report: ReportConfig{
			Title:       "Demographic Analysis & City Segmentation",
			TextTitle:   "NİTEL ARAŞTIRMA SAHA SEÇİM RAPORU (DETAYLI ANALİZ)",
			Markdown:    "analysis_report.md",
			Text:        "analysis_report.txt",
			Workbook:    "cluster_analysis.xlsx",
			Assignments: "city_clusters.csv",
			Rules:       defaultRules(),
		},
		Charts: ChartsConfig{
			Output:     "cluster_charts.pdf",
			Rankings:   []string{"Avg_Household_Size", "Pct_Divorced"},
			TopN:       15,
			Histograms: []string{"Avg_Household_Size"},
			Bins:       20,
			Scatter:    []ScatterConfig{{X: "Pct_Never_Married", Y: "Pct_Divorced"}},
		},
		Map: MapConfig{
			GeoJSON: []string{
				"turkey.geojson",
				"https://raw.githubusercontent.com/cihadturhan/tr-geojson/master/geo/tr-cities-utf8.json",
				"https://raw.githubusercontent.com/codeforamerica/click_that_hood/master/public/data/turkey.geojson",
			},
			NameProperty: "name",
			Aliases: map[string]string{
				"Afyon":    "Afyonkarahisar",
				"K. Maraş": "Kahramanmaraş",
				"Zongulda": "Zonguldak",
				"Elazig":   "Elazığ",
			},
			Colors:     []string{"#e41a1c", "#377eb8", "#4daf4a", "#984ea3"},
			Tooltip:    []string{"Avg_Household_Size", "Pct_Divorced", "Pct_Never_Married"},
			Center:     [2]float64{39.0, 35.0},
			Zoom:       6,
			Timeout:    "30s",
			HTML:       "turkiye_aile_arastirmasi_haritasi.html",
			GeoJSONOut: "turkey_clusters.geojson",
			ChartsHTML: "cluster_explorer.html",
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

func defaultRules() []LabelRule {
	return []LabelRule{
		{Feature: "Avg_Household_Size", Op: ">", Threshold: 3.8, Label: "Geniş Aile"},
		{Feature: "Avg_Household_Size", Op: "<", Threshold: 3.0, Label: "Çekirdek/Küçük Aile"},
		{Feature: "Pct_Divorced", Op: ">", Threshold: 0.025, Label: "Yüksek Boşanma"},
		{Feature: "Pct_Divorced", Op: "<", Threshold: 0.01, Label: "Düşük Boşanma"},
		{Feature: "Pct_Never_Married", Op: ">", Threshold: 0.30, Label: "Genç/Bekar Nüfus"},
	}
}

// Variant returns the preset for name. "" selects the validated variant.
func Variant(name string) (*Config, error) {
	cfg := DefaultConfig()
	switch name {
	case "", VariantValidated:
		return cfg, nil
	case VariantFull:
		cfg.Variant = VariantFull
		cfg.Features.Columns = []string{
			"Avg_Household_Size", "Median_Age", "Dependency_Ratio",
			"Pct_Single", "Pct_Married", "Pct_Divorced",
		}
		cfg.Features.Aliases = map[string][]string{
			"Pct_Single":       {"Pct_Never_Married"},
			"Dependency_Ratio": {"Total_Dependency_Ratio"},
		}
		cfg.Paths.Input = "city_demographics_final.csv"
		cfg.Ingest.Sources = append(cfg.Ingest.Sources,
			SourceConfig{Kind: "median_age", Path: "İllere ve cinsiyete göre ortanca yaş.xlsx", Output: "median_age_clean.csv"},
			SourceConfig{Kind: "population", Path: "Yıllara Göre İl Nüfusları .xlsx", Output: "population_clean.csv"},
		)
		cfg.Merge = MergeConfig{
			Inputs: []MergeInput{
				{Path: "household_size_clean.csv", LatestYear: "Avg_Household_Size"},
				{Path: "median_age_clean.csv"},
				{Path: "dependency_ratio_clean.csv", Rename: map[string]string{"Total_Dependency_Ratio": "Dependency_Ratio"}},
				{Path: "marital_status_clean.csv", Rename: map[string]string{"Pct_Never_Married": "Pct_Single"}},
			},
			How: "outer",
			Columns: []string{
				"City", "Avg_Household_Size", "Median_Age", "Dependency_Ratio",
				"Pct_Single", "Pct_Married", "Pct_Divorced",
			},
			Output: "city_demographics_final.csv",
		}
		for i, r := range cfg.Report.Rules {
			if r.Feature == "Pct_Never_Married" {
				cfg.Report.Rules[i].Feature = "Pct_Single"
			}
		}
		cfg.Charts.Scatter = []ScatterConfig{{X: "Median_Age", Y: "Avg_Household_Size"}}
		cfg.Map.Tooltip = []string{"Avg_Household_Size", "Median_Age", "Pct_Single", "Pct_Divorced"}
		return cfg, nil
	default:
		return nil, &cluster.InvalidConfigurationError{Field: "variant", Value: name, Reason: fmt.Sprintf("must be %q or %q", VariantValidated, VariantFull)}
	}
}
