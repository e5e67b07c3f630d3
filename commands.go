package main

import (
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"provcluster/internal/analysis"
	"provcluster/internal/charts"
	"provcluster/internal/geomap"
	"provcluster/internal/ingest"
	"provcluster/internal/report"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract city-level tables from the raw statistics exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		color.Cyan("📥 Extracting %d source tables...", len(cfg.Ingest.Sources))
		out, err := ingest.ExtractAll(cfg, logger)
		if err != nil {
			return err
		}
		for i, ex := range out {
			step("   - %s: %d cities → %s", ex.Kind, len(ex.Rows), cfg.ValidatedPath(cfg.Ingest.Sources[i].Output))
		}
		color.Green("✅ Extraction finished")
		return nil
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Join the extracted tables into the clustering input",
	RunE: func(cmd *cobra.Command, args []string) error {
		output := cfg.Merge.Output
		if output == "" {
			output = cfg.Paths.Input
		}
		color.Cyan("🔗 Merging %d tables (%s join)...", len(cfg.Merge.Inputs), mergeHow())
		n, err := ingest.MergeFile(cfg.Merge, cfg.Paths.ValidatedDir, output, logger)
		if err != nil {
			return err
		}
		color.Green("✅ %d cities written to %s", n, output)
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Cluster the provinces and write the reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := analyze()
		if err != nil {
			return err
		}
		written, err := report.WriteAll(cfg, res, logger)
		if err != nil {
			return err
		}
		printOutputs(written)
		return nil
	},
}

var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Draw ranking, distribution and scatter charts",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := analyze()
		if err != nil {
			return err
		}
		pages, err := charts.Render(cfg, res, logger)
		if err != nil {
			return err
		}
		color.Green("✅ %d chart pages written to %s", pages, cfg.OutputPath(cfg.Charts.Output))
		return nil
	},
}

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Render the province choropleth map",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := analyze()
		if err != nil {
			return err
		}
		color.Cyan("🗺️  Loading province boundaries...")
		j, err := geomap.Render(cmd.Context(), cfg, res, logger)
		if err != nil {
			return err
		}
		printJoin(j)
		printOutputs(mapOutputs())
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze, then write reports, charts and the map",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := analyze()
		if err != nil {
			return err
		}
		written, err := report.WriteAll(cfg, res, logger)
		if err != nil {
			return err
		}
		if cfg.Charts.Output != "" {
			if _, err := charts.Render(cfg, res, logger); err != nil {
				return err
			}
			written = append(written, cfg.OutputPath(cfg.Charts.Output))
		}
		if len(cfg.Map.GeoJSON) > 0 {
			j, err := geomap.Render(cmd.Context(), cfg, res, logger)
			if err != nil {
				return err
			}
			printJoin(j)
			written = append(written, mapOutputs()...)
		}
		printOutputs(written)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration, or write it with --write",
	RunE: func(cmd *cobra.Command, args []string) error {
		if writeConfig != "" {
			if err := cfg.Save(writeConfig); err != nil {
				return err
			}
			color.Green("✅ Configuration written to %s", writeConfig)
			return nil
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	},
}

var writeConfig string

func init() {
	configCmd.Flags().StringVarP(&writeConfig, "write", "w", "", "Write the configuration to this file")
}

// analyze runs the clustering pipeline and prints a short per-cluster
// summary.
func analyze() (*analysis.Result, error) {
	color.Cyan("🇹🇷 Clustering provinces into %d groups (%s)...", cfg.Clustering.Clusters, strings.Join(cfg.Features.Columns, ", "))
	res, err := analysis.Analyze(cfg, logger)
	if err != nil {
		return nil, err
	}
	step("📊 %d cities clustered, %d excluded (inertia %.3f, restart %d)",
		len(res.Cities), res.Excluded(), res.Model.Inertia, res.Model.Restart)

	profiles := report.Profiles(res.Summaries, res.Features, cfg.Report.Rules)
	for _, p := range profiles {
		reps := make([]string, 0, len(res.Representatives[p.Label]))
		for _, r := range res.Representatives[p.Label] {
			reps = append(reps, r.City)
		}
		step("   %s (%d): %s", p.Name, res.Summaries[p.Label].Size, strings.Join(reps, ", "))
	}
	return res, nil
}

func printJoin(j *geomap.Join) {
	step("📍 %d provinces matched", j.Matched)
	if len(j.Unmatched) > 0 {
		color.Yellow("   no data: %s", strings.Join(j.Unmatched, ", "))
	}
	if len(j.Missing) > 0 {
		color.Yellow("   no boundary: %s", strings.Join(j.Missing, ", "))
	}
}

func mapOutputs() []string {
	var out []string
	for _, name := range []string{cfg.Map.GeoJSONOut, cfg.Map.HTML, cfg.Map.ChartsHTML} {
		if name != "" {
			out = append(out, cfg.OutputPath(name))
		}
	}
	return out
}

func printOutputs(files []string) {
	color.Green("\n✅ ANALYSIS FINISHED")
	step("📁 File Output:")
	for _, f := range files {
		step("   - %s", f)
	}
}

func mergeHow() string {
	if cfg.Merge.How == "" {
		return "inner"
	}
	return cfg.Merge.How
}
