package report

import (
	"fmt"
	"io"
	"strings"

	"provcluster/internal/analysis"
	"provcluster/internal/config"
)

// WriteMarkdown writes the English analysis report.
func WriteMarkdown(w io.Writer, cfg *config.Config, res *analysis.Result, profiles []Profile) error {
	report := fmt.Sprintf("# %s\n\n", cfg.Report.Title)
	report += fmt.Sprintf("Based on data from %d cities.\n", res.Assignment.Len())
	if n := res.Excluded(); n > 0 {
		report += fmt.Sprintf("%d cities were excluded because a required feature was missing.\n", n)
	}
	report += fmt.Sprintf("\n- **Run**: `%s`\n", res.RunID)
	report += fmt.Sprintf("- **Clusters**: %d (seed %d, %d restarts, %s init)\n",
		res.Clusters(), cfg.Clustering.Seed, cfg.Clustering.Restarts, cfg.Clustering.Init)
	report += fmt.Sprintf("- **Inertia**: %.4f (restart %d, %d iterations)\n",
		res.Model.Inertia, res.Model.Restart, res.Model.Iterations)

	report += "\n## Feature Scaling\n\n"
	report += "| Feature | Mean | Std |\n"
	report += "|---------|------|-----|\n"
	for i, f := range res.Features {
		report += fmt.Sprintf("| %s | %.4f | %.4f |\n", f, res.Scaler.Mean[i], res.Scaler.Std[i])
	}

	report += "\n## Cluster Profiles\n"
	for j, s := range res.Summaries {
		reps := make([]string, len(res.Representatives[j]))
		for i, r := range res.Representatives[j] {
			reps[i] = r.City
		}
		report += fmt.Sprintf("\n### Cluster %d: %s\n", j, profiles[j].Name)
		report += fmt.Sprintf("**Cities:** %d\n\n", s.Size)
		report += fmt.Sprintf("**Representative Cities:** %s\n\n", strings.Join(reps, ", "))
		report += "**Characteristics:**\n"
		for d, f := range res.Features {
			report += fmt.Sprintf("- %s: %s\n", cfg.Label(f), formatValue(cfg, f, s.Means[d]))
		}
		report += fmt.Sprintf("\n<details><summary>All members</summary>\n\n%s\n\n</details>\n",
			strings.Join(res.Assignment.Members(j), ", "))
	}

	if len(res.Table.Missing) > 0 {
		report += "\n## Excluded Cities\n\n"
		for _, m := range res.Table.Missing {
			report += fmt.Sprintf("- %s: %s\n", m.City, m.Feature)
		}
	}

	_, err := io.WriteString(w, report)
	return err
}
