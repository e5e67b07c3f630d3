// Package report renders clustering results as Markdown, a Turkish text
// report, an Excel workbook and the assignment CSV.
package report

import (
	"fmt"
	"math"
	"strings"

	"provcluster/internal/cluster"
	"provcluster/internal/config"
)

// Profile is the human-readable description of one cluster.
type Profile struct {
	Label  int
	Name   string
	Traits []string
}

// Profiles names every cluster from its raw feature means. Rules are
// applied in order; once a rule matches, later rules on the same feature
// are ignored for that cluster.
func Profiles(summaries []cluster.Summary, features []string, rules []config.LabelRule) []Profile {
	index := make(map[string]int, len(features))
	for i, f := range features {
		index[f] = i
	}

	out := make([]Profile, len(summaries))
	for i, s := range summaries {
		p := Profile{Label: s.Label}
		matched := make(map[string]bool)
		for _, r := range rules {
			d, ok := index[r.Feature]
			if !ok || matched[r.Feature] || d >= len(s.Means) {
				continue
			}
			if matches(r, s.Means[d]) {
				matched[r.Feature] = true
				p.Traits = append(p.Traits, r.Label)
			}
		}
		p.Name = fmt.Sprintf("Profil %d", s.Label+1)
		if len(p.Traits) > 0 {
			p.Name += ": " + strings.Join(p.Traits, " & ")
		}
		out[i] = p
	}
	return out
}

func matches(r config.LabelRule, v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	switch r.Op {
	case ">":
		return v > r.Threshold
	case "<":
		return v < r.Threshold
	}
	return false
}

// formatValue renders a raw feature value; fractional shares become
// percentages with one decimal.
func formatValue(cfg *config.Config, feature string, v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	if cfg.IsPercent(feature) {
		return fmt.Sprintf("%.1f%%", v*100)
	}
	return fmt.Sprintf("%.2f", v)
}
