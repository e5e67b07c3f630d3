package geomap

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"provcluster/internal/analysis"
	"provcluster/internal/config"
	"provcluster/internal/names"
	"provcluster/internal/report"
)

const (
	PropCluster      = "Cluster"
	PropClusterLabel = "Cluster_Label"
	PropCityLabel    = "City_Label"
	NoData           = "Veri Yok"
)

// Province is one boundary feature after the join.
type Province struct {
	Name     string
	City     string
	Cluster  int
	Centroid orb.Point
}

// Join is the outcome of matching boundary features to clustered cities.
type Join struct {
	Provinces []Province
	Matched   int
	// Unmatched lists boundary names with no clustered city.
	Unmatched []string
	// Missing lists clustered cities with no boundary feature.
	Missing []string
}

var nameProperties = []string{"name", "NAME_1", "il_adi", "NAME"}

func featureName(f *geojson.Feature, prop string) string {
	if prop != "" {
		if s := f.Properties.MustString(prop, ""); s != "" {
			return s
		}
	}
	for _, p := range nameProperties {
		if s := f.Properties.MustString(p, ""); s != "" {
			return s
		}
	}
	return ""
}

// Enrich sets cluster and tooltip properties on every feature of fc in
// place. Features without a clustered city get Cluster -1 and NoData.
func Enrich(fc *geojson.FeatureCollection, cfg *config.Config, res *analysis.Result) *Join {
	profiles := report.Profiles(res.Summaries, res.Features, cfg.Report.Rules)

	byKey := make(map[string]int, len(res.Cities))
	for i, c := range res.Cities {
		byKey[names.Key(c)] = i
	}
	aliases := make(map[string]string, len(cfg.Map.Aliases))
	for from, to := range cfg.Map.Aliases {
		aliases[names.Key(from)] = names.Key(to)
	}

	j := &Join{}
	seen := make(map[int]bool)
	for _, f := range fc.Features {
		if f.Properties == nil {
			f.Properties = geojson.Properties{}
		}
		name := featureName(f, cfg.Map.NameProperty)
		key := names.Key(name)
		if to, ok := aliases[key]; ok {
			key = to
		}

		p := Province{Name: name, Cluster: -1}
		if f.Geometry != nil {
			p.Centroid, _ = planar.CentroidArea(f.Geometry)
		}

		i, ok := byKey[key]
		if !ok {
			f.Properties[PropCluster] = -1
			f.Properties[PropClusterLabel] = NoData
			f.Properties[PropCityLabel] = name
			j.Unmatched = append(j.Unmatched, name)
			j.Provinces = append(j.Provinces, p)
			continue
		}

		city, label := res.Assignment.City(i)
		p.City, p.Cluster = city, label
		f.Properties[PropCluster] = label
		f.Properties[PropClusterLabel] = profiles[label].Name
		f.Properties[PropCityLabel] = city
		for _, feat := range cfg.Map.Tooltip {
			if v, ok := rawValue(res, i, feat); ok {
				if cfg.IsPercent(feat) {
					v *= 100
				}
				f.Properties[feat] = math.Round(v*100) / 100
			}
		}
		seen[i] = true
		j.Matched++
		j.Provinces = append(j.Provinces, p)
	}

	for i, c := range res.Cities {
		if !seen[i] {
			j.Missing = append(j.Missing, c)
		}
	}
	return j
}

func rawValue(res *analysis.Result, i int, feature string) (float64, bool) {
	for d, f := range res.Features {
		if f == feature {
			return res.Raw[i][d], true
		}
	}
	return 0, false
}
