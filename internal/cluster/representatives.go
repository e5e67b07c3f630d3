package cluster

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Representative is a cluster member and its Euclidean distance to the
// cluster centroid in scaled space.
type Representative struct {
	Row      int
	Distance float64
}

// Representatives returns up to m members of cluster label, closest to the
// centroid first. Equal distances keep the original row order.
func Representatives(data *mat.Dense, model *Model, label, m int) []Representative {
	centroid := model.Centroid(label)
	var members []Representative
	for i, l := range model.Labels {
		if l != label {
			continue
		}
		members = append(members, Representative{
			Row:      i,
			Distance: floats.Distance(data.RawRowView(i), centroid, 2),
		})
	}
	sort.SliceStable(members, func(a, b int) bool {
		return members[a].Distance < members[b].Distance
	})
	if len(members) > m {
		members = members[:m]
	}
	return members
}

// AllRepresentatives runs Representatives for every cluster, indexed by label.
func AllRepresentatives(data *mat.Dense, model *Model, m int) [][]Representative {
	k, _ := model.Centroids.Dims()
	out := make([][]Representative, k)
	for j := range out {
		out[j] = Representatives(data, model, j, m)
	}
	return out
}
