package cluster

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary holds the raw (unscaled) feature means of one cluster.
type Summary struct {
	Label int
	Size  int
	Means []float64
}

// Summarize averages every raw feature over the members of each of the k
// clusters. A cluster without members gets NaN means.
func Summarize(labels []int, raw [][]float64, k int) []Summary {
	dim := 0
	if len(raw) > 0 {
		dim = len(raw[0])
	}

	members := make([][]int, k)
	for i, l := range labels {
		members[l] = append(members[l], i)
	}

	out := make([]Summary, k)
	for j := range out {
		s := Summary{Label: j, Size: len(members[j]), Means: make([]float64, dim)}
		col := make([]float64, len(members[j]))
		for d := 0; d < dim; d++ {
			if len(col) == 0 {
				s.Means[d] = math.NaN()
				continue
			}
			for n, i := range members[j] {
				col[n] = raw[i][d]
			}
			s.Means[d] = stat.Mean(col, nil)
		}
		out[j] = s
	}
	return out
}
