package cluster

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// CentroidChooser picks k starting centroids from the data.
type CentroidChooser interface {
	ChooseCentroids(data *mat.Dense, k int, rng *rand.Rand) [][]float64
}

// PlusPlusCentroids seeds with k-means++: each next centroid is a data point
// drawn with probability proportional to its squared distance from the
// nearest centroid chosen so far.
type PlusPlusCentroids struct{}

// DataCentroids picks k distinct data points uniformly at random.
type DataCentroids struct{}

func chooserFor(init string) (CentroidChooser, error) {
	switch init {
	case "", InitPlusPlus:
		return PlusPlusCentroids{}, nil
	case InitRandom:
		return DataCentroids{}, nil
	}
	return nil, &InvalidConfigurationError{Field: "init", Value: init, Reason: "unknown centroid chooser"}
}

func (PlusPlusCentroids) ChooseCentroids(data *mat.Dense, k int, rng *rand.Rand) [][]float64 {
	n, _ := data.Dims()
	centroids := make([][]float64, 0, k)
	chosen := make([]bool, n)

	first := rng.IntN(n)
	chosen[first] = true
	centroids = append(centroids, copyRow(data, first))

	d2 := make([]float64, n)
	for i := range d2 {
		d2[i] = sqDist(data.RawRowView(i), centroids[0])
	}

	for len(centroids) < k {
		total := 0.0
		for _, d := range d2 {
			total += d
		}

		next := -1
		if total > 0 {
			target := rng.Float64() * total
			cum := 0.0
			for i, d := range d2 {
				if d == 0 {
					continue
				}
				cum += d
				next = i
				if cum > target {
					break
				}
			}
		}
		if next == -1 {
			// Every point coincides with a chosen centroid.
			for i := range chosen {
				if !chosen[i] {
					next = i
					break
				}
			}
		}

		chosen[next] = true
		c := copyRow(data, next)
		centroids = append(centroids, c)
		for i := range d2 {
			if d := sqDist(data.RawRowView(i), c); d < d2[i] {
				d2[i] = d
			}
		}
	}
	return centroids
}

func (DataCentroids) ChooseCentroids(data *mat.Dense, k int, rng *rand.Rand) [][]float64 {
	n, _ := data.Dims()
	perm := rng.Perm(n)
	centroids := make([][]float64, k)
	for j := range centroids {
		centroids[j] = copyRow(data, perm[j])
	}
	return centroids
}

func copyRow(data *mat.Dense, i int) []float64 {
	row := data.RawRowView(i)
	out := make([]float64, len(row))
	copy(out, row)
	return out
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}
