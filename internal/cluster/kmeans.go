package cluster

import (
	"math/rand/v2"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Model is the winning restart of a k-means run.
//
// Labels has one entry per input row. Centroids is a K x D matrix in scaled
// feature space; row j is the centroid of cluster j. Labels are renumbered so
// that cluster 0 holds the first row, cluster 1 the first row not in cluster
// 0, and so on. The numbers carry no other meaning.
type Model struct {
	Centroids  *mat.Dense
	Labels     []int
	Inertia    float64
	Iterations int
	Restart    int
	Converged  bool
	Reseeds    int
}

// Centroid returns the centroid of cluster j.
func (m *Model) Centroid(j int) []float64 {
	return m.Centroids.RawRowView(j)
}

// Sizes returns the member count of every cluster.
func (m *Model) Sizes() []int {
	k, _ := m.Centroids.Dims()
	sizes := make([]int, k)
	for _, l := range m.Labels {
		sizes[l]++
	}
	return sizes
}

// KMeans partitions rows of a scaled feature matrix with Lloyd's algorithm.
type KMeans struct {
	opts    Options
	chooser CentroidChooser
	logger  *zap.Logger
}

func NewKMeans(opts Options, logger *zap.Logger) (*KMeans, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	chooser, err := chooserFor(opts.Init)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KMeans{opts: opts, chooser: chooser, logger: logger}, nil
}

// Fit runs every restart and keeps the one with the lowest inertia. Each
// restart draws from its own PCG stream keyed by (seed, restart), so the
// result does not depend on the order restarts run in.
func (km *KMeans) Fit(data *mat.Dense) (*Model, error) {
	n, _ := data.Dims()
	k := km.opts.Clusters
	if n < k {
		return nil, &InsufficientDataError{Records: n, Clusters: k}
	}

	var best *Model
	for r := 0; r < km.opts.Restarts; r++ {
		rng := rand.New(rand.NewPCG(uint64(km.opts.Seed), uint64(r)))
		m := km.lloyd(data, km.chooser.ChooseCentroids(data, k, rng), r)
		km.logger.Debug("k-means restart finished",
			zap.Int("restart", r),
			zap.Int("iterations", m.Iterations),
			zap.Bool("converged", m.Converged),
			zap.Float64("inertia", m.Inertia))
		if best == nil || m.Inertia < best.Inertia {
			best = m
		}
	}

	canonicalize(best)
	km.logger.Info("k-means finished",
		zap.Int("clusters", k),
		zap.Int("records", n),
		zap.Int("best_restart", best.Restart),
		zap.Float64("inertia", best.Inertia))
	return best, nil
}

func (km *KMeans) lloyd(data *mat.Dense, centroids [][]float64, restart int) *Model {
	n, dim := data.Dims()
	k := len(centroids)

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	m := &Model{Restart: restart}
	for iter := 1; iter <= km.opts.MaxIterations; iter++ {
		m.Iterations = iter
		changed := assign(data, centroids, labels)
		reseeded := km.reseedEmpty(data, centroids, labels, restart, iter)
		m.Reseeds += reseeded
		if !changed && reseeded == 0 {
			m.Converged = true
			break
		}
		updateCentroids(data, centroids, labels)
	}

	m.Labels = labels
	m.Centroids = mat.NewDense(k, dim, nil)
	for j, c := range centroids {
		m.Centroids.SetRow(j, c)
	}
	for i, l := range labels {
		m.Inertia += sqDist(data.RawRowView(i), centroids[l])
	}
	return m
}

// assign moves every row to its nearest centroid. Ties go to the lowest
// cluster index. It reports whether any label changed.
func assign(data *mat.Dense, centroids [][]float64, labels []int) bool {
	changed := false
	for i := range labels {
		row := data.RawRowView(i)
		best, bestD := 0, sqDist(row, centroids[0])
		for j := 1; j < len(centroids); j++ {
			if d := sqDist(row, centroids[j]); d < bestD {
				best, bestD = j, d
			}
		}
		if labels[i] != best {
			labels[i] = best
			changed = true
		}
	}
	return changed
}

// reseedEmpty gives every empty cluster the row lying farthest from its own
// centroid, taken from a cluster that keeps at least one other member.
func (km *KMeans) reseedEmpty(data *mat.Dense, centroids [][]float64, labels []int, restart, iter int) int {
	counts := make([]int, len(centroids))
	for _, l := range labels {
		counts[l]++
	}

	reseeded := 0
	for j, c := range counts {
		if c > 0 {
			continue
		}
		far, farD := -1, -1.0
		for i, l := range labels {
			if counts[l] < 2 {
				continue
			}
			if d := sqDist(data.RawRowView(i), centroids[l]); d > farD {
				far, farD = i, d
			}
		}
		if far < 0 {
			continue
		}
		counts[labels[far]]--
		labels[far] = j
		counts[j]++
		centroids[j] = copyRow(data, far)
		reseeded++
		km.logger.Warn("empty cluster reseeded",
			zap.Int("restart", restart),
			zap.Int("iteration", iter),
			zap.Int("cluster", j),
			zap.Int("row", far))
	}
	return reseeded
}

func updateCentroids(data *mat.Dense, centroids [][]float64, labels []int) {
	counts := make([]int, len(centroids))
	for j := range centroids {
		for d := range centroids[j] {
			centroids[j][d] = 0
		}
	}
	for i, l := range labels {
		row := data.RawRowView(i)
		for d, x := range row {
			centroids[l][d] += x
		}
		counts[l]++
	}
	for j, c := range counts {
		if c == 0 {
			continue
		}
		for d := range centroids[j] {
			centroids[j][d] /= float64(c)
		}
	}
}

// canonicalize renumbers clusters by the first row that belongs to each.
func canonicalize(m *Model) {
	k, dim := m.Centroids.Dims()
	mapping := make([]int, k)
	for j := range mapping {
		mapping[j] = -1
	}
	next := 0
	for _, l := range m.Labels {
		if mapping[l] == -1 {
			mapping[l] = next
			next++
		}
	}
	for j := range mapping {
		if mapping[j] == -1 {
			mapping[j] = next
			next++
		}
	}

	centroids := mat.NewDense(k, dim, nil)
	for j := 0; j < k; j++ {
		centroids.SetRow(mapping[j], m.Centroids.RawRowView(j))
	}
	m.Centroids = centroids
	for i, l := range m.Labels {
		m.Labels[i] = mapping[l]
	}
}
