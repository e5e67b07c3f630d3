package cluster

// Options configures the clustering core.
type Options struct {
	Clusters        int
	Restarts        int
	MaxIterations   int
	Seed            int64
	Representatives int
	// Init selects the centroid chooser: "k-means++" (default) or "random".
	Init string
}

func DefaultOptions() Options {
	return Options{
		Clusters:        4,
		Restarts:        10,
		MaxIterations:   300,
		Seed:            42,
		Representatives: 5,
		Init:            InitPlusPlus,
	}
}

const (
	InitPlusPlus = "k-means++"
	InitRandom   = "random"
)

// Validate rejects options that make clustering undefined.
func (o Options) Validate() error {
	switch {
	case o.Clusters < 2:
		return &InvalidConfigurationError{Field: "clusters", Value: o.Clusters, Reason: "must be at least 2"}
	case o.Restarts < 1:
		return &InvalidConfigurationError{Field: "restarts", Value: o.Restarts, Reason: "must be at least 1"}
	case o.MaxIterations < 1:
		return &InvalidConfigurationError{Field: "max_iterations", Value: o.MaxIterations, Reason: "must be at least 1"}
	case o.Representatives < 1:
		return &InvalidConfigurationError{Field: "representatives", Value: o.Representatives, Reason: "must be at least 1"}
	}
	if _, err := chooserFor(o.Init); err != nil {
		return err
	}
	return nil
}
