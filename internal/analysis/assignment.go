package analysis

// Assignment maps each clustered city to its label. It is built once per run
// and exposes only read access.
type Assignment struct {
	cities []string
	labels []int
	index  map[string]int
}

func NewAssignment(cities []string, labels []int) Assignment {
	a := Assignment{
		cities: append([]string(nil), cities...),
		labels: append([]int(nil), labels...),
		index:  make(map[string]int, len(cities)),
	}
	for i, c := range a.cities {
		a.index[c] = i
	}
	return a
}

// Label returns the cluster of city, and false if the city was not clustered.
func (a Assignment) Label(city string) (int, bool) {
	i, ok := a.index[city]
	if !ok {
		return 0, false
	}
	return a.labels[i], true
}

func (a Assignment) Len() int { return len(a.cities) }

// City returns the i-th clustered city and its label.
func (a Assignment) City(i int) (string, int) {
	return a.cities[i], a.labels[i]
}

// Members lists the cities of label in record order.
func (a Assignment) Members(label int) []string {
	var out []string
	for i, l := range a.labels {
		if l == label {
			out = append(out, a.cities[i])
		}
	}
	return out
}
