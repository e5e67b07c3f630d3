package cluster

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes feature columns with the population mean and standard
// deviation of the data it was fitted on.
type Scaler struct {
	Features []string
	Mean     []float64
	Std      []float64
}

// FitScaler computes per-column mean and population standard deviation.
// A column with zero spread cannot be standardized and yields an
// *InvalidInputError.
func FitScaler(features []string, rows [][]float64) (*Scaler, error) {
	if len(rows) == 0 {
		return nil, &InvalidInputError{Stage: "scale", Reason: "no records to fit"}
	}
	dim := len(rows[0])
	if dim == 0 {
		return nil, &InvalidInputError{Stage: "scale", Reason: "records have no features"}
	}

	s := &Scaler{
		Features: featureNames(features, dim),
		Mean:     make([]float64, dim),
		Std:      make([]float64, dim),
	}

	col := make([]float64, len(rows))
	for d := 0; d < dim; d++ {
		for i, row := range rows {
			if len(row) != dim {
				return nil, &InvalidInputError{
					Stage:  "scale",
					Reason: fmt.Sprintf("record %d has %d features, expected %d", i, len(row), dim),
				}
			}
			col[i] = row[d]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if floats.Min(col) == floats.Max(col) || std == 0 {
			return nil, &InvalidInputError{
				Stage:   "scale",
				Feature: s.Features[d],
				Reason:  "zero variance, constant column cannot be standardized",
			}
		}
		s.Mean[d] = mean
		s.Std[d] = std
	}
	return s, nil
}

// Transform scales rows with the fitted parameters into an N x D matrix.
func (s *Scaler) Transform(rows [][]float64) (*mat.Dense, error) {
	dim := len(s.Mean)
	if len(rows) == 0 {
		return nil, &InvalidInputError{Stage: "scale", Reason: "no records to transform"}
	}
	out := mat.NewDense(len(rows), dim, nil)
	for i, row := range rows {
		if len(row) != dim {
			return nil, &InvalidInputError{
				Stage:  "scale",
				Reason: fmt.Sprintf("record %d has %d features, expected %d", i, len(row), dim),
			}
		}
		for d, x := range row {
			out.Set(i, d, (x-s.Mean[d])/s.Std[d])
		}
	}
	return out, nil
}

// FitTransform is FitScaler followed by Transform on the same rows.
func FitTransform(features []string, rows [][]float64) (*Scaler, *mat.Dense, error) {
	s, err := FitScaler(features, rows)
	if err != nil {
		return nil, nil, err
	}
	scaled, err := s.Transform(rows)
	if err != nil {
		return nil, nil, err
	}
	return s, scaled, nil
}

func featureNames(features []string, dim int) []string {
	names := make([]string, dim)
	for d := range names {
		if d < len(features) {
			names[d] = features[d]
		} else {
			names[d] = fmt.Sprintf("feature_%d", d)
		}
	}
	return names
}
