package cluster

import "fmt"

// InvalidInputError reports data the pipeline cannot work with, such as a
// feature column whose values are all identical.
type InvalidInputError struct {
	Stage   string
	Feature string
	Reason  string
}

func (e *InvalidInputError) Error() string {
	if e.Feature == "" {
		return fmt.Sprintf("%s: invalid input: %s", e.Stage, e.Reason)
	}
	return fmt.Sprintf("%s: invalid input for feature %q: %s", e.Stage, e.Feature, e.Reason)
}

// InsufficientDataError is returned when fewer records than clusters survive.
type InsufficientDataError struct {
	Records  int
	Clusters int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d records cannot form %d clusters", e.Records, e.Clusters)
}

// InvalidConfigurationError rejects clustering options before any work starts.
type InvalidConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}
