// Package features loads per-city feature tables and writes the cluster
// assignment table back out.
package features

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Record is one city with every required feature present, in schema order.
type Record struct {
	City   string
	Values []float64
	// Row is the index of the source row in Table.Rows.
	Row int
}

// MissingFeatureError explains why a row was left out of clustering.
type MissingFeatureError struct {
	City    string
	Row     int
	Feature string
	Value   string
}

func (e *MissingFeatureError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("row %d (%s): feature %q missing", e.Row, e.City, e.Feature)
	}
	return fmt.Sprintf("row %d (%s): feature %q is not a finite number: %q", e.Row, e.City, e.Feature, e.Value)
}

// Schema names the id column and the ordered required features. Aliases
// lists fallback column names per feature, tried in order when the feature
// column itself is absent.
type Schema struct {
	IDColumn string
	Features []string
	Aliases  map[string][]string
}

// Table is a loaded feature table. Rows keeps every source row, including
// those excluded from clustering; Records holds only the complete ones.
type Table struct {
	Header     []string
	Rows       [][]string
	IDIndex    int
	Features   []string
	Columns    []int
	Records    []Record
	Missing    []*MissingFeatureError
	Duplicates []string
}

var ErrNoHeader = errors.New("feature table has no header row")

func LoadFile(path string, schema Schema) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening feature table: %w", err)
	}
	defer f.Close()

	t, err := Load(f, schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Load reads a CSV feature table. Rows with a missing or non-finite required
// feature are kept in Rows but excluded from Records and reported in
// Missing. Repeated city names keep their first row.
func Load(r io.Reader, schema Schema) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	t := &Table{Header: trimAll(records[0]), Features: schema.Features}
	idColumn := schema.IDColumn
	if idColumn == "" {
		idColumn = "City"
	}
	t.IDIndex = indexOf(t.Header, idColumn)
	if t.IDIndex < 0 {
		return nil, fmt.Errorf("id column %q not found in header %v", idColumn, t.Header)
	}

	t.Columns = make([]int, len(schema.Features))
	for i, name := range schema.Features {
		idx := indexOf(t.Header, name)
		for _, alias := range schema.Aliases[name] {
			if idx >= 0 {
				break
			}
			idx = indexOf(t.Header, alias)
		}
		if idx < 0 {
			return nil, fmt.Errorf("feature column %q not found in header %v", name, t.Header)
		}
		t.Columns[i] = idx
	}

	seen := make(map[string]bool)
	for _, rec := range records[1:] {
		city := strings.TrimSpace(cell(rec, t.IDIndex))
		if city == "" {
			continue
		}
		if seen[city] {
			t.Duplicates = append(t.Duplicates, city)
			continue
		}
		seen[city] = true

		row := len(t.Rows)
		t.Rows = append(t.Rows, rec)

		values, missing := parseFeatures(rec, t.Columns, schema.Features)
		if missing != nil {
			missing.City = city
			missing.Row = row
			t.Missing = append(t.Missing, missing)
			continue
		}
		t.Records = append(t.Records, Record{City: city, Values: values, Row: row})
	}
	return t, nil
}

func parseFeatures(rec []string, columns []int, features []string) ([]float64, *MissingFeatureError) {
	values := make([]float64, len(columns))
	for i, idx := range columns {
		raw := strings.TrimSpace(cell(rec, idx))
		if raw == "" {
			return nil, &MissingFeatureError{Feature: features[i]}
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &MissingFeatureError{Feature: features[i], Value: raw}
		}
		values[i] = v
	}
	return values, nil
}

// Matrix returns the feature values of the complete records.
func (t *Table) Matrix() [][]float64 {
	out := make([][]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Values
	}
	return out
}

// Cities returns the city names of the complete records.
func (t *Table) Cities() []string {
	out := make([]string, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.City
	}
	return out
}

// City returns the id of source row i.
func (t *Table) City(i int) string {
	return strings.TrimSpace(cell(t.Rows[i], t.IDIndex))
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	}
	return out
}
