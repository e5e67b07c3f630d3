package features

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Labeler looks up the cluster label of a city.
type Labeler interface {
	Label(city string) (int, bool)
}

// WriteAssignments writes every source row with a trailing Cluster column.
// Rows that were excluded from clustering get an empty label.
func WriteAssignments(w io.Writer, t *Table, labels Labeler) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{}, t.Header...), "Cluster")
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, rec := range t.Rows {
		row := make([]string, len(t.Header)+1)
		copy(row, rec)
		if label, ok := labels.Label(t.City(i)); ok {
			row[len(row)-1] = strconv.Itoa(label)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteAssignmentsFile(path string, t *Table, labels Labeler) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating assignment table: %w", err)
	}
	if err := WriteAssignments(f, t, labels); err != nil {
		f.Close()
		return fmt.Errorf("writing assignment table: %w", err)
	}
	return f.Close()
}
