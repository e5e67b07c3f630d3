// Package ingest turns irregular statistics-office spreadsheet exports into
// clean per-city CSV tables and merges them into one feature table.
package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"provcluster/internal/names"
)

// Grid is a raw sheet: rows of cell text with no header assumed.
type Grid [][]string

var ErrLegacyWorkbook = errors.New("legacy .xls workbooks are not supported; save as .xlsx or export as CSV")

// ReadGrid loads the named sheet (first sheet when empty) of an xlsx
// workbook, or a comma or tab separated text export.
func ReadGrid(path, sheet string) (Grid, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return readWorkbook(path, sheet)
	case ".xls":
		return nil, fmt.Errorf("%s: %w", path, ErrLegacyWorkbook)
	default:
		return readText(path)
	}
}

func readWorkbook(path, sheet string) (Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return Grid(rows), nil
}

func readText(path string) (Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()
	return parseText(f)
}

// parseText reads a delimited export. Tab wins over comma when the first
// line contains one.
func parseText(r io.Reader) (Grid, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}
	line := string(first)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if strings.Contains(line, "\t") {
		reader.Comma = '\t'
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	return Grid(rows), nil
}

// Cell returns the trimmed text at (r, c), or "" outside the grid.
func (g Grid) Cell(r, c int) string {
	if r < 0 || r >= len(g) || c < 0 || c >= len(g[r]) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(g[r][c], "\ufeff"))
}

// Layout is where the data of a sheet starts.
type Layout struct {
	MarkerRow int
	CityCol   int
	// HeaderRow is the row naming the columns, just above the data.
	HeaderRow int
	Header    []string
}

var ErrMarkerNotFound = errors.New("data start marker not found")

// Locate scans the first scanRows rows for the marker city, then walks up
// from it looking for the header row. When no header is recognised the row
// just above the marker is used.
func Locate(g Grid, marker string, scanRows int) (*Layout, error) {
	if scanRows <= 0 || scanRows > len(g) {
		scanRows = len(g)
	}
	key := names.Key(marker)

	l := &Layout{MarkerRow: -1, HeaderRow: -1}
	for r := 0; r < scanRows && l.MarkerRow < 0; r++ {
		for c := range g[r] {
			if strings.Contains(names.Key(g.Cell(r, c)), key) {
				l.MarkerRow, l.CityCol = r, c
				break
			}
		}
	}
	if l.MarkerRow < 0 {
		return nil, fmt.Errorf("%w: %q in first %d rows", ErrMarkerNotFound, marker, scanRows)
	}

	for r := l.MarkerRow - 1; r >= 0; r-- {
		if isHeaderRow(g[r]) {
			l.HeaderRow = r
			break
		}
	}
	if l.HeaderRow < 0 {
		l.HeaderRow = l.MarkerRow - 1
	}
	if l.HeaderRow >= 0 {
		l.Header = make([]string, len(g[l.HeaderRow]))
		for c := range l.Header {
			l.Header[c] = g.Cell(l.HeaderRow, c)
		}
	}
	return l, nil
}

func isHeaderRow(row []string) bool {
	for _, cell := range row {
		raw := strings.TrimSpace(cell)
		if strings.Contains(names.Key(raw), "PROVINCE") {
			return true
		}
		firstLine, _, _ := strings.Cut(raw, "\n")
		if names.Key(firstLine) == "IL" {
			return true
		}
	}
	return false
}
