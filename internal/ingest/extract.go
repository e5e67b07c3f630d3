package ingest

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"provcluster/internal/config"
	"provcluster/internal/names"
)

// Extraction is one cleaned per-city table.
type Extraction struct {
	Kind   string
	Header []string
	Rows   [][]string
	// Skipped counts data rows whose numeric cells did not parse.
	Skipped    int
	Duplicates int
}

// Extractor pulls a clean table out of a raw grid.
type Extractor func(g Grid, src config.SourceConfig, opts Options) (*Extraction, error)

// Options are shared by every extractor.
type Options struct {
	Marker   string
	ScanRows int
}

var extractors = map[string]Extractor{
	"household":  extractHousehold,
	"marital":    extractMarital,
	"dependency": extractDependency,
	"median_age": extractMedianAge,
	"population": extractPopulation,
}

// Kinds lists the supported source kinds.
func Kinds() []string {
	out := make([]string, 0, len(extractors))
	for k := range extractors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Extract reads src and runs the extractor for its kind.
func Extract(src config.SourceConfig, opts Options, logger *zap.Logger) (*Extraction, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fn, ok := extractors[src.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown source kind %q (want one of %s)", src.Kind, strings.Join(Kinds(), ", "))
	}
	g, err := ReadGrid(src.Path, src.Sheet)
	if err != nil {
		return nil, err
	}
	ex, err := fn(g, src, opts)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", src.Kind, src.Path, err)
	}
	ex.Kind = src.Kind
	logger.Info("source extracted",
		zap.String("kind", src.Kind),
		zap.String("path", src.Path),
		zap.Int("rows", len(ex.Rows)),
		zap.Int("skipped", ex.Skipped),
		zap.Int("duplicates", ex.Duplicates))
	return ex, nil
}

var yearHeader = regexp.MustCompile(`^(19|20)\d{2}`)

// yearColumns returns the columns whose header starts with a year, sorted
// by year ascending.
func yearColumns(header []string) []int {
	var cols []int
	for c, h := range header {
		if yearHeader.MatchString(h) {
			cols = append(cols, c)
		}
	}
	sort.SliceStable(cols, func(a, b int) bool {
		return header[cols[a]][:4] < header[cols[b]][:4]
	})
	return cols
}

func yearOf(h string) string {
	if len(h) < 4 {
		return h
	}
	return h[:4]
}

// parseNumber accepts a decimal comma when no decimal point is present.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// dataRows walks the rows from start on and yields the cleaned city name of
// every row that is not a sentinel.
func dataRows(g Grid, start, cityCol int, fn func(r int, city string)) {
	for r := start; r < len(g); r++ {
		raw := g.Cell(r, cityCol)
		if names.IsSentinel(raw) {
			continue
		}
		fn(r, names.Clean(raw))
	}
}

// household keeps the configured year, or the three latest year columns.
func extractHousehold(g Grid, src config.SourceConfig, opts Options) (*Extraction, error) {
	l, err := Locate(g, opts.Marker, opts.ScanRows)
	if err != nil {
		return nil, err
	}
	years := yearColumns(l.Header)
	if src.Year != "" {
		years = filterYear(l.Header, years, src.Year)
	} else if len(years) > 3 {
		years = years[len(years)-3:]
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("no year columns in header %v", l.Header)
	}

	ex := &Extraction{Header: []string{"City"}}
	for _, c := range years {
		ex.Header = append(ex.Header, yearOf(l.Header[c]))
	}
	seen := make(map[string]bool)
	dataRows(g, l.MarkerRow, l.CityCol, func(r int, city string) {
		row := []string{city}
		for _, c := range years {
			v, err := parseNumber(g.Cell(r, c))
			if err != nil {
				ex.Skipped++
				return
			}
			row = append(row, formatNumber(v))
		}
		if seen[city] {
			ex.Duplicates++
			return
		}
		seen[city] = true
		ex.Rows = append(ex.Rows, row)
	})
	return ex, nil
}

func filterYear(header []string, cols []int, year string) []int {
	for _, c := range cols {
		if yearOf(header[c]) == year {
			return []int{c}
		}
	}
	return nil
}

func column(src config.SourceConfig, name string, def int) int {
	if c, ok := src.Columns[name]; ok {
		return c
	}
	return def
}

// marital reads fixed column positions and derives shares of the 15+
// population. The newest year sits on top, so the first row per city wins.
func extractMarital(g Grid, src config.SourceConfig, _ Options) (*Extraction, error) {
	cityCol := column(src, "city", 1)
	cols := []int{
		column(src, "total", 2),
		column(src, "never_married", 6),
		column(src, "married", 10),
		column(src, "divorced", 14),
		column(src, "widowed", 18),
	}

	ex := &Extraction{Header: []string{
		"City", "Marital_Total_Pop", "Never_Married", "Married", "Divorced", "Widowed",
		"Pct_Married", "Pct_Divorced", "Pct_Never_Married", "Pct_Widowed", "Pct_Divorced_Ever_Married",
	}}
	seen := make(map[string]bool)
	dataRows(g, 0, cityCol, func(r int, city string) {
		v := make([]float64, len(cols))
		for i, c := range cols {
			n, err := parseNumber(g.Cell(r, c))
			if err != nil {
				ex.Skipped++
				return
			}
			v[i] = n
		}
		if seen[city] {
			ex.Duplicates++
			return
		}
		seen[city] = true

		total, never, married, divorced, widowed := v[0], v[1], v[2], v[3], v[4]
		if total == 0 {
			ex.Skipped++
			return
		}
		ever := married + divorced + widowed
		everShare := 0.0
		if ever > 0 {
			everShare = divorced / ever
		}
		row := []string{city}
		for _, x := range []float64{
			total, never, married, divorced, widowed,
			married / total, divorced / total, never / total, widowed / total, everShare,
		} {
			row = append(row, formatNumber(x))
		}
		ex.Rows = append(ex.Rows, row)
	})
	return ex, nil
}

// dependency reads fixed column positions; a later row for the same city
// replaces the earlier one.
func extractDependency(g Grid, src config.SourceConfig, _ Options) (*Extraction, error) {
	cityCol := column(src, "city", 1)
	cols := []int{
		column(src, "total", 7),
		column(src, "child", 8),
		column(src, "elderly", 9),
	}

	ex := &Extraction{Header: []string{"City", "Total_Dependency_Ratio", "Child_Dependency_Ratio", "Elderly_Dependency_Ratio"}}
	index := make(map[string]int)
	dataRows(g, 0, cityCol, func(r int, city string) {
		row := []string{city}
		for _, c := range cols {
			v, err := parseNumber(g.Cell(r, c))
			if err != nil {
				ex.Skipped++
				return
			}
			row = append(row, formatNumber(v))
		}
		if i, ok := index[city]; ok {
			ex.Duplicates++
			ex.Rows[i] = row
			return
		}
		index[city] = len(ex.Rows)
		ex.Rows = append(ex.Rows, row)
	})
	return ex, nil
}

// median_age prefers a Total/Toplam column, then the latest year column,
// then the column right of the city.
func extractMedianAge(g Grid, src config.SourceConfig, opts Options) (*Extraction, error) {
	l, err := Locate(g, opts.Marker, opts.ScanRows)
	if err != nil {
		return nil, err
	}
	col := -1
	for c, h := range l.Header {
		k := names.Key(h)
		if strings.Contains(k, "TOTAL") || strings.Contains(k, "TOPLAM") {
			col = c
			break
		}
	}
	if col < 0 {
		if years := yearColumns(l.Header); len(years) > 0 {
			col = years[len(years)-1]
		} else {
			col = l.CityCol + 1
		}
	}
	return singleColumn(g, l, col, "Median_Age"), nil
}

// population uses the configured year column, else the latest one.
func extractPopulation(g Grid, src config.SourceConfig, opts Options) (*Extraction, error) {
	l, err := Locate(g, opts.Marker, opts.ScanRows)
	if err != nil {
		return nil, err
	}
	years := yearColumns(l.Header)
	if src.Year != "" {
		if c := filterYear(l.Header, years, src.Year); len(c) == 1 {
			years = c
		}
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("no year columns in header %v", l.Header)
	}
	return singleColumn(g, l, years[len(years)-1], "Population"), nil
}

func singleColumn(g Grid, l *Layout, col int, name string) *Extraction {
	ex := &Extraction{Header: []string{"City", name}}
	seen := make(map[string]bool)
	dataRows(g, l.MarkerRow, l.CityCol, func(r int, city string) {
		v, err := parseNumber(g.Cell(r, col))
		if err != nil {
			ex.Skipped++
			return
		}
		if seen[city] {
			ex.Duplicates++
			return
		}
		seen[city] = true
		ex.Rows = append(ex.Rows, []string{city, formatNumber(v)})
	})
	return ex
}

// ExtractAll extracts every configured source into the validated-data
// directory. A failing source stops the run.
func ExtractAll(cfg *config.Config, logger *zap.Logger) ([]*Extraction, error) {
	opts := Options{Marker: cfg.Ingest.Marker, ScanRows: cfg.Ingest.ScanRows}
	var out []*Extraction
	for _, src := range cfg.Ingest.Sources {
		ex, err := Extract(src, opts, logger)
		if err != nil {
			return out, err
		}
		if err := ex.WriteCSV(cfg.ValidatedPath(src.Output)); err != nil {
			return out, err
		}
		out = append(out, ex)
	}
	return out, nil
}
