package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"

	"provcluster/internal/config"
	"provcluster/internal/names"
)

const cityColumn = "City"

func stringOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	}
}

// DataFrame returns the extraction as an all-string frame.
func (ex *Extraction) DataFrame() dataframe.DataFrame {
	records := make([][]string, 0, len(ex.Rows)+1)
	records = append(records, ex.Header)
	records = append(records, ex.Rows...)
	return dataframe.LoadRecords(records, stringOptions()...)
}

// WriteCSV writes the extraction, creating parent directories.
func (ex *Extraction) WriteCSV(path string) error {
	return writeFrame(path, ex.DataFrame())
}

func writeFrame(path string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return df.Err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// readFrame loads a validated CSV with clean, de-duplicated city names and
// the input's renames applied.
func readFrame(path string, in config.MergeInput) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer f.Close()

	df := dataframe.ReadCSV(f, stringOptions()...)
	if df.Err != nil {
		return df, fmt.Errorf("reading %s: %w", path, df.Err)
	}
	if !hasColumn(df, cityColumn) {
		return df, fmt.Errorf("%s: no %s column in %v", path, cityColumn, df.Names())
	}

	cities := df.Col(cityColumn).Records()
	seen := make(map[string]bool, len(cities))
	var keep []int
	for i, c := range cities {
		c = names.Clean(c)
		cities[i] = c
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		keep = append(keep, i)
	}
	df = df.Mutate(series.New(cities, series.String, cityColumn))
	if len(keep) < len(cities) && len(keep) > 0 {
		df = df.Subset(keep)
	}

	if in.LatestYear != "" {
		years := yearColumns(df.Names())
		if len(years) == 0 {
			return df, fmt.Errorf("%s: no year columns to rename to %s", path, in.LatestYear)
		}
		df = df.Rename(in.LatestYear, df.Names()[years[len(years)-1]])
	}
	olds := make([]string, 0, len(in.Rename))
	for old := range in.Rename {
		olds = append(olds, old)
	}
	sort.Strings(olds)
	for _, old := range olds {
		if hasColumn(df, old) {
			df = df.Rename(in.Rename[old], old)
		}
	}
	return df, df.Err
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Merge joins the configured inputs on City. Relative input paths are
// resolved against dir.
func Merge(cfg config.MergeConfig, dir string, logger *zap.Logger) (dataframe.DataFrame, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Inputs) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("merge: no inputs configured")
	}

	var merged dataframe.DataFrame
	for i, in := range cfg.Inputs {
		path := in.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		df, err := readFrame(path, in)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("merge: %w", err)
		}
		logger.Debug("merge input loaded",
			zap.String("path", path),
			zap.Int("rows", df.Nrow()),
			zap.Strings("columns", df.Names()))
		if i == 0 {
			merged = df
			continue
		}
		if cfg.How == "outer" {
			merged = merged.OuterJoin(df, cityColumn)
		} else {
			merged = merged.InnerJoin(df, cityColumn)
		}
		if merged.Err != nil {
			return merged, fmt.Errorf("merge: joining %s: %w", path, merged.Err)
		}
	}

	if len(cfg.Columns) > 0 {
		var missing []string
		for _, c := range cfg.Columns {
			if !hasColumn(merged, c) {
				missing = append(missing, c)
			}
		}
		if len(missing) > 0 {
			return merged, fmt.Errorf("merge: columns %v not found in %v", missing, merged.Names())
		}
		merged = merged.Select(cfg.Columns)
	}

	logger.Info("feature table merged",
		zap.Int("inputs", len(cfg.Inputs)),
		zap.Int("cities", merged.Nrow()),
		zap.String("how", cfg.How))
	return merged, merged.Err
}

// MergeFile runs Merge and writes the result to output.
func MergeFile(cfg config.MergeConfig, dir, output string, logger *zap.Logger) (int, error) {
	df, err := Merge(cfg, dir, logger)
	if err != nil {
		return 0, err
	}
	if err := writeFrame(output, df); err != nil {
		return 0, err
	}
	return df.Nrow(), nil
}
