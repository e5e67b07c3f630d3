package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"provcluster/internal/analysis"
	"provcluster/internal/config"
	"provcluster/internal/features"
)

// Written lists the files produced by WriteAll.
type Written []string

// WriteAll renders every configured report into the output directory.
// Outputs whose file name is empty are skipped.
func WriteAll(cfg *config.Config, res *analysis.Result, logger *zap.Logger) (Written, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		return nil, err
	}
	profiles := Profiles(res.Summaries, res.Features, cfg.Report.Rules)
	for _, p := range profiles {
		logger.Debug("cluster profile", zap.Int("cluster", p.Label), zap.String("name", p.Name))
	}

	var written Written
	write := func(name string, fn func(io.Writer) error) error {
		if name == "" {
			return nil
		}
		path := cfg.OutputPath(name)
		if err := writeFile(path, fn); err != nil {
			return fmt.Errorf("report %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	if err := write(cfg.Report.Markdown, func(w io.Writer) error {
		return WriteMarkdown(w, cfg, res, profiles)
	}); err != nil {
		return written, err
	}
	if err := write(cfg.Report.Text, func(w io.Writer) error {
		return WriteText(w, cfg, res, profiles)
	}); err != nil {
		return written, err
	}
	if name := cfg.Report.Assignments; name != "" {
		path := cfg.OutputPath(name)
		if err := features.WriteAssignmentsFile(path, res.Table, res.Assignment); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if name := cfg.Report.Workbook; name != "" {
		path := cfg.OutputPath(name)
		if err := WriteWorkbook(path, cfg, res, profiles); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	logger.Info("reports written", zap.Strings("files", written))
	return written, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
