package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"provcluster/internal/config"
	"provcluster/internal/logging"
)

var (
	// Global flags
	configPath string
	variant    string
	outputDir  string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "provcluster",
	Short: "Demographic clustering of Turkish provinces",
	Long: `provcluster groups Turkish provinces by household size, marital status
and age structure.

Raw statistics-office exports are extracted and merged into a feature table,
clustered with seeded k-means, and rendered as reports, PDF charts and a
choropleth map.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cmd.Flags().Changed("variant") {
			cfg, err = config.Variant(variant)
			if err == nil {
				err = cfg.ApplyEnv()
			}
		} else {
			cfg, err = config.Load(configPath)
		}
		if err != nil {
			return err
		}
		if outputDir != "" {
			cfg.Paths.OutputDir = outputDir
		}

		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format, verbose)
		if err != nil {
			return err
		}
		logger.Debug("configuration loaded",
			zap.String("config", configPath),
			zap.String("variant", cfg.Variant),
			zap.Strings("features", cfg.Features.Columns))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "provcluster.yaml", "Configuration file")
	rootCmd.PersistentFlags().StringVar(&variant, "variant", "", "Use a built-in preset instead of the config file (validated or full)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides paths.output_dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(chartsCmd)
	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.Red("❌ %v", err)
		stop()
		os.Exit(1)
	}
}

// step prints a progress line for the user; structured details go to the
// logger.
func step(format string, args ...any) {
	fmt.Fprintf(color.Output, format+"\n", args...)
}
