package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// loadEnv reads dir/.env if present and applies PROVCLUSTER_* overrides.
// Variables already set in the environment win over the .env file.
func (c *Config) loadEnv(dir string) error {
	envFile := filepath.Join(dir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return c.ApplyEnv()
}

// ApplyEnv overrides fields from PROVCLUSTER_* environment variables.
func (c *Config) ApplyEnv() error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"PROVCLUSTER_CLUSTERS", &c.Clustering.Clusters},
		{"PROVCLUSTER_RESTARTS", &c.Clustering.Restarts},
		{"PROVCLUSTER_REPRESENTATIVES", &c.Clustering.Representatives},
	}
	for _, e := range ints {
		v, ok := os.LookupEnv(e.name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.name, err)
		}
		*e.dst = n
	}

	if v := os.Getenv("PROVCLUSTER_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("PROVCLUSTER_SEED: %w", err)
		}
		c.Clustering.Seed = n
	}
	if v := os.Getenv("PROVCLUSTER_INPUT"); v != "" {
		c.Paths.Input = v
	}
	if v := os.Getenv("PROVCLUSTER_OUTPUT_DIR"); v != "" {
		c.Paths.OutputDir = v
	}
	if v := os.Getenv("PROVCLUSTER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}
