// Package geomap joins cluster labels onto province boundaries and renders
// them as a Leaflet choropleth and an ECharts explorer page.
package geomap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

var ErrNoBoundaries = errors.New("no province boundaries could be loaded")

// LoadBoundaries tries each source in order, local paths or http(s) URLs,
// and returns the first that parses as a FeatureCollection.
func LoadBoundaries(ctx context.Context, sources []string, timeout time.Duration, logger *zap.Logger) (*geojson.FeatureCollection, string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := &http.Client{Timeout: timeout}

	var errs []error
	for _, src := range sources {
		data, err := fetch(ctx, client, src)
		if err == nil {
			var fc *geojson.FeatureCollection
			fc, err = geojson.UnmarshalFeatureCollection(data)
			if err == nil && len(fc.Features) == 0 {
				err = errors.New("no features")
			}
			if err == nil {
				logger.Info("boundaries loaded", zap.String("source", src), zap.Int("features", len(fc.Features)))
				return fc, src, nil
			}
		}
		logger.Debug("boundary source failed", zap.String("source", src), zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", src, err))
	}
	return nil, "", fmt.Errorf("%w: %w", ErrNoBoundaries, errors.Join(errs...))
}

func fetch(ctx context.Context, client *http.Client, src string) ([]byte, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.ReadFile(src)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
