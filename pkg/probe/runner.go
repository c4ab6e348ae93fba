package probe

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/material"
)

// Run probes every material concurrently. Reports come back sorted by name,
// and each material uses its own seed so the result does not depend on
// scheduling.
func Run(ctx context.Context, materials map[string]material.Material, cfg Config, logger core.Logger) ([]*Report, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	if cfg.Samples <= 0 {
		return nil, ErrNoSamples
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	names := make([]string, 0, len(materials))
	for name := range materials {
		names = append(names, name)
	}
	sort.Strings(names)

	reports := make([]*Report, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	start := time.Now()
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := time.Now()
			r, err := Material(name, materials[name], cfg, cfg.Seed+int64(i))
			if err != nil {
				return fmt.Errorf("probe %q: %w", name, err)
			}
			reports[i] = r
			logger.Printf("Probed %s in %v\n", name, time.Since(t))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Printf("Probed %d materials with %d workers in %v\n", len(names), workers, time.Since(start))
	return reports, nil
}
