package automation

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/mnasim/internal/config"
	"github.com/san-kum/mnasim/internal/optim"
)

// RunSweepParallel evaluates the sweep points on up to workers goroutines.
// Results keep sweep order. The first failure cancels the remaining points.
func RunSweepParallel(ctx context.Context, sweep *ParameterSweep, base *config.Config, workers int) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	if workers < 1 {
		workers = 1
	}

	values := optim.Linspace(sweep.ParamMin, sweep.ParamMax, sweep.NumSteps)
	results := make([]SweepResult, len(values))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, v := range values {
		g.Go(func() error {
			r, err := sweepPoint(ctx, base, sweep.ParamName, v)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
