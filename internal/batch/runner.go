package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Alias1177/Regimes/internal/metrics"
	"github.com/Alias1177/Regimes/internal/regime"
	"github.com/Alias1177/Regimes/internal/scaler"
)

// Options configures a batch run over the columns of a frame
type Options struct {
	Segment regime.Options
	// Columns to segment, all numeric columns when empty
	Columns []string
	// Workers bounds the number of columns segmented at once, GOMAXPROCS when <= 0
	Workers int
	// FailFast aborts the whole run on the first failing column
	FailFast bool
}

// ColumnResult is the outcome of segmenting one column
type ColumnResult struct {
	Column  string
	Labels  []regime.Label
	Regimes []regime.Regime
	Err     error
}

// Runner segments many series concurrently
type Runner struct {
	metrics *metrics.Registry
	logger  zerolog.Logger
}

// NewRunner creates a Runner; m may be nil
func NewRunner(m *metrics.Registry) *Runner {
	return &Runner{
		metrics: m,
		logger:  log.With().Str("component", "batch").Logger(),
	}
}

// Run segments every selected column of df with the same options.
// Results come back in column order. A failing column only fails the run
// when FailFast is set, otherwise its error is kept in its ColumnResult.
func (r *Runner) Run(ctx context.Context, df dataframe.DataFrame, opts Options) ([]ColumnResult, error) {
	columns := opts.Columns
	if len(columns) == 0 {
		columns = scaler.NumericColumns(df)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no numeric columns to segment")
	}

	values := make([][]float64, len(columns))
	for i, name := range columns {
		col := df.Col(name)
		if col.Err != nil {
			return nil, fmt.Errorf("column %q: %w", name, col.Err)
		}
		values[i] = col.Float()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	r.logger.Debug().
		Int("columns", len(columns)).
		Int("workers", workers).
		Str("mode", opts.Segment.Mode()).
		Msg("Starting batch segmentation")

	results := make([]ColumnResult, len(columns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, name := range columns {
		if gctx.Err() != nil {
			break
		}
		results[i].Column = name

		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.metrics.ColumnStarted()
			defer r.metrics.ColumnDone()

			err := r.segment(&results[i], values[i], opts.Segment)
			if err == nil {
				return nil
			}

			results[i].Err = fmt.Errorf("column %q: %w", name, err)
			r.logger.Warn().Err(err).Str("column", name).Msg("Column segmentation failed")
			if opts.FailFast {
				return results[i].Err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (r *Runner) segment(res *ColumnResult, series []float64, opts regime.Options) error {
	start := time.Now()
	regimes, err := regime.Regimes(series, opts)
	r.metrics.ObserveSegment(opts.Mode(), time.Since(start), regimes, err)
	if err != nil {
		return err
	}

	labels, err := regime.Expand(regimes, len(series))
	if err != nil {
		return err
	}
	res.Regimes = regimes
	res.Labels = labels
	return nil
}
