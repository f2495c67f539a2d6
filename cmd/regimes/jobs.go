package main

import (
	"context"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/Regimes/internal/batch"
	"github.com/Alias1177/Regimes/internal/config"
	"github.com/Alias1177/Regimes/internal/database"
	"github.com/Alias1177/Regimes/models"
)

func runJobsCmd(a *app) *cobra.Command {
	var (
		only     []string
		failFast bool
	)

	cmd := &cobra.Command{
		Use:   "run-jobs",
		Short: "Run the segmentation jobs listed in the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.cfg.Jobs) == 0 {
				return fmt.Errorf("no jobs configured, pass --config")
			}

			selected := make(map[string]bool)
			for _, name := range only {
				selected[name] = true
			}

			r := &jobRunner{app: a, runner: batch.NewRunner(a.metrics)}
			defer r.close()

			var failed int
			for _, job := range a.cfg.Jobs {
				if len(selected) > 0 && !selected[job.Name] {
					continue
				}
				if err := cmd.Context().Err(); err != nil {
					return err
				}

				logger := log.With().Str("job", job.Name).Str("source", job.Source).Logger()
				logger.Info().Msg("Running job")
				if err := r.run(cmd.Context(), job); err != nil {
					logger.Error().Err(err).Msg("Job failed")
					failed++
					if failFast {
						return err
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d job(s) failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&only, "job", nil, "run only the named jobs")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first failing job")
	return cmd
}

type jobRunner struct {
	app    *app
	runner *batch.Runner
	db     *database.DB
}

func (r *jobRunner) openDB(ctx context.Context) (*database.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := database.New(ctx, r.app.cfg.Database())
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

func (r *jobRunner) close() {
	if r.db != nil {
		r.db.Close()
	}
}

func (r *jobRunner) source(ctx context.Context, job config.Job) (models.SeriesSource, error) {
	switch job.Source {
	case "twelvedata":
		return r.app.twelveData(), nil
	case "postgres":
		return r.openDB(ctx)
	default:
		return nil, fmt.Errorf("unknown source %q", job.Source)
	}
}

func (r *jobRunner) run(ctx context.Context, job config.Job) error {
	opts, err := r.app.cfg.Segment.Merge(job.Segment).Options()
	if err != nil {
		return err
	}

	var (
		df      dataframe.DataFrame
		points  []models.Point
		columns = job.Columns
	)
	if job.Source == "csv" {
		df, err = readFrame(job.Path)
	} else {
		columns = nil
		var src models.SeriesSource
		if src, err = r.source(ctx, job); err != nil {
			return err
		}
		if points, err = src.Series(ctx, job.Symbol); err != nil {
			return fmt.Errorf("loading %s: %w", job.Symbol, err)
		}
		df, err = batch.FromColumns(map[string][]float64{job.Symbol: models.Values(points)})
	}
	if err != nil {
		return err
	}

	results, err := r.runner.Run(ctx, df, batch.Options{
		Segment: opts,
		Columns: columns,
		Workers: r.app.cfg.Workers,
	})
	if err != nil {
		return err
	}
	for _, res := range results {
		logSummary(res.Column, res.Regimes, res.Err)
	}

	if job.Save {
		if err := r.save(ctx, job, points, results); err != nil {
			return err
		}
	}

	if job.Out == "" {
		return nil
	}
	labels, err := batch.LabelsFrame(results)
	if err != nil {
		return err
	}
	return writeFrame(job.Out, labels)
}

func (r *jobRunner) save(ctx context.Context, job config.Job, points []models.Point, results []batch.ColumnResult) error {
	db, err := r.openDB(ctx)
	if err != nil {
		return err
	}
	opts, err := r.app.cfg.Segment.Merge(job.Segment).Options()
	if err != nil {
		return err
	}

	if job.Source == "twelvedata" {
		if _, err := db.SavePoints(ctx, job.Symbol, points); err != nil {
			return err
		}
	}
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if _, err := db.SaveRun(ctx, res.Column, opts, len(res.Labels), res.Regimes); err != nil {
			return err
		}
	}
	return nil
}
