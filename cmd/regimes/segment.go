package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/Regimes/internal/batch"
	"github.com/Alias1177/Regimes/internal/regime"
)

func segmentCmd(a *app) *cobra.Command {
	var (
		seg      segmentFlags
		csvPath  string
		columns  []string
		out      string
		workers  int
		failFast bool
	)

	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Label every row of the CSV columns up, down or neutral",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := seg.apply(cmd, a.cfg.Segment).Options()
			if err != nil {
				return err
			}

			df, err := readFrame(csvPath)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Workers
			}

			results, err := batch.NewRunner(a.metrics).Run(cmd.Context(), df, batch.Options{
				Segment:  opts,
				Columns:  columns,
				Workers:  workers,
				FailFast: failFast,
			})
			if err != nil {
				return err
			}

			for _, res := range results {
				logSummary(res.Column, res.Regimes, res.Err)
			}

			labels, err := batch.LabelsFrame(results)
			if err != nil {
				return err
			}
			return writeFrame(out, labels)
		},
	}

	seg.register(cmd)
	cmd.Flags().StringVar(&csvPath, "csv", "", "input CSV with a header row")
	cmd.Flags().StringSliceVar(&columns, "column", nil, "columns to segment (default: all numeric)")
	cmd.Flags().StringVar(&out, "out", "", "output CSV (default: stdout)")
	cmd.Flags().IntVar(&workers, "workers", 0, "columns segmented at once")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first failing column")
	return cmd
}

func logSummary(name string, regimes []regime.Regime, err error) {
	if err != nil {
		log.Error().Err(err).Str("series", name).Msg("Segmentation failed")
		return
	}
	s := regime.Summarize(regimes)
	log.Info().
		Str("series", name).
		Int("regimes", s.Regimes).
		Int("up", s.Up).
		Int("down", s.Down).
		Int("neutral", s.Neutral).
		Int("flipped", s.Flipped).
		Float64("mean_length", s.MeanLength).
		Float64("mean_up_return", s.MeanUpReturn).
		Float64("mean_down_return", s.MeanDownReturn).
		Msg("Segmentation summary")
}
