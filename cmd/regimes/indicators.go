package main

import (
	"github.com/spf13/cobra"

	"github.com/Alias1177/Regimes/internal/batch"
	"github.com/Alias1177/Regimes/internal/calculate"
)

func indicatorsCmd(a *app) *cobra.Command {
	var (
		csvPath     string
		name        string
		forcePeriod int
		forceK      float64
		zeroRate    float64
		out         string
	)

	cmd := &cobra.Command{
		Use:   "indicators",
		Short: "Compute the base technical indicators of a close column",
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(csvPath)
			if err != nil {
				return err
			}
			closes, err := column(df, name)
			if err != nil {
				return err
			}

			features := calculate.BaseIndicators(closes, calculate.DefaultIndicatorConfig())
			force, err := calculate.ForceDirection(closes, forcePeriod, forceK, zeroRate)
			if err != nil {
				return err
			}
			features["force"] = force
			features[name] = closes

			frame, err := batch.FromColumns(features)
			if err != nil {
				return err
			}
			return writeFrame(out, frame)
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "input CSV with a header row")
	cmd.Flags().StringVar(&name, "column", "close", "close price column")
	cmd.Flags().IntVar(&forcePeriod, "force-period", 1, "difference period of the force direction")
	cmd.Flags().Float64Var(&forceK, "force-k", calculate.DefaultSigma, "standard deviations mapped to a full force of 1")
	cmd.Flags().Float64Var(&zeroRate, "zero-rate", 0, "force magnitudes below this percent snap to 0")
	cmd.Flags().StringVar(&out, "out", "", "output CSV (default: stdout)")
	return cmd
}
