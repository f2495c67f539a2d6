package main

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/Regimes/internal/calculate"
)

func bandCmd(a *app) *cobra.Command {
	var (
		csvPath  string
		name     string
		sigma    float64
		quantile float64
	)

	cmd := &cobra.Command{
		Use:   "band",
		Short: "Report the k-sigma band and distribution stats of a column",
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(csvPath)
			if err != nil {
				return err
			}
			values, err := column(df, name)
			if err != nil {
				return err
			}

			lower, upper, err := calculate.SigmaBand(values, sigma)
			if err != nil {
				return err
			}
			log.Info().
				Str("column", name).
				Float64("sigma", sigma).
				Float64("lower", lower).
				Float64("upper", upper).
				Msg("Sigma band")

			stats, err := calculate.CalculateSigmaStats(values, sigma, quantile)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "input CSV with a header row")
	cmd.Flags().StringVar(&name, "column", "", "column to measure")
	cmd.Flags().Float64Var(&sigma, "sigma", calculate.DefaultSigma, "band half-width in standard deviations")
	cmd.Flags().Float64Var(&quantile, "quantile", 0.01, "tail quantile for the quantile band")
	cmd.MarkFlagRequired("column")
	return cmd
}
