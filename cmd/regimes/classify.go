package main

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/spf13/cobra"

	"github.com/Alias1177/Regimes/internal/regime"
)

func classifyCmd(a *app) *cobra.Command {
	var (
		csvPath  string
		columns  []string
		window   int
		rateUp   float64
		rateDown float64
		fillNaN  bool
		out      string
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Bucket each row by its percent change over a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(csvPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("window") {
				window = a.cfg.Segment.Window
			}

			cols := make([]series.Series, 0, len(columns))
			for _, name := range columns {
				values, err := column(df, name)
				if err != nil {
					return err
				}
				classes, err := regime.Classify(values, window, rateUp, rateDown, fillNaN)
				if err != nil {
					return err
				}
				cols = append(cols, series.New(classes, series.Float, name))
			}
			return writeFrame(out, dataframe.New(cols...))
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "input CSV with a header row")
	cmd.Flags().StringSliceVar(&columns, "column", nil, "columns to classify")
	cmd.Flags().IntVar(&window, "window", 0, "percent change period")
	cmd.Flags().Float64Var(&rateUp, "rate-up", 0.01, "relative rise of a strong up move")
	cmd.Flags().Float64Var(&rateDown, "rate-dn", 0.01, "relative fall of a strong down move")
	cmd.Flags().BoolVar(&fillNaN, "fill-nan", false, "report 0 where no change is defined")
	cmd.Flags().StringVar(&out, "out", "", "output CSV (default: stdout)")
	cmd.MarkFlagRequired("column")
	return cmd
}
