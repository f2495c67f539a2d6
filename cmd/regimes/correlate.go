package main

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/Regimes/internal/correlation"
)

type correlationReport struct {
	Method         correlation.Method     `json:"method"`
	Columns        []string               `json:"columns"`
	Positive       []correlation.Relation `json:"positive"`
	Negative       []correlation.Relation `json:"negative"`
	PositiveGroups [][]string             `json:"positive_groups"`
	NegativeGroups [][]string             `json:"negative_groups"`
	Highest        [][]string             `json:"highest,omitempty"`
}

func correlateCmd(a *app) *cobra.Command {
	var (
		csvPath   string
		columns   []string
		method    string
		rateMin   float64
		rateMax   float64
		abs       bool
		top       int
		negative  bool
		matrixOut string
	)

	defaults := correlation.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "correlate",
		Short: "Group the numeric columns of a CSV by correlation",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := correlation.ParseMethod(method)
			if err != nil {
				return err
			}
			df, err := readFrame(csvPath)
			if err != nil {
				return err
			}

			matrix, err := correlation.Compute(df, columns, m)
			if err != nil {
				return err
			}
			grouping, err := correlation.Fit(matrix, correlation.Options{Min: rateMin, Max: rateMax, Abs: abs})
			if err != nil {
				return err
			}

			report := correlationReport{
				Method:         m,
				Columns:        matrix.Columns(),
				Positive:       grouping.Relations(correlation.Positive),
				Negative:       grouping.Relations(correlation.Negative),
				PositiveGroups: grouping.Groups(correlation.Positive),
				NegativeGroups: grouping.Groups(correlation.Negative),
			}
			if top > 0 {
				sign := correlation.Positive
				if negative {
					sign = correlation.Negative
				}
				if report.Highest, err = matrix.Highest(top, sign, rateMin, rateMax); err != nil {
					return err
				}
			}

			log.Info().
				Str("method", string(m)).
				Int("columns", len(report.Columns)).
				Int("positive_groups", len(report.PositiveGroups)).
				Int("negative_groups", len(report.NegativeGroups)).
				Msg("Correlation groups")

			if matrixOut != "" {
				if err := writeFrame(matrixOut, matrix.Frame()); err != nil {
					return err
				}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&csvPath, "csv", "", "input CSV with a header row")
	flags.StringSliceVar(&columns, "column", nil, "columns to correlate (default: all numeric)")
	flags.StringVar(&method, "method", string(correlation.Spearman), "pearson or spearman")
	flags.Float64Var(&rateMin, "rate-min", defaults.Min, "smallest correlation magnitude that links two columns")
	flags.Float64Var(&rateMax, "rate-max", defaults.Max, "largest correlation magnitude that links two columns")
	flags.BoolVar(&abs, "abs", false, "group on absolute correlations")
	flags.IntVar(&top, "top", 0, "also list up to this many strongest partners per column")
	flags.BoolVar(&negative, "negative", false, "rank --top partners by negative correlation")
	flags.StringVar(&matrixOut, "matrix", "", "write the correlation matrix as CSV")
	return cmd
}
