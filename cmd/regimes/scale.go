package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/Regimes/internal/scaler"
)

func scaleCmd(a *app) *cobra.Command {
	var (
		csvPath   string
		columns   []string
		groups    []string
		scale     []float64
		zeroBase  bool
		sameScale bool
		zeroAdd   bool
		store     string
		restore   string
		inverse   bool
		out       string
	)

	cmd := &cobra.Command{
		Use:   "scale",
		Short: "Min-max scale the numeric columns of a CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			df, err := readFrame(csvPath)
			if err != nil {
				return err
			}
			if len(scale) != 2 {
				return fmt.Errorf("--scale needs two values, got %d", len(scale))
			}

			s, err := loadScaler(restore, scaler.Options{
				Scale:     [2]float64{scale[0], scale[1]},
				ZeroBase:  zeroBase,
				SameScale: sameScale,
				ZeroAdd:   zeroAdd,
			})
			if err != nil {
				return err
			}

			if restore == "" {
				var fitGroups [][]string
				for _, g := range groups {
					fitGroups = append(fitGroups, strings.Split(g, ","))
				}
				if err := s.FitFrame(df, columns, fitGroups); err != nil {
					return err
				}
			}

			var scaled dataframe.DataFrame
			if inverse {
				scaled, err = s.InverseFrame(df, columns)
			} else {
				scaled, err = s.TransformFrame(df, columns)
			}
			if err != nil {
				return err
			}

			if store != "" {
				if err := storeScaler(store, s); err != nil {
					return err
				}
				log.Info().Str("path", store).Msg("Stored scaler")
			}
			return writeFrame(out, scaled)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&csvPath, "csv", "", "input CSV with a header row")
	flags.StringSliceVar(&columns, "column", nil, "columns to scale (default: all numeric)")
	flags.StringArrayVar(&groups, "group", nil, "comma separated columns sharing one fit, repeatable")
	flags.Float64SliceVar(&scale, "scale", []float64{-1, 1}, "target range")
	flags.BoolVar(&zeroBase, "zero-base", false, "scale negative and positive values separately around zero")
	flags.BoolVar(&sameScale, "same-scale", false, "use the same magnitude on both sides of zero")
	flags.BoolVar(&zeroAdd, "zero-add", false, "include zero in the fitted range")
	flags.StringVar(&store, "store", "", "write the fitted scaler as JSON")
	flags.StringVar(&restore, "restore", "", "reuse a scaler written by --store instead of fitting")
	flags.BoolVar(&inverse, "inverse", false, "map scaled values back to the original range")
	flags.StringVar(&out, "out", "", "output CSV (default: stdout)")
	return cmd
}

func loadScaler(path string, opts scaler.Options) (*scaler.Scaler, error) {
	if path == "" {
		return scaler.New(opts), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return scaler.Restore(file)
}

func storeScaler(path string, s *scaler.Scaler) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Store(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
