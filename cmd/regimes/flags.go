package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/spf13/cobra"

	"github.com/Alias1177/Regimes/internal/batch"
	"github.com/Alias1177/Regimes/internal/config"
)

// segmentFlags are the segmentation options a command accepts on the
// command line. Only flags set explicitly override the configuration.
type segmentFlags struct {
	window      int
	rateUp      float64
	rateDown    float64
	future      bool
	validChange int
	threshold   string
}

func (f *segmentFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVar(&f.window, "window", 0, "extrema window length")
	flags.Float64Var(&f.rateUp, "rate-up", 0, "up regime threshold rate")
	flags.Float64Var(&f.rateDown, "rate-dn", 0, "down regime threshold rate")
	flags.BoolVar(&f.future, "future", false, "use leading windows instead of trailing ones")
	flags.IntVar(&f.validChange, "valid-change", 0, "regimes shorter than this are neutral")
	flags.StringVar(&f.threshold, "threshold", "", "threshold mode: multiplicative or percent")
}

func (f *segmentFlags) apply(cmd *cobra.Command, base config.SegmentConfig) config.SegmentConfig {
	flags := cmd.Flags()
	if flags.Changed("window") {
		base.Window = f.window
	}
	if flags.Changed("rate-up") {
		base.RateUp = f.rateUp
	}
	if flags.Changed("rate-dn") {
		base.RateDown = f.rateDown
	}
	if flags.Changed("future") {
		base.Future = f.future
	}
	if flags.Changed("valid-change") {
		base.ValidChange = f.validChange
	}
	if flags.Changed("threshold") {
		base.Threshold = f.threshold
	}
	return base
}

func readFrame(path string) (dataframe.DataFrame, error) {
	if path == "" {
		return dataframe.DataFrame{}, fmt.Errorf("--csv is required")
	}
	file, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer file.Close()
	return batch.LoadCSV(file)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOut opens path for writing, stdout for "" or "-"
func openOut(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

func writeFrame(path string, df dataframe.DataFrame) error {
	out, err := openOut(path)
	if err != nil {
		return err
	}
	if err := batch.WriteCSV(out, df); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func column(df dataframe.DataFrame, name string) ([]float64, error) {
	col := df.Col(name)
	if col.Err != nil {
		return nil, fmt.Errorf("column %q: %w", name, col.Err)
	}
	return col.Float(), nil
}
