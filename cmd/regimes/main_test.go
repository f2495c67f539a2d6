package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/Regimes/internal/batch"
	"github.com/Alias1177/Regimes/internal/calculate"
	"github.com/Alias1177/Regimes/internal/config"
	"github.com/Alias1177/Regimes/internal/regime"
	"github.com/Alias1177/Regimes/internal/scaler"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	root := newRootCmd(&app{})
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

// runOut runs the command tree and returns what it wrote to stdout
func runOut(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := newRootCmd(&app{})
	root.SetOut(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func loadOut(t *testing.T, path string) dataframe.DataFrame {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	df, err := batch.LoadCSV(file)
	require.NoError(t, err)
	return df
}

func readOut(t *testing.T, path string) []float64 {
	t.Helper()
	df := loadOut(t, path)
	return df.Col(df.Names()[0]).Float()
}

func TestSegmentCommand(t *testing.T) {
	in := writeCSV(t, "close\n1\n2\n3\n4\n5\n6\n")
	out := filepath.Join(t.TempDir(), "labels.csv")

	require.NoError(t, run(t, "segment", "--csv", in, "--window", "3", "--out", out))
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 1}, readOut(t, out))
}

func TestSegmentCommand_InvalidWindow(t *testing.T) {
	in := writeCSV(t, "close\n1\n2\n3\n")
	out := filepath.Join(t.TempDir(), "labels.csv")

	err := run(t, "segment", "--csv", in, "--window", "9", "--out", out, "--fail-fast")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window")
}

func TestClassifyCommand(t *testing.T) {
	in := writeCSV(t, "close\n100\n102\n101\n")
	out := filepath.Join(t.TempDir(), "classes.csv")

	require.NoError(t, run(t, "classify", "--csv", in, "--column", "close", "--window", "1", "--fill-nan", "--out", out))
	assert.Equal(t, []float64{0, 1, -0.5}, readOut(t, out))
}

func TestScaleCommand_StoreRestore(t *testing.T) {
	in := writeCSV(t, "a\n0\n5\n10\n")
	dir := t.TempDir()
	stored := filepath.Join(dir, "scaler.json")
	out := filepath.Join(dir, "scaled.csv")

	require.NoError(t, run(t, "scale", "--csv", in, "--store", stored, "--out", out))
	assert.Equal(t, []float64{-1, 0, 1}, readOut(t, out))

	file, err := os.Open(stored)
	require.NoError(t, err)
	defer file.Close()
	s, err := scaler.Restore(file)
	require.NoError(t, err)
	_, ok := s.Fitted("a")
	assert.True(t, ok)

	scaledIn := writeCSV(t, "a\n-1\n1\n")
	back := filepath.Join(dir, "back.csv")
	require.NoError(t, run(t, "scale", "--csv", scaledIn, "--restore", stored, "--inverse", "--out", back))
	assert.InDeltaSlice(t, []float64{0, 10}, readOut(t, back), 1e-9)
}

func TestSegmentFlags_Apply(t *testing.T) {
	var seg segmentFlags
	cmd := &cobra.Command{Use: "test"}
	seg.register(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{"--window", "8", "--threshold", "percent"}))

	base := config.SegmentConfig{Window: 3, RateUp: 1.1, RateDown: 0.9, Threshold: "multiplicative"}
	got := seg.apply(cmd, base)

	assert.Equal(t, config.SegmentConfig{Window: 8, RateUp: 1.1, RateDown: 0.9, Threshold: "percent"}, got)
}

func TestBandCommand(t *testing.T) {
	in := writeCSV(t, "v\n1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n")

	out, err := runOut(t, "band", "--csv", in, "--column", "v", "--sigma", "2")
	require.NoError(t, err)

	var stats calculate.SigmaStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 10.0, stats.Max)
	assert.Equal(t, 1.0, stats.Min)
	assert.InDelta(t, 5.5, stats.Mean, 1e-9)
	assert.InDelta(t, stats.Mean+2*stats.Std, stats.SigmaUpper, 1e-9)

	_, err = runOut(t, "band", "--csv", in, "--column", "missing")
	assert.Error(t, err)
}

func TestIndicatorsCommand(t *testing.T) {
	var b strings.Builder
	b.WriteString("close\nNaN\n")
	for i := 1; i < 40; i++ {
		fmt.Fprintf(&b, "%d\n", 100+i)
	}
	in := writeCSV(t, b.String())
	out := filepath.Join(t.TempDir(), "features.csv")

	require.NoError(t, run(t, "indicators", "--csv", in, "--out", out))

	df := loadOut(t, out)
	assert.Equal(t, 40, df.Nrow())
	for _, name := range []string{"close", "force", "ma5", "bbm", "macd", "rsi"} {
		assert.Contains(t, df.Names(), name)
	}

	// a missing first close only delays the indicators
	rsi := df.Col("rsi").Float()
	assert.True(t, math.IsNaN(rsi[0]))
	assert.Equal(t, 100.0, rsi[39])
	assert.InDelta(t, 137.0, df.Col("ma5").Float()[39], 1e-9)
}

func TestRunJobsCommand(t *testing.T) {
	in := writeCSV(t, "close,volume\n1,5\n2,4\n3,3\n4,2\n5,1\n6,0\n")
	dir := t.TempDir()
	rising := filepath.Join(dir, "rising.csv")
	broken := filepath.Join(dir, "broken.csv")

	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(fmt.Sprintf(`
segment:
  window: 9
jobs:
  - name: rising
    source: csv
    path: %s
    columns: [close]
    segment:
      window: 3
    out: %s
  - name: broken
    source: csv
    path: %s
    out: %s
`, in, rising, in, broken)), 0o600))

	// the job's window overrides the global one, which exceeds the series
	require.NoError(t, run(t, "run-jobs", "--config", cfg, "--job", "rising"))
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 1}, readOut(t, rising))
	assert.NoFileExists(t, broken)

	err := run(t, "run-jobs", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 job(s) failed")
	assert.NoFileExists(t, broken)

	err = run(t, "run-jobs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no jobs configured")
}

func TestCorrelateCommand(t *testing.T) {
	in := writeCSV(t, "a,b,c,d\n1,2,-1,1\n2,4,-2,-1\n3,6,-3,1\n4,8,-4,-1\n5,10,-5,1\n6,12,-6,-1\n")
	matrix := filepath.Join(t.TempDir(), "matrix.csv")

	out, err := runOut(t, "correlate", "--csv", in, "--method", "pearson", "--top", "1", "--matrix", matrix)
	require.NoError(t, err)

	var report correlationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"a", "b", "c", "d"}, report.Columns)
	assert.Equal(t, [][]string{{"a", "b"}}, report.PositiveGroups)
	assert.Equal(t, [][]string{{"a", "c"}, {"b", "c"}}, report.NegativeGroups)
	assert.Equal(t, []string{"a", "b"}, report.Highest[0])

	df := loadOut(t, matrix)
	assert.Equal(t, []string{"column", "a", "b", "c", "d"}, df.Names())

	_, err = runOut(t, "correlate", "--csv", in, "--rate-min", "2")
	assert.ErrorIs(t, err, calculate.ErrInvalidConfiguration)
}

func TestCurrentLabel(t *testing.T) {
	assert.Equal(t, regime.LabelNeutral, currentLabel(nil))
	assert.Equal(t, regime.LabelDown, currentLabel([]regime.Regime{
		{Start: 0, End: 3, Label: regime.LabelUp},
		{Start: 3, End: 5, Label: regime.LabelDown},
	}))
}
