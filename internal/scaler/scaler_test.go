package scaler

import (
	"bytes"
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/Regimes/internal/calculate"
)

func TestScaler_Plain(t *testing.T) {
	s := New(DefaultOptions())
	require.NoError(t, s.Fit("close", []float64{0, 5, 10, math.NaN()}))

	out, err := s.Transform("close", []float64{0, 5, 10, math.NaN()})
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 0, 1}, out[:3])
	assert.True(t, math.IsNaN(out[3]))

	back, err := s.Inverse("close", out[:3])
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 5, 10}, back, 1e-9)
}

func TestScaler_ZeroAdd(t *testing.T) {
	s := New(Options{Scale: [2]float64{-1, 1}, ZeroAdd: true})
	require.NoError(t, s.Fit("v", []float64{2, 4}))

	out, err := s.Transform("v", []float64{0, 2, 4})
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 0, 1}, out)
}

func TestScaler_ZeroBase(t *testing.T) {
	s := New(Options{Scale: [2]float64{-1, 1}, ZeroBase: true})
	require.NoError(t, s.Fit("diff", []float64{-10, -0.5, 2, 10}))

	fit, ok := s.Fitted("diff")
	require.True(t, ok)
	assert.Equal(t, -0.5, fit.NegBase)
	assert.Equal(t, 2.0, fit.PosBase)

	out, err := s.Transform("diff", []float64{-10, -0.5, 0, 2, 10})
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, -epsilon, 0, epsilon, 1}, out)

	back, err := s.Inverse("diff", out)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-10, -0.5, 0, 2, 10}, back, 1e-6)
}

func TestScaler_SameScale(t *testing.T) {
	s := New(Options{Scale: [2]float64{-1, 1}, ZeroBase: true, SameScale: true})
	require.NoError(t, s.Fit("v", []float64{-4, -1, 2, 8}))

	out, err := s.Transform("v", []float64{-8, -4, 2, 8})
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, -0.333333, epsilon, 1}, out)
}

func TestScaler_Errors(t *testing.T) {
	s := New(DefaultOptions())

	_, err := s.Transform("missing", []float64{1})
	assert.ErrorIs(t, err, ErrNotFitted)

	_, err = s.Inverse("missing", []float64{1})
	assert.ErrorIs(t, err, ErrNotFitted)

	err = s.Fit("empty", []float64{math.NaN()})
	assert.ErrorIs(t, err, calculate.ErrInvalidInput)
}

func TestScaler_StoreRestore(t *testing.T) {
	s := New(Options{Scale: [2]float64{0, 1}, ZeroBase: true})
	require.NoError(t, s.Fit("a", []float64{-3, -1, 1, 3}))

	var buf bytes.Buffer
	require.NoError(t, s.Store(&buf))

	restored, err := Restore(&buf)
	require.NoError(t, err)
	assert.Equal(t, s.Options(), restored.Options())

	want, err := s.Transform("a", []float64{-2, 2})
	require.NoError(t, err)
	got, err := restored.Transform("a", []float64{-2, 2})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestScaler_Frame(t *testing.T) {
	df := dataframe.New(
		series.New([]float64{1, 2, 3}, series.Float, "a"),
		series.New([]float64{-2, 0, 2}, series.Float, "b"),
		series.New([]float64{-1, 0, 4}, series.Float, "c"),
		series.New([]string{"x", "y", "z"}, series.String, "name"),
	)

	assert.Equal(t, []string{"a", "b", "c"}, NumericColumns(df))

	s := New(DefaultOptions())
	require.NoError(t, s.FitFrame(df, nil, [][]string{{"b", "c"}}))

	scaled, err := s.TransformFrame(df, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, scaled.Names())
	assert.Equal(t, []float64{-1, 0, 1}, scaled.Col("a").Float())
	assert.Equal(t, []float64{-1, -0.333333, 0.333333}, scaled.Col("b").Float())
	assert.Equal(t, 1.0, scaled.Col("c").Float()[2])

	restored, err := s.InverseFrame(scaled, nil)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-2, 0, 2}, restored.Col("b").Float(), 1e-5)

	_, err = s.TransformFrame(df, []string{"nope"})
	assert.Error(t, err)
}
