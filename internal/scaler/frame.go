package scaler

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// NumericColumns returns the float and int columns of df in frame order
func NumericColumns(df dataframe.DataFrame) []string {
	var names []string
	types := df.Types()
	for i, name := range df.Names() {
		if types[i] == series.Float || types[i] == series.Int {
			names = append(names, name)
		}
	}
	return names
}

// FitFrame fits every column of df (all numeric columns when columns is
// empty). The columns of each group share one fit spanning all their values.
func (s *Scaler) FitFrame(df dataframe.DataFrame, columns []string, groups [][]string) error {
	if len(columns) == 0 {
		columns = NumericColumns(df)
	}
	s.columns = columns

	grouped := make(map[string]bool)
	for _, group := range groups {
		for _, name := range group {
			grouped[name] = true
		}
	}

	for _, name := range columns {
		if grouped[name] {
			continue
		}
		values, err := column(df, name)
		if err != nil {
			return err
		}
		if err := s.Fit(name, values); err != nil {
			return err
		}
	}

	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		var all []float64
		for _, name := range group {
			values, err := column(df, name)
			if err != nil {
				return err
			}
			all = append(all, values...)
		}
		span := groupSpan(all)
		for _, name := range group {
			if err := s.Fit(name, span); err != nil {
				return err
			}
		}
	}
	return nil
}

// groupSpan reduces values to the extremes of their negative and positive
// halves, each half anchored at zero.
func groupSpan(values []float64) []float64 {
	negMin, negMax, posMin, posMax := 0.0, 0.0, 0.0, 0.0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v <= 0 {
			negMin = math.Min(negMin, v)
		}
		if v >= 0 {
			posMax = math.Max(posMax, v)
		}
	}
	return []float64{negMin, negMax, posMin, posMax}
}

// TransformFrame returns a new frame holding the scaled columns
func (s *Scaler) TransformFrame(df dataframe.DataFrame, columns []string) (dataframe.DataFrame, error) {
	return s.mapFrame(df, columns, s.Transform)
}

// InverseFrame returns a new frame holding the columns mapped back to their original range
func (s *Scaler) InverseFrame(df dataframe.DataFrame, columns []string) (dataframe.DataFrame, error) {
	return s.mapFrame(df, columns, s.Inverse)
}

func (s *Scaler) mapFrame(df dataframe.DataFrame, columns []string, fn func(string, []float64) ([]float64, error)) (dataframe.DataFrame, error) {
	if len(columns) == 0 {
		columns = s.columns
	}
	if len(columns) == 0 {
		columns = NumericColumns(df)
	}

	out := make([]series.Series, 0, len(columns))
	for _, name := range columns {
		values, err := column(df, name)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		mapped, err := fn(name, values)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		out = append(out, series.New(mapped, series.Float, name))
	}
	return dataframe.New(out...), nil
}

func column(df dataframe.DataFrame, name string) ([]float64, error) {
	col := df.Col(name)
	if col.Err != nil {
		return nil, fmt.Errorf("column %q: %w", name, col.Err)
	}
	return col.Float(), nil
}
