package batch

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// LoadCSV reads a frame with a header row from r
func LoadCSV(r io.Reader) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("reading csv: %w", df.Err)
	}
	return df, nil
}

// FromColumns builds a frame from named series, ordered by name
func FromColumns(columns map[string][]float64) (dataframe.DataFrame, error) {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	cols := make([]series.Series, 0, len(names))
	for _, name := range names {
		cols = append(cols, series.New(columns[name], series.Float, name))
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("building frame: %w", df.Err)
	}
	return df, nil
}

// LabelsFrame turns successful results into a frame of 1 (up), 0 (down)
// and NaN (neutral), one column per result.
func LabelsFrame(results []ColumnResult) (dataframe.DataFrame, error) {
	var cols []series.Series
	for _, res := range results {
		if res.Err != nil || res.Labels == nil {
			continue
		}
		values := make([]float64, len(res.Labels))
		for i, l := range res.Labels {
			values[i] = l.Float()
		}
		cols = append(cols, series.New(values, series.Float, res.Column))
	}
	if len(cols) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("no labelled columns")
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("building labels frame: %w", df.Err)
	}
	return df, nil
}

// WriteCSV writes df with a header row to w
func WriteCSV(w io.Writer, df dataframe.DataFrame) error {
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
