package correlation

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/Alias1177/Regimes/internal/calculate"
	"github.com/Alias1177/Regimes/internal/scaler"
)

// Method selects how two columns are correlated
type Method string

const (
	Pearson  Method = "pearson"
	Spearman Method = "spearman"
)

// ParseMethod parses a correlation method name
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case Pearson, Spearman:
		return Method(s), nil
	case "":
		return Spearman, nil
	default:
		return "", calculate.NewConfigError("method", s, "must be pearson or spearman")
	}
}

// Matrix is a symmetric correlation matrix over named columns
type Matrix struct {
	Method  Method
	columns []string
	values  *mat.SymDense
}

// Compute correlates every pair of columns of df (all numeric columns when
// columns is empty). Each pair uses the rows where both values are present.
func Compute(df dataframe.DataFrame, columns []string, method Method) (*Matrix, error) {
	if method != Pearson && method != Spearman {
		return nil, calculate.NewConfigError("method", string(method), "must be pearson or spearman")
	}
	if len(columns) == 0 {
		columns = scaler.NumericColumns(df)
	}
	if len(columns) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 columns, got %d", calculate.ErrInvalidInput, len(columns))
	}

	data := make([][]float64, len(columns))
	for i, name := range columns {
		col := df.Col(name)
		if col.Err != nil {
			return nil, fmt.Errorf("column %q: %w", name, col.Err)
		}
		data[i] = col.Float()
	}

	n := len(columns)
	values := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			values.SetSym(i, j, pairwise(data[i], data[j], method))
		}
	}
	return &Matrix{Method: method, columns: columns, values: values}, nil
}

// NewMatrix wraps precomputed correlations. values must be square and
// symmetric with one row per column.
func NewMatrix(columns []string, values [][]float64) (*Matrix, error) {
	n := len(columns)
	if n == 0 {
		return nil, fmt.Errorf("%w: no columns", calculate.ErrInvalidInput)
	}
	if len(values) != n {
		return nil, fmt.Errorf("%w: %d rows for %d columns", calculate.ErrInvalidInput, len(values), n)
	}
	for i, row := range values {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", calculate.ErrInvalidInput, i, len(row), n)
		}
	}

	sym := mat.NewSymDense(n, nil)
	for i, row := range values {
		for j := i; j < n; j++ {
			if !sameValue(row[j], values[j][i]) {
				return nil, fmt.Errorf("%w: not symmetric at (%d, %d)", calculate.ErrInvalidInput, i, j)
			}
			sym.SetSym(i, j, row[j])
		}
	}
	return &Matrix{columns: columns, values: sym}, nil
}

// Columns returns the column names in matrix order
func (m *Matrix) Columns() []string {
	return m.columns
}

// Corr returns the correlation of columns a and b, NaN when either is unknown
func (m *Matrix) Corr(a, b string) float64 {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return math.NaN()
	}
	return m.values.At(i, j)
}

func (m *Matrix) at(i, j int) float64 {
	return m.values.At(i, j)
}

func (m *Matrix) index(name string) int {
	for i, c := range m.columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Frame returns the matrix as a frame whose first column holds the row names
func (m *Matrix) Frame() dataframe.DataFrame {
	cols := []series.Series{series.New(m.columns, series.String, "column")}
	for j, name := range m.columns {
		values := make([]float64, len(m.columns))
		for i := range m.columns {
			values[i] = m.at(i, j)
		}
		cols = append(cols, series.New(values, series.Float, name))
	}
	return dataframe.New(cols...)
}

func pairwise(x, y []float64, method Method) float64 {
	var xs, ys []float64
	for i := range x {
		if i >= len(y) {
			break
		}
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if method == Spearman {
		xs, ys = rank(xs), rank(ys)
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return r
	}
	return math.Max(-1, math.Min(1, r))
}

// rank returns 1-based ranks, ties sharing their average rank
func rank(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	inds := make([]int, len(values))
	floats.Argsort(sorted, inds)

	ranks := make([]float64, len(values))
	for i := 0; i < len(sorted); {
		j := i
		for j+1 < len(sorted) && sorted[j+1] == sorted[i] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[inds[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

func sameValue(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= 1e-12
}
