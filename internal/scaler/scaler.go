// Package scaler implements min-max normalization with an optional zero base,
// where negative and positive values are scaled separately so that zero stays
// at zero.
package scaler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/Alias1177/Regimes/internal/calculate"
)

// ErrNotFitted is returned when transforming a field that was never fitted
var ErrNotFitted = errors.New("scaler: field not fitted")

// epsilon replaces non-zero values that round to zero under zero-base
// scaling, so their sign survives.
const epsilon = 1e-9

// Options configures a Scaler
type Options struct {
	Scale     [2]float64 `json:"scale"`
	ZeroBase  bool       `json:"zero_base"`
	ZeroAdd   bool       `json:"zero_add"`
	SameScale bool       `json:"same_scale"`
}

// DefaultOptions scales into [-1, 1] without a zero base
func DefaultOptions() Options {
	return Options{Scale: [2]float64{-1, 1}}
}

// Fit holds the base and weight of one field. Plain fits use Base and Weight,
// zero-base fits use the Neg* and Pos* pairs.
type Fit struct {
	Base      float64 `json:"base,omitempty"`
	Weight    float64 `json:"weight,omitempty"`
	NegBase   float64 `json:"neg_base,omitempty"`
	NegWeight float64 `json:"neg_weight,omitempty"`
	PosBase   float64 `json:"pos_base,omitempty"`
	PosWeight float64 `json:"pos_weight,omitempty"`
}

// Scaler keeps one fit per field
type Scaler struct {
	opts    Options
	columns []string
	fits    map[string]Fit
}

// New creates a Scaler
func New(opts Options) *Scaler {
	return &Scaler{
		opts: opts,
		fits: make(map[string]Fit),
	}
}

// Options returns the options the scaler was built with
func (s *Scaler) Options() Options {
	return s.opts
}

// Fitted returns the fit of field
func (s *Scaler) Fitted(field string) (Fit, bool) {
	f, ok := s.fits[field]
	return f, ok
}

type bounds struct {
	negMin, negMax, posMin, posMax float64
}

func (s *Scaler) bounds(values []float64) (bounds, error) {
	values = calculate.DropNaN(values)
	if s.opts.ZeroAdd {
		values = append(values, 0)
	}
	if len(values) == 0 {
		return bounds{}, fmt.Errorf("%w: nothing to fit", calculate.ErrInvalidInput)
	}

	b := bounds{negMin: floats.Min(values), posMax: floats.Max(values)}
	if !s.opts.ZeroBase {
		return b, nil
	}

	b.posMin, b.negMax = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if v >= 0 {
			b.posMin = math.Min(b.posMin, v)
		}
		if v <= 0 {
			b.negMax = math.Max(b.negMax, v)
		}
	}
	if math.IsInf(b.posMin, 1) {
		b.posMin = 0
	}
	if math.IsInf(b.negMax, -1) {
		b.negMax = 0
	}

	if s.opts.SameScale {
		if math.Abs(b.negMin) > math.Abs(b.posMax) {
			b.posMax = -b.negMin
		} else {
			b.negMin = -b.posMax
		}
		if math.Abs(b.negMax) > math.Abs(b.posMin) {
			b.posMin = -b.negMax
		} else {
			b.negMax = -b.posMin
		}
	}
	return b, nil
}

// Fit learns the scaling of field from values; missing values are ignored
func (s *Scaler) Fit(field string, values []float64) error {
	b, err := s.bounds(values)
	if err != nil {
		return fmt.Errorf("fitting %q: %w", field, err)
	}

	if s.opts.ZeroBase {
		s.fits[field] = Fit{
			NegBase:   b.negMax,
			NegWeight: weight(s.opts.Scale[0], b.negMin-b.negMax),
			PosBase:   b.posMin,
			PosWeight: weight(s.opts.Scale[1], b.posMax-b.posMin),
		}
		return nil
	}

	s.fits[field] = Fit{
		Base:   b.negMin,
		Weight: weight(s.opts.Scale[1]-s.opts.Scale[0], b.posMax-b.negMin),
	}
	return nil
}

// weight is scale/width, 0 for a zero width
func weight(scale, width float64) float64 {
	if width == 0 {
		return 0
	}
	return scale / width
}

// Transform scales values with the fit of field into a new slice rounded to six decimals
func (s *Scaler) Transform(field string, values []float64) ([]float64, error) {
	f, ok := s.fits[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFitted, field)
	}

	out := make([]float64, len(values))
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = v
		case !s.opts.ZeroBase:
			out[i] = round6((v-f.Base)*f.Weight + s.opts.Scale[0])
		case v < 0:
			out[i] = round6((v - f.NegBase) * f.NegWeight)
			if out[i] == 0 {
				out[i] = -epsilon
			}
		case v > 0:
			out[i] = round6((v - f.PosBase) * f.PosWeight)
			if out[i] == 0 {
				out[i] = epsilon
			}
		default:
			out[i] = 0
		}
	}
	return out, nil
}

// Inverse maps scaled values back to the original range of field
func (s *Scaler) Inverse(field string, values []float64) ([]float64, error) {
	f, ok := s.fits[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFitted, field)
	}

	out := make([]float64, len(values))
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = v
		case !s.opts.ZeroBase:
			out[i] = unscale(v-s.opts.Scale[0], f.Weight, f.Base)
		case v < 0:
			out[i] = unscale(v, f.NegWeight, f.NegBase)
		case v > 0:
			out[i] = unscale(v, f.PosWeight, f.PosBase)
		default:
			out[i] = 0
		}
	}
	return out, nil
}

func unscale(v, weight, base float64) float64 {
	if weight == 0 {
		return base
	}
	return v/weight + base
}

// round6 rounds half to even like numpy's round(6)
func round6(v float64) float64 {
	return math.RoundToEven(v*1e6) / 1e6
}

type snapshot struct {
	Options Options        `json:"options"`
	Columns []string       `json:"columns,omitempty"`
	Fits    map[string]Fit `json:"fits"`
}

// Store writes the options and every fit as JSON
func (s *Scaler) Store(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot{Options: s.opts, Columns: s.columns, Fits: s.fits})
}

// Restore reads a scaler written by Store
func Restore(r io.Reader) (*Scaler, error) {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding scaler: %w", err)
	}
	if snap.Fits == nil {
		snap.Fits = make(map[string]Fit)
	}
	return &Scaler{opts: snap.Options, columns: snap.Columns, fits: snap.Fits}, nil
}
