package regime

import (
	"fmt"
	"math"

	"github.com/Alias1177/Regimes/internal/calculate"
)

// Regime is a maximal run of positions sharing one direction
type Regime struct {
	Start      int       `json:"start"`
	End        int       `json:"end"` // exclusive
	Direction  Direction `json:"direction"`
	Label      Label     `json:"label"`
	StartValue float64   `json:"start_value"`
	EndValue   float64   `json:"end_value"`
	Flipped    bool      `json:"flipped"`
}

// Len returns the number of positions covered by r
func (r Regime) Len() int {
	return r.End - r.Start
}

// Return is the relative move from StartValue to EndValue, 0 without a baseline
func (r Regime) Return() float64 {
	if r.StartValue == 0 || math.IsNaN(r.EndValue) {
		return 0
	}
	return (r.EndValue - r.StartValue) / r.StartValue
}

// Regimes partitions series into up and down regimes.
//
// The scan starts in Down. A local minimum hit while in Down closes the
// current regime at that position and switches to Up; a local maximum hit
// while in Up closes it and switches to Down. A regime is validated once,
// when it closes, against the value at the closing position (or the last
// non-missing value for the regime still open at the end) and is flipped
// when it misses its rate threshold. A zero start value disables the check.
func Regimes(series []float64, opts Options) ([]Regime, error) {
	if err := calculate.CheckSeries(series); err != nil {
		return nil, err
	}
	if err := opts.Validate(len(series)); err != nil {
		return nil, err
	}

	isMin, isMax := Extrema(series, opts.Window, opts.Future)

	var (
		regimes  []Regime
		open     = Regime{Direction: Down}
		hasStart bool
		last     = math.NaN()
	)

	for i, v := range series {
		open.End = i + 1
		if !math.IsNaN(v) {
			last = v
			if !hasStart {
				open.StartValue = v
				hasStart = true
			}
		}

		var next Direction
		switch {
		case open.Direction == Down && isMin[i]:
			next = Up
		case open.Direction == Up && isMax[i]:
			next = Down
		default:
			continue
		}

		regimes = append(regimes, opts.settle(open, v))
		open = Regime{Start: i + 1, End: i + 1, Direction: next}
		hasStart = false
	}

	if open.Len() > 0 {
		regimes = append(regimes, opts.settle(open, last))
	}

	if opts.ValidChange > 0 {
		for i := range regimes {
			if regimes[i].Len() < opts.ValidChange {
				regimes[i].Label = LabelNeutral
			}
		}
	}
	return regimes, nil
}

// settle closes r at end and applies the threshold check
func (o Options) settle(r Regime, end float64) Regime {
	r.EndValue = end
	r.Label = r.Direction.Label()
	if r.StartValue != 0 && o.fails(r.Direction, r.StartValue, end) {
		r.Label = r.Label.Not()
		r.Flipped = true
	}
	return r
}

// Segment returns one label per position of series
func Segment(series []float64, opts Options) ([]Label, error) {
	regimes, err := Regimes(series, opts)
	if err != nil {
		return nil, err
	}
	return Expand(regimes, len(series))
}

// Expand flattens regimes into n labels. The regimes must cover [0, n)
// in order without gaps or overlaps.
func Expand(regimes []Regime, n int) ([]Label, error) {
	labels := make([]Label, n)
	next := 0
	for _, r := range regimes {
		if r.Start != next || r.End < r.Start || r.End > n {
			return nil, fmt.Errorf("%w: regime [%d, %d) does not continue at %d", calculate.ErrInvalidInput, r.Start, r.End, next)
		}
		for i := r.Start; i < r.End; i++ {
			labels[i] = r.Label
		}
		next = r.End
	}
	if next != n {
		return nil, fmt.Errorf("%w: regimes cover %d of %d positions", calculate.ErrInvalidInput, next, n)
	}
	return labels, nil
}

// Bools converts labels to optional booleans; neutral positions are nil
func Bools(labels []Label) []*bool {
	out := make([]*bool, len(labels))
	for i, l := range labels {
		if v, ok := l.Bool(); ok {
			out[i] = &v
		}
	}
	return out
}
