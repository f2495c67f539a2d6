package regime

import (
	"fmt"
	"math"
	"strings"

	"github.com/Alias1177/Regimes/internal/calculate"
)

// ThresholdMode selects how rate_up and rate_dn are applied to a regime's start value
type ThresholdMode int8

const (
	// Multiplicative fails an up regime when start*rate_up > end and a down
	// regime when start*rate_dn < end.
	Multiplicative ThresholdMode = iota
	// Percent fails an up regime when start*(1+rate_up) > end and a down
	// regime when start*(1-rate_dn) < end.
	Percent
)

// String implements fmt.Stringer
func (m ThresholdMode) String() string {
	if m == Percent {
		return "percent"
	}
	return "multiplicative"
}

// ParseThresholdMode accepts "multiplicative" (or empty) and "percent"
func ParseThresholdMode(s string) (ThresholdMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "multiplicative", "mul":
		return Multiplicative, nil
	case "percent", "pct":
		return Percent, nil
	default:
		return Multiplicative, calculate.NewConfigError("threshold", s, "must be multiplicative or percent")
	}
}

// Options configures a segmentation run
type Options struct {
	Window      int           `json:"window"`
	RateUp      float64       `json:"rate_up"`
	RateDown    float64       `json:"rate_dn"`
	Future      bool          `json:"future"`
	Threshold   ThresholdMode `json:"threshold"`
	ValidChange int           `json:"valid_change"`
}

// DefaultOptions returns trailing-window, multiplicative options with both rates at 1
func DefaultOptions(window int) Options {
	return Options{
		Window:   window,
		RateUp:   1,
		RateDown: 1,
	}
}

// Mode names the extrema addressing mode
func (o Options) Mode() string {
	if o.Future {
		return "leading"
	}
	return "trailing"
}

// Validate checks the options against a series of length n
func (o Options) Validate(n int) error {
	if o.Window <= 0 {
		return calculate.NewConfigError("window", o.Window, "must be positive")
	}
	if o.Window > n {
		return calculate.NewConfigError("window", o.Window, fmt.Sprintf("exceeds series length %d", n))
	}
	if o.ValidChange < 0 {
		return calculate.NewConfigError("valid_change", o.ValidChange, "must be >= 0")
	}

	switch o.Threshold {
	case Multiplicative:
		if !(o.RateUp > 0) || math.IsInf(o.RateUp, 0) {
			return calculate.NewConfigError("rate_up", o.RateUp, "must be a finite value > 0")
		}
		if !(o.RateDown > 0) || math.IsInf(o.RateDown, 0) {
			return calculate.NewConfigError("rate_dn", o.RateDown, "must be a finite value > 0")
		}
	case Percent:
		if !(o.RateUp >= 0) || math.IsInf(o.RateUp, 0) {
			return calculate.NewConfigError("rate_up", o.RateUp, "must be a finite value >= 0")
		}
		if !(o.RateDown >= 0) || o.RateDown >= 1 {
			return calculate.NewConfigError("rate_dn", o.RateDown, "must be within [0, 1)")
		}
	default:
		return calculate.NewConfigError("threshold", o.Threshold, "unknown mode")
	}
	return nil
}

// fails reports whether a regime in direction d moving from start to end
// misses its rate threshold.
func (o Options) fails(d Direction, start, end float64) bool {
	if d == Up {
		if o.Threshold == Percent {
			return start*(1+o.RateUp) > end
		}
		return start*o.RateUp > end
	}
	if o.Threshold == Percent {
		return start*(1-o.RateDown) < end
	}
	return start*o.RateDown < end
}
