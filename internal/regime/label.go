package regime

import "math"

// Direction is the state of the segmenter while it walks a series
type Direction int8

const (
	Down Direction = iota
	Up
)

// String implements fmt.Stringer
func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// Label returns the label a regime in direction d carries before validation
func (d Direction) Label() Label {
	if d == Up {
		return LabelUp
	}
	return LabelDown
}

// Label is the per-position output of the segmenter
type Label int8

const (
	// LabelNeutral marks positions of a regime too short to trust
	LabelNeutral Label = iota
	LabelDown
	LabelUp
)

// String implements fmt.Stringer
func (l Label) String() string {
	switch l {
	case LabelUp:
		return "up"
	case LabelDown:
		return "down"
	default:
		return "none"
	}
}

// Bool returns true for up and false for down; ok is false for neutral labels
func (l Label) Bool() (value bool, ok bool) {
	switch l {
	case LabelUp:
		return true, true
	case LabelDown:
		return false, true
	default:
		return false, false
	}
}

// Not negates up and down; neutral stays neutral
func (l Label) Not() Label {
	switch l {
	case LabelUp:
		return LabelDown
	case LabelDown:
		return LabelUp
	default:
		return LabelNeutral
	}
}

// Float renders the label as 1 (up), 0 (down) or NaN (neutral)
func (l Label) Float() float64 {
	switch l {
	case LabelUp:
		return 1
	case LabelDown:
		return 0
	default:
		return math.NaN()
	}
}

// LabelFromFloat is the inverse of Label.Float
func LabelFromFloat(v float64) Label {
	switch {
	case math.IsNaN(v):
		return LabelNeutral
	case v > 0:
		return LabelUp
	default:
		return LabelDown
	}
}
