package regime

// Summary aggregates the regimes of one segmentation run
type Summary struct {
	Regimes        int     `json:"regimes"`
	Up             int     `json:"up"`
	Down           int     `json:"down"`
	Neutral        int     `json:"neutral"`
	Flipped        int     `json:"flipped"`
	MeanLength     float64 `json:"mean_length"`
	MeanUpReturn   float64 `json:"mean_up_return"`
	MeanDownReturn float64 `json:"mean_down_return"`
}

// Summarize counts regimes by final label and averages their length and
// return. Returns are averaged over regimes with a non-zero start value.
func Summarize(regimes []Regime) Summary {
	s := Summary{Regimes: len(regimes)}
	if len(regimes) == 0 {
		return s
	}

	var (
		totalLen         int
		upSum, downSum   float64
		upSeen, downSeen int
	)
	for _, r := range regimes {
		totalLen += r.Len()
		if r.Flipped {
			s.Flipped++
		}

		switch r.Label {
		case LabelUp:
			s.Up++
			if r.StartValue != 0 {
				upSum += r.Return()
				upSeen++
			}
		case LabelDown:
			s.Down++
			if r.StartValue != 0 {
				downSum += r.Return()
				downSeen++
			}
		default:
			s.Neutral++
		}
	}

	s.MeanLength = float64(totalLen) / float64(len(regimes))
	if upSeen > 0 {
		s.MeanUpReturn = upSum / float64(upSeen)
	}
	if downSeen > 0 {
		s.MeanDownReturn = downSum / float64(downSeen)
	}
	return s
}
