package main

import (
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/Alias1177/Regimes/internal/regime"
	"github.com/Alias1177/Regimes/models"
)

// writeLabels writes one time, value, label row per point. Neutral labels
// are left empty.
func writeLabels(path, name string, points []models.Point, regimes []regime.Regime) error {
	labels, err := regime.Expand(regimes, len(points))
	if err != nil {
		return err
	}

	times := make([]string, len(points))
	texts := make([]string, len(points))
	for i, p := range points {
		times[i] = p.Time.Format(time.RFC3339)
		if v, ok := labels[i].Bool(); ok {
			texts[i] = strconv.FormatBool(v)
		}
	}

	return writeFrame(path, dataframe.New(
		series.New(times, series.String, "time"),
		series.New(models.Values(points), series.Float, name),
		series.New(texts, series.String, "label"),
	))
}
