package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/Regimes/internal/regime"
)

func TestObserveSegment(t *testing.T) {
	r := New()

	regimes := []regime.Regime{
		{Start: 0, End: 3, Label: regime.LabelDown},
		{Start: 3, End: 5, Label: regime.LabelUp, Flipped: true},
		{Start: 5, End: 6, Label: regime.LabelNeutral},
	}
	r.ObserveSegment("trailing", 2*time.Millisecond, regimes, nil)
	r.ObserveSegment("trailing", 0, nil, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Series.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Series.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Regimes.WithLabelValues("up")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Regimes.WithLabelValues("down")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Regimes.WithLabelValues("none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Flipped))
}

func TestColumnsInFlight(t *testing.T) {
	r := New()
	r.ColumnStarted()
	r.ColumnStarted()
	r.ColumnDone()
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ColumnsInFlight))
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.ObserveSegment("trailing", time.Second, nil, nil)
		r.ColumnStarted()
		r.ColumnDone()
	})
}

func TestHandler(t *testing.T) {
	r := New()
	r.ObserveSegment("leading", time.Millisecond, nil, nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `regimes_series_total{result="ok"} 1`))
}
