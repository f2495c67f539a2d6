package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Alias1177/Regimes/internal/regime"
)

// Registry holds the Prometheus metrics of segmentation runs
type Registry struct {
	registry *prometheus.Registry

	SegmentDuration *prometheus.HistogramVec
	Series          *prometheus.CounterVec
	Regimes         *prometheus.CounterVec
	Flipped         prometheus.Counter
	ColumnsInFlight prometheus.Gauge
}

// New creates a registry with every metric registered
func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		SegmentDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "regimes_segment_duration_seconds",
				Help:    "Duration of one series segmentation in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"mode"},
		),

		Series: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regimes_series_total",
				Help: "Total number of segmented series by result",
			},
			[]string{"result"},
		),

		Regimes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regimes_regimes_total",
				Help: "Total number of regimes by final label",
			},
			[]string{"label"},
		),

		Flipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "regimes_flipped_total",
				Help: "Total number of regimes flipped by threshold validation",
			},
		),

		ColumnsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "regimes_batch_columns_inflight",
				Help: "Number of columns currently being segmented",
			},
		),
	}

	r.registry.MustRegister(
		r.SegmentDuration,
		r.Series,
		r.Regimes,
		r.Flipped,
		r.ColumnsInFlight,
	)
	return r
}

// ObserveSegment records one segmentation. Safe on a nil registry.
func (r *Registry) ObserveSegment(mode string, took time.Duration, regimes []regime.Regime, err error) {
	if r == nil {
		return
	}

	if err != nil {
		r.Series.WithLabelValues("error").Inc()
		return
	}

	r.SegmentDuration.WithLabelValues(mode).Observe(took.Seconds())
	r.Series.WithLabelValues("ok").Inc()
	for _, reg := range regimes {
		r.Regimes.WithLabelValues(reg.Label.String()).Inc()
		if reg.Flipped {
			r.Flipped.Inc()
		}
	}
}

// ColumnStarted marks a batch column as in flight. Safe on a nil registry.
func (r *Registry) ColumnStarted() {
	if r != nil {
		r.ColumnsInFlight.Inc()
	}
}

// ColumnDone marks a batch column as finished. Safe on a nil registry.
func (r *Registry) ColumnDone() {
	if r != nil {
		r.ColumnsInFlight.Dec()
	}
}

// Gatherer exposes the underlying registry
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the metrics in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
