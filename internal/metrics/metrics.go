package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors of the marker editor.
type Metrics struct {
	Operations     *prometheus.CounterVec
	Markers        prometheus.Gauge
	StorageSeconds *prometheus.HistogramVec
	LocateSeconds  prometheus.Histogram
	Subscribers    prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Operations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "quizmap_operations_total",
			Help: "Total number of editor operations by operation and outcome.",
		}, []string{"operation", "status"}),
		Markers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "quizmap_markers",
			Help: "Number of markers in the collection being edited.",
		}),
		StorageSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quizmap_storage_request_duration_seconds",
			Help:    "Duration of requests to the document store.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		LocateSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "quizmap_locate_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider.",
			Buckets: prometheus.DefBuckets,
		}),
		Subscribers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "quizmap_view_subscribers",
			Help: "Current number of connected view streams.",
		}),
	}
}
