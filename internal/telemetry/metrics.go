package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for ingested events.
const (
	OutcomeStored = "stored"
	OutcomeFailed = "failed"
)

var (
	ingestBatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_ingest_batches_total",
			Help: "Total number of accepted ingestion batches",
		},
	)

	ingestedEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_ingested_events_total",
			Help: "Events processed by ingestion, by persistence target and outcome",
		},
		[]string{"kind", "outcome"},
	)

	reportRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_report_render_duration_seconds",
			Help:    "Time to read rows, aggregate and render a report page",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"report", "status"},
	)
)

// RecordBatch counts an accepted batch.
func RecordBatch() {
	ingestBatchesTotal.Inc()
}

// RecordEvent counts one event's persistence outcome.
func RecordEvent(kind, outcome string) {
	ingestedEventsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordRender observes one report render.
func RecordRender(report, status string, d time.Duration) {
	reportRenderDuration.WithLabelValues(report, status).Observe(d.Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
