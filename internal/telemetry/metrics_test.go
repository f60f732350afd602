package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordEvent(t *testing.T) {
	before := testutil.ToFloat64(ingestedEventsTotal.WithLabelValues("feedback", OutcomeFailed))
	RecordEvent("feedback", OutcomeFailed)
	after := testutil.ToFloat64(ingestedEventsTotal.WithLabelValues("feedback", OutcomeFailed))
	assert.Equal(t, before+1, after)
}

func TestHandler_ExposesCounters(t *testing.T) {
	RecordBatch()
	RecordRender("metrics", "ok", 20*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/internal/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "analytics_ingest_batches_total")
	assert.Contains(t, rec.Body.String(), "analytics_report_render_duration_seconds")
}
