package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/lexie-analytics/internal/models"
	"github.com/PratikDhanave/lexie-analytics/internal/store"
)

// flakyStore fails writes whose event id or feedback type is listed in failOn.
type flakyStore struct {
	*store.MemoryStore
	failOn map[string]bool
}

func (f *flakyStore) InsertAnalytics(ctx context.Context, rec models.AnalyticsRecord) error {
	if f.failOn[rec.EventID] {
		return errors.New("connection reset")
	}
	return f.MemoryStore.InsertAnalytics(ctx, rec)
}

func (f *flakyStore) InsertFeedback(ctx context.Context, rec models.FeedbackRecord) error {
	if f.failOn[rec.FeedbackType] {
		return errors.New("connection reset")
	}
	return f.MemoryStore.InsertFeedback(ctx, rec)
}

func batchOf(t *testing.T, events []map[string]any) models.Batch {
	t.Helper()
	raw, err := json.Marshal(events)
	require.NoError(t, err)
	return models.Batch{Events: raw, DeviceID: "dev-1", AppVersion: "1.4.0", Platform: "ios"}
}

func sampleEvents() []map[string]any {
	return []map[string]any{
		{"id": "a1", "userId": "u1", "type": "SCREEN_VIEW", "timestamp": "2024-05-01T10:00:00Z", "sessionId": "s1",
			"properties": map[string]any{"screen_name": "home"}},
		{"id": "a2", "userId": "u1", "type": "FEATURE_USE", "timestamp": "2024-05-01T10:01:00Z",
			"properties": map[string]any{"feature_name": "scan"}},
		{"id": "f1", "userId": "u1", "type": "FEEDBACK_SUBMITTED", "timestamp": "2024-05-01T10:02:00Z",
			"properties": map[string]any{"feedback_type": "app_feedback", "is_positive": true, "screenshot": "https://x/y.png"}},
		{"id": "f2", "type": "SCREEN_VIEW", "timestamp": "2024-05-01T10:03:00Z",
			"properties": map[string]any{"feedback_type": "quiz_feedback", "is_positive": false}},
		{"id": "a3", "type": "SESSION_END", "timestamp": "2024-05-01T10:04:00Z",
			"properties": map[string]any{"duration_seconds": 60}},
	}
}

func TestIngest_AllStored(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st, zerolog.Nop(), 4)

	res, err := svc.Ingest(context.Background(), batchOf(t, sampleEvents()))
	require.NoError(t, err)

	assert.Equal(t, Result{TotalReceived: 5, AnalyticsStored: 3, FeedbackStored: 2}, res)
	assert.Equal(t, "Processed 5 events (3 analytics, 2 feedback)", res.Message())

	n, err := st.CountAnalytics(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestIngest_PartialFailureKeepsGoing(t *testing.T) {
	st := &flakyStore{MemoryStore: store.NewMemoryStore(), failOn: map[string]bool{"a2": true, "quiz_feedback": true}}
	svc := NewService(st, zerolog.Nop(), 1)

	res, err := svc.Ingest(context.Background(), batchOf(t, sampleEvents()))
	require.NoError(t, err)

	assert.Equal(t, 5, res.TotalReceived)
	assert.Equal(t, 2, res.AnalyticsStored)
	assert.Equal(t, 1, res.FeedbackStored)
}

func TestIngest_InvalidEvents(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), zerolog.Nop(), 2)

	for name, raw := range map[string]string{
		"missing": ``,
		"null":    `null`,
		"object":  `{"type":"SCREEN_VIEW"}`,
		"string":  `"events"`,
		"broken":  `[{"type":`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Ingest(context.Background(), models.Batch{Events: json.RawMessage(raw)})
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestIngest_EmptyArray(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), zerolog.Nop(), 2)

	res, err := svc.Ingest(context.Background(), models.Batch{Events: json.RawMessage(`[]`)})
	require.NoError(t, err)
	assert.Equal(t, "Processed 0 events (0 analytics, 0 feedback)", res.Message())
}

func TestIngest_NonObjectElementCountsAsFailure(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st, zerolog.Nop(), 2)

	raw := `[42,"SCREEN_VIEW",{"type":"SCREEN_VIEW","timestamp":"2024-05-01T10:00:00Z"}]`
	res, err := svc.Ingest(context.Background(), models.Batch{Events: json.RawMessage(raw)})
	require.NoError(t, err)
	assert.Equal(t, Result{TotalReceived: 3, AnalyticsStored: 1}, res)
}

func TestIngest_OddlyShapedEventsStillStored(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st, zerolog.Nop(), 2)
	fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	raw := `[
		{"type":"X","properties":"str"},
		{"type":7,"timestamp":"not-a-time"}
	]`
	res, err := svc.Ingest(context.Background(), models.Batch{Events: json.RawMessage(raw)})
	require.NoError(t, err)
	assert.Equal(t, Result{TotalReceived: 2, AnalyticsStored: 2}, res)

	rows, err := st.ListAnalytics(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byType := map[string]models.AnalyticsRecord{}
	for _, r := range rows {
		byType[r.Type] = r
	}
	assert.Equal(t, map[string]any{"value": "str"}, byType["X"].Properties)
	assert.True(t, fixed.Equal(byType["7"].Timestamp), "got %v", byType["7"].Timestamp)
}

func TestIngest_NonStringFeedbackTypeStoredAsJSON(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st, zerolog.Nop(), 1)

	raw := `[
		{"id":"f1","type":"FEATURE_USE","timestamp":"2024-05-01T10:00:00Z","properties":{"feedback_type":{"a":1}}},
		{"id":"f2","type":"FEATURE_USE","timestamp":"2024-05-01T09:00:00Z","properties":{"feedback_type":3}}
	]`
	res, err := svc.Ingest(context.Background(), models.Batch{Events: json.RawMessage(raw)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.FeedbackStored)

	fb, err := st.ListFeedback(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, fb, 2)
	assert.Equal(t, `{"a":1}`, fb[0].FeedbackType)
	assert.Equal(t, "3", fb[1].FeedbackType)
}

func TestIngest_RecordMapping(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st, zerolog.Nop(), 1)
	fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	raw := `[
		{"type":"FEATURE_USE","properties":{"feature_name":"scan"}},
		{"userId":"u9","type":"CONTENT_FEEDBACK","timestamp":1717200000000,"properties":{"is_positive":"yes","category":"homework"}}
	]`
	_, err := svc.Ingest(context.Background(), models.Batch{Events: json.RawMessage(raw), DeviceID: "d1", Platform: "android"})
	require.NoError(t, err)

	rows, err := st.ListAnalytics(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	a := rows[0]
	assert.NotEmpty(t, a.EventID)
	assert.Nil(t, a.UserID)
	assert.Nil(t, a.AppVersion)
	assert.Equal(t, "d1", models.Deref(a.DeviceID))
	assert.Equal(t, "android", models.Deref(a.Platform))
	assert.True(t, fixed.Equal(a.Timestamp))

	fb, err := st.ListFeedback(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, fb, 1)
	f := fb[0]
	assert.Equal(t, "general", f.FeedbackType)
	assert.Nil(t, f.IsPositive)
	assert.Nil(t, f.Screenshot)
	assert.Equal(t, "u9", models.Deref(f.UserID))
	assert.Equal(t, "homework", f.Details["category"])
	assert.True(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Equal(f.Timestamp))
}
