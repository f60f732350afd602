// Package ingest turns a client batch into analytics and feedback records.
//
// Every event is classified and persisted on its own. A failed write is
// logged and left out of the counts; it never fails the batch.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/PratikDhanave/lexie-analytics/internal/classify"
	"github.com/PratikDhanave/lexie-analytics/internal/models"
	"github.com/PratikDhanave/lexie-analytics/internal/store"
	"github.com/PratikDhanave/lexie-analytics/internal/telemetry"
)

// ErrInvalidInput is returned when the batch has no array-typed events field.
var ErrInvalidInput = errors.New("invalid events data")

// Result summarizes one batch.
type Result struct {
	TotalReceived   int
	AnalyticsStored int
	FeedbackStored  int
}

// Message is the human-readable summary returned to the client.
func (r Result) Message() string {
	return fmt.Sprintf("Processed %d events (%d analytics, %d feedback)",
		r.TotalReceived, r.AnalyticsStored, r.FeedbackStored)
}

// Service persists batches into a Store.
type Service struct {
	st          store.Store
	log         zerolog.Logger
	concurrency int
	now         func() time.Time
}

// NewService builds a Service issuing at most concurrency writes at once.
func NewService(st store.Store, log zerolog.Logger, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		st:          st,
		log:         log.With().Str("component", "ingest").Logger(),
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Ingest classifies and stores every event of the batch.
// Only ErrInvalidInput is returned; per-event failures show up in the counts.
func (s *Service) Ingest(ctx context.Context, batch models.Batch) (Result, error) {
	raw := bytes.TrimSpace(batch.Events)
	if len(raw) == 0 || raw[0] != '[' {
		return Result{}, ErrInvalidInput
	}

	// Elements stay raw so one malformed event only costs itself.
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	telemetry.RecordBatch()
	s.log.Debug().
		Int("events", len(items)).
		Str("device_id", orUnknown(batch.DeviceID)).
		Str("platform", orUnknown(batch.Platform)).
		Msg("batch received")

	var analytics, feedback atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			var ev models.Event
			if err := json.Unmarshal(item, &ev); err != nil {
				s.log.Error().Err(err).Int("index", i).Msg("malformed event skipped")
				telemetry.RecordEvent("unknown", telemetry.OutcomeFailed)
				return nil
			}

			kind := classify.Classify(ev)
			if err := s.persist(ctx, kind, ev, batch); err != nil {
				s.log.Error().Err(err).
					Str("event_id", ev.ID).
					Str("kind", kind.String()).
					Msg("store event failed")
				telemetry.RecordEvent(kind.String(), telemetry.OutcomeFailed)
				return nil
			}

			telemetry.RecordEvent(kind.String(), telemetry.OutcomeStored)
			if kind == classify.KindFeedback {
				feedback.Add(1)
			} else {
				analytics.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	return Result{
		TotalReceived:   len(items),
		AnalyticsStored: int(analytics.Load()),
		FeedbackStored:  int(feedback.Load()),
	}, nil
}

func (s *Service) persist(ctx context.Context, kind classify.Kind, ev models.Event, batch models.Batch) error {
	if kind == classify.KindFeedback {
		return s.st.InsertFeedback(ctx, s.feedbackRecord(ev, batch))
	}
	return s.st.InsertAnalytics(ctx, s.analyticsRecord(ev, batch))
}

func (s *Service) analyticsRecord(ev models.Event, batch models.Batch) models.AnalyticsRecord {
	// Generated ids cannot dedupe client retries; duplicates are acceptable.
	eventID := ev.ID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	return models.AnalyticsRecord{
		EventID:    eventID,
		UserID:     models.NullableString(ev.UserID),
		Type:       ev.Type,
		Timestamp:  s.timestamp(ev),
		Properties: ev.Properties,
		DeviceID:   models.NullableString(batch.DeviceID),
		AppVersion: models.NullableString(batch.AppVersion),
		Platform:   models.NullableString(batch.Platform),
		SessionID:  models.NullableString(ev.SessionID),
	}
}

func (s *Service) feedbackRecord(ev models.Event, batch models.Batch) models.FeedbackRecord {
	props := ev.Properties

	feedbackType := classify.DefaultFeedbackType
	if v := props["feedback_type"]; classify.Truthy(v) {
		feedbackType = feedbackTypeText(v)
	}

	var isPositive *bool
	if b, ok := props["is_positive"].(bool); ok {
		isPositive = &b
	}

	return models.FeedbackRecord{
		UserID:       models.NullableString(ev.UserID),
		FeedbackType: feedbackType,
		IsPositive:   isPositive,
		Details:      props,
		Screenshot:   models.NullableString(classify.String(props["screenshot"])),
		DeviceID:     models.NullableString(batch.DeviceID),
		AppVersion:   models.NullableString(batch.AppVersion),
		Platform:     models.NullableString(batch.Platform),
		Timestamp:    s.timestamp(ev),
	}
}

// timestamp falls back to receive time when the client sent none.
func (s *Service) timestamp(ev models.Event) time.Time {
	if ev.Timestamp.IsZero() {
		return s.now().UTC()
	}
	return ev.Timestamp.Time
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// feedbackTypeText keeps strings as-is and stores anything else as JSON.
func feedbackTypeText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
