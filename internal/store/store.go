package store

import (
	"context"

	"github.com/PratikDhanave/lexie-analytics/internal/models"
)

// Store is the persistence contract used by ingestion and the report pages.
// Records are append-only: nothing here updates or deletes.
type Store interface {
	InsertAnalytics(ctx context.Context, rec models.AnalyticsRecord) error
	InsertFeedback(ctx context.Context, rec models.FeedbackRecord) error

	// ListAnalytics returns every analytics row.
	ListAnalytics(ctx context.Context) ([]models.AnalyticsRecord, error)
	// ListFeedback returns feedback newest first; limit <= 0 means no limit.
	ListFeedback(ctx context.Context, limit int) ([]models.FeedbackRecord, error)
	CountAnalytics(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
	Close()
}
