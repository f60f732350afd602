package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PratikDhanave/lexie-analytics/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is the durable persistence layer for analytics and feedback.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schemaSQL)
	return err
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// InsertAnalytics writes one row into analytics_events.
func (p *PostgresStore) InsertAnalytics(ctx context.Context, rec models.AnalyticsRecord) error {
	if rec.EventID == "" {
		return errors.New("event_id required")
	}

	props, err := marshalJSON(rec.Properties)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO analytics_events
			(event_id, user_id, type, timestamp, properties, device_id, app_version, platform, session_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, rec.EventID, rec.UserID, rec.Type, rec.Timestamp, props,
		rec.DeviceID, rec.AppVersion, rec.Platform, rec.SessionID)
	return err
}

// InsertFeedback writes one row into feedback.
func (p *PostgresStore) InsertFeedback(ctx context.Context, rec models.FeedbackRecord) error {
	details, err := marshalJSON(rec.Details)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO feedback
			(user_id, feedback_type, is_positive, details, screenshot, device_id, app_version, platform, timestamp)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, rec.UserID, rec.FeedbackType, rec.IsPositive, details, rec.Screenshot,
		rec.DeviceID, rec.AppVersion, rec.Platform, rec.Timestamp)
	return err
}

// ListAnalytics reads the full analytics_events table.
// Volumes are expected to fit one in-memory pass.
func (p *PostgresStore) ListAnalytics(ctx context.Context) ([]models.AnalyticsRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT event_id, user_id, type, timestamp, properties, device_id, app_version, platform, session_id
		FROM analytics_events
		ORDER BY timestamp
	`)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.AnalyticsRecord, error) {
		var (
			rec   models.AnalyticsRecord
			props []byte
		)
		if err := row.Scan(&rec.EventID, &rec.UserID, &rec.Type, &rec.Timestamp, &props,
			&rec.DeviceID, &rec.AppVersion, &rec.Platform, &rec.SessionID); err != nil {
			return rec, err
		}
		m, err := unmarshalJSON(props)
		if err != nil {
			return rec, fmt.Errorf("event %s properties: %w", rec.EventID, err)
		}
		rec.Properties = m
		return rec, nil
	})
}

// ListFeedback returns feedback ordered by timestamp descending.
func (p *PostgresStore) ListFeedback(ctx context.Context, limit int) ([]models.FeedbackRecord, error) {
	query := `
		SELECT id, user_id, feedback_type, is_positive, details, screenshot, device_id, app_version, platform, timestamp
		FROM feedback
		ORDER BY timestamp DESC, id DESC
	`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.FeedbackRecord, error) {
		var (
			rec     models.FeedbackRecord
			details []byte
		)
		if err := row.Scan(&rec.ID, &rec.UserID, &rec.FeedbackType, &rec.IsPositive, &details,
			&rec.Screenshot, &rec.DeviceID, &rec.AppVersion, &rec.Platform, &rec.Timestamp); err != nil {
			return rec, err
		}
		m, err := unmarshalJSON(details)
		if err != nil {
			return rec, fmt.Errorf("feedback %d details: %w", rec.ID, err)
		}
		rec.Details = m
		return rec, nil
	})
}

// CountAnalytics returns the total number of analytics rows.
func (p *PostgresStore) CountAnalytics(ctx context.Context) (int64, error) {
	var count int64
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM analytics_events`).Scan(&count)
	return count, err
}

func marshalJSON(m map[string]any) ([]byte, error) {
	if m == nil {
		m = map[string]any{}
	}
	return json.Marshal(m)
}

func unmarshalJSON(b []byte) (map[string]any, error) {
	m := map[string]any{}
	if len(b) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
