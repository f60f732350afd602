package store

import (
	"context"
	"sort"
	"sync"

	"github.com/PratikDhanave/lexie-analytics/internal/models"
)

// MemoryStore keeps records in process memory. Used for STORE_DRIVER=memory and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	analytics []models.AnalyticsRecord
	feedback  []models.FeedbackRecord
	nextID    int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) InsertAnalytics(ctx context.Context, rec models.AnalyticsRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analytics = append(m.analytics, rec)
	return nil
}

func (m *MemoryStore) InsertFeedback(ctx context.Context, rec models.FeedbackRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rec.ID = m.nextID
	m.feedback = append(m.feedback, rec)
	return nil
}

func (m *MemoryStore) ListAnalytics(ctx context.Context) ([]models.AnalyticsRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.AnalyticsRecord, len(m.analytics))
	copy(out, m.analytics)
	return out, nil
}

func (m *MemoryStore) ListFeedback(ctx context.Context, limit int) ([]models.FeedbackRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]models.FeedbackRecord, len(m.feedback))
	copy(out, m.feedback)
	m.mu.RUnlock()

	// Newest first; insertion order breaks ties.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) CountAnalytics(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.analytics)), nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) Close() {}
