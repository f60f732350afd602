package models

import "time"

// AnalyticsRecord is a persisted generic event (table analytics_events).
// Duplicates are possible on client retry; nothing dedupes them.
type AnalyticsRecord struct {
	EventID    string
	UserID     *string
	Type       string
	Timestamp  time.Time
	Properties map[string]any
	DeviceID   *string
	AppVersion *string
	Platform   *string
	SessionID  *string
}

// FeedbackRecord is a persisted user-opinion event (table feedback).
type FeedbackRecord struct {
	ID           int64
	UserID       *string
	FeedbackType string
	IsPositive   *bool
	Details      map[string]any
	Screenshot   *string
	DeviceID     *string
	AppVersion   *string
	Platform     *string
	Timestamp    time.Time
}

// NullableString maps "" to nil so empty client values are stored as NULL.
func NullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
