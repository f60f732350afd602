// Package aggregate derives dashboard metrics from rows already read from the
// store. Nothing here touches the store, and empty input yields zero values.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/PratikDhanave/lexie-analytics/internal/classify"
	"github.com/PratikDhanave/lexie-analytics/internal/models"
)

// screenRankLimit caps the most-viewed screens table.
const screenRankLimit = 10

// Count is one row of a ranking table.
type Count struct {
	Name  string
	Count int
}

// SentimentCount is the number of feedback rows sharing a type and rating.
// IsPositive is nil for feedback submitted without a rating.
type SentimentCount struct {
	FeedbackType string
	IsPositive   *bool
	Count        int
}

// Report is the full metrics dashboard.
type Report struct {
	TotalEvents   int64
	UniqueUsers   int
	UniqueDevices int

	Features []Count
	Screens  []Count

	Retention Retention

	StudySetsCreated int
	StudySetsPerUser float64

	Sessions SessionStats
	TopUsers []UserSessionTime

	Feedback []SentimentCount
}

// ComputeMetrics builds a Report from analytics and feedback rows.
// TotalEvents is len(events); callers holding a store count may overwrite it.
func ComputeMetrics(events []models.AnalyticsRecord, feedback []models.FeedbackRecord) Report {
	users := map[string]struct{}{}
	devices := map[string]struct{}{}
	features := map[string]int{}
	screens := map[string]int{}
	studySets := 0

	for _, ev := range events {
		if ev.UserID != nil {
			users[*ev.UserID] = struct{}{}
		}
		if ev.DeviceID != nil {
			devices[*ev.DeviceID] = struct{}{}
		}

		switch ev.Type {
		case classify.TypeFeatureUse:
			if name := propString(ev.Properties, "feature_name"); name != "" {
				features[name]++
			}
		case classify.TypeScreenView:
			if name := propString(ev.Properties, "screen_name"); name != "" {
				screens[name]++
			}
		case classify.TypeStudySetCreated:
			studySets++
		}
	}

	r := Report{
		TotalEvents:      int64(len(events)),
		UniqueUsers:      len(users),
		UniqueDevices:    len(devices),
		Features:         rank(features, 0),
		Screens:          rank(screens, screenRankLimit),
		Retention:        WeeklyRetention(events),
		StudySetsCreated: studySets,
		Sessions:         SessionDurations(events),
		TopUsers:         TopUsersBySessionTime(events, topUsersLimit),
		Feedback:         Sentiment(feedback),
	}
	if len(users) > 0 {
		r.StudySetsPerUser = float64(studySets) / float64(len(users))
	}
	return r
}

// Sentiment groups feedback by (feedback_type, is_positive), ordered by type
// then positive, negative, unrated.
func Sentiment(feedback []models.FeedbackRecord) []SentimentCount {
	type key struct {
		typ    string
		rating int
	}
	counts := map[key]int{}
	for _, f := range feedback {
		counts[key{f.FeedbackType, ratingOrder(f.IsPositive)}]++
	}

	out := make([]SentimentCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, SentimentCount{FeedbackType: k.typ, IsPositive: ratingValue(k.rating), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FeedbackType != out[j].FeedbackType {
			return out[i].FeedbackType < out[j].FeedbackType
		}
		return ratingOrder(out[i].IsPositive) < ratingOrder(out[j].IsPositive)
	})
	return out
}

func ratingOrder(b *bool) int {
	switch {
	case b == nil:
		return 2
	case *b:
		return 0
	default:
		return 1
	}
}

func ratingValue(order int) *bool {
	switch order {
	case 0:
		t := true
		return &t
	case 1:
		f := false
		return &f
	default:
		return nil
	}
}

// rank sorts counts descending, name ascending on ties. limit <= 0 keeps all.
func rank(counts map[string]int, limit int) []Count {
	out := make([]Count, 0, len(counts))
	for name, n := range counts {
		out = append(out, Count{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// propString reads a property as text; nil and missing are "".
func propString(props map[string]any, key string) string {
	switch v := props[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
