package aggregate

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/PratikDhanave/lexie-analytics/internal/classify"
	"github.com/PratikDhanave/lexie-analytics/internal/models"
)

const topUsersLimit = 5

// DurationStat is a mean over the sessions whose duration parsed.
type DurationStat struct {
	Sessions    int
	MeanSeconds float64
}

// ContextDuration is the session mean for one study context.
type ContextDuration struct {
	Context classify.SessionContext
	DurationStat
}

// SessionStats groups SESSION_END durations by context.
// ByContext always holds every context, in classify.SessionContexts order.
type SessionStats struct {
	ByContext []ContextDuration
	Overall   DurationStat
}

// UserSessionTime is one entry of the top-users table.
type UserSessionTime struct {
	UserID string
	DurationStat
}

type meanAcc struct {
	sum float64
	n   int
}

func (a *meanAcc) add(v float64) {
	a.sum += v
	a.n++
}

func (a meanAcc) stat() DurationStat {
	if a.n == 0 {
		return DurationStat{}
	}
	return DurationStat{Sessions: a.n, MeanSeconds: a.sum / float64(a.n)}
}

// SessionDurations averages properties.duration_seconds of SESSION_END events
// per context and overall. Non-numeric durations are skipped.
func SessionDurations(events []models.AnalyticsRecord) SessionStats {
	byCtx := map[classify.SessionContext]*meanAcc{}
	for _, c := range classify.SessionContexts {
		byCtx[c] = &meanAcc{}
	}
	var overall meanAcc

	for _, ev := range events {
		if ev.Type != classify.TypeSessionEnd {
			continue
		}
		d, ok := durationSeconds(ev.Properties)
		if !ok {
			continue
		}
		ctx := classify.SessionContextOf(propString(ev.Properties, "context"))
		byCtx[ctx].add(d)
		overall.add(d)
	}

	stats := SessionStats{Overall: overall.stat()}
	for _, c := range classify.SessionContexts {
		stats.ByContext = append(stats.ByContext, ContextDuration{Context: c, DurationStat: byCtx[c].stat()})
	}
	return stats
}

// TopUsersBySessionTime ranks users by mean session duration, highest first.
// Ties are broken by user id so the result does not depend on row order.
func TopUsersBySessionTime(events []models.AnalyticsRecord, limit int) []UserSessionTime {
	perUser := map[string]*meanAcc{}
	for _, ev := range events {
		if ev.Type != classify.TypeSessionEnd || ev.UserID == nil {
			continue
		}
		d, ok := durationSeconds(ev.Properties)
		if !ok {
			continue
		}
		acc, found := perUser[*ev.UserID]
		if !found {
			acc = &meanAcc{}
			perUser[*ev.UserID] = acc
		}
		acc.add(d)
	}

	out := make([]UserSessionTime, 0, len(perUser))
	for id, acc := range perUser {
		out = append(out, UserSessionTime{UserID: id, DurationStat: acc.stat()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanSeconds != out[j].MeanSeconds {
			return out[i].MeanSeconds > out[j].MeanSeconds
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// durationSeconds accepts JSON numbers and numeric strings.
func durationSeconds(props map[string]any) (float64, bool) {
	var (
		d   float64
		err error
	)
	switch v := props["duration_seconds"].(type) {
	case float64:
		d = v
	case int:
		d = float64(v)
	case int64:
		d = float64(v)
	case string:
		d, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, false
	}
	return d, true
}
