package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/PratikDhanave/lexie-analytics/internal/classify"
	"github.com/PratikDhanave/lexie-analytics/internal/models"
)

// Retention summarizes ACTIVE_WEEK events.
type Retention struct {
	MultiWeekUsers       int
	ConsecutiveWeekUsers int
	// Rate is ConsecutiveWeekUsers / MultiWeekUsers * 100, 0 when nobody was active twice.
	Rate float64
}

// WeeklyRetention collects each user's distinct week keys ("<year>-<week>")
// and counts users active in more than one week and in two adjacent weeks.
func WeeklyRetention(events []models.AnalyticsRecord) Retention {
	weeks := map[string]map[string]struct{}{}
	for _, ev := range events {
		if ev.Type != classify.TypeActiveWeek || ev.UserID == nil {
			continue
		}
		key := propString(ev.Properties, "week_key")
		if key == "" {
			continue
		}
		set, ok := weeks[*ev.UserID]
		if !ok {
			set = map[string]struct{}{}
			weeks[*ev.UserID] = set
		}
		set[key] = struct{}{}
	}

	var r Retention
	for _, set := range weeks {
		if len(set) < 2 {
			continue
		}
		r.MultiWeekUsers++

		keys := make([]string, 0, len(set))
		for k := range set {
			keys = append(keys, k)
		}
		if hasConsecutiveWeeks(keys) {
			r.ConsecutiveWeekUsers++
		}
	}
	if r.MultiWeekUsers > 0 {
		r.Rate = float64(r.ConsecutiveWeekUsers) / float64(r.MultiWeekUsers) * 100
	}
	return r
}

// hasConsecutiveWeeks sorts keys as strings and counts a pair only when the
// later key is exactly one week after the earlier one. Year boundaries never
// count, and neither do "2024-9" and "2024-10" since they sort as "2024-10"
// then "2024-9". Clients rely on these numbers as-is.
func hasConsecutiveWeeks(keys []string) bool {
	sort.Strings(keys)
	for i := 1; i < len(keys); i++ {
		y1, w1, ok1 := parseWeekKey(keys[i-1])
		y2, w2, ok2 := parseWeekKey(keys[i])
		if !ok1 || !ok2 || y1 != y2 {
			continue
		}
		if w2-w1 == 1 {
			return true
		}
	}
	return false
}

func parseWeekKey(key string) (year string, week int, ok bool) {
	year, weekStr, found := strings.Cut(key, "-")
	if !found || year == "" {
		return "", 0, false
	}
	week, err := strconv.Atoi(weekStr)
	if err != nil {
		return "", 0, false
	}
	return year, week, true
}
