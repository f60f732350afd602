package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/lexie-analytics/internal/aggregate"
	"github.com/PratikDhanave/lexie-analytics/internal/classify"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	r.now = func() time.Time { return time.Date(2024, 5, 1, 15, 4, 0, 0, time.UTC) }
	return r
}

func TestMetrics_RendersValuesWithoutChangingReport(t *testing.T) {
	r := newRenderer(t)
	yes := true

	rep := aggregate.ComputeMetrics(nil, nil)
	rep.TotalEvents = 42
	rep.UniqueUsers = 7
	rep.Retention = aggregate.Retention{MultiWeekUsers: 3, ConsecutiveWeekUsers: 1, Rate: 100.0 / 3}
	rep.Sessions.Overall = aggregate.DurationStat{Sessions: 2, MeanSeconds: 90}
	rep.Features = []aggregate.Count{{Name: "scan", Count: 5}}
	rep.TopUsers = []aggregate.UserSessionTime{{UserID: "u-top", DurationStat: aggregate.DurationStat{Sessions: 1, MeanSeconds: 120}}}
	rep.Feedback = []aggregate.SentimentCount{{FeedbackType: "quiz_feedback", IsPositive: &yes, Count: 4}}
	before := rep

	out, err := r.Metrics(rep)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, `<div class="metric">42</div>`)
	assert.Contains(t, html, "33.3%")
	assert.Contains(t, html, "1.5 min")
	assert.Contains(t, html, "<td>scan</td>")
	assert.Contains(t, html, "<td>u-top</td>")
	assert.Contains(t, html, "Positive")
	assert.Contains(t, html, "No screen view data")
	assert.Contains(t, html, "Last updated: May 1, 2024 3:04 PM")
	assert.Equal(t, before, rep)
}

func TestMetrics_EscapesUserInput(t *testing.T) {
	r := newRenderer(t)
	rep := aggregate.ComputeMetrics(nil, nil)
	rep.Screens = []aggregate.Count{{Name: "<script>alert(1)</script>", Count: 1}}

	out, err := r.Metrics(rep)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>alert(1)</script>")
	assert.Contains(t, string(out), "&lt;script&gt;")
}

func TestFeedback_Renders(t *testing.T) {
	r := newRenderer(t)
	rep := aggregate.FeedbackReport{
		AppFeedback: []aggregate.FeedbackItem{{
			Timestamp:  time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
			Kind:       classify.FeedbackApp,
			Category:   classify.CategoryBug,
			Screenshot: "https://cdn.example.com/s.png",
		}},
		AppTotal: 9,
		ContentRatings: []aggregate.ContentRating{
			{Label: "Flashcards", Positive: 2, Negative: 1, Total: 3},
		},
	}

	out, err := r.Feedback(rep)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "April 2, 2024")
	assert.Contains(t, html, `class="tag tag-bug">Bug</span>`)
	assert.Contains(t, html, "No feedback text provided")
	assert.Contains(t, html, "View screenshot")
	assert.Contains(t, html, "Showing 1 of 9")
	assert.Contains(t, html, "3 ratings")
	assert.Contains(t, html, "67%")
	assert.Contains(t, html, "33%")
	assert.Contains(t, html, `class="tab active">Feedback`)
}

func TestFeedback_Empty(t *testing.T) {
	r := newRenderer(t)
	out, err := r.Feedback(aggregate.ComputeFeedbackReport(nil))
	require.NoError(t, err)
	assert.Contains(t, string(out), "No app feedback available")
	assert.Contains(t, string(out), "No content ratings available")
}

func TestError_Renders(t *testing.T) {
	r := newRenderer(t)
	out, err := r.Error(ErrorData{Heading: "Error loading dashboard", Message: "db down", BackHref: "/feedback", BackText: "View Feedback"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "db down")
	assert.Contains(t, string(out), `href="/feedback"`)
	assert.NotContains(t, string(out), "Last updated")
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1.5", Minutes(90))
	assert.Equal(t, "0.0%", Percent(0))
	assert.Equal(t, 67, PositivePercent(aggregate.ContentRating{Positive: 2, Total: 3}))
	assert.Equal(t, 0, PositivePercent(aggregate.ContentRating{}))
	assert.Equal(t, 0, negativePercent(aggregate.ContentRating{}))
	assert.Equal(t, 50, barWidth(30, 60))
	assert.Equal(t, 0, barWidth(30, 0))
	assert.Equal(t, "Unrated", sentiment(nil))
}
