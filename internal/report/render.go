// Package report renders dashboard pages from aggregate results.
// Unit conversion and rounding happen only here; the reports are read, never changed.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"time"

	"github.com/PratikDhanave/lexie-analytics/internal/aggregate"
	"github.com/PratikDhanave/lexie-analytics/internal/classify"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Kind selects the document variant.
type Kind string

const (
	KindMetrics  Kind = "metrics"
	KindFeedback Kind = "feedback"
	kindError    Kind = "error"
)

// Page is the data handed to every template.
type Page struct {
	Title     string
	Kind      Kind
	UpdatedAt time.Time
	Data      any
}

// ErrorData backs the error page.
type ErrorData struct {
	Heading  string
	Message  string
	BackHref string
	BackText string
}

// Renderer holds parsed templates, one set per Kind.
type Renderer struct {
	templates map[Kind]*template.Template
	now       func() time.Time
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	r := &Renderer{
		templates: make(map[Kind]*template.Template),
		now:       time.Now,
	}

	for _, k := range []Kind{KindMetrics, KindFeedback, kindError} {
		tmpl, err := template.New("").Funcs(templateFuncs()).
			ParseFS(templatesFS, "templates/layout.html", "templates/"+string(k)+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", k, err)
		}
		r.templates[k] = tmpl
	}
	return r, nil
}

// Metrics renders the metrics dashboard.
func (r *Renderer) Metrics(rep aggregate.Report) ([]byte, error) {
	return r.render(KindMetrics, "Lexie analytics dashboard", rep)
}

// Feedback renders the feedback list and content ratings.
func (r *Renderer) Feedback(rep aggregate.FeedbackReport) ([]byte, error) {
	return r.render(KindFeedback, "Lexie analytics dashboard", rep)
}

// Error renders the failure page shown instead of a partial report.
func (r *Renderer) Error(data ErrorData) ([]byte, error) {
	return r.render(kindError, "Error", data)
}

func (r *Renderer) render(kind Kind, title string, data any) ([]byte, error) {
	tmpl, ok := r.templates[kind]
	if !ok {
		return nil, fmt.Errorf("template %s not found", kind)
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	page := Page{Title: title, Kind: kind, UpdatedAt: r.now(), Data: data}
	if err := tmpl.ExecuteTemplate(buf, "layout", page); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", kind, err)
	}
	return buf.Bytes(), nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"minutes":        Minutes,
		"percent":        Percent,
		"decimal":        decimal,
		"positivePct":    PositivePercent,
		"negativePct":    negativePercent,
		"sentiment":      sentiment,
		"contextLabel":   contextLabel,
		"tagClass":       tagClass,
		"barWidth":       barWidth,
		"maxContextMean": maxContextMean,
	}
}

func formatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

func formatDateTime(t time.Time) string {
	return t.Format("Jan 2, 2006 3:04 PM")
}

func decimal(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func contextLabel(c classify.SessionContext) string {
	return c.Label()
}

// Minutes formats seconds as minutes with one decimal.
func Minutes(seconds float64) string {
	return fmt.Sprintf("%.1f", seconds/60)
}

// Percent formats an already-scaled percentage.
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// PositivePercent rounds the share of positive ratings to a whole percent.
func PositivePercent(cr aggregate.ContentRating) int {
	if cr.Total == 0 {
		return 0
	}
	return int(math.Round(float64(cr.Positive) / float64(cr.Total) * 100))
}

func negativePercent(cr aggregate.ContentRating) int {
	if cr.Total == 0 {
		return 0
	}
	return 100 - PositivePercent(cr)
}

// maxContextMean is the longest per-context mean, the 100% mark of the bars.
func maxContextMean(s aggregate.SessionStats) float64 {
	var m float64
	for _, c := range s.ByContext {
		m = math.Max(m, c.MeanSeconds)
	}
	return m
}

// barWidth scales v against max into 0..100 for bar comparisons.
func barWidth(v, max float64) int {
	if max <= 0 || v <= 0 {
		return 0
	}
	return int(math.Round(math.Min(v/max, 1) * 100))
}

func sentiment(b *bool) string {
	switch {
	case b == nil:
		return "Unrated"
	case *b:
		return "Positive"
	default:
		return "Negative"
	}
}

func tagClass(c classify.FeedbackCategory) string {
	switch c {
	case classify.CategoryBug:
		return "tag-bug"
	case classify.CategoryFeature:
		return "tag-feature"
	case classify.CategoryContent:
		return "tag-content"
	case classify.CategoryUX:
		return "tag-ux"
	default:
		return "tag-other"
	}
}
