package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/PratikDhanave/lexie-analytics/internal/aggregate"
	"github.com/PratikDhanave/lexie-analytics/internal/auth"
	"github.com/PratikDhanave/lexie-analytics/internal/models"
	"github.com/PratikDhanave/lexie-analytics/internal/report"
	"github.com/PratikDhanave/lexie-analytics/internal/store"
	"github.com/PratikDhanave/lexie-analytics/internal/telemetry"
)

// Pages serves the HTML reports. Every request reads the store afresh.
type Pages struct {
	st            store.Store
	renderer      *report.Renderer
	log           zerolog.Logger
	readTimeout   time.Duration
	feedbackLimit int
}

// NewPages wires the report pages.
func NewPages(st store.Store, renderer *report.Renderer, log zerolog.Logger, readTimeout time.Duration, feedbackLimit int) *Pages {
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	return &Pages{
		st:            st,
		renderer:      renderer,
		log:           log.With().Str("component", "pages").Logger(),
		readTimeout:   readTimeout,
		feedbackLimit: feedbackLimit,
	}
}

// RegisterPageRoutes registers the serving-path endpoints.
//
// GET / and /api/dashboard      metrics dashboard
// GET /feedback and /api/feedback latest feedback + content ratings
func RegisterPageRoutes(r gin.IRoutes, p *Pages) {
	r.GET("/", p.dashboard)
	r.GET("/api/dashboard", p.dashboard)
	r.GET("/feedback", p.feedback)
	r.GET("/api/feedback", p.feedback)
}

func (p *Pages) dashboard(c *gin.Context) {
	start := time.Now()

	rep, err := p.loadMetrics(c.Request.Context())
	if err != nil {
		p.log.Error().Err(err).Str("viewer", auth.Viewer(c)).Msg("generating dashboard")
		telemetry.RecordRender(string(report.KindMetrics), "error", time.Since(start))
		p.renderError(c, report.ErrorData{
			Heading:  "Error loading dashboard",
			Message:  err.Error(),
			BackHref: "/feedback",
			BackText: "View Feedback",
		})
		return
	}

	body, err := p.renderer.Metrics(rep)
	if err != nil {
		p.log.Error().Err(err).Msg("rendering dashboard")
		telemetry.RecordRender(string(report.KindMetrics), "error", time.Since(start))
		c.String(http.StatusInternalServerError, "render failed")
		return
	}

	telemetry.RecordRender(string(report.KindMetrics), "ok", time.Since(start))
	p.served(c, report.KindMetrics, start)
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

// loadMetrics issues the three store reads concurrently; any failure fails the page.
func (p *Pages) loadMetrics(ctx context.Context) (aggregate.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, p.readTimeout)
	defer cancel()

	var (
		events   []models.AnalyticsRecord
		feedback []models.FeedbackRecord
		total    int64
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		events, err = p.st.ListAnalytics(ctx)
		if err != nil {
			return fmt.Errorf("read analytics events: %w", err)
		}
		return nil
	})
	eg.Go(func() (err error) {
		feedback, err = p.st.ListFeedback(ctx, 0)
		if err != nil {
			return fmt.Errorf("read feedback: %w", err)
		}
		return nil
	})
	eg.Go(func() (err error) {
		total, err = p.st.CountAnalytics(ctx)
		if err != nil {
			return fmt.Errorf("count analytics events: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return aggregate.Report{}, err
	}

	rep := aggregate.ComputeMetrics(events, feedback)
	rep.TotalEvents = total
	return rep, nil
}

func (p *Pages) feedback(c *gin.Context) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(c.Request.Context(), p.readTimeout)
	defer cancel()

	rows, err := p.st.ListFeedback(ctx, p.feedbackLimit)
	if err != nil {
		p.log.Error().Err(err).Str("viewer", auth.Viewer(c)).Msg("fetching feedback")
		telemetry.RecordRender(string(report.KindFeedback), "error", time.Since(start))
		p.renderError(c, report.ErrorData{
			Heading:  "Error retrieving feedback",
			Message:  fmt.Errorf("read feedback: %w", err).Error(),
			BackHref: "/",
			BackText: "Back to Dashboard",
		})
		return
	}

	body, err := p.renderer.Feedback(aggregate.ComputeFeedbackReport(rows))
	if err != nil {
		p.log.Error().Err(err).Msg("rendering feedback")
		telemetry.RecordRender(string(report.KindFeedback), "error", time.Since(start))
		c.String(http.StatusInternalServerError, "render failed")
		return
	}

	telemetry.RecordRender(string(report.KindFeedback), "ok", time.Since(start))
	p.served(c, report.KindFeedback, start)
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

func (p *Pages) renderError(c *gin.Context, data report.ErrorData) {
	body, err := p.renderer.Error(data)
	if err != nil {
		c.String(http.StatusInternalServerError, data.Message)
		return
	}
	c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", body)
}

// served records who looked at which report.
func (p *Pages) served(c *gin.Context, kind report.Kind, start time.Time) {
	p.log.Info().
		Str("report", string(kind)).
		Str("viewer", auth.Viewer(c)).
		Dur("duration", time.Since(start)).
		Msg("report served")
}
