package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/PratikDhanave/lexie-analytics/internal/ingest"
	"github.com/PratikDhanave/lexie-analytics/internal/models"
)

// CollectPath is the ingestion endpoint used by the mobile clients.
const CollectPath = "/api/collect"

// RegisterCollectRoutes registers the ingestion-path endpoint.
//
// POST /api/collect
// - Body: {events: [...], deviceId, appVersion, platform}
// - 200 even when some events failed to persist; the message carries the counts
// OPTIONS answers pre-flight; any other method is 405.
func RegisterCollectRoutes(r gin.IRoutes, svc *ingest.Service, log zerolog.Logger) {
	r.Any(CollectPath, func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodOptions:
			c.Status(http.StatusOK)
			return
		case http.MethodPost:
		default:
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
			return
		}

		// An unreadable body has no events array either.
		var batch models.Batch
		if err := c.ShouldBindJSON(&batch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid events data"})
			return
		}

		res, err := svc.Ingest(c.Request.Context(), batch)
		if errors.Is(err, ingest.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid events data"})
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("processing analytics batch")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"message": err.Error(),
			})
			return
		}

		log.Info().
			Int("received", res.TotalReceived).
			Int("analytics", res.AnalyticsStored).
			Int("feedback", res.FeedbackStored).
			Msg("batch processed")

		c.JSON(http.StatusOK, models.CollectResponse{
			Success: true,
			Message: res.Message(),
		})
	})
}
