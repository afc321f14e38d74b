package delivery

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"adsync/internal/domain"
	"adsync/internal/usecase"
	"adsync/pkg/logger"
	"adsync/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// handles HTTP requests
type HTTPHandlers struct {
	syncService   *usecase.SyncService
	resultService *usecase.ResultService
	logger        *logger.Logger
	metrics       *metrics.Metrics
}

// creates new HTTP handlers
func NewHTTPHandlers(
	syncService *usecase.SyncService,
	resultService *usecase.ResultService,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *HTTPHandlers {
	return &HTTPHandlers{
		syncService:   syncService,
		resultService: resultService,
		logger:        logger,
		metrics:       metrics,
	}
}

// RunSync triggers one pipeline invocation. A pending response carries the
// job snapshot the client must replay in pendingReports to resume.
func (h *HTTPHandlers) RunSync(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)
	log := h.logger.WithContext(ctx)

	var req domain.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.RecordHTTPRequest("POST", "/sync/run", "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	if req.ClientID == "" || req.ClientSecret == "" || req.RefreshToken == "" {
		h.metrics.RecordHTTPRequest("POST", "/sync/run", "400", time.Since(start))
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Missing credentials",
			"message":    "clientId, clientSecret and refreshToken are required",
			"request_id": requestID,
		})
		return
	}

	result, err := h.syncService.Run(ctx, req)
	if err != nil {
		status := http.StatusBadGateway
		var authErr *domain.AuthError
		if errors.As(err, &authErr) {
			status = http.StatusUnauthorized
		}
		h.metrics.RecordHTTPRequest("POST", "/sync/run", strconv.Itoa(status), time.Since(start))
		log.WithError(err).Error("Report sync failed")
		c.JSON(status, gin.H{
			"error":      "Report sync failed",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("POST", "/sync/run", "200", time.Since(start))
	c.JSON(http.StatusOK, result)
}

// GetLastSync returns the most recent completed sync result.
func (h *HTTPHandlers) GetLastSync(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	result, err := h.resultService.LastResult(ctx)
	if err != nil {
		h.metrics.RecordHTTPRequest("GET", "/sync/last", "500", time.Since(start))
		h.logger.WithContext(ctx).WithError(err).Error("Failed to load last sync result")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to load last sync result",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}
	if result == nil {
		h.metrics.RecordHTTPRequest("GET", "/sync/last", "404", time.Since(start))
		c.JSON(http.StatusNotFound, gin.H{
			"error":      "No completed sync yet",
			"request_id": requestID,
		})
		return
	}

	h.metrics.RecordHTTPRequest("GET", "/sync/last", "200", time.Since(start))
	c.JSON(http.StatusOK, result)
}

// GetLastSummary returns the compact view of the latest run.
func (h *HTTPHandlers) GetLastSummary(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)

	summary, err := h.resultService.LastSummary(ctx)
	if err != nil {
		h.metrics.RecordHTTPRequest("GET", "/sync/summary", "500", time.Since(start))
		h.logger.WithContext(ctx).WithError(err).Error("Failed to load sync summary")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "Failed to load sync summary",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}
	if summary == nil {
		h.metrics.RecordHTTPRequest("GET", "/sync/summary", "404", time.Since(start))
		c.JSON(http.StatusNotFound, gin.H{
			"error":      "No completed sync yet",
			"request_id": requestID,
		})
		return
	}

	summary["request_id"] = requestID
	h.metrics.RecordHTTPRequest("GET", "/sync/summary", "200", time.Since(start))
	c.JSON(http.StatusOK, summary)
}

// GetAPIInfo returns API v1 information and available endpoints
func (h *HTTPHandlers) GetAPIInfo(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()

	apiInfo := gin.H{
		"api_version": "v1",
		"service":     "Ad Report Sync",
		"version":     "1.0.0",
		"description": "Synchronizes Amazon advertising reports into daily, SKU and campaign rollups",
		"endpoints": gin.H{
			"sync": gin.H{
				"run": gin.H{
					"path":        "/api/v1/sync/run",
					"method":      "POST",
					"description": "Run the report pipeline; replay pendingReports from a pending response to resume",
					"body": gin.H{
						"clientId":       "Required: API client id",
						"clientSecret":   "Required: API client secret",
						"refreshToken":   "Required: OAuth refresh token",
						"profileId":      "Optional: advertising profile scope",
						"startDate":      "Optional: YYYY-MM-DD (with endDate)",
						"endDate":        "Optional: YYYY-MM-DD (with startDate)",
						"daysBack":       "Optional: trailing window instead of explicit dates",
						"pendingReports": "Optional: job snapshot from a previous pending response",
					},
				},
				"last": gin.H{
					"path":        "/api/v1/sync/last",
					"method":      "GET",
					"description": "Latest completed sync result",
				},
				"summary": gin.H{
					"path":        "/api/v1/sync/summary",
					"method":      "GET",
					"description": "Compact summary of the latest completed sync",
				},
			},
		},
		"derived_metrics": gin.H{
			"acos":           "Ad Cost of Sales (spend / revenue * 100)",
			"roas":           "Return on Ad Spend (revenue / spend)",
			"ctr":            "Click-Through Rate (clicks / impressions * 100)",
			"cpc":            "Cost Per Click (spend / clicks)",
			"conversionRate": "Orders per click (orders / clicks * 100)",
		},
		"request_id": requestID,
	}

	h.metrics.RecordHTTPRequest("GET", "/api/v1", "200", time.Since(start))
	c.JSON(http.StatusOK, apiInfo)
}

// HealthCheck returns the health status of the service
func (h *HTTPHandlers) HealthCheck(c *gin.Context) {
	start := time.Now()
	h.metrics.IncHTTPRequestsInFlight()
	defer h.metrics.DecHTTPRequestsInFlight()

	requestID := uuid.New().String()

	health := gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"service":    "adsync",
		"version":    "1.0.0",
		"request_id": requestID,
	}

	h.metrics.RecordHTTPRequest("GET", "/health", "200", time.Since(start))
	c.JSON(http.StatusOK, health)
}
