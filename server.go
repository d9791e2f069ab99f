package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/auditor/analyzer"
	"github.com/seo-optimizer/auditor/fetcher"
	"github.com/seo-optimizer/auditor/logging"
	"github.com/seo-optimizer/auditor/middleware"
	"github.com/seo-optimizer/auditor/stats"
)

// Auditor runs a single page audit.
type Auditor interface {
	Audit(ctx context.Context, url string) (*analyzer.AuditReport, error)
}

type server struct {
	auditor Auditor
	storage *stats.Storage
	traffic *stats.Traffic
	limiter *middleware.RateLimiter
	logger  *slog.Logger
	devMode bool
}

type auditRequest struct {
	URL string `json:"url" binding:"required"`
}

type statisticsResponse struct {
	stats.Snapshot
	Month                 string         `json:"month"`
	AuditsThisMonth       int            `json:"auditsThisMonth"`
	FailuresThisMonth     int            `json:"failuresThisMonth"`
	FailuresByKind        map[string]int `json:"failuresByKind"`
	AveragePageLoadTimeMs float64        `json:"averagePageLoadTimeMs"`
}

func (s *server) routes() *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(logging.GinLogger(s.logger))
	r.Use(middleware.ErrorHandler(s.logger))
	r.Use(middleware.CORS())
	r.Use(s.limiter.RateLimit())
	r.Use(middleware.Stats(s.traffic))

	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.POST("/audit", s.audit)
		api.POST("/analyze", s.audit)
		api.GET("/statistics", s.statistics)
	}

	return r
}

func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *server) audit(c *gin.Context) {
	var req auditRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "A URL is required in the request body, e.g. {\"url\": \"https://example.com\"}",
			"kind":  string(fetcher.KindInvalidURL),
		})
		return
	}

	url := strings.TrimSpace(req.URL)
	c.Set(middleware.AuditURLKey, url)

	report, err := s.auditor.Audit(c.Request.Context(), url)
	if err != nil {
		status, kind := classifyError(err)
		s.storage.RecordFailure(kind)
		s.logger.WarnContext(c.Request.Context(), "audit failed",
			"url", url,
			"kind", kind,
			"status", status,
			"requestID", c.GetString(logging.RequestIDKey),
		)
		c.JSON(status, gin.H{"error": errorMessage(err, status), "kind": kind})
		return
	}

	s.storage.RecordAudit(report.TechnicalSEO.Performance.LoadTimeMs)
	c.JSON(http.StatusOK, report)
}

func (s *server) statistics(c *gin.Context) {
	month := s.storage.GetCurrentStats()
	if month.FailuresByKind == nil {
		month.FailuresByKind = map[string]int{}
	}
	c.JSON(http.StatusOK, statisticsResponse{
		Snapshot:              s.traffic.Snapshot(s.devMode),
		Month:                 stats.CurrentMonth(),
		AuditsThisMonth:       month.Audits,
		FailuresThisMonth:     month.Failures,
		FailuresByKind:        month.FailuresByKind,
		AveragePageLoadTimeMs: month.AverageLoadTimeMs(),
	})
}

// classifyError maps an audit error to an HTTP status and an error kind.
func classifyError(err error) (int, string) {
	var fe *fetcher.FetchError
	if errors.As(err, &fe) {
		switch fe.Category() {
		case fetcher.CategoryInvalidInput:
			return http.StatusBadRequest, string(fe.Kind)
		case fetcher.CategoryRemoteRejection, fetcher.CategoryTransportFailure, fetcher.CategoryEmptyResponse:
			return http.StatusBadGateway, string(fe.Kind)
		}
		return http.StatusInternalServerError, string(fe.Kind)
	}

	var pe *analyzer.ParseError
	if errors.As(err, &pe) {
		return http.StatusUnprocessableEntity, "ParseError"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "Canceled"
	}
	return http.StatusInternalServerError, "Internal"
}

// errorMessage returns the user facing message. Fetch and parse messages are
// written for end users; anything else is replaced by a generic text.
func errorMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		var fe *fetcher.FetchError
		if !errors.As(err, &fe) {
			return "An unexpected error occurred while auditing the page"
		}
	}
	return err.Error()
}
