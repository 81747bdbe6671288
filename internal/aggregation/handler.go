package aggregation

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	v1 "github.com/aevon-lab/cc-reporting/internal/api/v1"
	coreagg "github.com/aevon-lab/cc-reporting/internal/core/aggregation"
	httperr "github.com/aevon-lab/cc-reporting/internal/core/errors"
	"github.com/aevon-lab/cc-reporting/internal/core/identity"
	"github.com/aevon-lab/cc-reporting/internal/core/storage"
	"github.com/aevon-lab/cc-reporting/internal/ingestion"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidJSON    = "Invalid JSON body"
	msgReportFailed   = "Failed to build report"
	msgUnauthorized   = "Upstream access token missing"
	msgAgentsFailed   = "Failed to list agents"
	msgInvalidRequest = "Invalid report request"
)

// reportFunc builds one report from a bound request body.
type reportFunc func(ctx context.Context, body v1.ReportRequest, req Request) (any, int64, []storage.Agent, error)

// RegisterRoutes registers every report route. Each POST route has a
// refresh variant that forces re-ingestion of the range first.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	queues := map[string]reportFunc{
		"all":              s.queueAll,
		"daily":            s.queueDaily,
		"interval":         s.queueInterval,
		"abandoned-calls":  s.abandonedCalls,
		"abandoned-report": s.agentAbandoned,
	}
	for name, fn := range queues {
		r.POST("/v1/queues/"+name, s.handle(fn, false))
		r.POST("/v1/queues/"+name+"/refresh", s.handle(fn, true))
	}

	r.POST("/v1/flows/interval", s.handle(s.flowInterval, false))
	r.POST("/v1/flows/refresh", s.handle(s.flowInterval, true))

	reports := map[string]reportFunc{
		"agent-performance":  s.performance,
		"time-card":          s.timecard,
		"agent-login-report": s.login,
		"agent-engagement":   s.engagement,
		"group-summary":      s.groupSummary,
	}
	for name, fn := range reports {
		r.POST("/v1/reports/"+name, s.handle(fn, false))
		r.POST("/v1/reports/refresh/"+name, s.handle(fn, true))
	}

	r.GET("/v1/agents", s.AgentsHandler)
}

func (s *Service) handle(fn reportFunc, refresh bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body v1.ReportRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			slog.Warn("[Report] Invalid JSON body received", "path", c.FullPath(), "error", err)
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidJsonError,
				Message:   msgInvalidJSON,
			})
			return
		}

		rng, err := body.TimeRange()
		if err != nil {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidRequestError,
				Message:   v1.ValidationMessage(err),
			})
			return
		}

		req := Request{
			CallerID: identity.CallerID(c),
			Range:    rng,
			Page:     body.PageRequest.Normalize(),
			Refresh:  refresh,
			Order:    body.Order(),
		}
		report, total, agents, err := fn(c.Request.Context(), body, req)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, v1.ReportResponse{
			Success:      true,
			Report:       report,
			TotalRecords: total,
			Page:         req.Page.Page,
			Count:        req.Page.Count,
			Agents:       agents,
		})
	}
}

// AgentsHandler lists the agent directory, loading it first if it is empty.
func (s *Service) AgentsHandler(c *gin.Context) {
	agents, err := s.listAgents(c.Request.Context(), identity.CallerID(c))
	if err != nil {
		if errors.Is(err, ingestion.ErrAuthorizationMissing) {
			writeError(c, err)
			return
		}
		slog.Error("[Report] Failed to list agents", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   msgAgentsFailed,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "agents": agents})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, coreagg.ErrInvalidInterval):
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   msgInvalidRequest,
			Details:   err.Error(),
		})
	case errors.Is(err, ingestion.ErrAuthorizationMissing):
		c.JSON(http.StatusUnauthorized, httperr.ErrorResponse{
			ErrorType: httperr.HttpUnauthorizedError,
			Message:   msgUnauthorized,
		})
	default:
		slog.Error("[Report] Report failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   msgReportFailed,
		})
	}
}
