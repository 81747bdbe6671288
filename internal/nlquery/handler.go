package nlquery

import (
	"errors"
	"log/slog"
	"net/http"

	v1 "github.com/aevon-lab/cc-reporting/internal/api/v1"
	httperr "github.com/aevon-lab/cc-reporting/internal/core/errors"
	"github.com/gin-gonic/gin"
)

const (
	msgQueryRequired  = "Query is required"
	msgAssistantError = "Report assistant is unavailable"
	msgInternalError  = "Failed to process report request"
)

// RegisterRoutes registers the natural-language report route.
func (p *Planner) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/nl-report", p.ReportHandler)
}

// ReportHandler plans and runs one natural-language report request.
func (p *Planner) ReportHandler(c *gin.Context) {
	var req v1.NLReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   msgQueryRequired,
		})
		return
	}

	result, err := p.Run(c.Request.Context(), req.Query)
	if err != nil {
		status, body := errorResponse(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, v1.NLReportResponse{
		Success: true,
		Data: v1.NLReportData{
			Query: result.Query,
			Plan:  result.Plan,
			Data:  result.Data,
		},
	})
}

func errorResponse(err error) (int, httperr.ErrorResponse) {
	planError := func(errorType string) (int, httperr.ErrorResponse) {
		return http.StatusBadRequest, httperr.ErrorResponse{ErrorType: errorType, Message: err.Error()}
	}

	switch {
	case errors.Is(err, ErrPlanParse):
		return planError(httperr.HttpPlanParseError)
	case errors.Is(err, ErrForbiddenKind):
		return planError(httperr.HttpForbiddenKindError)
	case errors.Is(err, ErrPlanStructure):
		return planError(httperr.HttpInvalidPlanError)
	case errors.Is(err, ErrQueryExecution):
		return planError(httperr.HttpQueryExecutionError)
	case errors.Is(err, ErrAssistantUnavailable):
		slog.Error("[NLQuery] Assistant call failed", "error", err)
		return http.StatusServiceUnavailable, httperr.ErrorResponse{
			ErrorType: httperr.HttpAssistantUnavailError,
			Message:   msgAssistantError,
		}
	default:
		slog.Error("[NLQuery] Report request failed", "error", err)
		return http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   msgInternalError,
		}
	}
}
