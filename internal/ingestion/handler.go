package ingestion

import (
	"errors"
	"log/slog"
	"net/http"

	v1 "github.com/aevon-lab/cc-reporting/internal/api/v1"
	httperr "github.com/aevon-lab/cc-reporting/internal/core/errors"
	"github.com/aevon-lab/cc-reporting/internal/core/identity"
	"github.com/aevon-lab/cc-reporting/internal/core/storage"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidJSON  = "Invalid JSON body"
	msgUnknownKind  = "Unknown record kind"
	msgSyncFailed   = "Failed to refresh records"
	msgUnauthorized = "Upstream access token missing"
)

// syncError carries the HTTP error shape from a helper back to the handler.
type syncError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *syncError) Error() string {
	return e.message
}

// RegisterRoutes registers the manual refresh route.
func (m *Manager) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/sync/:kind/refresh", m.RefreshHandler)
}

// RefreshHandler force-refreshes one kind for the body's range and returns the run stats.
func (m *Manager) RefreshHandler(c *gin.Context) {
	kind, rng, serr := parseRefresh(c)
	if serr != nil {
		writeError(c, serr)
		return
	}

	var (
		stats *RunStats
		err   error
	)
	callerID := identity.CallerID(c)
	if kind == storage.KindDirectory {
		stats, err = m.RefreshDirectory(c.Request.Context(), callerID)
	} else {
		stats, err = m.ForceRefresh(c.Request.Context(), callerID, kind, rng)
	}
	if err != nil {
		writeError(c, classify(err, kind))
		return
	}

	c.JSON(http.StatusOK, stats)
}

func parseRefresh(c *gin.Context) (storage.Kind, storage.TimeRange, *syncError) {
	kind, err := storage.ParseKind(c.Param("kind"))
	if err != nil {
		return "", storage.TimeRange{}, &syncError{
			statusCode: http.StatusNotFound,
			errorType:  httperr.HttpInvalidRequestError,
			message:    msgUnknownKind,
			details:    map[string]interface{}{"kind": c.Param("kind")},
		}
	}
	if kind == storage.KindDirectory {
		return kind, storage.TimeRange{}, nil
	}

	var req v1.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("[Sync] Invalid JSON body received", "error", err)
		return "", storage.TimeRange{}, &syncError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}
	rng, err := req.TimeRange()
	if err != nil {
		return "", storage.TimeRange{}, &syncError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidRequestError,
			message:    v1.ValidationMessage(err),
		}
	}
	return kind, rng, nil
}

func classify(err error, kind storage.Kind) *syncError {
	if errors.Is(err, ErrAuthorizationMissing) {
		return &syncError{
			statusCode: http.StatusUnauthorized,
			errorType:  httperr.HttpUnauthorizedError,
			message:    msgUnauthorized,
		}
	}
	slog.Error("[Sync] Refresh failed", "kind", kind, "error", err)
	return &syncError{
		statusCode: http.StatusBadGateway,
		errorType:  httperr.HttpUpstreamError,
		message:    msgSyncFailed,
	}
}

func writeError(c *gin.Context, err *syncError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
