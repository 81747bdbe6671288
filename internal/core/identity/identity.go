// Package identity carries the authenticated caller id from the request
// layer to the sync manager, which uses it to look up upstream tokens.
package identity

import (
	"net/http"

	httperr "github.com/aevon-lab/cc-reporting/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// Header is set by the authenticating proxy in front of the service.
const Header = "X-Caller-ID"

const contextKey = "identity.caller_id"

// Middleware rejects requests without a caller id.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID := c.GetHeader(Header)
		if callerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httperr.ErrorResponse{
				ErrorType: httperr.HttpUnauthorizedError,
				Message:   "Unauthorized",
			})
			return
		}
		c.Set(contextKey, callerID)
		c.Next()
	}
}

// CallerID returns the id stored by Middleware, or the raw header when the
// middleware is not installed.
func CallerID(c *gin.Context) string {
	if v, ok := c.Get(contextKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return c.GetHeader(Header)
}
