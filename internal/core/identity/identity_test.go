package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Middleware())
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, CallerID(c))
	})

	tests := []struct {
		name     string
		callerID string
		wantCode int
		wantBody string
	}{
		{name: "caller present", callerID: "user-1", wantCode: http.StatusOK, wantBody: "user-1"},
		{name: "caller missing", wantCode: http.StatusUnauthorized, wantBody: `"error_type":"unauthorized"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.callerID != "" {
				req.Header.Set(Header, tt.callerID)
			}
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)

			require.Equal(t, tt.wantCode, resp.Code)
			require.Contains(t, resp.Body.String(), tt.wantBody)
		})
	}
}
