package ingestion

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	httperr "github.com/aevon-lab/cc-reporting/internal/core/errors"
	"github.com/aevon-lab/cc-reporting/internal/core/identity"
	"github.com/aevon-lab/cc-reporting/internal/core/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRefreshHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		kind       string
		callerID   string
		body       string
		wantCode   int
		wantType   string
		wantMsg    string
		wantStored int
	}{
		{
			name:       "refreshes queue range",
			kind:       "queue",
			callerID:   "user-1",
			body:       `{"from":"2024-01-01","to":"2024-01-02"}`,
			wantCode:   http.StatusOK,
			wantStored: 3,
		},
		{
			name:     "missing range",
			kind:     "queue",
			callerID: "user-1",
			body:     `{"from":"2024-01-01"}`,
			wantCode: http.StatusBadRequest,
			wantType: httperr.HttpInvalidRequestError,
			wantMsg:  "Date range is required",
		},
		{
			name:     "invalid json",
			kind:     "queue",
			callerID: "user-1",
			body:     `{"from":`,
			wantCode: http.StatusBadRequest,
			wantType: httperr.HttpInvalidJsonError,
		},
		{
			name:     "unknown kind",
			kind:     "users",
			callerID: "user-1",
			body:     `{}`,
			wantCode: http.StatusNotFound,
			wantType: httperr.HttpInvalidRequestError,
		},
		{
			name:     "caller without token",
			kind:     "queue",
			callerID: "stranger",
			body:     `{"from":"2024-01-01","to":"2024-01-02"}`,
			wantCode: http.StatusUnauthorized,
			wantType: httperr.HttpUnauthorizedError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := pagedUpstream(t, twoQueuePages())
			store := newMemoryStore()
			m := newTestManager(srv, store, false)

			r := gin.New()
			r.Use(identity.Middleware())
			m.RegisterRoutes(r)

			req := httptest.NewRequest(http.MethodPost, "/v1/sync/"+tt.kind+"/refresh", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(identity.Header, tt.callerID)
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)

			require.Equal(t, tt.wantCode, resp.Code, resp.Body.String())
			if tt.wantCode == http.StatusOK {
				var stats RunStats
				require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &stats))
				require.Equal(t, StopExhausted, stats.StopReason)
				require.Equal(t, tt.wantStored, store.count(storage.KindQueue))
				return
			}

			var errResp httperr.ErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
			require.Equal(t, tt.wantType, errResp.ErrorType)
			if tt.wantMsg != "" {
				require.Equal(t, tt.wantMsg, errResp.Message)
			}
		})
	}
}
