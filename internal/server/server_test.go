package server

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aevon-lab/cc-reporting/internal/core/identity"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, maxBodySizeMB int) (*Server, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := New("127.0.0.1:0", db, "release", maxBodySizeMB)
	gin.SetMode(gin.TestMode)
	return s, mock
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantBody   string
	}{
		{name: "database reachable", wantStatus: http.StatusOK, wantBody: `"healthy"`},
		{name: "database down", pingErr: errors.New("dial tcp: refused"), wantStatus: http.StatusServiceUnavailable, wantBody: "database unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newTestServer(t, 1)
			mock.ExpectPing().WillReturnError(tt.pingErr)

			w := httptest.NewRecorder()
			s.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, tt.wantStatus, w.Code)
			require.Contains(t, w.Body.String(), tt.wantBody)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAPIGroupRequiresCaller(t *testing.T) {
	s, _ := newTestServer(t, 1)
	s.API.GET("/v1/agents", func(c *gin.Context) {
		c.String(http.StatusOK, identity.CallerID(c))
	})

	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/agents", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/agents", nil)
	req.Header.Set(identity.Header, "user-1")
	w = httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user-1", w.Body.String())
}

func TestBodyLimit(t *testing.T) {
	s, _ := newTestServer(t, 1)
	s.Engine.POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, "%d", len(body))
	})

	small := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("{}"))
	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, small)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "2", w.Body.String())

	large := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 1<<20+1)))
	w = httptest.NewRecorder()
	s.Engine.ServeHTTP(w, large)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
