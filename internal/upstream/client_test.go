package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testQuery = Query{
	Path:       "/contact_center/engagements",
	RecordsKey: "engagements",
	From:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	To:         time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
}

func TestPageIterator_FollowsCursorUntilExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.Equal(t, "/contact_center/engagements", r.URL.Path)
		require.Equal(t, "2024-01-01T00:00:00Z", r.URL.Query().Get("from"))
		require.Equal(t, "2024-01-02T00:00:00Z", r.URL.Query().Get("to"))
		require.Equal(t, "300", r.URL.Query().Get("page_size"))

		switch r.URL.Query().Get("next_page_token") {
		case "":
			fmt.Fprint(w, `{"engagements":[{"engagement_id":"e-1"},{"engagement_id":"e-2"}],"next_page_token":"A"}`)
		case "A":
			fmt.Fprint(w, `{"engagements":[{"engagement_id":"e-3"}],"next_page_token":""}`)
		default:
			t.Fatalf("unexpected cursor %q", r.URL.Query().Get("next_page_token"))
		}
	}))
	defer srv.Close()

	it := NewClient(srv.URL, Options{}).Pages("tok", testQuery)

	var sizes []int
	for it.Next(context.Background()) {
		sizes = append(sizes, len(it.Records()))
	}

	require.NoError(t, it.Err())
	require.Equal(t, []int{2, 1}, sizes)
	require.Equal(t, 2, it.Page())
	require.Equal(t, int32(2), calls.Load())
	require.False(t, it.Next(context.Background()), "exhausted iterator stays exhausted")
}

func TestPageIterator_StopConditions(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		status    int
		wantPages int
		wantErr   error
		checkErr  func(t *testing.T, err error)
	}{
		{
			name:    "missing records key",
			body:    `{"users":[]}`,
			wantErr: ErrMalformedPage,
		},
		{
			name:    "records key not an array",
			body:    `{"engagements":{"engagement_id":"e-1"}}`,
			wantErr: ErrMalformedPage,
		},
		{
			name:    "null records",
			body:    `{"engagements":null}`,
			wantErr: ErrMalformedPage,
		},
		{
			name:    "not json",
			body:    `<html>maintenance</html>`,
			wantErr: ErrMalformedPage,
		},
		{
			name:      "empty array ends cleanly",
			body:      `{"engagements":[]}`,
			wantPages: 1,
		},
		{
			name:   "non-2xx is a status error",
			body:   `{"message":"Invalid access token"}`,
			status: http.StatusUnauthorized,
			checkErr: func(t *testing.T, err error) {
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				require.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
				require.Contains(t, statusErr.Body, "Invalid access token")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			it := NewClient(srv.URL, Options{}).Pages("tok", testQuery)
			pages := 0
			for it.Next(context.Background()) {
				pages++
			}

			require.Equal(t, tt.wantPages, pages)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, it.Err(), tt.wantErr)
			case tt.checkErr != nil:
				tt.checkErr(t, it.Err())
			default:
				require.NoError(t, it.Err())
			}
		})
	}
}

func TestPageIterator_MaxPagesCap(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := calls.Add(1)
		fmt.Fprintf(w, `{"engagements":[{"engagement_id":"e-%d"}],"next_page_token":"cursor-%d"}`, n, n)
	}))
	defer srv.Close()

	it := NewClient(srv.URL, Options{MaxPages: 3}).Pages("tok", testQuery)
	pages := 0
	for it.Next(context.Background()) {
		pages++
	}

	require.Equal(t, 3, pages)
	require.Equal(t, int32(3), calls.Load())
	require.ErrorIs(t, it.Err(), ErrPageLimit)
}

func TestPageIterator_CancelledContextStopsBeforeRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"engagements":[{"engagement_id":"e-1"}],"next_page_token":"more"}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	it := NewClient(srv.URL, Options{}).Pages("tok", testQuery)

	require.True(t, it.Next(ctx))
	cancel()
	require.False(t, it.Next(ctx))
	require.True(t, errors.Is(it.Err(), context.Canceled))
	require.Equal(t, int32(1), calls.Load())
}

func TestPageIterator_UnrangedQueryOmitsWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.False(t, r.URL.Query().Has("from"))
		require.False(t, r.URL.Query().Has("to"))
		require.Equal(t, "50", r.URL.Query().Get("page_size"))
		fmt.Fprint(w, `{"users":[{"user_id":"u-1","display_name":"Ann"}]}`)
	}))
	defer srv.Close()

	it := NewClient(srv.URL+"/", Options{PageSize: 50}).Pages("tok", Query{
		Path:       "/contact_center/users",
		RecordsKey: "users",
		Unranged:   true,
	})

	require.True(t, it.Next(context.Background()))
	require.Len(t, it.Records(), 1)
	require.True(t, strings.Contains(string(it.Records()[0]), "Ann"))
	require.False(t, it.Next(context.Background()))
	require.NoError(t, it.Err())
}
