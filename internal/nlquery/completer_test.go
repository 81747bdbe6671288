package nlquery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenAICompleter_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "gpt-4", body.Model)
		require.Greater(t, body.Temperature, 0.0)
		require.Less(t, body.Temperature, 1e-6)
		require.Len(t, body.Messages, 2)
		require.Equal(t, "system", body.Messages[0].Role)
		require.Equal(t, "user", body.Messages[1].Role)
		require.Equal(t, "plan this", body.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-4",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  {\"kind\":\"Queue\"}\n"}}]}`)
	}))
	defer srv.Close()

	c := NewOpenAICompleter("sk-test", srv.URL+"/v1", "")
	reply, err := c.Complete(context.Background(), systemPrompt, "plan this")
	require.NoError(t, err)
	require.Equal(t, `{"kind":"Queue"}`, reply)
}

func TestOpenAICompleter_Errors(t *testing.T) {
	t.Run("no api key", func(t *testing.T) {
		_, err := NewOpenAICompleter("", "", "").Complete(context.Background(), "s", "u")
		require.ErrorIs(t, err, ErrAssistantUnavailable)
	})

	t.Run("api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":{"message":"Rate limit reached","type":"requests"}}`)
		}))
		defer srv.Close()

		_, err := NewOpenAICompleter("sk-test", srv.URL+"/v1", "gpt-4o").Complete(context.Background(), "s", "u")
		require.ErrorIs(t, err, ErrAssistantUnavailable)
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"chatcmpl-2","choices":[]}`)
		}))
		defer srv.Close()

		_, err := NewOpenAICompleter("sk-test", srv.URL+"/v1", "").Complete(context.Background(), "s", "u")
		require.ErrorIs(t, err, ErrAssistantUnavailable)
	})
}
