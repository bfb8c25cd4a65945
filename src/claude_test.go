package storybot

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClaudeServer(t *testing.T, status int, body string, seen *map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClaudeClient_Generate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var seen map[string]interface{}
		srv := newClaudeServer(t, http.StatusOK, `{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-sonnet-latest",
			"content": [{"type": "text", "text": "X"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 1}
		}`, &seen)
		client := NewClaudeClient(WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()))

		story, err := client.Generate(context.Background(), "prompt", "k")
		require.NoError(t, err)
		assert.Equal(t, "X", story)
		assert.Equal(t, 0.9, seen["temperature"])
		assert.Equal(t, float64(2048), seen["max_tokens"])
	})

	t.Run("status error", func(t *testing.T) {
		srv := newClaudeServer(t, http.StatusBadRequest,
			`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`, nil)
		client := NewClaudeClient(WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()))

		_, err := client.Generate(context.Background(), "prompt", "k")
		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusBadRequest, te.StatusCode)
	})

	t.Run("empty content", func(t *testing.T) {
		srv := newClaudeServer(t, http.StatusOK, `{
			"id": "msg_02",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-sonnet-latest",
			"content": [],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 0}
		}`, nil)
		client := NewClaudeClient(WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()))

		_, err := client.Generate(context.Background(), "prompt", "k")
		assert.True(t, IsEnvelope(err))
	})
}
