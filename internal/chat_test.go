package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatRequest is what the fake endpoint records from each call
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

func newChatServer(t *testing.T, reply string, got *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if got != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
			"usage": map[string]any{"prompt_tokens": 7, "completion_tokens": 3, "total_tokens": 10},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAIChatOverOpenAICompatibleEndpoint(t *testing.T) {
	var got chatRequest
	srv := newChatServer(t, "Hello there", &got)

	ai := NewAIWithEndpoint(srv.URL+"/v1", "", "llama3.1", time.Second)

	resp, err := ai.Chat(context.Background(), "", "system", "Be brief.")
	require.NoError(t, err)

	assert.Equal(t, "llama3.1", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "Be brief.", got.Messages[0].Content)

	assert.Equal(t, "Hello there", resp.Content)
	assert.Equal(t, "llama3.1", resp.Model)
	assert.Equal(t, "system", resp.Role)
	assert.Equal(t, "Be brief.", resp.Prompt)
	assert.Equal(t, int64(7), resp.PromptTokens)
	assert.Equal(t, int64(3), resp.CompletionTokens)
	assert.False(t, resp.CreatedAt.IsZero())
}

func TestAIChatModelOverride(t *testing.T) {
	var got chatRequest
	srv := newChatServer(t, "ok", &got)

	ai := NewAIWithEndpoint(srv.URL+"/v1", "key", "llama3.1", 0)

	resp, err := ai.Chat(context.Background(), "qwen2.5", "", "hi")
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5", got.Model)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "user", resp.Role)
}

func TestAIChatErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	ai := NewAIWithEndpoint(srv.URL+"/v1", "", "missing", time.Second)
	_, err := ai.Chat(context.Background(), "", "user", "hi")
	assert.ErrorContains(t, err, "creating chat completion")

	_, err = NewAIWithEndpoint("", "", "m", 0).Chat(context.Background(), "", "user", "hi")
	assert.ErrorContains(t, err, "not configured")

	_, err = NewAIWithEndpoint(srv.URL, "", "m", 0).Chat(context.Background(), "", "narrator", "hi")
	assert.ErrorContains(t, err, "unsupported role")
}
