package astra

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kidandcat/heartquest/internal/narration"
)

func chatServer(t *testing.T, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chat/completions":
			if seen != nil {
				require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion",
				"created": 0,
				"model":   "gpt-4o-mini",
				"choices": []map[string]any{{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": content},
				}},
			})
		case "/audio/speech":
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write([]byte("ID3mp3"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate(t *testing.T) {
	var body map[string]any
	srv := chatServer(t, "  Two hearts, one orbit.  ", &body)
	c := New(Config{APIKey: "test", BaseURL: srv.URL + "/"}, zap.NewNop())

	text, err := c.Generate(context.Background(), "Our first dance", "Ana")
	require.NoError(t, err)
	assert.Equal(t, "Two hearts, one orbit.", text)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.InDelta(t, 0.9, body["temperature"], 1e-9)
	assert.EqualValues(t, 150, body["max_completion_tokens"])
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].(map[string]any)["content"], "Our first dance")
}

func TestGenerateEmptyAnswer(t *testing.T) {
	srv := chatServer(t, "   ", nil)
	c := New(Config{APIKey: "test", BaseURL: srv.URL + "/"}, zap.NewNop())

	text, err := c.Generate(context.Background(), "x", "Ana")
	require.NoError(t, err)
	assert.Equal(t, narration.EmptyResponse, text)
}

func TestGenerateError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()
	c := New(Config{APIKey: "test", BaseURL: srv.URL + "/"}, zap.NewNop())

	_, err := c.Generate(context.Background(), "x", "Ana")
	assert.Error(t, err)
}

func TestSynthesize(t *testing.T) {
	srv := chatServer(t, "", nil)
	c := New(Config{APIKey: "test", BaseURL: srv.URL + "/"}, zap.NewNop())

	rc, err := c.Synthesize(context.Background(), "Will you marry me?")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "ID3mp3", string(data))
}
