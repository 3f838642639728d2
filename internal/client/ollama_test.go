package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shellmind/internal/chat"
)

func newOllamaServer(t *testing.T, handler func(w http.ResponseWriter, req api.ChatRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		var req api.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		handler(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaGenerate(t *testing.T) {
	var got api.ChatRequest
	srv := newOllamaServer(t, func(w http.ResponseWriter, req api.ChatRequest) {
		got = req
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.ChatResponse{
			Model:   req.Model,
			Message: api.Message{Role: "assistant", Content: "df -h"},
			Done:    true,
		})
	})

	c, err := NewOllamaClient(srv.URL, Settings{Model: "llama3", Temperature: 0.5, SystemInstruction: "sys"}, nil)
	require.NoError(t, err)
	defer c.Close()

	history := []chat.Turn{{Role: chat.RoleUser, Text: "disk?"}, {Role: chat.RoleModel, Text: "du"}}
	text, err := c.Generate(context.Background(), "free space", history)
	require.NoError(t, err)
	assert.Equal(t, "df -h", text)

	assert.Equal(t, "llama3", got.Model)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "free space", got.Messages[3].Content)
	require.NotNil(t, got.Stream)
	assert.False(t, *got.Stream)
}

func TestOllamaGenerateEmptyReply(t *testing.T) {
	srv := newOllamaServer(t, func(w http.ResponseWriter, req api.ChatRequest) {
		_ = json.NewEncoder(w).Encode(api.ChatResponse{Model: req.Model, Done: true})
	})

	c, err := NewOllamaClient(srv.URL, Settings{Model: "llama3"}, nil)
	require.NoError(t, err)

	text, err := c.Generate(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackText, text)
}

func TestOllamaGenerateRejected(t *testing.T) {
	srv := newOllamaServer(t, func(w http.ResponseWriter, req api.ChatRequest) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"nope\" not found"}`))
	})

	c, err := NewOllamaClient(srv.URL, Settings{Model: "nope"}, nil)
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "hello", nil)
	require.Error(t, err)
	assert.Equal(t, RemoteRejected, KindOf(err))
	assert.Contains(t, err.Error(), "404")
}

func TestNewOllamaClientRequiresModel(t *testing.T) {
	_, err := NewOllamaClient("http://localhost:11434", Settings{}, nil)
	assert.Error(t, err)
}
