package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"shellmind/internal/chat"
	"shellmind/internal/logging"
)

// OllamaClient talks to a local or remote Ollama server.
type OllamaClient struct {
	client   *api.Client
	http     *http.Client
	settings Settings
}

// NewOllamaClient creates a new Ollama API client.
func NewOllamaClient(baseURL string, settings Settings, httpClient *http.Client) (*OllamaClient, error) {
	if settings.Model == "" {
		return nil, errors.New("model name is required")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama host: %w", err)
	}

	// Warn if using unencrypted HTTP to a non-localhost host
	if u.Scheme == "http" {
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			logging.Warn("Ollama connection uses unencrypted HTTP to remote host", "host", host)
		}
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: settings.Timeout}
	}

	return &OllamaClient{
		client:   api.NewClient(u, httpClient),
		http:     httpClient,
		settings: settings,
	}, nil
}

func toOllamaMessages(system string, history []chat.Turn, prompt string) []api.Message {
	messages := make([]api.Message, 0, len(history)+2)
	if system != "" {
		messages = append(messages, api.Message{Role: "system", Content: system})
	}
	for _, turn := range history {
		role := "user"
		if turn.Role == chat.RoleModel {
			role = "assistant"
		}
		messages = append(messages, api.Message{Role: role, Content: turn.Text})
	}
	return append(messages, api.Message{Role: "user", Content: prompt})
}

func (c *OllamaClient) Generate(ctx context.Context, prompt string, history []chat.Turn) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    c.settings.Model,
		Messages: toOllamaMessages(c.settings.SystemInstruction, history, prompt),
		Stream:   &stream,
		Options: map[string]any{
			"temperature": c.settings.Temperature,
		},
	}

	logging.Debug("sending generate request", "transport", "ollama", "model", c.settings.Model, "turns", len(history))

	var reply strings.Builder
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		if statusErr, ok := asStatusError(err); ok {
			msg := statusErr.ErrorMessage
			if msg == "" {
				msg = statusErr.Status
			}
			be := rejected(statusErr.StatusCode, msg)
			be.Err = err
			return "", be
		}
		return "", unavailable(err)
	}
	return textOrFallback(reply.String()), nil
}

// asStatusError matches both value and pointer forms of api.StatusError.
func asStatusError(err error) (api.StatusError, bool) {
	var value api.StatusError
	if errors.As(err, &value) {
		return value, true
	}
	var ptr *api.StatusError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return api.StatusError{}, false
}

func (c *OllamaClient) Model() string { return c.settings.Model }

func (c *OllamaClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
