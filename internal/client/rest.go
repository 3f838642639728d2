package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/genai"

	"shellmind/internal/chat"
	"shellmind/internal/logging"
)

// RESTClient calls the generateContent endpoint over HTTPS.
type RESTClient struct {
	http     *http.Client
	host     string
	apiKey   string
	settings Settings
}

// NewRESTClient creates a REST client. host is a bare host name, or a full
// base URL when it carries a scheme. A nil httpClient gets a default with
// the configured timeout.
func NewRESTClient(host, apiKey string, settings Settings, httpClient *http.Client) *RESTClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: settings.Timeout}
	}
	return &RESTClient{
		http:     httpClient,
		host:     host,
		apiKey:   apiKey,
		settings: settings,
	}
}

type generateRequest struct {
	Contents          []*genai.Content        `json:"contents"`
	SystemInstruction *genai.Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *genai.GenerationConfig `json:"generationConfig,omitempty"`
}

// endpoint builds https://<host>/v1beta/models/<model>:generateContent?key=<key>.
func (c *RESTClient) endpoint() string {
	base := strings.TrimRight(c.host, "/")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		base, url.PathEscape(c.settings.Model), url.QueryEscape(c.apiKey))
}

func (c *RESTClient) Generate(ctx context.Context, prompt string, history []chat.Turn) (string, error) {
	body := generateRequest{
		Contents:         toContents(history, prompt),
		GenerationConfig: &genai.GenerationConfig{Temperature: Ptr(c.settings.Temperature)},
	}
	if c.settings.SystemInstruction != "" {
		body.SystemInstruction = genai.NewContentFromText(c.settings.SystemInstruction, genai.RoleUser)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", malformed(fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", unavailable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	logging.Debug("sending generate request", "transport", "rest", "model", c.settings.Model, "turns", len(history))

	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error would print the request URL, which carries the key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return "", unavailable(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unavailable(fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", rejected(resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out genai.GenerateContentResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", malformed(err)
	}
	return textOrFallback(firstText(&out)), nil
}

func (c *RESTClient) Model() string { return c.settings.Model }

func (c *RESTClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
