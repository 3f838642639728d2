package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const (
	googleSearchURL      = "https://www.googleapis.com/customsearch/v1"
	defaultSearchCount   = 5
	maxSearchCount       = 10
	searchRequestTimeout = 30 * time.Second
)

// SearchResult represents a single search result.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// WebSearchConfig configures the Google Custom Search backend.
type WebSearchConfig struct {
	APIKey string
	CX     string
	// Rate is the number of requests allowed per second; zero disables limiting.
	Rate float64
	// BaseURL overrides the search endpoint.
	BaseURL    string
	HTTPClient *http.Client
}

// WebSearchTool performs web searches through Google Custom Search.
type WebSearchTool struct {
	client  *http.Client
	baseURL string
	apiKey  string
	cx      string
	limiter *rate.Limiter
}

// NewWebSearchTool creates a new web search tool.
func NewWebSearchTool(cfg WebSearchConfig) *WebSearchTool {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: searchRequestTimeout}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = googleSearchURL
	}
	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}
	return &WebSearchTool{
		client:  client,
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		cx:      cfg.CX,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (t *WebSearchTool) Name() string        { return "google_web_search" }
func (t *WebSearchTool) DisplayName() string { return "Google Search" }

func (t *WebSearchTool) Description() string {
	return "Performs a web search using Google Search and returns the results."
}

func (t *WebSearchTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"query": {
					Type:        genai.TypeString,
					Description: "The search query to find information on the web.",
				},
			},
			Required: []string{"query"},
		},
	}
}

func (t *WebSearchTool) Validate(args map[string]any) error {
	if err := requireString(args, "query"); err != nil {
		return err
	}
	if q, _ := GetString(args, "query"); strings.TrimSpace(q) == "" {
		return NewValidationError("query", "must not be empty")
	}
	return nil
}

func (t *WebSearchTool) Describe(args map[string]any) string {
	return fmt.Sprintf("Search the web for: %q", GetStringDefault(args, "query", "unknown query"))
}

func (t *WebSearchTool) ConfirmationMessage(map[string]any) (string, bool) {
	return "", false
}

type webSearchArgs struct {
	Query string `mapstructure:"query"`
}

func (t *WebSearchTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	req, err := decodeArgs[webSearchArgs](args)
	if err != nil {
		return NewErrorResult(err.Error())
	}
	if t.apiKey == "" || t.cx == "" {
		return NewErrorResult("web search not configured")
	}
	if err := t.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return cancelledResult("google_web_search")
		}
		return NewErrorResult(fmt.Sprintf("search failed: %s", err))
	}

	results, err := t.search(ctx, req.Query, defaultSearchCount)
	if err != nil {
		if ctx.Err() != nil {
			return cancelledResult("google_web_search")
		}
		return NewErrorResult(fmt.Sprintf("search failed: %s", err))
	}
	if len(results) == 0 {
		return NewSuccessResult("No results found for the query.")
	}

	var output strings.Builder
	fmt.Fprintf(&output, "Search results for: %s\n\n", req.Query)
	for i, r := range results {
		fmt.Fprintf(&output, "%d. %s\n   %s\n", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&output, "   %s\n", r.Snippet)
		}
		output.WriteString("\n")
	}

	return NewSuccessResultWithData(strings.TrimRight(output.String(), "\n"), results)
}

// search calls the Custom Search API. The key stays out of returned errors.
func (t *WebSearchTool) search(ctx context.Context, query string, count int) ([]SearchResult, error) {
	if count < 1 || count > maxSearchCount {
		count = defaultSearchCount
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("cx", t.cx)
	params.Set("num", strconv.Itoa(count))
	public := t.baseURL + "?" + params.Encode()
	params.Set("key", t.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s", public)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("request to %s failed: %w", public, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data struct {
		Items []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	results := make([]SearchResult, 0, len(data.Items))
	for _, item := range data.Items {
		results = append(results, SearchResult{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}
