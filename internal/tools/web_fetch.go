package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
	"google.golang.org/genai"
)

const (
	defaultFetchTimeout = 30 * time.Second
	defaultFetchMaxSize = 1 << 20
	maxFetchContent     = 50000
	fetchUserAgent      = "Shellmind/1.0 (CLI assistant)"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	blankLineRun  = regexp.MustCompile(`\n{3,}`)
)

// WebFetchTool fetches a URL and returns its text content.
type WebFetchTool struct {
	client  *http.Client
	maxSize int64
}

// NewWebFetchTool creates a new WebFetchTool. Zero values select defaults.
func NewWebFetchTool(timeout time.Duration, maxSize int64) *WebFetchTool {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	if maxSize <= 0 {
		maxSize = defaultFetchMaxSize
	}
	return &WebFetchTool{
		client:  &http.Client{Timeout: timeout},
		maxSize: maxSize,
	}
}

func (t *WebFetchTool) Name() string        { return "web_fetch" }
func (t *WebFetchTool) DisplayName() string { return "Web Fetch" }

func (t *WebFetchTool) Description() string {
	return "Fetches content from a specified URL."
}

func (t *WebFetchTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"url": {
					Type:        genai.TypeString,
					Description: "The URL to fetch content from.",
				},
			},
			Required: []string{"url"},
		},
	}
}

func (t *WebFetchTool) Validate(args map[string]any) error {
	if err := requireString(args, "url"); err != nil {
		return err
	}
	raw, _ := GetString(args, "url")
	parsed, err := url.Parse(raw)
	if err != nil {
		return NewValidationError("url", fmt.Sprintf("invalid URL: %s", err))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return NewValidationError("url", "only http and https URLs are supported")
	}
	if parsed.Host == "" {
		return NewValidationError("url", "missing host")
	}
	return nil
}

func (t *WebFetchTool) Describe(args map[string]any) string {
	return "Fetch content from URL: " + GetStringDefault(args, "url", "unknown URL")
}

func (t *WebFetchTool) ConfirmationMessage(map[string]any) (string, bool) {
	return "", false
}

type webFetchArgs struct {
	URL string `mapstructure:"url"`
}

func (t *WebFetchTool) Execute(ctx context.Context, args map[string]any) ToolResult {
	req, err := decodeArgs[webFetchArgs](args)
	if err != nil {
		return NewErrorResult(err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("Failed to send request to URL: %s", err))
	}
	httpReq.Header.Set("User-Agent", fetchUserAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return cancelledResult("web_fetch")
		}
		return NewErrorResult(fmt.Sprintf("Failed to send request to URL: %s", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NewErrorResult(fmt.Sprintf("Failed to fetch URL: %s (Status: %s)", req.URL, resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxSize))
	if err != nil {
		if ctx.Err() != nil {
			return cancelledResult("web_fetch")
		}
		return NewErrorResult(fmt.Sprintf("Failed to read response text: %s", err))
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	content := string(body)
	if strings.Contains(contentType, "html") {
		if text, err := htmlToText(content); err == nil {
			content = text
		}
	}

	if len(content) > maxFetchContent {
		content = content[:maxFetchContent] + "\n\n... (content truncated)"
	}

	return NewSuccessResultWithData(content, map[string]any{
		"url":          req.URL,
		"status":       resp.StatusCode,
		"content_type": contentType,
	})
}

var (
	skipTags = map[string]bool{
		"script": true, "style": true, "nav": true, "footer": true,
		"header": true, "aside": true, "noscript": true, "iframe": true, "svg": true,
	}
	blockTags = map[string]bool{
		"p": true, "div": true, "section": true, "article": true, "main": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"li": true, "tr": true, "br": true, "hr": true,
		"blockquote": true, "pre": true, "table": true,
	}
)

// htmlToText renders the body of an HTML document as markdown-ish text.
func htmlToText(doc string) (string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", err
	}

	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		var tag string
		if n.Type == html.ElementNode {
			tag = strings.ToLower(n.Data)
			if skipTags[tag] {
				return
			}
			switch tag {
			case "h1", "h2", "h3", "h4", "h5", "h6":
				out.WriteString("\n" + strings.Repeat("#", int(tag[1]-'0')) + " ")
			case "li":
				out.WriteString("\n- ")
			case "pre":
				out.WriteString("\n```\n")
			case "code":
				out.WriteString("`")
			}
		}

		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				out.WriteString(whitespaceRun.ReplaceAllString(text, " "))
				out.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		switch tag {
		case "pre":
			out.WriteString("\n```\n")
		case "code":
			out.WriteString("`")
		case "a":
			for _, attr := range n.Attr {
				if attr.Key == "href" && attr.Val != "" && !strings.HasPrefix(attr.Val, "#") && !strings.HasPrefix(attr.Val, "javascript:") {
					out.WriteString("(" + attr.Val + ") ")
					break
				}
			}
		}
		if blockTags[tag] {
			out.WriteString("\n")
		}
	}

	start := findElement(root, "body")
	if start == nil {
		start = root
	}
	walk(start)

	text := blankLineRun.ReplaceAllString(out.String(), "\n\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
