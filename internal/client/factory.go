package client

import (
	"fmt"
	"net/http"

	"google.golang.org/grpc"

	"shellmind/internal/config"
	"shellmind/internal/logging"
)

type options struct {
	systemInstruction string
	httpClient        *http.Client
	dialOptions       []grpc.DialOption
}

// Option customizes client construction.
type Option func(*options)

// WithSystemInstruction overrides the system prompt from the configuration.
func WithSystemInstruction(text string) Option {
	return func(o *options) { o.systemInstruction = text }
}

// WithHTTPClient sets the HTTP client used by the REST and Ollama backends.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithDialOptions appends gRPC dial options.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *options) { o.dialOptions = append(o.dialOptions, opts...) }
}

// New creates the client selected by cfg.API.Type.
func New(cfg *config.Config, opts ...Option) (Client, error) {
	o := options{systemInstruction: cfg.Model.SystemPrompt}
	for _, opt := range opts {
		opt(&o)
	}

	settings := Settings{
		Model:             cfg.Model.Name,
		Temperature:       cfg.Model.Temperature,
		SystemInstruction: o.systemInstruction,
		Timeout:           cfg.API.Timeout,
	}

	logging.Debug("creating client", "api_type", cfg.API.Type, "model", settings.Model)

	switch cfg.API.Type {
	case config.APITypeREST, "":
		return NewRESTClient(cfg.API.Host, cfg.API.APIKey, settings, o.httpClient), nil
	case config.APITypeGRPC:
		return NewGRPCClient(cfg.API.GRPCEndpoint, cfg.API.APIKey, settings, o.dialOptions...)
	case config.APITypeOllama:
		return NewOllamaClient(cfg.API.OllamaHost, settings, o.httpClient)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidAPIType, cfg.API.Type)
	}
}
