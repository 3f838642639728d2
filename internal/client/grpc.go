package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strings"

	pb "cloud.google.com/go/ai/generativelanguage/apiv1beta/generativelanguagepb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"shellmind/internal/chat"
	"shellmind/internal/logging"
)

// GRPCClient calls GenerateContent over gRPC.
type GRPCClient struct {
	conn     *grpc.ClientConn
	service  pb.GenerativeServiceClient
	apiKey   string
	settings Settings
}

// NewGRPCClient creates a gRPC client for endpoint. The endpoint may be a
// URL (https:// selects TLS, http:// plaintext) or host:port, which uses TLS.
// Connections are established lazily on the first call.
func NewGRPCClient(endpoint, apiKey string, settings Settings, opts ...grpc.DialOption) (*GRPCClient, error) {
	target, secure, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	dialOpts := []grpc.DialOption{}
	if secure {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})))
	} else {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	// Caller options go last so they can override credentials.
	dialOpts = append(dialOpts, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC channel for %s: %w", target, err)
	}

	return &GRPCClient{
		conn:     conn,
		service:  pb.NewGenerativeServiceClient(conn),
		apiKey:   apiKey,
		settings: settings,
	}, nil
}

// parseEndpoint turns an endpoint into a dial target and whether TLS is used.
func parseEndpoint(endpoint string) (target string, secure bool, err error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", false, errors.New("gRPC endpoint is empty")
	}
	if !strings.Contains(endpoint, "://") {
		return endpoint, true, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid gRPC endpoint %q: %w", endpoint, err)
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return "", false, fmt.Errorf("invalid gRPC endpoint %q: missing host", endpoint)
	}

	switch u.Scheme {
	case "https":
		if u.Port() == "" {
			return u.Host + ":443", true, nil
		}
		return u.Host, true, nil
	case "http":
		if u.Port() == "" {
			return u.Host + ":80", false, nil
		}
		return u.Host, false, nil
	default:
		// Resolver schemes such as passthrough:/// or dns:/// are passed through.
		return endpoint, true, nil
	}
}

func toProtoContents(history []chat.Turn, prompt string) []*pb.Content {
	contents := make([]*pb.Content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, protoText(turn.Text, string(roleOf(turn.Role))))
	}
	return append(contents, protoText(prompt, "user"))
}

func protoText(text, role string) *pb.Content {
	return &pb.Content{
		Role:  role,
		Parts: []*pb.Part{{Data: &pb.Part_Text{Text: text}}},
	}
}

func (c *GRPCClient) Generate(ctx context.Context, prompt string, history []chat.Turn) (string, error) {
	req := &pb.GenerateContentRequest{
		Model:    "models/" + c.settings.Model,
		Contents: toProtoContents(history, prompt),
		GenerationConfig: &pb.GenerationConfig{
			Temperature: Ptr(c.settings.Temperature),
		},
	}
	if c.settings.SystemInstruction != "" {
		req.SystemInstruction = protoText(c.settings.SystemInstruction, "")
	}

	if c.apiKey != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "x-goog-api-key", c.apiKey)
	}
	if c.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.settings.Timeout)
		defer cancel()
	}

	logging.Debug("sending generate request", "transport", "grpc", "model", c.settings.Model, "turns", len(history))

	resp, err := c.service.GenerateContent(ctx, req)
	if err != nil {
		return "", fromStatus(err)
	}
	return textOrFallback(firstProtoText(resp)), nil
}

func firstProtoText(resp *pb.GenerateContentResponse) string {
	if resp == nil || len(resp.GetCandidates()) == 0 {
		return ""
	}
	for _, part := range resp.GetCandidates()[0].GetContent().GetParts() {
		if text := part.GetText(); text != "" {
			return text
		}
	}
	return ""
}

// fromStatus maps a gRPC error onto a BackendError.
func fromStatus(err error) *BackendError {
	st, ok := status.FromError(err)
	if !ok {
		return unavailable(err)
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return unavailable(err)
	default:
		be := rejected(int(st.Code()), st.Message())
		be.Err = err
		return be
	}
}

func (c *GRPCClient) Model() string { return c.settings.Model }

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}
