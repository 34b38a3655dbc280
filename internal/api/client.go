// Package api implements the Gemini API client: one-shot generation,
// SSE streaming, and the conversation-scoped chat handle.
package api

import (
	"log"
	"net/http"
	"time"

	"github.com/diogo/gemchat/internal/models"
)

const (
	// DefaultTimeout bounds non-streaming requests.
	DefaultTimeout = 60 * time.Second

	// maxErrorBody limits how much of an error response is read back
	// for diagnostics.
	maxErrorBody = 4096
)

// Shared transports with connection pooling. The streaming client has no
// client-level timeout; streams are bounded by their context.
var (
	sharedTransport = &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	sharedHTTPClient = &http.Client{
		Transport: sharedTransport,
		Timeout:   DefaultTimeout,
	}

	sharedStreamingClient = &http.Client{
		Transport: sharedTransport,
	}
)

// GeminiClient is the client for the Gemini API
type GeminiClient struct {
	httpClient      *http.Client
	streamingClient *http.Client
	apiKey          string
	baseURL         string
	model           models.Model
}

// ClientOption is a function that configures the client
type ClientOption func(*GeminiClient)

// WithModel sets the default model for the client
func WithModel(model models.Model) ClientOption {
	return func(c *GeminiClient) {
		c.model = model
	}
}

// WithBaseURL overrides the API base URL, used in tests
func WithBaseURL(baseURL string) ClientOption {
	return func(c *GeminiClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides both HTTP clients, used in tests
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *GeminiClient) {
		c.httpClient = client
		c.streamingClient = client
	}
}

// NewClient creates a new GeminiClient. An empty API key is logged, not
// fatal: requests are attempted anyway and fail when the API rejects them.
func NewClient(apiKey string, opts ...ClientOption) *GeminiClient {
	if apiKey == "" {
		log.Printf("api: no API key configured (set %s or run 'gemchat auth'); requests will fail", "GEMINI_API_KEY")
	}

	client := &GeminiClient{
		httpClient:      sharedHTTPClient,
		streamingClient: sharedStreamingClient,
		apiKey:          apiKey,
		baseURL:         models.EndpointBase,
		model:           models.DefaultModel,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Model returns the client's default model
func (c *GeminiClient) Model() models.Model {
	return c.model
}

// setHeaders applies the common request headers
func (c *GeminiClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}
}
