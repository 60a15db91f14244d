package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"parallax/internal/logging"
)

const (
	generatePath = "/api/generate"
	tagsPath     = "/api/tags"
)

// Config holds the connection settings for one Ollama server.
type Config struct {
	BaseURL string        // e.g. http://localhost:11434
	Model   string        // e.g. gemma3
	Timeout time.Duration // 0 = transport defaults
}

// Client talks to one Ollama server with one model.
type Client struct {
	baseURL   string
	model     string
	timeout   time.Duration
	transport func() http.RoundTripper
	logger    *slog.Logger
}

// Option configures the Client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	transport func() http.RoundTripper
	logger    *slog.Logger
}

// WithTransport overrides how each session's round tripper is built.
// Tests use it to point sessions at an httptest server's transport.
func WithTransport(fn func() http.RoundTripper) Option {
	return func(cfg *clientConfig) error {
		if fn == nil {
			return fmt.Errorf("ollama: nil transport factory")
		}
		cfg.transport = fn
		return nil
	}
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		cfg.logger = l
		return nil
	}
}

// New creates a Client for the server described by cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ollama: base URL is required")
	}
	if u, err := url.ParseRequestURI(cfg.BaseURL); err != nil || u.Host == "" {
		return nil, fmt.Errorf("ollama: invalid base URL %q", cfg.BaseURL)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama: model is required")
	}

	cc := &clientConfig{}
	for _, opt := range opts {
		if err := opt(cc); err != nil {
			return nil, err
		}
	}
	if cc.transport == nil {
		cc.transport = func() http.RoundTripper {
			return http.DefaultTransport.(*http.Transport).Clone()
		}
	}
	if cc.logger == nil {
		cc.logger = logging.Discard()
	}

	return &Client{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		model:     cfg.Model,
		timeout:   cfg.Timeout,
		transport: cc.transport,
		logger:    cc.logger,
	}, nil
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string { return c.model }

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Session is a connection context shared by the concurrent calls of one
// fan-out. It is safe for concurrent use and must be closed when done.
type Session struct {
	client *Client
	http   *http.Client
}

// Open starts a session with its own connection pool.
func (c *Client) Open() *Session {
	return &Session{
		client: c,
		http:   &http.Client{Transport: c.transport(), Timeout: c.timeout},
	}
}

// Close releases the session's idle connections.
func (s *Session) Close() {
	s.http.CloseIdleConnections()
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends prompt as a single non-streamed request. It never fails
// with a Go error; see Result.
func (s *Session) Generate(ctx context.Context, prompt string) Result {
	c := s.client
	body, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return Failure(&TransportFault{Err: fmt.Errorf("encode request: %w", err)})
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return Failure(&TransportFault{Err: err})
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "generate failed", "model", c.model, "error", err)
		return Failure(&TransportFault{Err: err})
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "generate response", "model", c.model, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return Failure(&StatusFault{Code: resp.StatusCode})
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Failure(&TransportFault{Err: fmt.Errorf("decode response: %w", err)})
	}
	return Success(out.Response)
}

// Generate opens a throwaway session for a single call.
func (c *Client) Generate(ctx context.Context, prompt string) Result {
	s := c.Open()
	defer s.Close()
	return s.Generate(ctx, prompt)
}
