package client

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultTimeout is the default timeout of API calls. Signed-URL transfers
// are not bounded unless WithTransferTimeout is set.
const DefaultTimeout = 30 * time.Second

const (
	// DownloadChunkSize is the read size of streamed downloads.
	DownloadChunkSize = 1 << 20
	// UploadChunkSize is the size of each uploaded chunk.
	UploadChunkSize = 10 << 20
)

// Progress is called after every transferred chunk with the bytes moved so
// far and the expected total, or -1 when the total is unknown.
type Progress func(transferred, total int64)

// Session is the identity obtained from Authenticate.
type Session struct {
	UserID       string `json:"user_id"`
	UserRole     string `json:"user_role"`
	UserEmail    string `json:"user_email"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Authenticated reports whether the session holds an access token.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// Client talks to a lakehouse API. It holds the session of the user that
// authenticated through it, so one Client must not be used from several
// goroutines at once. Independent clients share nothing.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	transferClient *http.Client
	session        Session
	logger         *slog.Logger
	progress       Progress
	scratchDir     string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the timeout of API calls.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithTransferTimeout bounds each signed-URL chunk request.
func WithTransferTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.transferClient.Timeout = timeout
	}
}

// WithLogger sets the logger for transfer and catalog events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithProgress registers a transfer progress callback.
func WithProgress(fn Progress) Option {
	return func(c *Client) {
		c.progress = fn
	}
}

// WithScratchDir sets where staged uploads and dataset downloads are kept
// while in use. Defaults to os.TempDir().
func WithScratchDir(dir string) Option {
	return func(c *Client) {
		c.scratchDir = dir
	}
}

// New creates a Client for the API at endpoint. The endpoint may be a bare
// host ("lakehouse.local:8000") or carry an http or https scheme; a missing
// scheme defaults to http and a trailing slash is dropped.
func New(endpoint string, opts ...Option) (*Client, error) {
	base, err := NormalizeEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:        base,
		httpClient:     &http.Client{Timeout: DefaultTimeout},
		transferClient: &http.Client{},
		logger:         slog.Default(),
		scratchDir:     os.TempDir(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// NewFromConfig creates a Client for cfg.Endpoint, defaulting to
// DefaultEndpoint.
func NewFromConfig(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	return New(cfg.WithDefaults().Endpoint, opts...)
}

// NormalizeEndpoint returns the base URL requests are built on.
func NormalizeEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", fmt.Errorf("%w: endpoint is empty", ErrInvalidEndpoint)
	}

	lower := strings.ToLower(endpoint)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		endpoint = "http://" + endpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidEndpoint, endpoint)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}

// BaseURL returns the normalized API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns a copy of the current session.
func (c *Client) Session() Session {
	return c.session
}
