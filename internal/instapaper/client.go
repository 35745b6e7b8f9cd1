// Package instapaper is a client for the Instapaper Full API. Requests are
// OAuth 1.0a HMAC-SHA1 signed form POSTs; the token pair is obtained once
// through xAuth and held in memory.
// file: internal/instapaper/client.go
package instapaper

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/dkoosis/instapaper-mcp/internal/fsm"
	"github.com/dkoosis/instapaper-mcp/internal/logging"
	"github.com/dkoosis/instapaper-mcp/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://www.instapaper.com/api/1"

const defaultTimeout = 30 * time.Second

// Client talks to the Instapaper API. It is safe for concurrent use.
type Client struct {
	creds      Credentials
	baseURL    string
	httpClient *http.Client
	signer     *Signer
	logger     logging.Logger
	metrics    *metrics.Metrics
	now        func() time.Time

	mu        sync.RWMutex
	token     *oauth1.Token
	auth      fsm.FSM
	authGroup singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root. A trailing slash is ignored.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the instruments. Nil disables recording.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// withClock fixes the signer clock and nonce source.
func withClock(now func() time.Time, nonce func() (string, error)) Option {
	return func(c *Client) {
		c.now = now
		c.signer.now = now
		c.signer.nonce = nonce
	}
}

// NewClient creates a Client. No network I/O happens until the first call.
func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		creds:      creds,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		signer:     NewSigner(creds.ConsumerKey, creds.ConsumerSecret),
		logger:     logging.GetLogger("instapaper_client"),
		metrics:    metrics.DefaultMetrics(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.auth = c.newAuthFSM()
	return c
}

// BaseURL returns the API root in use.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) endpointURL(endpoint string) string {
	return c.baseURL + endpoint
}
