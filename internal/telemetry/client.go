// Package telemetry fetches and decodes the site's energy telemetry.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"codeberg.org/mutker/solartag/internal/errors"
	"codeberg.org/mutker/solartag/internal/logger"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultLinkTimeout = 5 * time.Second
	userAgent          = "solartag/1"
	maxErrorBody       = 512
)

// Fetcher retrieves one telemetry snapshot.
type Fetcher interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// Client fetches snapshots from a JSON endpoint over HTTP.
type Client struct {
	endpoint    *url.URL
	http        *http.Client
	linkTimeout time.Duration
	dial        func(ctx context.Context, network, address string) (net.Conn, error)
}

type OptionFunc func(*Client) error

// WithTimeout sets the HTTP client timeout. It bounds the fetch; the cycle
// adds no timeout of its own.
func WithTimeout(timeout time.Duration) OptionFunc {
	return func(c *Client) error {
		if timeout <= 0 {
			return fmt.Errorf("invalid fetch timeout: %v", timeout)
		}
		c.http.Timeout = timeout
		return nil
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) OptionFunc {
	return func(c *Client) error {
		c.http = client
		return nil
	}
}

// WithLinkTimeout bounds the dial made by CheckLink.
func WithLinkTimeout(timeout time.Duration) OptionFunc {
	return func(c *Client) error {
		c.linkTimeout = timeout
		return nil
	}
}

type userAgentTransport struct {
	transport http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", userAgent)
	return t.transport.RoundTrip(req)
}

// NewClient creates a Client for endpoint.
func NewClient(endpoint string, opts ...OptionFunc) (*Client, error) {
	errFactory := errors.New()

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, errFactory.WithData(errors.ErrInvalidConfig, "endpoint "+endpoint)
	}

	c := &Client{
		endpoint: u,
		http: &http.Client{
			Transport: &userAgentTransport{transport: http.DefaultTransport},
			Timeout:   defaultTimeout,
		},
		linkTimeout: defaultLinkTimeout,
	}
	var dialer net.Dialer
	c.dial = dialer.DialContext

	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	return c, nil
}

// Fetch retrieves and decodes one snapshot. Transport and HTTP status
// failures are ErrFetch; a bad document is ErrData.
func (c *Client) Fetch(ctx context.Context) (Snapshot, error) {
	errFactory := errors.New()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint.String(), nil)
	if err != nil {
		return Snapshot{}, errFactory.Wrap(errors.ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug().Str("endpoint", c.endpoint.Redacted()).Msg("Fetching telemetry")

	resp, err := c.http.Do(req)
	if err != nil {
		return Snapshot{}, errFactory.Wrap(errors.ErrFetch, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Snapshot{}, errFactory.WithData(errors.ErrFetch, struct {
			Status int
			Body   string
		}{
			Status: resp.StatusCode,
			Body:   string(body),
		})
	}

	return Decode(resp.Body)
}

// CheckLink dials the endpoint host to confirm the network link is up.
func (c *Client) CheckLink(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.linkTimeout)
	defer cancel()

	conn, err := c.dial(ctx, "tcp", hostPort(c.endpoint))
	if err != nil {
		return errors.New().Wrap(errors.ErrLink, err)
	}

	return conn.Close()
}

func hostPort(u *url.URL) string {
	if u.Port() != "" {
		return u.Host
	}
	if u.Scheme == "https" {
		return net.JoinHostPort(u.Hostname(), "443")
	}

	return net.JoinHostPort(u.Hostname(), "80")
}
