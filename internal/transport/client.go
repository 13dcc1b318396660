// Package transport fetches catalog tables from the exoplanet archive's
// table query service.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agentstation/kepmap/pkg/constants"
	"github.com/agentstation/kepmap/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// maxErrorBody caps how much of a failed response is kept in the error message.
const maxErrorBody = 512

// Client downloads catalog tables as CSV.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d, Transport: c.http.Transport}
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for the archive at baseURL. An empty baseURL selects
// the public archive.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = constants.ArchiveURL
	}
	c := &Client{
		http:      &http.Client{Timeout: DefaultHTTPTimeout},
		baseURL:   baseURL,
		userAgent: constants.UserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the archive endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// TableURL returns the query URL selecting every column of a table.
func (c *Client) TableURL(table string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", errors.NewConfigError("transport", "invalid archive URL "+c.baseURL, err)
	}
	q := u.Query()
	q.Set("table", table)
	q.Set("select", "*")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	req.Header.Set("Accept", "text/csv, text/plain")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.http.Do(req)
}

// FetchTable downloads a table. The caller must close the returned body.
// Non-2xx answers are returned as *errors.APIError.
func (c *Client) FetchTable(ctx context.Context, table string) (io.ReadCloser, error) {
	endpoint, err := c.TableURL(table)
	if err != nil {
		return nil, err
	}

	resp, err := c.Get(ctx, endpoint)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewTimeoutError("fetch "+table, c.http.Timeout.String(), err.Error())
		}
		return nil, &errors.APIError{
			Endpoint: endpoint,
			Message:  fmt.Sprintf("failed to download %s", table),
			Err:      err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return nil, errors.NewAPIError(endpoint, resp.StatusCode, msg)
	}
	return resp.Body, nil
}
