package cloudstack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Connection is the transport collaborator. Implementations must be safe
// for concurrent use; the client shares one Connection between calls.
//
// path, when not empty, replaces the path of the configured endpoint URL.
type Connection interface {
	Get(ctx context.Context, req *Request, path string) (*RawResponse, error)
}

// HTTPConnection sends signed requests with net/http.
type HTTPConnection struct {
	base      *url.URL
	client    *http.Client
	userAgent string
}

// NewHTTPConnection creates a connection to the API at rawURL, usually
// something like "https://cloud.example.com/client/api".
func NewHTTPConnection(rawURL string, options ...ConnectionOption) (*HTTPConnection, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, configurationError(PhaseBuild, fmt.Errorf("invalid url %q: %w", rawURL, err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, configurationError(PhaseBuild, fmt.Errorf("url %q must be http or https", rawURL))
	}

	conn := &HTTPConnection{
		base:   u,
		client: http.DefaultClient,
	}
	for _, option := range options {
		switch option.Ident() {
		case identHTTPClient{}:
			if cl := option.Value().(*http.Client); cl != nil {
				conn.client = cl
			}
		case identUserAgent{}:
			conn.userAgent = option.Value().(string)
		}
	}
	return conn, nil
}

// URL returns the URL req would be sent to.
func (c *HTTPConnection) URL(req *Request, path string) (*url.URL, error) {
	qs, err := req.QueryString()
	if err != nil {
		return nil, err
	}
	u := *c.base
	if path != "" {
		u.Path = path
		u.RawPath = ""
	}
	u.RawQuery = qs
	return &u, nil
}

// Get implements Connection.
func (c *HTTPConnection) Get(ctx context.Context, req *Request, path string) (*RawResponse, error) {
	if req == nil {
		return nil, validationError(errors.New("request is nil"))
	}
	u, err := c.URL(req, path)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, transportError(fmt.Errorf("failed to create request: %w", err))
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, transportError(err)
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, transportError(fmt.Errorf("failed to read response body: %w", err))
	}

	return &RawResponse{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       body,
	}, nil
}
