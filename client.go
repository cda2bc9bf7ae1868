package cloudstack

import (
	"context"
	"net/http"

	"github.com/lestrrat-go/cloudstack/query"
	"github.com/rs/zerolog"
)

// Client issues CloudStack API calls through a fixed middleware chain.
// It is safe for concurrent use.
type Client struct {
	config Config
	conn   Connection
	chain  Handler
	logger zerolog.Logger
}

// New validates cfg and builds the chain. Unless WithConnection is given,
// an HTTPConnection to cfg.URL is created.
func New(cfg Config, options ...ClientOption) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var conn Connection
	var adapterOptions []AdapterOption
	logger := zerolog.Nop()
	for _, option := range options {
		switch option.Ident() {
		case identConnection{}:
			conn = option.Value().(Connection)
		case identLogger{}:
			logger = option.Value().(zerolog.Logger)
		case identClock{}:
			adapterOptions = append(adapterOptions, option.(AdapterOption))
		}
	}

	if conn == nil {
		hc, err := NewHTTPConnection(cfg.URL, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
		if err != nil {
			return nil, err
		}
		conn = hc
	}

	return &Client{
		config: cfg,
		conn:   conn,
		chain:  Chain(NewAdapter(conn, cfg, adapterOptions...), cfg.Middlewares...),
		logger: logger,
	}, nil
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config {
	return c.config
}

// Connection returns the transport collaborator.
func (c *Client) Connection() Connection {
	return c.conn
}

// EndpointNameFor asks the chain how name should be sent to the server.
func (c *Client) EndpointNameFor(name string) (string, bool) {
	return c.chain.EndpointNameFor(name)
}

// Request calls endpoint with params. Values in params are converted with
// query.FromMap; anything that cannot be sent is a validation error.
func (c *Client) Request(ctx context.Context, endpoint string, params map[string]any) (*Response, error) {
	p, err := query.FromMap(params)
	if err != nil {
		return nil, validationError(err)
	}
	return c.RequestParams(ctx, endpoint, p)
}

// RequestParams is Request for callers that already have string values.
func (c *Client) RequestParams(ctx context.Context, endpoint string, params query.Params) (*Response, error) {
	if err := validateEndpoint(endpoint); err != nil {
		return nil, validationError(err)
	}
	if err := params.Validate(); err != nil {
		return nil, validationError(err)
	}

	if resolved, ok := c.chain.EndpointNameFor(endpoint); ok {
		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("command", resolved).
			Msg("resolved endpoint name")
		endpoint = resolved
	}

	return c.Call(ctx, NewEnvironment(endpoint, params))
}

// Call runs env through the chain. Use it when the environment needs to be
// prepared by hand, for instance to set Path.
func (c *Client) Call(ctx context.Context, env *Environment) (*Response, error) {
	res, err := c.chain.Call(ctx, env)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("command", env.EndpointName).
			Str("request_id", env.ID).
			Msg("call failed")
		return nil, err
	}
	return res, nil
}
