package cloudstack

import (
	"context"
	"errors"
	"time"

	"github.com/lestrrat-go/cloudstack/signer"
)

// Adapter is the innermost stage. It turns the environment into a signed
// Request, hands it to the Connection and records what came back.
//
// Adapter keeps no per-call state and can be shared between goroutines.
type Adapter struct {
	conn       Connection
	apiKey     string
	secretKey  string
	allowEmpty bool
	algorithm  signer.Algorithm
	ttl        time.Duration
	clock      Clock
}

// NewAdapter creates the signing adapter for cfg. Only the credentials and
// signing settings of cfg are used.
func NewAdapter(conn Connection, cfg Config, options ...AdapterOption) *Adapter {
	alg, err := signer.ParseAlgorithm(cfg.Algorithm)
	if err != nil {
		// NewRequest reports it on every call
		alg = signer.Algorithm(cfg.Algorithm)
	}

	a := &Adapter{
		conn:       conn,
		apiKey:     cfg.APIKey,
		secretKey:  cfg.SecretKey,
		allowEmpty: cfg.AllowEmptyStringParams,
		algorithm:  alg,
		ttl:        cfg.SignatureTTL,
		clock:      SystemClock{},
	}
	for _, option := range options {
		switch option.Ident() {
		case identClock{}:
			if c := option.Value().(Clock); c != nil {
				a.clock = c
			}
		}
	}
	return a
}

// Call implements Handler.
func (a *Adapter) Call(ctx context.Context, env *Environment) (*Response, error) {
	if a.conn == nil {
		return nil, configurationError(PhaseTransport, errors.New("no connection configured"))
	}

	options := []RequestOption{
		WithAllowEmptyStringParams(a.allowEmpty),
		WithAlgorithm(a.algorithm),
	}
	if a.ttl > 0 {
		options = append(options, WithExpires(a.clock.Now().Add(a.ttl)))
	}

	req, err := NewRequest(env.EndpointName, a.apiKey, a.secretKey, env.Params, options...)
	if err != nil {
		return nil, err
	}
	// signing failures must surface before the connection is touched
	if _, err := req.Signature(); err != nil {
		return nil, err
	}

	raw, err := a.conn.Get(ctx, req, env.Path)
	if err != nil {
		return nil, TransportError(err)
	}
	if raw == nil {
		return nil, transportError(errors.New("connection returned no response"))
	}

	env.RawResponse = raw
	env.Response = NewResponse(raw)
	return env.Response, nil
}

// EndpointNameFor implements Handler. The adapter has no catalog, so it
// never remaps a name.
func (a *Adapter) EndpointNameFor(string) (string, bool) {
	return "", false
}
