package cloudstack

import (
	"net/http"
	"time"

	"github.com/lestrrat-go/cloudstack/signer"
	"github.com/lestrrat-go/option"
	"github.com/rs/zerolog"
)

type Option = option.Interface

// RequestOption configures NewRequest.
type RequestOption interface {
	Option
	requestOption()
}

type requestOption struct {
	Option
}

func (requestOption) requestOption() {}

// ClientOption configures New.
type ClientOption interface {
	Option
	clientOption()
}

type clientOption struct {
	Option
}

func (clientOption) clientOption() {}

// AdapterOption configures NewAdapter.
type AdapterOption interface {
	Option
	adapterOption()
}

// ClientAdapterOption can be passed to both New and NewAdapter.
type ClientAdapterOption interface {
	ClientOption
	AdapterOption
}

type clientAdapterOption struct {
	Option
}

func (clientAdapterOption) clientOption()  {}
func (clientAdapterOption) adapterOption() {}

// ConnectionOption configures NewHTTPConnection.
type ConnectionOption interface {
	Option
	connectionOption()
}

type connectionOption struct {
	Option
}

func (connectionOption) connectionOption() {}

type identAllowEmptyStringParams struct{}

func (identAllowEmptyStringParams) String() string { return "WithAllowEmptyStringParams" }

type identAlgorithm struct{}

func (identAlgorithm) String() string { return "WithAlgorithm" }

type identExpires struct{}

func (identExpires) String() string { return "WithExpires" }

type identConnection struct{}

func (identConnection) String() string { return "WithConnection" }

type identLogger struct{}

func (identLogger) String() string { return "WithLogger" }

type identClock struct{}

func (identClock) String() string { return "WithClock" }

type identHTTPClient struct{}

func (identHTTPClient) String() string { return "WithHTTPClient" }

type identUserAgent struct{}

func (identUserAgent) String() string { return "WithUserAgent" }

// WithAllowEmptyStringParams keeps parameters whose value is the empty
// string. By default they are dropped before signing.
func WithAllowEmptyStringParams(allow bool) RequestOption {
	return requestOption{option.New(identAllowEmptyStringParams{}, allow)}
}

// WithAlgorithm selects the signature algorithm. Defaults to hmac-sha1.
func WithAlgorithm(alg signer.Algorithm) RequestOption {
	return requestOption{option.New(identAlgorithm{}, alg)}
}

// WithExpires makes the request use signature version 3, which binds the
// signature to an expiry timestamp.
func WithExpires(t time.Time) RequestOption {
	return requestOption{option.New(identExpires{}, t)}
}

// WithConnection replaces the HTTP connection New would create from the
// configured URL.
func WithConnection(conn Connection) ClientOption {
	return clientOption{option.New(identConnection{}, conn)}
}

// WithLogger sets the logger used for client debug events.
func WithLogger(l zerolog.Logger) ClientOption {
	return clientOption{option.New(identLogger{}, l)}
}

// WithClock sets the clock used to compute signature expiry.
func WithClock(c Clock) ClientAdapterOption {
	return clientAdapterOption{option.New(identClock{}, c)}
}

// WithHTTPClient sets the *http.Client used by the connection.
func WithHTTPClient(cl *http.Client) ConnectionOption {
	return connectionOption{option.New(identHTTPClient{}, cl)}
}

// WithUserAgent sets the User-Agent header sent with every call.
func WithUserAgent(ua string) ConnectionOption {
	return connectionOption{option.New(identUserAgent{}, ua)}
}
