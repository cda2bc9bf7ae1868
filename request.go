package cloudstack

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/lestrrat-go/cloudstack/query"
	"github.com/lestrrat-go/cloudstack/signer"
)

// Reserved parameter names. They are set by the request itself and callers
// cannot override them through params.
const (
	ParamAPIKey           = "apiKey"
	ParamCommand          = "command"
	ParamSignature        = "signature"
	ParamSignatureVersion = "signatureVersion"
	ParamExpires          = "expires"
)

// ExpiresFormat is the timestamp layout of the signature version 3
// "expires" parameter.
const ExpiresFormat = "2006-01-02T15:04:05-0700"

// Request is a signed CloudStack API call. It is immutable once built and
// is specific to one endpoint, key pair and parameter set.
type Request struct {
	endpoint   string
	apiKey     string
	secretKey  string
	params     query.Params
	allowEmpty bool
	algorithm  signer.Algorithm
	expires    time.Time

	once      sync.Once
	canonical string
	signature string
	signErr   error
}

// NewRequest builds a Request for endpoint. params is copied; later changes
// to the caller's map do not affect the request.
func NewRequest(endpoint, apiKey, secretKey string, params query.Params, options ...RequestOption) (*Request, error) {
	if err := validateEndpoint(endpoint); err != nil {
		return nil, validationError(err)
	}
	if apiKey == "" {
		return nil, configurationError(PhaseBuild, errors.New("api key is required"))
	}
	if secretKey == "" {
		return nil, configurationError(PhaseBuild, signer.ErrMissingKey)
	}
	if err := params.Validate(); err != nil {
		return nil, validationError(err)
	}
	for _, reserved := range []string{ParamAPIKey, ParamCommand, ParamSignature} {
		if _, ok := params[reserved]; ok {
			return nil, validationError(fmt.Errorf("parameter %q is reserved", reserved))
		}
	}

	req := &Request{
		endpoint:  endpoint,
		apiKey:    apiKey,
		secretKey: secretKey,
		params:    params.Clone(),
		algorithm: signer.Default,
	}

	for _, option := range options {
		switch option.Ident() {
		case identAllowEmptyStringParams{}:
			req.allowEmpty = option.Value().(bool)
		case identAlgorithm{}:
			req.algorithm = option.Value().(signer.Algorithm)
		case identExpires{}:
			req.expires = option.Value().(time.Time)
		}
	}

	alg, err := signer.ParseAlgorithm(string(req.algorithm))
	if err != nil {
		return nil, configurationError(PhaseBuild, err)
	}
	req.algorithm = alg

	if !req.expires.IsZero() {
		for _, reserved := range []string{ParamSignatureVersion, ParamExpires} {
			if _, ok := req.params[reserved]; ok {
				return nil, validationError(fmt.Errorf("parameter %q is reserved for expiring signatures", reserved))
			}
		}
	}

	return req, nil
}

func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return errors.New("endpoint name is required")
	}
	for _, r := range endpoint {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return fmt.Errorf("malformed endpoint name %q", endpoint)
		}
	}
	return nil
}

// Endpoint returns the command name.
func (r *Request) Endpoint() string {
	return r.endpoint
}

// APIKey returns the api key the request is signed for.
func (r *Request) APIKey() string {
	return r.apiKey
}

// Params returns a copy of the user supplied parameters.
func (r *Request) Params() query.Params {
	return r.params.Clone()
}

// Pairs returns the user supplied parameters sorted by key.
func (r *Request) Pairs() []query.Pair {
	return r.params.Sorted()
}

// AllowEmptyStringParams reports whether empty values are sent.
func (r *Request) AllowEmptyStringParams() bool {
	return r.allowEmpty
}

// Expires returns the signature expiry, if any.
func (r *Request) Expires() (time.Time, bool) {
	return r.expires, !r.expires.IsZero()
}

// signed returns everything that participates in the signature.
func (r *Request) signed() query.Params {
	p := r.params.Clone()
	p[ParamAPIKey] = r.apiKey
	p[ParamCommand] = r.endpoint
	if !r.expires.IsZero() {
		p[ParamSignatureVersion] = "3"
		p[ParamExpires] = r.expires.Format(ExpiresFormat)
	}
	return p
}

func (r *Request) sign() {
	r.once.Do(func() {
		r.canonical = query.Canonicalize(r.signed(), r.allowEmpty)
		sig, err := signer.Sign(r.algorithm, r.canonical, r.secretKey)
		if err != nil {
			r.signErr = configurationError(PhaseSign, err)
			return
		}
		r.signature = sig
	})
}

// Canonical returns the sorted, encoded string the signature covers.
func (r *Request) Canonical() string {
	r.sign()
	return r.canonical
}

// Signature returns the URL-escaped signature. It is computed on first use.
func (r *Request) Signature() (string, error) {
	r.sign()
	if r.signErr != nil {
		return "", r.signErr
	}
	return r.signature, nil
}

// QueryString renders the complete signed query string.
func (r *Request) QueryString() (string, error) {
	sig, err := r.Signature()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(r.canonical)
	if sb.Len() > 0 {
		sb.WriteByte('&')
	}
	sb.WriteString(ParamSignature)
	sb.WriteByte('=')
	// already escaped by the signer
	sb.WriteString(sig)
	return sb.String(), nil
}
