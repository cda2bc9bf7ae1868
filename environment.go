package cloudstack

import (
	"github.com/google/uuid"
	"github.com/lestrrat-go/cloudstack/query"
)

// Environment is the per-call state threaded through the middleware chain.
// It belongs to a single call and must not be shared between goroutines.
//
// Stages that transform the parameters assign a new map to Params instead
// of editing the existing one in place.
type Environment struct {
	// ID identifies the call in logs and traces.
	ID string

	EndpointName string
	Params       query.Params

	// Path overrides the path of the configured URL. Empty means the URL
	// is used as is.
	Path string

	// RawResponse and Response are set by the adapter once the transport
	// has answered.
	RawResponse *RawResponse
	Response    *Response
}

// NewEnvironment creates the environment for one call. params is copied.
func NewEnvironment(endpoint string, params query.Params) *Environment {
	return &Environment{
		ID:           uuid.NewString(),
		EndpointName: endpoint,
		Params:       params.Clone(),
	}
}
