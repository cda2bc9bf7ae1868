package cloudstack

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrConfiguration reports missing or invalid credentials and settings.
	// It is never worth retrying.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation reports a malformed endpoint name or parameter. It is
	// raised before any network call is attempted.
	ErrValidation = errors.New("validation error")

	// ErrTransport reports a failure in the transport collaborator. The
	// client never retries; callers decide on a policy.
	ErrTransport = errors.New("transport error")
)

// Phase tells which step of a call failed.
type Phase string

const (
	PhaseBuild     Phase = "build"
	PhaseSign      Phase = "sign"
	PhaseTransport Phase = "transport"
	PhaseParse     Phase = "parse"
)

// Error is the error type returned by every operation in this package.
type Error struct {
	Phase Phase
	Kind  error
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cloudstack: %s: %v", e.Phase, e.Kind)
	}
	return fmt.Sprintf("cloudstack: %s: %v: %v", e.Phase, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func configurationError(phase Phase, err error) error {
	return &Error{Phase: phase, Kind: ErrConfiguration, Err: err}
}

func validationError(err error) error {
	return &Error{Phase: PhaseBuild, Kind: ErrValidation, Err: err}
}

func transportError(err error) error {
	return &Error{Phase: PhaseTransport, Kind: ErrTransport, Err: err}
}

// TransportError wraps err as an ErrTransport failure. Connection
// implementations outside this package use it so that callers can classify
// their errors uniformly. Errors that already carry a kind pass through.
func TransportError(err error) error {
	if err == nil {
		return nil
	}
	var cerr *Error
	if errors.As(err, &cerr) {
		return err
	}
	return transportError(err)
}

// StatusError is returned for responses whose status is not 2xx, when a
// stage chooses to treat them as failures.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	const max = 256
	body := e.Body
	if len(body) > max {
		body = body[:max]
	}
	return fmt.Sprintf("cloudstack: %s: unexpected HTTP status %d: %s", e.Endpoint, e.StatusCode, body)
}

// Is makes StatusError match ErrTransport.
func (e *StatusError) Is(target error) bool {
	return target == ErrTransport
}
