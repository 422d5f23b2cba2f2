package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by use cases and adapters.
var (
	// ErrRouteUnavailable is returned when the routing service answered but
	// produced no usable route (e.g. degenerate equal start/end waypoints).
	ErrRouteUnavailable = errors.New("no route found")

	// ErrInvalidCredentials covers unknown user, wrong password, and wrong
	// role on login. Deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUsernameTaken is returned by signup for duplicate usernames.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrBinNotFound is returned when a bin name does not match any record.
	ErrBinNotFound = errors.New("bin not found")
)

// UpstreamError wraps a network or HTTP failure from an external service
// (routing or reverse geocoding). Never retried.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream failure: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
