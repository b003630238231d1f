package mockxhr

import "errors"

var (
	// ErrInvalidState is returned when a request operation is not valid in
	// the current readiness state, mirroring the DOM InvalidStateError.
	ErrInvalidState = errors.New("invalid state")

	// ErrSecurity is returned when open() is given a forbidden method,
	// mirroring the DOM SecurityError.
	ErrSecurity = errors.New("security error")

	// ErrSyntax is returned for malformed header names or values, mirroring
	// the DOM SyntaxError.
	ErrSyntax = errors.New("syntax error")

	// ErrUsage is returned when a mock response method is called in a state
	// it does not apply to, such as responding to a request that was never
	// sent or was already completed.
	ErrUsage = errors.New("mock usage error")
)
