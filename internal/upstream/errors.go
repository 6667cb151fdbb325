package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrCircuitOpen is wrapped when the breaker rejected the call.
	ErrCircuitOpen = errors.New("circuit breaker open")
	// ErrDecode is wrapped when a 2xx body could not be decoded.
	ErrDecode = errors.New("decode response")
	// ErrMalformed is wrapped by service clients when a decoded body lacks
	// the fields they require.
	ErrMalformed = errors.New("malformed response")
)

// Error describes a failed upstream call. Status is the HTTP status of the
// last attempt, or 0 when no response was received.
type Error struct {
	Service string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Service, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Malformed builds the error a service client returns when a response parsed
// but did not carry what the caller needs.
func Malformed(service, what string) *Error {
	observe(service, outcomeMalformed)
	return &Error{Service: service, Err: fmt.Errorf("%w: %s", ErrMalformed, what)}
}
