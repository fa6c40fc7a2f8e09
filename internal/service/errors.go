package service

import "errors"

// ErrNetwork is returned when a request could not be completed or came back
// with a non-success status. Every gateway error matches it.
var ErrNetwork = errors.New("request failed")

// Operation-specific failures. Each one also matches ErrNetwork.
var (
	ErrCreate error = &opError{op: "create task"}
	ErrUpdate error = &opError{op: "update task"}
	ErrDelete error = &opError{op: "delete task"}
	ErrAuth   error = &opError{op: "authentication"}
)

// ErrUnauthorized is returned when the server rejects the bearer token.
var ErrUnauthorized = errors.New("token expired or revoked")

// ErrNoToken is returned when an authenticated client is built without a token.
var ErrNoToken = errors.New("no bearer token")

type opError struct {
	op string
}

func (e *opError) Error() string {
	return e.op + " failed"
}

func (e *opError) Is(target error) bool {
	return target == ErrNetwork
}
