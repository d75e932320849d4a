package job

import (
	"errors"
	"net/http"
)

var (
	// ErrInput marks missing or malformed invocation parameters.
	ErrInput = errors.New("invalid input")
	// ErrUpstreamUnavailable marks a failed credential, blob store or
	// provider call.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// statusCode maps a pipeline error to an envelope status code.
func statusCode(err error) int {
	if errors.Is(err, ErrInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
