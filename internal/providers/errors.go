package providers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrSchemaValidation marks model output that could not be parsed or did not
// match the requested schema.
var ErrSchemaValidation = errors.New("structured output failed schema validation")

// SchemaError carries the raw model output alongside the validation failure.
type SchemaError struct {
	Raw   string
	Cause error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %v", ErrSchemaValidation, e.Cause)
}

func (e *SchemaError) Unwrap() []error {
	return []error{ErrSchemaValidation, e.Cause}
}

// RateLimitError is returned when a provider answers 429.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
	StatusCode int
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
