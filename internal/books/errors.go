package books

import (
	"errors"
	"fmt"
)

// ErrUnavailable indicates the lookup service could not be reached.
var ErrUnavailable = errors.New("book lookup service unavailable")

// ErrMalformedResponse indicates the lookup service returned an undecodable payload.
var ErrMalformedResponse = errors.New("book lookup returned a malformed response")

// ErrRateLimited indicates the lookup service rate limit was exceeded.
var ErrRateLimited = errors.New("book lookup rate limit exceeded")

// ServerError represents a 5xx response from the lookup service.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("book lookup server error: HTTP %d", e.StatusCode)
}
