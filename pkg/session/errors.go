package session

import (
	"errors"
	"fmt"
)

// ErrNotModifiedWithoutBody is returned when the API answers 304 and no
// earlier body is available to resolve it.
var ErrNotModifiedWithoutBody = errors.New("not modified without cached body")

// APIError is a non-2xx answer from the dashboard API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("API error on %s (status %d): %s: %v",
			e.Endpoint, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("API error on %s (status %d): %s",
		e.Endpoint, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is an API 401 or 403.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
}
