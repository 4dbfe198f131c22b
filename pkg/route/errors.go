package route

import (
	"errors"
	"fmt"
)

// ErrNoPreferences is returned when the profile service hands out no
// preferences at all.
var ErrNoPreferences = errors.New("no profile preferences")

// SessionFetchError means the current user could not be fetched.
type SessionFetchError struct {
	Err error
}

// Error implements the error interface.
func (e *SessionFetchError) Error() string {
	return fmt.Sprintf("fetch user session: %v", e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *SessionFetchError) Unwrap() error {
	return e.Err
}

// PreferencesFetchError means the user was fetched but the profile
// preferences could not be resolved.
type PreferencesFetchError struct {
	Err error
}

// Error implements the error interface.
func (e *PreferencesFetchError) Error() string {
	return fmt.Sprintf("resolve profile preferences: %v", e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *PreferencesFetchError) Unwrap() error {
	return e.Err
}
