package session

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "without wrapped error",
			err:  &APIError{StatusCode: 404, Endpoint: "/user", Message: "Not Found"},
			want: "API error on /user (status 404): Not Found",
		},
		{
			name: "with wrapped error",
			err:  &APIError{StatusCode: 500, Endpoint: "/profile/prefs", Message: "boom", Err: errors.New("cause")},
			want: "API error on /profile/prefs (status 500): boom: cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := fmt.Errorf("outer: %w", &APIError{StatusCode: 502, Err: cause})

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestIsUnauthorized(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&APIError{StatusCode: 401}, true},
		{&APIError{StatusCode: 403}, true},
		{&APIError{StatusCode: 404}, false},
		{errors.New("plain"), false},
		{nil, false},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = strings.ReplaceAll(tt.err.Error(), " ", "_")
		}
		t.Run(name, func(t *testing.T) {
			if got := IsUnauthorized(tt.err); got != tt.want {
				t.Errorf("IsUnauthorized() = %v, want %v", got, tt.want)
			}
		})
	}
}
