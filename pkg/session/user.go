package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// UserEndpoint is the current-user resource below the API root.
const UserEndpoint = "/user"

// User is the authenticated dashboard user.
type User struct {
	ID      string   `json:"id"`
	Name    string   `json:"name,omitempty"`
	Email   string   `json:"email"`
	Aliases []string `json:"aliases,omitempty"`
}

// UserService fetches the current user.
type UserService struct {
	client *Client
	group  singleflight.Group
	logger zerolog.Logger

	mu      sync.RWMutex
	current *User
}

// NewUserService creates a user service on top of client.
func NewUserService(client *Client, logger zerolog.Logger) *UserService {
	return &UserService{
		client: client,
		logger: logger.With().Str("component", "user-service").Logger(),
	}
}

// FetchUser loads the current user from the API. Concurrent callers
// share a single request. The shared request is not cancelled with any
// one caller's ctx; it is bounded by the client timeout, and each caller
// stops waiting when its own ctx is done.
func (s *UserService) FetchUser(ctx context.Context) (*User, error) {
	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(UserEndpoint, func() (any, error) {
		var user User
		if err := s.client.Get(flightCtx, UserEndpoint, &user); err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.current = &user
		s.mu.Unlock()

		return &user, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.logger.Warn().Err(res.Err).Msg("Failed to fetch user")
			return nil, res.Err
		}

		s.logger.Debug().Bool("shared", res.Shared).Msg("Fetched user")
		return res.Val.(*User), nil
	}
}

// Current returns the last fetched user, or nil.
func (s *UserService) Current() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
