package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// PreferencesEndpoint is the profile preferences resource below the API root.
const PreferencesEndpoint = "/profile/prefs"

// ProfileService loads the user's profile preferences. The loaded handle
// is shared by all callers until a load fails or Refresh is called.
type ProfileService struct {
	client  *Client
	timeout time.Duration
	logger  zerolog.Logger

	mu    sync.Mutex
	prefs *Preferences
}

// NewProfileService creates a profile service. timeout bounds each
// background load; zero means no bound beyond the client's own.
func NewProfileService(client *Client, timeout time.Duration, logger zerolog.Logger) *ProfileService {
	return &ProfileService{
		client:  client,
		timeout: timeout,
		logger:  logger.With().Str("component", "profile-service").Logger(),
	}
}

// GetPreferences returns the current preferences handle, starting a load
// when there is none or the previous one failed. The handle may still be
// pending.
func (s *ProfileService) GetPreferences(ctx context.Context) *Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prefs != nil && s.prefs.Err() == nil {
		return s.prefs
	}
	return s.load(ctx)
}

// Refresh starts a new load and returns its handle.
func (s *ProfileService) Refresh(ctx context.Context) *Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// load must be called with s.mu held. The load outlives ctx's
// cancellation since the handle is shared.
func (s *ProfileService) load(ctx context.Context) *Preferences {
	prefs := NewPreferences()
	s.prefs = prefs

	var (
		loadCtx context.Context
		cancel  context.CancelFunc
	)
	if s.timeout > 0 {
		loadCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	} else {
		loadCtx, cancel = context.WithCancel(context.WithoutCancel(ctx))
	}

	go func() {
		defer cancel()

		var values map[string]string
		if err := s.client.Get(loadCtx, PreferencesEndpoint, &values); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to load preferences")
			prefs.Complete(nil, err)
			return
		}

		s.logger.Debug().Int("count", len(values)).Msg("Loaded preferences")
		prefs.Complete(values, nil)
	}()

	return prefs
}
