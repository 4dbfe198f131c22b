package route

import (
	"context"

	"github.com/Sternrassler/che-dashboard/pkg/session"
	"github.com/rs/zerolog"
)

// UserFetcher fetches the current user session.
type UserFetcher interface {
	FetchUser(ctx context.Context) (*session.User, error)
}

// PreferencesSource hands out the profile preferences, which may still
// be loading.
type PreferencesSource interface {
	GetPreferences(ctx context.Context) *session.Preferences
}

// phase is the step a precondition is in. Only used for logging.
type phase string

const (
	phaseFetchingUser        phase = "fetching_user"
	phaseFetchingPreferences phase = "fetching_preferences"
	phaseResolved            phase = "resolved"
	phaseFailed              phase = "failed"
)

// Gate is the session precondition shared by all dashboard routes.
type Gate struct {
	users  UserFetcher
	prefs  PreferencesSource
	logger zerolog.Logger
}

// NewGate creates a gate over the user and preferences services.
func NewGate(users UserFetcher, prefs PreferencesSource, logger zerolog.Logger) *Gate {
	if users == nil || prefs == nil {
		panic("user fetcher and preferences source are required")
	}
	return &Gate{
		users:  users,
		prefs:  prefs,
		logger: logger.With().Str("component", "route-gate").Logger(),
	}
}

// Resolve fetches the user, then waits for the profile preferences.
// The first failure is returned wrapped in SessionFetchError or
// PreferencesFetchError. There is no timeout beyond ctx.
func (g *Gate) Resolve(ctx context.Context) error {
	g.logger.Debug().Str("phase", string(phaseFetchingUser)).Msg("Resolving route")

	if _, err := g.users.FetchUser(ctx); err != nil {
		g.logger.Debug().Err(err).Str("phase", string(phaseFailed)).Msg("User fetch failed")
		return &SessionFetchError{Err: err}
	}

	g.logger.Debug().Str("phase", string(phaseFetchingPreferences)).Msg("Resolving route")

	prefs := g.prefs.GetPreferences(ctx)
	if prefs == nil {
		return &PreferencesFetchError{Err: ErrNoPreferences}
	}

	if !prefs.Resolved() {
		if err := prefs.Wait(ctx); err != nil {
			g.logger.Debug().Err(err).Str("phase", string(phaseFailed)).Msg("Preferences failed")
			return &PreferencesFetchError{Err: err}
		}
	}

	g.logger.Debug().Str("phase", string(phaseResolved)).Msg("Route resolved")
	return nil
}

// Guard attaches the gate's precondition to route under AppResolveKey.
func (g *Gate) Guard(route *Route) *Route {
	if route.Resolve == nil {
		route.Resolve = make(map[string]ResolveFunc)
	}
	route.Resolve[AppResolveKey] = g.Resolve
	return route
}

// AccessWhen registers a gated route for path.
func (g *Gate) AccessWhen(reg Registrar, path string, route *Route) {
	reg.When(path, g.Guard(route))
}

// AccessOtherwise registers the gated fallback route.
func (g *Gate) AccessOtherwise(reg Registrar, route *Route) {
	reg.Otherwise(g.Guard(route))
}
