// Package route gates dashboard routes on the user session: a route only
// activates once the current user and their profile preferences are
// available, and a failed transition sends the browser back to the root.
package route

import (
	"context"
	"net/http"
	"sort"
)

// AppResolveKey is the resolver key the Gate registers its precondition under.
const AppResolveKey = "app"

// ResolveFunc is an asynchronous precondition of a route. The route
// activates only when every resolver returns nil.
type ResolveFunc func(ctx context.Context) error

// Route describes a navigation target.
type Route struct {
	// Name identifies the route in logs and metrics
	Name string

	// Handler renders the route once it activates
	Handler http.Handler

	// Resolve holds the preconditions keyed by name
	Resolve map[string]ResolveFunc
}

// resolvers returns the preconditions in key order.
func (r *Route) resolvers() []ResolveFunc {
	keys := make([]string, 0, len(r.Resolve))
	for key := range r.Resolve {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fns := make([]ResolveFunc, 0, len(keys))
	for _, key := range keys {
		if fn := r.Resolve[key]; fn != nil {
			fns = append(fns, fn)
		}
	}
	return fns
}

// Registrar accepts route registrations.
type Registrar interface {
	// When registers route for path.
	When(path string, route *Route)

	// Otherwise registers the fallback route for unmatched paths.
	Otherwise(route *Route)
}
