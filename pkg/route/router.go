package route

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for route transitions.
var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_route_transitions_total",
		Help: "Total route transitions by route and result",
	}, []string{"route", "result"})

	resolveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_route_resolve_duration_seconds",
		Help:    "Time spent resolving route preconditions by route",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	}, []string{"route"})
)

// DefaultRoute is where a failed transition is redirected.
const DefaultRoute = "/"

// OtherwiseName names the fallback route in logs and metrics.
const OtherwiseName = "otherwise"

// ErrorHandler answers a request whose route transition failed.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// RedirectTo returns an ErrorHandler redirecting to target. A failed
// transition to target itself is answered with 503 instead.
func RedirectTo(target string) ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		if r.URL.Path == target {
			http.Error(w, "session unavailable", http.StatusServiceUnavailable)
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// Router serves dashboard routes. Every request to a registered route is
// a transition: preconditions run in order, then the route handler on
// success or the error handler on failure.
type Router struct {
	mux    *mux.Router
	logger zerolog.Logger

	mu           sync.RWMutex
	listeners    []Listener
	errorHandler ErrorHandler
}

// NewRouter creates a router redirecting failed transitions to DefaultRoute.
func NewRouter(logger zerolog.Logger) *Router {
	return &Router{
		mux:          mux.NewRouter(),
		logger:       logger.With().Str("component", "router").Logger(),
		errorHandler: RedirectTo(DefaultRoute),
	}
}

// When implements Registrar. path uses gorilla/mux syntax, e.g.
// "/workspace/{namespace}/{name}".
func (r *Router) When(path string, route *Route) {
	if route.Name == "" {
		route.Name = path
	}
	r.mux.Handle(path, r.transition(route)).Methods(http.MethodGet, http.MethodHead)
}

// Otherwise implements Registrar.
func (r *Router) Otherwise(route *Route) {
	if route.Name == "" {
		route.Name = OtherwiseName
	}
	r.mux.NotFoundHandler = r.transition(route)
}

// Handle registers an ungated handler, e.g. health or metrics endpoints.
func (r *Router) Handle(path string, handler http.Handler) {
	r.mux.Handle(path, handler)
}

// Subscribe adds a transition listener.
func (r *Router) Subscribe(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// SetErrorHandler replaces the failed-transition handler.
func (r *Router) SetErrorHandler(h ErrorHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorHandler = h
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) transition(route *Route) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := uuid.NewString()
		ctx := req.Context()

		// Resolvers log with the transition id
		logger := r.logger.With().Str("transition", id).Str("route", route.Name).Logger()
		req = req.WithContext(logger.WithContext(ctx))

		event := Event{Transition: id, Route: route.Name, Path: req.URL.Path}
		r.emit(event, EventStart, nil)

		startTime := time.Now()
		var err error
		for _, resolve := range route.resolvers() {
			if err = resolve(req.Context()); err != nil {
				break
			}
		}
		resolveDuration.WithLabelValues(route.Name).Observe(time.Since(startTime).Seconds())

		// The client navigated away; its outcome no longer matters
		if ctx.Err() != nil {
			transitionsTotal.WithLabelValues(route.Name, "abandoned").Inc()
			logger.Debug().Msg("Dropping stale transition")
			return
		}

		if err != nil {
			transitionsTotal.WithLabelValues(route.Name, "error").Inc()
			r.emit(event, EventError, err)

			r.mu.RLock()
			handleError := r.errorHandler
			r.mu.RUnlock()
			handleError(w, req, err)
			return
		}

		transitionsTotal.WithLabelValues(route.Name, "success").Inc()
		r.emit(event, EventSuccess, nil)

		if route.Handler == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		route.Handler.ServeHTTP(w, req)
	})
}

func (r *Router) emit(event Event, kind EventKind, err error) {
	event.Kind = kind
	event.Err = err

	r.mu.RLock()
	listeners := r.listeners
	r.mu.RUnlock()

	for _, l := range listeners {
		l.OnEvent(event)
	}
}
