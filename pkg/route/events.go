package route

import (
	"github.com/rs/zerolog"
)

// EventKind is a step in the lifecycle of a route transition.
type EventKind string

const (
	// EventStart is emitted before the route's preconditions run.
	EventStart EventKind = "start"

	// EventSuccess is emitted when all preconditions passed.
	EventSuccess EventKind = "success"

	// EventError is emitted when a precondition failed.
	EventError EventKind = "error"
)

// Event describes a route transition lifecycle step.
type Event struct {
	Kind       EventKind
	Transition string
	Route      string
	Path       string
	Err        error
}

// Listener observes route transitions.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

// OnEvent implements Listener.
func (f ListenerFunc) OnEvent(e Event) {
	f(e)
}

// LogListener logs every transition event.
func LogListener(logger zerolog.Logger) Listener {
	return ListenerFunc(func(e Event) {
		var evt *zerolog.Event
		switch e.Kind {
		case EventError:
			evt = logger.Error().Err(e.Err)
		case EventStart:
			evt = logger.Debug()
		default:
			evt = logger.Info()
		}
		evt.
			Str("event", string(e.Kind)).
			Str("transition", e.Transition).
			Str("route", e.Route).
			Str("path", e.Path).
			Msg("Route change")
	})
}
