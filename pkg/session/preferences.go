package session

import (
	"context"
	"maps"
	"sync"
)

// Preferences is the profile preferences resource. It is handed out
// before its load completes; callers check Resolved or Wait for it.
type Preferences struct {
	once   sync.Once
	done   chan struct{}
	values map[string]string
	err    error
}

// NewPreferences creates a pending preferences handle.
func NewPreferences() *Preferences {
	return &Preferences{done: make(chan struct{})}
}

// ResolvedPreferences creates a handle that is already resolved with values.
func ResolvedPreferences(values map[string]string) *Preferences {
	p := NewPreferences()
	p.Complete(values, nil)
	return p
}

// Complete settles the handle. Only the first call has an effect.
func (p *Preferences) Complete(values map[string]string, err error) {
	p.once.Do(func() {
		if err == nil {
			p.values = maps.Clone(values)
			if p.values == nil {
				p.values = map[string]string{}
			}
		}
		p.err = err
		close(p.done)
	})
}

// Done is closed once the handle is settled.
func (p *Preferences) Done() <-chan struct{} {
	return p.done
}

// Resolved reports whether the preferences loaded successfully.
func (p *Preferences) Resolved() bool {
	select {
	case <-p.done:
		return p.err == nil
	default:
		return false
	}
}

// Err returns the load failure, or nil while pending or on success.
func (p *Preferences) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the handle settles or ctx is done.
func (p *Preferences) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Values returns a copy of the loaded preferences, nil unless resolved.
func (p *Preferences) Values() map[string]string {
	if !p.Resolved() {
		return nil
	}
	return maps.Clone(p.values)
}

// Get returns a single preference.
func (p *Preferences) Get(key string) (string, bool) {
	if !p.Resolved() {
		return "", false
	}
	v, ok := p.values[key]
	return v, ok
}
