package route

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Sternrassler/che-dashboard/pkg/session"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// eventRecorder collects transition events.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) OnEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]EventKind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}
	return kinds
}

func textHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	})
}

func equalKinds(a, b []EventKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRouter_SuccessfulTransition(t *testing.T) {
	router := NewRouter(zerolog.Nop())
	recorder := &eventRecorder{}
	router.Subscribe(recorder)

	gate := newTestGate(&fakeUsers{}, &fakePrefs{prefs: session.ResolvedPreferences(nil)})
	gate.AccessWhen(router, "/workspaces", &Route{Name: "workspaces", Handler: textHandler("list")})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/workspaces", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "list" {
		t.Errorf("body = %q, want route handler output", w.Body.String())
	}
	if got := recorder.kinds(); !equalKinds(got, []EventKind{EventStart, EventSuccess}) {
		t.Errorf("events = %v, want [start success]", got)
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if recorder.events[0].Transition == "" || recorder.events[0].Transition != recorder.events[1].Transition {
		t.Error("events of one transition should share a transition id")
	}
	if recorder.events[0].Route != "workspaces" || recorder.events[0].Path != "/workspaces" {
		t.Errorf("unexpected event: %+v", recorder.events[0])
	}
}

func TestRouter_SessionFailureRedirectsOnce(t *testing.T) {
	cause := errors.New("session expired")
	router := NewRouter(zerolog.Nop())
	recorder := &eventRecorder{}
	router.Subscribe(recorder)

	var redirects int
	var gotErr error
	redirect := RedirectTo(DefaultRoute)
	router.SetErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
		redirects++
		gotErr = err
		redirect(w, r, err)
	})

	handlerCalled := false
	gate := newTestGate(&fakeUsers{err: cause}, &fakePrefs{prefs: session.ResolvedPreferences(nil)})
	gate.AccessWhen(router, "/workspaces", &Route{Handler: http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		handlerCalled = true
	})})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/workspaces", nil))

	if redirects != 1 {
		t.Errorf("redirects = %d, want 1", redirects)
	}
	if !errors.Is(gotErr, cause) {
		t.Errorf("error handler got %v, want wrapped %v", gotErr, cause)
	}
	if w.Code != http.StatusFound {
		t.Errorf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
	if handlerCalled {
		t.Error("route handler must not run after a failed precondition")
	}
	if got := recorder.kinds(); !equalKinds(got, []EventKind{EventStart, EventError}) {
		t.Errorf("events = %v, want [start error]", got)
	}
}

func TestRouter_PreferencesFailureRedirects(t *testing.T) {
	failed := session.NewPreferences()
	failed.Complete(nil, errors.New("prefs unavailable"))

	router := NewRouter(zerolog.Nop())
	gate := newTestGate(&fakeUsers{}, &fakePrefs{prefs: failed})
	gate.AccessWhen(router, "/projects", &Route{Handler: textHandler("projects")})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projects", nil))

	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Errorf("status = %d Location = %q, want redirect to /", w.Code, w.Header().Get("Location"))
	}
}

func TestRouter_FailureOnDefaultRouteDoesNotLoop(t *testing.T) {
	router := NewRouter(zerolog.Nop())
	gate := newTestGate(&fakeUsers{err: errors.New("down")}, &fakePrefs{})
	gate.AccessWhen(router, "/", &Route{Handler: textHandler("home")})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestRouter_Otherwise(t *testing.T) {
	router := NewRouter(zerolog.Nop())
	recorder := &eventRecorder{}
	router.Subscribe(recorder)

	gate := newTestGate(&fakeUsers{}, &fakePrefs{prefs: session.ResolvedPreferences(nil)})
	gate.AccessWhen(router, "/workspaces", &Route{Handler: textHandler("list")})
	gate.AccessOtherwise(router, &Route{Handler: textHandler("fallback")})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no/such/page", nil))

	if w.Body.String() != "fallback" {
		t.Errorf("body = %q, want fallback", w.Body.String())
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.events) == 0 || recorder.events[0].Route != OtherwiseName {
		t.Errorf("fallback events = %+v, want route %q", recorder.events, OtherwiseName)
	}
}

func TestRouter_OtherwiseFailureRedirects(t *testing.T) {
	router := NewRouter(zerolog.Nop())
	gate := newTestGate(&fakeUsers{err: errors.New("down")}, &fakePrefs{})
	gate.AccessOtherwise(router, &Route{Handler: textHandler("fallback")})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/unknown", nil))

	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Errorf("status = %d Location = %q, want redirect to /", w.Code, w.Header().Get("Location"))
	}
}

func TestRouter_StaleTransitionIsDropped(t *testing.T) {
	router := NewRouter(zerolog.Nop())
	recorder := &eventRecorder{}
	router.Subscribe(recorder)

	ctx, cancel := context.WithCancel(context.Background())
	router.When("/workspaces", &Route{
		Handler: textHandler("list"),
		Resolve: map[string]ResolveFunc{
			AppResolveKey: func(ctx context.Context) error {
				// The client navigates away while the precondition runs
				cancel()
				return ctx.Err()
			},
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/workspaces", nil).WithContext(ctx)
	router.ServeHTTP(w, req)

	if got := recorder.kinds(); !equalKinds(got, []EventKind{EventStart}) {
		t.Errorf("events = %v, want only [start]", got)
	}
	if w.Header().Get("Location") != "" {
		t.Error("stale transition must not redirect")
	}
	if w.Body.Len() != 0 {
		t.Errorf("stale transition wrote body %q", w.Body.String())
	}
}

func TestRouter_ResolversRunInKeyOrder(t *testing.T) {
	router := NewRouter(zerolog.Nop())

	var order []string
	record := func(name string) ResolveFunc {
		return func(context.Context) error {
			order = append(order, name)
			return nil
		}
	}
	router.When("/ide/{namespace}/{name}", &Route{
		Resolve: map[string]ResolveFunc{
			"workspace": record("workspace"),
			"app":       record("app"),
			"branding":  record("branding"),
		},
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			io.WriteString(w, vars["namespace"]+"/"+vars["name"])
		}),
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ide/che/ws1", nil))

	want := []string{"app", "branding", "workspace"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
			break
		}
	}
	if w.Body.String() != "che/ws1" {
		t.Errorf("body = %q, want path variables", w.Body.String())
	}
}

func TestRouter_FirstFailingResolverStops(t *testing.T) {
	router := NewRouter(zerolog.Nop())

	laterCalled := false
	router.When("/x", &Route{
		Resolve: map[string]ResolveFunc{
			"a": func(context.Context) error { return errors.New("fail") },
			"b": func(context.Context) error { laterCalled = true; return nil },
		},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	if laterCalled {
		t.Error("resolvers after a failure must not run")
	}
	if w.Code != http.StatusFound {
		t.Errorf("status = %d, want 302", w.Code)
	}
}

func TestRouter_NoHandler(t *testing.T) {
	router := NewRouter(zerolog.Nop())
	router.When("/empty", &Route{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/empty", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}

func TestRouter_UngatedHandle(t *testing.T) {
	router := NewRouter(zerolog.Nop())
	gate := newTestGate(&fakeUsers{err: errors.New("down")}, &fakePrefs{})
	gate.AccessOtherwise(router, &Route{})
	router.Handle("/health", textHandler("OK"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Errorf("status = %d body = %q, want ungated OK", w.Code, w.Body.String())
	}
}

func TestLogListener(t *testing.T) {
	var buf bytes.Buffer
	listener := LogListener(zerolog.New(&buf))

	listener.OnEvent(Event{Kind: EventSuccess, Transition: "t1", Route: "workspaces", Path: "/workspaces"})
	listener.OnEvent(Event{Kind: EventError, Transition: "t2", Route: "projects", Err: errors.New("boom")})

	out := buf.String()
	for _, want := range []string{`"transition":"t1"`, `"event":"success"`, `"error":"boom"`, `"level":"error"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}
