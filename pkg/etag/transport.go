package etag

import (
	"net/http"
)

// Transport wires an Interceptor into an HTTP client: OnRequest runs
// before every request is sent and OnResponse after every response is
// received.
type Transport struct {
	interceptor *Interceptor
	base        http.RoundTripper
}

// NewTransport wraps base with the interceptor. A nil base uses
// http.DefaultTransport.
func NewTransport(interceptor *Interceptor, base http.RoundTripper) *Transport {
	if interceptor == nil {
		panic("interceptor cannot be nil")
	}
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		interceptor: interceptor,
		base:        base,
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrip must not modify the caller's request
	out := req.Clone(req.Context())
	out = t.interceptor.OnRequest(out)

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	return t.interceptor.OnResponse(resp), nil
}
