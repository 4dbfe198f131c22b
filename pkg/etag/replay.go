package etag

import (
	"net/http"
	"strings"
	"sync"
)

// Replay is the HTTP layer below the Interceptor that resolves a 304 Not
// Modified into the 200 response it validates, the way a browser cache
// does. It remembers the last 200 GET response carrying an ETag per URL
// under its prefix. Remembered bodies are never evicted, so the prefix
// should cover only the API the validators are kept for.
//
// A 304 is replayed only when the remembered body carries the validator
// the request was sent with. Otherwise (another process sharing the Store
// saw a newer version, or the body was never seen here) the request is
// sent again without If-None-Match.
type Replay struct {
	base   http.RoundTripper
	prefix string

	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewReplay wraps base. A nil base uses http.DefaultTransport.
// Responses for every URL are remembered until WithPrefix narrows it.
func NewReplay(base http.RoundTripper) *Replay {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Replay{
		base:    base,
		entries: make(map[string]*Entry),
	}
}

// WithPrefix limits remembered responses to request URIs starting with
// prefix (literal match, like the Interceptor). Call it before use.
func (r *Replay) WithPrefix(prefix string) *Replay {
	r.prefix = prefix
	return r
}

// RoundTrip implements http.RoundTripper.
func (r *Replay) RoundTrip(req *http.Request) (*http.Response, error) {
	url := requestURL(req)
	if req.Method != http.MethodGet || !strings.HasPrefix(url, r.prefix) {
		return r.base.RoundTrip(req)
	}

	resp, err := r.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return r.remember(url, resp)

	case http.StatusNotModified:
		NotModifiedResponses.Inc()

		sent := req.Header.Get(HeaderIfNoneMatch)
		if entry := r.lookup(url); entry != nil && sent != "" && entry.ETag == sent {
			resp.Body.Close()
			ReplayedResponses.Inc()
			return EntryToResponse(entry, req), nil
		}

		if sent == "" {
			return resp, nil
		}

		// Validator without a matching body: fetch unconditionally
		resp.Body.Close()
		retry := req.Clone(req.Context())
		retry.Header.Del(HeaderIfNoneMatch)

		resp, err = r.base.RoundTrip(retry)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusOK {
			return r.remember(url, resp)
		}
		return resp, nil

	default:
		return resp, nil
	}
}

func (r *Replay) remember(url string, resp *http.Response) (*http.Response, error) {
	if resp.Header.Get(HeaderETag) == "" {
		return resp, nil
	}

	entry, err := ResponseToEntry(resp)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}

	r.mu.Lock()
	r.entries[url] = entry
	r.mu.Unlock()

	return resp, nil
}

func (r *Replay) lookup(url string) *Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[url]
}
