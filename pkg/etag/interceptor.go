package etag

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// DefaultPrefix is the monitored API root.
	DefaultPrefix = "/api"

	// HeaderIfNoneMatch carries the stored validator on outgoing requests.
	HeaderIfNoneMatch = "If-None-Match"

	// HeaderETag carries the validator on responses.
	HeaderETag = "ETag"
)

// Interceptor attaches stored validators to outgoing API requests and
// captures new validators from API responses.
type Interceptor struct {
	prefix string
	store  Store
	logger zerolog.Logger
}

// NewInterceptor creates an interceptor monitoring URLs that start with prefix.
func NewInterceptor(prefix string, store Store, logger zerolog.Logger) *Interceptor {
	if store == nil {
		panic("validator store cannot be nil")
	}
	return &Interceptor{
		prefix: prefix,
		store:  store,
		logger: logger.With().Str("component", "etag-interceptor").Logger(),
	}
}

// Prefix returns the monitored URL prefix.
func (i *Interceptor) Prefix() string {
	return i.prefix
}

// OnRequest sets If-None-Match on GET requests to monitored URLs that
// have a stored validator. The request is mutated in place and returned.
func (i *Interceptor) OnRequest(req *http.Request) *http.Request {
	if req == nil || req.Method != http.MethodGet {
		return req
	}

	url := requestURL(req)
	if !i.monitors(url) {
		return req
	}

	validator, err := i.store.Get(req.Context(), url)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			StoreErrors.WithLabelValues("get").Inc()
			i.logger.Warn().Err(err).Str("url", url).Msg("Validator lookup failed")
		}
		return req
	}

	if req.Header == nil {
		req.Header = make(http.Header)
	}
	req.Header.Set(HeaderIfNoneMatch, validator)
	ConditionalRequests.Inc()

	i.logger.Debug().
		Str("url", url).
		Str("etag", validator).
		Msg("Making conditional request")

	return req
}

// OnResponse stores the ETag of a 200 response to a monitored GET request.
// All other responses leave the store untouched.
func (i *Interceptor) OnResponse(resp *http.Response) *http.Response {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return resp
	}

	url := requestURL(resp.Request)
	if !i.monitors(url) {
		return resp
	}

	if resp.StatusCode != http.StatusOK {
		return resp
	}

	validator := resp.Header.Get(HeaderETag)
	if validator == "" {
		return resp
	}

	if err := i.store.Set(resp.Request.Context(), url, validator); err != nil {
		StoreErrors.WithLabelValues("set").Inc()
		i.logger.Warn().Err(err).Str("url", url).Msg("Failed to store validator")
		return resp
	}
	ValidatorsStored.Inc()

	i.logger.Debug().
		Str("url", url).
		Str("etag", validator).
		Msg("Stored validator")

	return resp
}

func (i *Interceptor) monitors(url string) bool {
	return strings.HasPrefix(url, i.prefix)
}

// requestURL is the URL a validator is keyed by: the request URI
// (path and raw query), as the dashboard addresses its API.
func requestURL(req *http.Request) string {
	if req.URL == nil {
		return ""
	}
	return req.URL.RequestURI()
}
