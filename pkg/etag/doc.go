// Package etag provides conditional-fetch caching for the dashboard's API calls.
//
// The interceptor remembers the ETag validator of every successful GET
// response under the monitored API prefix and attaches it as If-None-Match
// to later GET requests for the same URL:
//
//   - Only GET requests are touched
//   - Only URLs whose request URI starts with the prefix (literal match)
//   - Only 200 responses carrying an ETag header update the store
//   - The last successful response for a URL wins
//   - Validators are never evicted
//
// # Basic Usage
//
//	store := etag.NewMemoryStore()
//	interceptor := etag.NewInterceptor("/api", store, logger)
//
//	httpClient := &http.Client{
//		Transport: etag.NewTransport(interceptor, etag.NewReplay(http.DefaultTransport).WithPrefix("/api")),
//	}
//
// # Shared Validators
//
// Several dashboard replicas can share validators through Redis:
//
//	store := etag.NewRedisStore(redis.NewClient(&redis.Options{Addr: "localhost:6379"}))
//
// # 304 Not Modified
//
// The interceptor does not special-case 304 responses. Turning a 304 back
// into the previously received body is the job of the HTTP layer below it,
// which Replay provides for Go clients in the same way a browser cache does.
//
// # Metrics
//
//   - dashboard_etag_conditional_requests_total - If-None-Match attached
//   - dashboard_etag_validators_stored_total - validators stored
//   - dashboard_etag_not_modified_total - 304 responses received from the API
//   - dashboard_etag_store_errors_total{operation} - store failures
//   - dashboard_etag_replayed_responses_total - 304s answered from Replay
package etag
