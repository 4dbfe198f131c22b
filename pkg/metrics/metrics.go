// Package metrics exposes the dashboard's Prometheus metrics.
// Collectors are defined in their own packages (etag, route, session)
// and registered via promauto on the default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Conditional-fetch metrics (pkg/etag):
//   - dashboard_etag_conditional_requests_total (Counter): requests sent with If-None-Match
//   - dashboard_etag_validators_stored_total (Counter): validators stored from 200 responses
//   - dashboard_etag_not_modified_total (Counter): 304 responses received from the API
//   - dashboard_etag_store_errors_total{operation} (Counter): validator store failures
//   - dashboard_etag_replayed_responses_total (Counter): 304s answered with a remembered body
//
// Route metrics (pkg/route):
//   - dashboard_route_transitions_total{route, result} (Counter): success, error, abandoned
//   - dashboard_route_resolve_duration_seconds{route} (Histogram): precondition latency
//
// API metrics (pkg/session):
//   - dashboard_api_requests_total{endpoint, status} (Counter)
//   - dashboard_api_request_duration_seconds{endpoint} (Histogram)
//
// Example Prometheus Queries:
//
//   # Conditional hit rate
//   rate(dashboard_etag_not_modified_total[5m]) /
//   rate(dashboard_etag_conditional_requests_total[5m])
//
//   # Failed route changes
//   sum by (route) (rate(dashboard_route_transitions_total{result="error"}[5m]))
//
//   # P95 precondition latency
//   histogram_quantile(0.95, rate(dashboard_route_resolve_duration_seconds_bucket[5m]))
