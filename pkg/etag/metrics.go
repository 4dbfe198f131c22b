package etag

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConditionalRequests tracks requests sent with If-None-Match
	ConditionalRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_etag_conditional_requests_total",
			Help: "Total number of API requests sent with If-None-Match",
		},
	)

	// ValidatorsStored tracks validators written to the store
	ValidatorsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_etag_validators_stored_total",
			Help: "Total number of ETag validators stored",
		},
	)

	// NotModifiedResponses tracks 304 Not Modified responses received by Replay
	NotModifiedResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_etag_not_modified_total",
			Help: "Total number of API 304 Not Modified responses",
		},
	)

	// StoreErrors tracks validator store failures
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_etag_store_errors_total",
			Help: "Total number of validator store errors",
		},
		[]string{"operation"}, // "get", "set"
	)

	// ReplayedResponses tracks 304 responses answered from the replay memory
	ReplayedResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_etag_replayed_responses_total",
			Help: "Total number of 304 responses replaced by a remembered 200 response",
		},
	)
)
