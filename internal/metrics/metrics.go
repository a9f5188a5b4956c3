package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeMatched  = "matched"
	OutcomeNotFound = "not_found"
	OutcomeEmpty    = "empty_catalog"
	OutcomeOK       = "ok"
	OutcomeDisabled = "disabled"
	OutcomeFailed   = "failed"
	OutcomeLimited  = "rate_limited"
)

var (
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_advisor_recommendations_total",
			Help: "Total number of recommendations served by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	RecommendedCards = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_advisor_recommended_cards_total",
			Help: "Total number of times a card was picked as the best match",
		},
		[]string{"card"},
	)

	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_advisor_chat_requests_total",
			Help: "Total number of chat requests by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "card_advisor_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)
