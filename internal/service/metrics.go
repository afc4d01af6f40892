package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pedantic_http_requests_total",
		Help: "Total HTTP requests processed by the fixture validator",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pedantic_http_request_duration_seconds",
		Help:    "HTTP request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	fixtureOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pedantic_fixture_validations_total",
		Help: "Fixtures checked grouped by outcome",
	}, []string{"outcome"})
)

// Fixture outcomes recorded by fixtureOutcomes.
const (
	outcomeValid       = "valid"
	outcomeInvalid     = "invalid"
	outcomeUndefined   = "undefined"
	outcomeWhitelisted = "whitelisted"
	outcomeMalformed   = "malformed"
	outcomeError       = "error"
)
