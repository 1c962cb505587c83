package riot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// apiRequests counts upstream call attempts per operation.
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mooncaker_api_requests_total",
		Help: "Upstream API call attempts by operation.",
	}, []string{"op"})
	// apiRequestErrors counts attempts that did not return a 2xx.
	apiRequestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mooncaker_api_request_errors_total",
		Help: "Failed upstream API call attempts by operation.",
	}, []string{"op"})
	// apiRateLimitHits counts 429 responses.
	apiRateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mooncaker_api_rate_limit_hits_total",
		Help: "Times the upstream API rate limited the crawler.",
	})
	// apiForbiddenHits counts 403 responses, i.e. rejected credentials.
	apiForbiddenHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mooncaker_api_forbidden_hits_total",
		Help: "Times the upstream API rejected the active credential.",
	})
)
