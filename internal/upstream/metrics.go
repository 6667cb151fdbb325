package upstream

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeOK        = "ok"
	outcomeError     = "error"
	outcomeTimeout   = "timeout"
	outcomeOpen      = "circuit_open"
	outcomeMalformed = "malformed"
)

// upstreamReqs counts outbound calls by service and outcome. A malformed
// response is counted twice: once as ok (transport) and once as malformed.
var upstreamReqs = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "telemacher_upstream_requests_total",
		Help: "Outbound calls to NLU, geocoding and weather services.",
	},
	[]string{"service", "outcome"},
)

func init() {
	prometheus.MustRegister(upstreamReqs)
}

func observe(service, outcome string) {
	upstreamReqs.WithLabelValues(service, outcome).Inc()
}
