package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/resilience"
)

const (
	outcomePriced      = "priced"
	outcomeCircuitOpen = "fallback_circuit_open"
	outcomeUnavailable = "fallback_unavailable"
	outcomeRejected    = "rejected"
)

var (
	pricingCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_gateway_calls_total",
			Help: "Flights priced by the gateway, by outcome",
		},
		[]string{"outcome"},
	)

	pricingAttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricing_gateway_attempt_duration_seconds",
			Help:    "Duration of single attempts against the pricing service",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"result"},
	)

	circuitStateGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pricing_circuit_state",
			Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open",
		},
		[]string{"name"},
	)
)

// ObserveCircuitState matches resilience.WithStateChangeHook and exports the
// new state as a gauge.
func ObserveCircuitState(name string, _, to resilience.State) {
	circuitStateGauge.WithLabelValues(name).Set(stateValue(to))
}

func stateValue(s resilience.State) float64 {
	switch s {
	case resilience.StateHalfOpen:
		return 1
	case resilience.StateOpen:
		return 2
	default:
		return 0
	}
}
