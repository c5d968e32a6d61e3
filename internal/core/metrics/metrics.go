package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultDispatched = "dispatched"
	ResultFailed     = "failed"
)

var (
	invocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "printjob_invocations_total",
			Help: "Total number of press invocations by result",
		},
		[]string{"result"},
	)

	invocationsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "printjob_invocations_in_flight",
			Help: "Number of press invocations not yet settled",
		},
	)

	jobsAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "printjobs_available",
			Help: "Number of print jobs found by the last extraction",
		},
	)

	registryFetchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "state_registry_fetch_errors_total",
			Help: "Total number of failed state registry reads",
		},
	)
)

func InvocationStarted() {
	invocationsInFlight.Inc()
}

// InvocationSettled records the outcome of one dispatch.
func InvocationSettled(result string) {
	invocationsInFlight.Dec()
	invocationsTotal.WithLabelValues(result).Inc()
}

func SetJobsAvailable(n int) {
	jobsAvailable.Set(float64(n))
}

func RecordRegistryFetchError() {
	registryFetchErrors.Inc()
}
