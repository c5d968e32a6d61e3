package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInvocationSettled(t *testing.T) {
	tests := []struct {
		name   string
		result string
	}{
		{"dispatched", ResultDispatched},
		{"failed", ResultFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := invocationsTotal.WithLabelValues(tt.result)
			before := testutil.ToFloat64(counter)
			inFlight := testutil.ToFloat64(invocationsInFlight)

			InvocationStarted()
			require.Equal(t, inFlight+1, testutil.ToFloat64(invocationsInFlight))

			InvocationSettled(tt.result)
			require.Equal(t, before+1, testutil.ToFloat64(counter))
			require.Equal(t, inFlight, testutil.ToFloat64(invocationsInFlight))
		})
	}
}

func TestSetJobsAvailable(t *testing.T) {
	SetJobsAvailable(3)
	require.Equal(t, float64(3), testutil.ToFloat64(jobsAvailable))
	SetJobsAvailable(0)
	require.Equal(t, float64(0), testutil.ToFloat64(jobsAvailable))
}

func TestRecordRegistryFetchError(t *testing.T) {
	before := testutil.ToFloat64(registryFetchErrors)
	RecordRegistryFetchError()
	require.Equal(t, before+1, testutil.ToFloat64(registryFetchErrors))
}
