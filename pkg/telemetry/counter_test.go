//go:build unit || !integration

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestCounter(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	counter, err := NewCounter(provider.Meter("test"), "jobs.terminal", "terminal jobs")
	require.NoError(t, err)

	counter.Inc(ctx, attribute.String("state", "Finished"))
	counter.Add(ctx, 2, attribute.String("state", "Finished"))
	counter.Inc(ctx, attribute.String("state", "Failed"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	sum, ok := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	values := map[string]int64{}
	for _, dp := range sum.DataPoints {
		state, _ := dp.Attributes.Value("state")
		values[state.AsString()] = dp.Value
	}
	require.Equal(t, map[string]int64{"Finished": 3, "Failed": 1}, values)
}

func TestMust(t *testing.T) {
	require.Equal(t, 1, Must(1, nil))
	require.Panics(t, func() { Must(0, context.Canceled) })
}
