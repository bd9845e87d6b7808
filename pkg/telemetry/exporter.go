package telemetry

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	otlpEndpoint        = "OTEL_EXPORTER_OTLP_ENDPOINT"
	otlpMetricsEndpoint = "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"
	disableMetrics      = "TECHWM_METRICS_DISABLE"
)

// ReadersFromEnv returns a periodic OTLP/HTTP reader when an OTLP endpoint
// is configured through the standard OTEL_ environment variables, and
// nothing otherwise.
func ReadersFromEnv(ctx context.Context) []sdkmetric.Reader {
	if !isMetricsEnabled() {
		log.Ctx(ctx).Debug().Msg("OTLP metrics endpoints are not defined. No metrics will be exported")
		return nil
	}

	exp, err := otlpmetrichttp.New(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to initialize OTLP metric exporter")
		return nil
	}
	return []sdkmetric.Reader{sdkmetric.NewPeriodicReader(exp)}
}

func isMetricsEnabled() bool {
	if v, ok := os.LookupEnv(disableMetrics); ok && v == "1" {
		return false
	}
	if _, ok := os.LookupEnv(otlpEndpoint); ok {
		return true
	}
	if _, ok := os.LookupEnv(otlpMetricsEndpoint); ok {
		return true
	}
	return false
}
