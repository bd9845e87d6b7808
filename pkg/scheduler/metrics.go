package scheduler

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/techwm-project/techwm/pkg/models"
	"github.com/techwm-project/techwm/pkg/telemetry"
)

var (
	Meter = otel.GetMeterProvider().Meter("scheduler")
)

var (
	jobsSubmitted = telemetry.Must(telemetry.NewCounter(
		Meter, "jobs.submitted", "Jobs that passed admission and got an id"))

	jobsRejected = telemetry.Must(telemetry.NewCounter(
		Meter, "jobs.rejected", "Submissions refused before an id was assigned"))

	jobsPromoted = telemetry.Must(telemetry.NewCounter(
		Meter, "jobs.promoted", "Queued jobs started by promotion"))

	jobsTerminal = telemetry.Must(telemetry.NewCounter(
		Meter, "jobs.terminal", "Jobs that reached a terminal state"))

	jobsActive = telemetry.Must(Meter.Int64ObservableGauge(
		"jobs.active",
		metric.WithDescription("Jobs in the active table, by state"),
	))
)

const (
	AttrState  = "state"
	AttrReason = "reason"
)

func stateAttribute(state models.JobStateType) attribute.KeyValue {
	return attribute.String(AttrState, state.String())
}

func reasonAttribute(err error) attribute.KeyValue {
	return attribute.String(AttrReason, string(models.ErrorCodeOf(err)))
}
