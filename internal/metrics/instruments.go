package metrics

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdk "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/objects"
)

const meterName = "github.com/looplj/datavault"

const (
	OutcomeOK           = "ok"
	OutcomeUnauthorized = "unauthorized"
	OutcomeDenied       = "denied"
	OutcomeNoEntitled   = "no_entitlement"
)

// Instruments records the analytics and oracle measurements.
type Instruments struct {
	queries        metric.Int64Counter
	stageSize      metric.Int64Histogram
	suppressed     metric.Int64Histogram
	oracleFailures metric.Int64Counter
}

type InstrumentsParams struct {
	fx.In

	Provider *sdk.MeterProvider `optional:"true"`
}

// NewInstrumentsFromParams falls back to the global provider, which is a noop until SetupMetrics runs.
func NewInstrumentsFromParams(params InstrumentsParams) (*Instruments, error) {
	if params.Provider != nil {
		return NewInstruments(params.Provider)
	}

	return NewInstruments(otel.GetMeterProvider())
}

func NewInstruments(provider metric.MeterProvider) (*Instruments, error) {
	meter := provider.Meter(meterName)

	queries, err := meter.Int64Counter("datavault.analytics.queries",
		metric.WithDescription("Analytics queries by outcome"))
	if err != nil {
		return nil, err
	}

	stageSize, err := meter.Int64Histogram("datavault.analytics.stage_size",
		metric.WithDescription("Records or groups remaining after each pipeline stage"))
	if err != nil {
		return nil, err
	}

	suppressed, err := meter.Int64Histogram("datavault.analytics.suppressed_groups",
		metric.WithDescription("Groups removed by privacy suppression per query"))
	if err != nil {
		return nil, err
	}

	oracleFailures, err := meter.Int64Counter("datavault.oracle.failures",
		metric.WithDescription("Access oracle calls that failed and were treated as no access"))
	if err != nil {
		return nil, err
	}

	return &Instruments{
		queries:        queries,
		stageSize:      stageSize,
		suppressed:     suppressed,
		oracleFailures: oracleFailures,
	}, nil
}

func (i *Instruments) RecordQuery(ctx context.Context, outcome string) {
	if i == nil {
		return
	}

	i.queries.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (i *Instruments) RecordStageSizes(ctx context.Context, sizes objects.StageSizes) {
	if i == nil {
		return
	}

	for stage, size := range sizes {
		i.stageSize.Record(ctx, int64(size), metric.WithAttributes(attribute.String("stage", strconv.Itoa(stage))))
	}

	i.suppressed.Record(ctx, int64(sizes[3])-int64(sizes[4]))
}

func (i *Instruments) RecordOracleFailure(ctx context.Context) {
	if i == nil {
		return
	}

	i.oracleFailures.Add(ctx, 1)
}
