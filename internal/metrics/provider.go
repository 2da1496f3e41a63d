package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/looplj/datavault/internal/build"
	"github.com/looplj/datavault/internal/log"
)

// NewProvider returns nil when metrics are disabled.
func NewProvider(cfg Config) (*sdk.MeterProvider, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	exporter, err := newExporter(context.Background(), cfg.Exporter)
	if err != nil {
		return nil, err
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", "datavault"),
		attribute.String("service.version", build.Version),
	)

	return sdk.NewMeterProvider(
		sdk.WithResource(res),
		sdk.WithReader(sdk.NewPeriodicReader(exporter, sdk.WithInterval(interval))),
	), nil
}

func newExporter(ctx context.Context, cfg ExporterConfig) (sdk.Exporter, error) {
	switch cfg.Type {
	case ExporterStdout, "":
		return stdoutmetric.New()
	case ExporterOTLPHTTP:
		opts := []otlpmetrichttp.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.Endpoint))
		}

		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}

		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetrichttp.WithHeaders(cfg.Headers))
		}

		return otlpmetrichttp.New(ctx, opts...)
	case ExporterOTLPGRPC:
		opts := []otlpmetricgrpc.Option{}
		if cfg.Endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(cfg.Endpoint))
		}

		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}

		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.Headers))
		}

		return otlpmetricgrpc.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown metrics exporter %q", cfg.Type)
	}
}

// SetupMetrics installs provider as the global meter provider.
func SetupMetrics(provider *sdk.MeterProvider, name string) error {
	otel.SetMeterProvider(provider)
	log.Info(context.Background(), "metrics enabled", log.String("service", name))

	return nil
}
