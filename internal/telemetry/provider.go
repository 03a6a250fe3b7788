// Package telemetry wires the OTLP exporters behind the tracer/meter
// providers otelgin and the Prometheus handler already read from the
// global registry, grounded on
// providers/telemetry/providers/opentelemetry/provider.go. Unlike that
// file this package owns no metric-instrument cache of its own — every
// emitted metric in this module goes through ginprometheus'
// /metrics scrape instead — so it's reduced to the setup/shutdown
// half: build a Resource, wire an OTLP trace exporter and an OTLP
// metric exporter, install both as the process-wide providers, and
// hand back one Shutdown func for a clean drain on exit.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"slurmrestd/shared/logger"
)

// Options configures the OTLP collector endpoint and sampling.
type Options struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string // host:port of an OTLP/gRPC collector
	SampleRate     float64
	ExportInterval time.Duration
}

// Shutdown flushes and closes both providers.
type Shutdown func(context.Context) error

// Setup installs a TracerProvider and MeterProvider pointed at an OTLP
// collector. A zero-value Options.Endpoint disables telemetry entirely
// and returns a no-op Shutdown, since a local/dev run rarely has a
// collector listening.
func Setup(ctx context.Context, opts Options) (Shutdown, error) {
	if opts.Endpoint == "" {
		logger.Info("telemetry: no collector endpoint configured, tracing and metrics disabled")
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(opts.ServiceName),
			semconv.ServiceVersionKey.String(opts.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(opts.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: trace exporter: %w", err)
	}
	sampleRate := opts.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(sampleRate)),
	)
	otel.SetTracerProvider(tracerProvider)

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(opts.Endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: metric exporter: %w", err)
	}
	interval := opts.ExportInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	logger.Info("telemetry: exporting to collector", logger.String("endpoint", opts.Endpoint))

	return func(shutdownCtx context.Context) error {
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return meterProvider.Shutdown(shutdownCtx)
	}, nil
}
