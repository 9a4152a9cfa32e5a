// Package tracing wires OpenTelemetry trace export for the relay.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/coopsync-dev/coopsync/internal/config"
)

// Shutdown flushes pending spans and stops the exporter.
type Shutdown func(context.Context) error

// Setup builds a tracer provider from cfg and installs it as the global
// provider. When cfg.Endpoint is empty no exporter is created and a no-op
// provider is returned.
func Setup(ctx context.Context, cfg config.TracingConfig, version string) (trace.TracerProvider, Shutdown, error) {
	none := func(context.Context) error { return nil }
	if cfg.Endpoint == "" {
		return noop.NewTracerProvider(), none, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, none, fmt.Errorf("tracing: exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.Service),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		_ = exporter.Shutdown(ctx)
		return nil, none, fmt.Errorf("tracing: resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp, tp.Shutdown, nil
}
