package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	ServiceName = "glimpseqc"
	TracerName  = "glimpseqc"
)

// Profiler owns the OpenTelemetry tracing used for run profiling. Spans wrap
// discovery, each module run and every export step; the exporter writes them
// as pretty-printed JSON so the trace lands readable in the report data dir.
//
// A noop Profiler is valid everywhere and records nothing.
type Profiler struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewProfiler builds a Profiler whose spans are written to w.
func NewProfiler(w io.Writer, version string, logger *slog.Logger) (*Profiler, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Debug("run profiling enabled", slog.String("service", ServiceName))

	return &Profiler{
		provider: tp,
		tracer:   tp.Tracer(TracerName, trace.WithInstrumentationVersion(version)),
		logger:   logger,
	}, nil
}

// NoopProfiler returns a Profiler that records nothing. Used whenever
// profiling is not requested, so callers never check for nil.
func NoopProfiler() *Profiler {
	return &Profiler{
		tracer: noop.NewTracerProvider().Tracer(TracerName),
	}
}

// Start opens a span. The returned context carries it for nested spans.
func (p *Profiler) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan closes a span, recording err when non-nil.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Shutdown flushes pending spans. A noop Profiler shuts down instantly.
func (p *Profiler) Shutdown(ctx context.Context) error {
	if p == nil || p.provider == nil {
		return nil
	}
	if err := p.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("tracer provider shutdown: %w", err)
	}
	if p.logger != nil {
		p.logger.Debug("run profiling trace flushed")
	}
	return nil
}
