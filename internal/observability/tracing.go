// Package observability provides OpenTelemetry tracing for comparison runs.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"

	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

// TracerName is the instrumentation name of the treediff tracer.
const TracerName = "github.com/AndreyAkinshin/treediff"

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// ServiceName is the name of the service (default: "treediff").
	ServiceName string

	// ServiceVersion is the version of the service.
	ServiceVersion string

	// OTLPEndpoint is the OTLP gRPC endpoint (e.g., "localhost:4317").
	// If empty, tracing is disabled.
	OTLPEndpoint string

	// SampleRate is the trace sampling rate (0.0 to 1.0).
	SampleRate float64
}

// DefaultTracingConfig returns a default tracing configuration.
func DefaultTracingConfig() *TracingConfig {
	return &TracingConfig{
		ServiceName: "treediff",
		SampleRate:  1.0,
	}
}

// TracerProvider wraps the OpenTelemetry tracer provider.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// InitTracing initializes OpenTelemetry tracing.
// Returns a no-op tracer if OTLPEndpoint is empty.
func InitTracing(ctx context.Context, cfg *TracingConfig) (*TracerProvider, error) {
	if cfg == nil {
		cfg = DefaultTracingConfig()
	}

	if cfg.OTLPEndpoint == "" {
		return &TracerProvider{
			tracer: otel.Tracer(TracerName),
		}, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithDialOption(grpc.WithUserAgent("treediff/"+cfg.ServiceVersion)),
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res := resource.NewSchemaless(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(cfg.SampleRate)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracerProvider{
		provider: provider,
		tracer:   provider.Tracer(TracerName),
	}, nil
}

// Sampler maps a sample rate to a parent-based sampler.
func Sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case rate <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

// Shutdown flushes pending spans and shuts down the tracer provider.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider != nil {
		return tp.provider.Shutdown(ctx)
	}
	return nil
}

// Tracer returns the underlying tracer.
func (tp *TracerProvider) Tracer() trace.Tracer {
	return tp.tracer
}

// Span kinds recorded in the treediff.span.kind attribute.
const (
	SpanKindSuite   = "suite"
	SpanKindCase    = "case"
	SpanKindCompare = "compare"
	SpanKindQuery   = "query"
)

// StartSuiteSpan starts a span for a suite run.
func StartSuiteSpan(ctx context.Context, suite, runID string, caseCount int) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "suite."+suite,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("treediff.span.kind", SpanKindSuite),
			attribute.String("suite.name", suite),
			attribute.String("suite.run_id", runID),
			attribute.Int("suite.case_count", caseCount),
		),
	)
}

// RecordSuiteResult records suite totals on a span.
func RecordSuiteResult(span trace.Span, passed, failed, skipped, errored int) {
	span.SetAttributes(
		attribute.Int("suite.passed", passed),
		attribute.Int("suite.failed", failed),
		attribute.Int("suite.skipped", skipped),
		attribute.Int("suite.errored", errored),
	)
	if failed > 0 || errored > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d failed, %d errored", failed, errored))
	}
}

// StartCaseSpan starts a span for a single fixture case.
func StartCaseSpan(ctx context.Context, suite, caseName string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "case."+caseName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("treediff.span.kind", SpanKindCase),
			attribute.String("suite.name", suite),
			attribute.String("case.name", caseName),
		),
	)
}

// RecordCaseResult records a case outcome on a span. Failed and errored
// cases set the span status to error.
func RecordCaseResult(span trace.Span, status string, mismatches int, err error) {
	span.SetAttributes(
		attribute.String("case.status", status),
		attribute.Int("case.mismatches", mismatches),
	)
	switch {
	case err != nil:
		RecordError(span, err)
	case mismatches > 0:
		span.SetStatus(codes.Error, fmt.Sprintf("%d mismatch(es)", mismatches))
	}
}

// StartCompareSpan starts a span around a single tree comparison.
func StartCompareSpan(ctx context.Context, policy treediff.Policy) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "compare",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("treediff.span.kind", SpanKindCompare),
			attribute.Float64("policy.absolute_epsilon", policy.AbsoluteEpsilon),
			attribute.Float64("policy.relative_epsilon", policy.RelativeEpsilon),
			attribute.String("policy.extra_keys", string(policy.ExtraKeys)),
			attribute.String("policy.array_order", string(policy.ArrayOrder)),
		),
	)
}

// RecordReport records comparison totals on a span. A report with
// mismatches sets the span status to error.
func RecordReport(span trace.Span, report *treediff.Report) {
	matches, mismatches := report.Counts()
	span.SetAttributes(
		attribute.Int("compare.matches", matches),
		attribute.Int("compare.mismatches", mismatches),
	)
	if mismatches > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d mismatch(es)", mismatches))
	}
}

// StartQuerySpan starts a span for a SQL query whose rows are compared.
func StartQuerySpan(ctx context.Context, driver string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "sql.query",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("treediff.span.kind", SpanKindQuery),
			attribute.String("db.system", driver),
		),
	)
}

// RecordRowCount records the number of rows a query returned.
func RecordRowCount(span trace.Span, rows int) {
	span.SetAttributes(attribute.Int("db.rows", rows))
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
