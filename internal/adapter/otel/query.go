package otel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// TracingQueryExecutor wraps a domain.ContractQueryExecutor with a span per
// query, a query counter and a duration histogram.
type TracingQueryExecutor struct {
	next     domain.ContractQueryExecutor
	tracer   trace.Tracer
	queries  metric.Int64Counter
	duration metric.Float64Histogram
}

// Compile-time check: TracingQueryExecutor implements domain.ContractQueryExecutor.
var _ domain.ContractQueryExecutor = (*TracingQueryExecutor)(nil)

// NewTracingQueryExecutor creates an instrumented decorator around the given executor.
func NewTracingQueryExecutor(next domain.ContractQueryExecutor) (*TracingQueryExecutor, error) {
	meter := otel.Meter(tracerName)

	queries, err := meter.Int64Counter("rentiq.contract.queries",
		metric.WithDescription("Contract queries executed"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating query counter: %w", err)
	}

	duration, err := meter.Float64Histogram("rentiq.contract.query.duration",
		metric.WithDescription("Contract query latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating query duration histogram: %w", err)
	}

	return &TracingQueryExecutor{
		next:     next,
		tracer:   otel.Tracer(tracerName),
		queries:  queries,
		duration: duration,
	}, nil
}

func (e *TracingQueryExecutor) Find(ctx context.Context, q domain.ContractQuery) ([]domain.RentContract, error) {
	ctx, span, done := e.start(ctx, "find", q)
	defer span.End()

	contracts, err := e.next.Find(ctx, q)
	done(err)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(contracts)))
	}
	return contracts, err
}

func (e *TracingQueryExecutor) FindOne(ctx context.Context, q domain.ContractQuery) (domain.RentContract, bool, error) {
	ctx, span, done := e.start(ctx, "find_one", q)
	defer span.End()

	c, ok, err := e.next.FindOne(ctx, q)
	done(err)
	if err == nil {
		span.SetAttributes(attribute.Bool("result.found", ok))
	}
	return c, ok, err
}

func (e *TracingQueryExecutor) Count(ctx context.Context, q domain.ContractQuery) (int, error) {
	ctx, span, done := e.start(ctx, "count", q)
	defer span.End()

	n, err := e.next.Count(ctx, q)
	done(err)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", n))
	}
	return n, err
}

func (e *TracingQueryExecutor) Project(ctx context.Context, q domain.ContractQuery, field domain.Field) ([]string, error) {
	ctx, span, done := e.start(ctx, "project", q)
	defer span.End()
	span.SetAttributes(attribute.String("query.projection", string(field)))

	values, err := e.next.Project(ctx, q, field)
	done(err)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(values)))
	}
	return values, err
}

// start opens a span for op and returns a func that records the outcome
// on the span and the metrics.
func (e *TracingQueryExecutor) start(ctx context.Context, op string, q domain.ContractQuery) (context.Context, trace.Span, func(error)) {
	ctx, span := e.tracer.Start(ctx, "ContractQuery."+op,
		trace.WithAttributes(
			attribute.String("query.filters", describeFilters(q.Filters)),
			attribute.Int("query.sorts", len(q.Sorts)),
			attribute.Int("query.limit", q.Limit),
		),
	)
	began := time.Now()

	return ctx, span, func(err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		attrs := metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("outcome", outcome),
		)
		e.queries.Add(ctx, 1, attrs)
		e.duration.Record(ctx, time.Since(began).Seconds(), attrs)
		recordError(span, err)
	}
}

// describeFilters lists the filtered fields, e.g. "property_id,archived".
func describeFilters(filters []domain.Filter) string {
	names := make([]string, 0, len(filters))
	for _, f := range filters {
		switch f := f.(type) {
		case domain.EqualsFilter:
			names = append(names, string(f.Field))
		case domain.RangeFilter:
			names = append(names, string(f.Field))
		case domain.FlagFilter:
			names = append(names, string(f.Field))
		}
	}
	return strings.Join(names, ",")
}
