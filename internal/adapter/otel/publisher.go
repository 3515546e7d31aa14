package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// TracingPublisher wraps a domain.EventPublisher with OpenTelemetry tracing.
type TracingPublisher struct {
	next   domain.EventPublisher
	tracer trace.Tracer
}

// Compile-time check: TracingPublisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*TracingPublisher)(nil)

// NewTracingPublisher creates a tracing decorator around the given publisher.
func NewTracingPublisher(next domain.EventPublisher) *TracingPublisher {
	return &TracingPublisher{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

// Publish traces the hand-off of a contract event to the next publisher.
func (p *TracingPublisher) Publish(ctx context.Context, event domain.Event, c domain.RentContract) error {
	ctx, span := p.tracer.Start(ctx, "EventPublisher.Publish",
		trace.WithAttributes(
			attribute.String("event.type", string(event)),
			attribute.String("contract.id", string(c.ID)),
			attribute.String("contract.status", string(c.Status())),
			attribute.String("property.id", string(c.PropertyID)),
			attribute.String("portfolio.id", string(c.PortfolioID)),
		),
	)
	defer span.End()

	err := p.next.Publish(ctx, event, c)
	recordError(span, err)
	return err
}
