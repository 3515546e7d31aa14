package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/rentiq/internal/domain"
)

const tracerName = "github.com/neomorfeo/rentiq/internal/adapter/otel"

// TracingContractRepository wraps a domain.ContractRepository with
// OpenTelemetry tracing. Each method creates a span and records errors.
type TracingContractRepository struct {
	next   domain.ContractRepository
	tracer trace.Tracer
}

// Compile-time check: TracingContractRepository implements domain.ContractRepository.
var _ domain.ContractRepository = (*TracingContractRepository)(nil)

// NewTracingContractRepository creates a tracing decorator around the given repository.
func NewTracingContractRepository(next domain.ContractRepository) *TracingContractRepository {
	return &TracingContractRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingContractRepository) Create(ctx context.Context, c domain.RentContract) error {
	ctx, span := r.tracer.Start(ctx, "ContractRepository.Create",
		trace.WithAttributes(
			attribute.String("contract.id", string(c.ID)),
			attribute.String("property.id", string(c.PropertyID)),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, c)
	recordError(span, err)
	return err
}

func (r *TracingContractRepository) GetByID(ctx context.Context, id domain.ContractID) (domain.RentContract, error) {
	ctx, span := r.tracer.Start(ctx, "ContractRepository.GetByID",
		trace.WithAttributes(attribute.String("contract.id", string(id))),
	)
	defer span.End()

	c, err := r.next.GetByID(ctx, id)
	recordError(span, err)
	return c, err
}

func (r *TracingContractRepository) Update(ctx context.Context, c domain.RentContract) error {
	ctx, span := r.tracer.Start(ctx, "ContractRepository.Update",
		trace.WithAttributes(
			attribute.String("contract.id", string(c.ID)),
			attribute.String("contract.status", string(c.Status())),
		),
	)
	defer span.End()

	err := r.next.Update(ctx, c)
	recordError(span, err)
	return err
}

func recordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
