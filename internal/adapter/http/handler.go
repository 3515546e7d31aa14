package http

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

// Lifecycle reports which lifecycle events a contract status accepts.
type Lifecycle interface {
	Available(current domain.Status) []domain.Event
}

// ScheduleScan enqueues an asynchronous ending-soon scan.
type ScheduleScan func(ctx context.Context, months int) error

// Services bundles what the API exposes. Lifecycle, Scans and Clock are optional.
type Services struct {
	Registry  *app.RegistryService
	Contracts *app.ContractService
	Window    *app.ContractWindowQuery
	Lifecycle Lifecycle
	Scans     ScheduleScan
	Clock     func() time.Time
}

// Register adds every rentiq API route to the Huma API.
func Register(api huma.API, svc Services) {
	if svc.Clock == nil {
		svc.Clock = time.Now
	}

	registerRegistry(api, svc.Registry)
	registerContracts(api, svc)
	registerQueries(api, svc)
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	for _, notFound := range []error{
		domain.ErrContractNotFound,
		domain.ErrPropertyNotFound,
		domain.ErrPortfolioNotFound,
		domain.ErrPartyNotFound,
	} {
		if errors.Is(err, notFound) {
			return huma.Error404NotFound(notFound.Error())
		}
	}

	var (
		preErr      *domain.PreconditionError
		validityErr *domain.ValidityError
		partyErr    *domain.PartyKindError
		kindErr     *domain.PropertyKindError
		trErr       *domain.TransitionError
	)
	switch {
	case errors.As(err, &preErr):
		return huma.Error422UnprocessableEntity(preErr.Error())
	case errors.As(err, &validityErr):
		return huma.Error422UnprocessableEntity(validityErr.Error())
	case errors.As(err, &partyErr):
		return huma.Error422UnprocessableEntity(partyErr.Error())
	case errors.As(err, &kindErr):
		return huma.Error422UnprocessableEntity(kindErr.Error())
	case errors.As(err, &trErr):
		return huma.Error422UnprocessableEntity(trErr.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}

// referenceTime parses the optional "at" parameter (RFC 3339), defaulting to
// the clock. The result is in UTC.
func referenceTime(at string, clock func() time.Time) (time.Time, error) {
	if at == "" {
		return clock().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, &domain.PreconditionError{Argument: "at", Value: at, Reason: "must be an RFC 3339 timestamp"}
	}
	return t.UTC(), nil
}

// splitIDs turns a comma-separated parameter into identifiers, skipping blanks.
func splitIDs[T ~string](param string) []T {
	var ids []T
	for _, part := range strings.Split(param, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, T(part))
		}
	}
	return ids
}
