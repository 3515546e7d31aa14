package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/rentiq/internal/domain"
)

type ListContractsOutput struct {
	Body []ContractResponse
}

type TenantContractsInput struct {
	ID     string `path:"id" doc:"Tenant ID"`
	Active bool   `query:"active" doc:"Only contracts active at the reference time"`
	At     string `query:"at" doc:"Reference time (RFC 3339); defaults to now"`
}

type LandlordContractsInput struct {
	ID string `path:"id" doc:"Landlord ID"`
}

type PropertyContractsInput struct {
	ID     string `path:"id" doc:"Property ID"`
	Window string `query:"window" enum:"all,active,past,future" default:"all" doc:"Time window relative to the reference time"`
	At     string `query:"at" doc:"Reference time (RFC 3339); defaults to now"`
}

type LatestContractInput struct {
	ID string `path:"id" doc:"Property ID"`
}

type CountContractsInput struct {
	ID string `path:"id" doc:"Property ID"`
	At string `query:"at" doc:"Reference time (RFC 3339); defaults to now"`
}

type CountContractsOutput struct {
	Body struct {
		Count int `json:"count" doc:"Number of active contracts"`
	}
}

type PropertySetContractsInput struct {
	Property string `query:"property" doc:"Comma-separated property IDs"`
	Window   string `query:"window" enum:"all,active,ending" default:"all" doc:"Time window relative to the reference time"`
	Months   int    `query:"months" minimum:"1" maximum:"120" default:"3" doc:"Months ahead for the ending window"`
	At       string `query:"at" doc:"Reference time (RFC 3339); defaults to now"`
}

type ActiveContractsInput struct {
	At string `query:"at" doc:"Reference time (RFC 3339); defaults to now"`
}

type PortfolioContractsInput struct {
	Portfolio string `query:"portfolio" doc:"Comma-separated portfolio IDs"`
}

type TenantIDsInput struct {
	Property string `query:"property" doc:"Comma-separated property IDs"`
	Current  bool   `query:"current" doc:"Only tenants of contracts active at the reference time"`
	At       string `query:"at" doc:"Reference time (RFC 3339); defaults to now"`
}

type TenantIDsOutput struct {
	Body struct {
		TenantIDs []string `json:"tenant_ids" doc:"Distinct tenant IDs, ascending"`
	}
}

func registerQueries(api huma.API, svc Services) {
	window := svc.Window

	contractsAt := func(at time.Time) func([]domain.RentContract, error) (*ListContractsOutput, error) {
		return func(found []domain.RentContract, err error) (*ListContractsOutput, error) {
			if err != nil {
				return nil, toHumaError(err)
			}
			return &ListContractsOutput{Body: toContractResponses(found, svc.Lifecycle, at)}, nil
		}
	}
	contracts := func(found []domain.RentContract, err error) (*ListContractsOutput, error) {
		return contractsAt(svc.Clock().UTC())(found, err)
	}

	huma.Register(api, huma.Operation{
		OperationID: "list-tenant-contracts",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{id}/contracts",
		Summary:     "List the contracts of a tenant",
		Tags:        []string{"Queries"},
	}, func(ctx context.Context, input *TenantContractsInput) (*ListContractsOutput, error) {
		id := domain.PartyID(input.ID)
		if !input.Active {
			return contracts(window.ByTenant(ctx, id))
		}
		now, err := referenceTime(input.At, svc.Clock)
		if err != nil {
			return nil, toHumaError(err)
		}
		return contractsAt(now)(window.ActiveByTenant(ctx, now, id))
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-landlord-contracts",
		Method:      http.MethodGet,
		Path:        "/api/v1/landlords/{id}/contracts",
		Summary:     "List the contracts of a landlord",
		Tags:        []string{"Queries"},
	}, func(ctx context.Context, input *LandlordContractsInput) (*ListContractsOutput, error) {
		return contracts(window.ByLandlord(ctx, domain.PartyID(input.ID)))
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-property-contracts",
		Method:      http.MethodGet,
		Path:        "/api/v1/properties/{id}/contracts",
		Summary:     "List the contracts of a property within a time window",
		Tags:        []string{"Queries"},
	}, func(ctx context.Context, input *PropertyContractsInput) (*ListContractsOutput, error) {
		id := domain.PropertyID(input.ID)
		if input.Window == "all" || input.Window == "" {
			return contracts(window.ByProperties(ctx, []domain.PropertyID{id}))
		}
		now, err := referenceTime(input.At, svc.Clock)
		if err != nil {
			return nil, toHumaError(err)
		}
		switch input.Window {
		case "active":
			return contractsAt(now)(window.ActiveByProperty(ctx, now, id))
		case "past":
			return contractsAt(now)(window.PastByProperty(ctx, now, id))
		default:
			return contractsAt(now)(window.FutureInProperty(ctx, now, id))
		}
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-latest-property-contract",
		Method:      http.MethodGet,
		Path:        "/api/v1/properties/{id}/contracts/latest",
		Summary:     "Get the contract of a property with the latest end",
		Tags:        []string{"Queries"},
	}, func(ctx context.Context, input *LatestContractInput) (*ContractOutput, error) {
		c, ok, err := window.LatestByProperty(ctx, domain.PropertyID(input.ID))
		if err != nil {
			return nil, toHumaError(err)
		}
		if !ok {
			return nil, huma.Error404NotFound(domain.ErrContractNotFound.Error())
		}
		return &ContractOutput{Body: toContractResponse(c, svc.Lifecycle, svc.Clock())}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "count-active-property-contracts",
		Method:      http.MethodGet,
		Path:        "/api/v1/properties/{id}/contracts/count",
		Summary:     "Count the active contracts of a property",
		Tags:        []string{"Queries"},
	}, func(ctx context.Context, input *CountContractsInput) (*CountContractsOutput, error) {
		now, err := referenceTime(input.At, svc.Clock)
		if err != nil {
			return nil, toHumaError(err)
		}
		n, err := window.CountActiveByProperty(ctx, now, domain.PropertyID(input.ID))
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &CountContractsOutput{}
		out.Body.Count = n
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-contracts",
		Method:      http.MethodGet,
		Path:        "/api/v1/contracts",
		Summary:     "List the contracts of a set of properties within a time window",
		Tags:        []string{"Queries"},
	}, func(ctx context.Context, input *PropertySetContractsInput) (*ListContractsOutput, error) {
		ids := splitIDs[domain.PropertyID](input.Property)
		if input.Window == "all" || input.Window == "" {
			return contracts(window.ByProperties(ctx, ids))
		}
		now, err := referenceTime(input.At, svc.Clock)
		if err != nil {
			return nil, toHumaError(err)
		}
		if input.Window == "active" {
			return contractsAt(now)(window.ActiveByProperties(ctx, now, ids))
		}
		return contractsAt(now)(window.EndingInProperties(ctx, now, ids, input.Months))
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-active-contracts",
		Method:      http.MethodGet,
		Path:        "/api/v1/contracts/active",
		Summary:     "List every active contract",
		Tags:        []string{"Queries"},
	}, func(ctx context.Context, input *ActiveContractsInput) (*ListContractsOutput, error) {
		now, err := referenceTime(input.At, svc.Clock)
		if err != nil {
			return nil, toHumaError(err)
		}
		return contractsAt(now)(window.AllActive(ctx, now))
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-portfolio-contracts",
		Method:      http.MethodGet,
		Path:        "/api/v1/contracts/by-portfolio",
		Summary:     "List the contracts of a set of portfolios",
		Tags:        []string{"Queries"},
	}, func(ctx context.Context, input *PortfolioContractsInput) (*ListContractsOutput, error) {
		return contracts(window.ByPortfolios(ctx, splitIDs[domain.PortfolioID](input.Portfolio)))
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tenant-ids",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenant-ids",
		Summary:     "List the distinct tenants of a set of properties",
		Tags:        []string{"Queries"},
	}, func(ctx context.Context, input *TenantIDsInput) (*TenantIDsOutput, error) {
		ids := splitIDs[domain.PropertyID](input.Property)

		var (
			tenants []domain.PartyID
			err     error
		)
		if input.Current {
			now, tErr := referenceTime(input.At, svc.Clock)
			if tErr != nil {
				return nil, toHumaError(tErr)
			}
			tenants, err = window.CurrentTenantIDsInProperties(ctx, now, ids)
		} else {
			tenants, err = window.TenantIDsInProperties(ctx, ids)
		}
		if err != nil {
			return nil, toHumaError(err)
		}

		out := &TenantIDsOutput{}
		out.Body.TenantIDs = make([]string, len(tenants))
		for i, id := range tenants {
			out.Body.TenantIDs[i] = string(id)
		}
		return out, nil
	})
}
