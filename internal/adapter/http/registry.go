package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

// --- Portfolios ---

type CreatePortfolioInput struct {
	Body struct {
		Name string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
	}
}

type PortfolioOutput struct {
	Body PortfolioResponse
}

type GetPortfolioInput struct {
	ID string `path:"id" doc:"Portfolio ID"`
}

type ListPortfoliosOutput struct {
	Body []PortfolioResponse
}

// --- Properties ---

type CreatePropertyInput struct {
	Body struct {
		PortfolioID string `json:"portfolio_id" doc:"Owning portfolio"`
		Name        string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Kind        string `json:"kind" enum:"apartment,family_house,building,other" doc:"Property kind"`
		Address     string `json:"address,omitempty" maxLength:"500" doc:"Postal address"`
	}
}

type PropertyOutput struct {
	Body PropertyResponse
}

type GetPropertyInput struct {
	ID string `path:"id" doc:"Property ID"`
}

type ListPropertiesInput struct {
	ID string `path:"id" doc:"Portfolio ID"`
}

type ListPropertiesOutput struct {
	Body []PropertyResponse
}

// --- Parties ---

type CreatePartyInput struct {
	Body struct {
		Kind  string `json:"kind" enum:"tenant,landlord" doc:"Party role"`
		Name  string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Email string `json:"email,omitempty" maxLength:"255" doc:"Contact email"`
	}
}

type PartyOutput struct {
	Body PartyResponse
}

type GetPartyInput struct {
	ID string `path:"id" doc:"Party ID"`
}

type ListPartiesInput struct {
	Kind string `query:"kind" doc:"Filter by role (tenant or landlord)"`
}

type ListPartiesOutput struct {
	Body []PartyResponse
}

func registerRegistry(api huma.API, svc *app.RegistryService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-portfolio",
		Method:      http.MethodPost,
		Path:        "/api/v1/portfolios",
		Summary:     "Create a portfolio",
		Tags:        []string{"Portfolios"},
	}, func(ctx context.Context, input *CreatePortfolioInput) (*PortfolioOutput, error) {
		p, err := svc.CreatePortfolio(ctx, input.Body.Name)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &PortfolioOutput{Body: toPortfolioResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-portfolios",
		Method:      http.MethodGet,
		Path:        "/api/v1/portfolios",
		Summary:     "List portfolios",
		Tags:        []string{"Portfolios"},
	}, func(ctx context.Context, _ *struct{}) (*ListPortfoliosOutput, error) {
		portfolios, err := svc.ListPortfolios(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]PortfolioResponse, len(portfolios))
		for i, p := range portfolios {
			resp[i] = toPortfolioResponse(p)
		}
		return &ListPortfoliosOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-portfolio",
		Method:      http.MethodGet,
		Path:        "/api/v1/portfolios/{id}",
		Summary:     "Get a portfolio by ID",
		Tags:        []string{"Portfolios"},
	}, func(ctx context.Context, input *GetPortfolioInput) (*PortfolioOutput, error) {
		p, err := svc.GetPortfolio(ctx, domain.PortfolioID(input.ID))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &PortfolioOutput{Body: toPortfolioResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-portfolio-properties",
		Method:      http.MethodGet,
		Path:        "/api/v1/portfolios/{id}/properties",
		Summary:     "List the properties of a portfolio",
		Tags:        []string{"Properties"},
	}, func(ctx context.Context, input *ListPropertiesInput) (*ListPropertiesOutput, error) {
		properties, err := svc.ListProperties(ctx, domain.PortfolioID(input.ID))
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]PropertyResponse, len(properties))
		for i, p := range properties {
			resp[i] = toPropertyResponse(p)
		}
		return &ListPropertiesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-property",
		Method:      http.MethodPost,
		Path:        "/api/v1/properties",
		Summary:     "Create a property",
		Tags:        []string{"Properties"},
	}, func(ctx context.Context, input *CreatePropertyInput) (*PropertyOutput, error) {
		p, err := svc.CreateProperty(ctx,
			domain.PortfolioID(input.Body.PortfolioID),
			input.Body.Name,
			domain.PropertyKind(input.Body.Kind),
			input.Body.Address,
		)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &PropertyOutput{Body: toPropertyResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-property",
		Method:      http.MethodGet,
		Path:        "/api/v1/properties/{id}",
		Summary:     "Get a property by ID",
		Tags:        []string{"Properties"},
	}, func(ctx context.Context, input *GetPropertyInput) (*PropertyOutput, error) {
		p, err := svc.GetProperty(ctx, domain.PropertyID(input.ID))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &PropertyOutput{Body: toPropertyResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-party",
		Method:      http.MethodPost,
		Path:        "/api/v1/parties",
		Summary:     "Create a tenant or landlord",
		Tags:        []string{"Parties"},
	}, func(ctx context.Context, input *CreatePartyInput) (*PartyOutput, error) {
		p, err := svc.CreateParty(ctx, domain.PartyKind(input.Body.Kind), input.Body.Name, input.Body.Email)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &PartyOutput{Body: toPartyResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-parties",
		Method:      http.MethodGet,
		Path:        "/api/v1/parties",
		Summary:     "List parties",
		Tags:        []string{"Parties"},
	}, func(ctx context.Context, input *ListPartiesInput) (*ListPartiesOutput, error) {
		parties, err := svc.ListParties(ctx, domain.PartyKind(input.Kind))
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]PartyResponse, len(parties))
		for i, p := range parties {
			resp[i] = toPartyResponse(p)
		}
		return &ListPartiesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-party",
		Method:      http.MethodGet,
		Path:        "/api/v1/parties/{id}",
		Summary:     "Get a party by ID",
		Tags:        []string{"Parties"},
	}, func(ctx context.Context, input *GetPartyInput) (*PartyOutput, error) {
		p, err := svc.GetParty(ctx, domain.PartyID(input.ID))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &PartyOutput{Body: toPartyResponse(p)}, nil
	})
}
