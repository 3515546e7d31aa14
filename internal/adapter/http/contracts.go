package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

type CreateContractInput struct {
	Body struct {
		PropertyID string     `json:"property_id" doc:"Rented property"`
		TenantID   string     `json:"tenant_id" doc:"Tenant party"`
		LandlordID string     `json:"landlord_id" doc:"Landlord party"`
		ValidFrom  time.Time  `json:"valid_from" doc:"Start of validity (ISO 8601)"`
		ValidTo    *time.Time `json:"valid_to,omitempty" required:"false" doc:"End of validity (ISO 8601); omit for an open-ended contract"`
	}
}

type ContractOutput struct {
	Body ContractResponse
}

type GetContractInput struct {
	ID string `path:"id" doc:"Contract ID"`
}

type TransitionContractInput struct {
	ID   string `path:"id" doc:"Contract ID"`
	Body struct {
		Event string `json:"event" enum:"archive,restore" doc:"Lifecycle event to apply"`
	}
}

type ScheduleScanInput struct {
	Body struct {
		Months int `json:"months" minimum:"1" maximum:"120" doc:"Months ahead to look for ending contracts"`
	}
}

type ScheduleScanOutput struct {
	Status int
}

func registerContracts(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "create-contract",
		Method:      http.MethodPost,
		Path:        "/api/v1/contracts",
		Summary:     "Create a rent contract",
		Tags:        []string{"Contracts"},
	}, func(ctx context.Context, input *CreateContractInput) (*ContractOutput, error) {
		c, err := svc.Contracts.Create(ctx, app.CreateContractInput{
			PropertyID: domain.PropertyID(input.Body.PropertyID),
			TenantID:   domain.PartyID(input.Body.TenantID),
			LandlordID: domain.PartyID(input.Body.LandlordID),
			Validity:   domain.Validity{From: input.Body.ValidFrom, To: input.Body.ValidTo},
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ContractOutput{Body: toContractResponse(c, svc.Lifecycle, svc.Clock())}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-contract",
		Method:      http.MethodGet,
		Path:        "/api/v1/contracts/{id}",
		Summary:     "Get a rent contract by ID",
		Tags:        []string{"Contracts"},
	}, func(ctx context.Context, input *GetContractInput) (*ContractOutput, error) {
		c, err := svc.Contracts.Get(ctx, domain.ContractID(input.ID))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ContractOutput{Body: toContractResponse(c, svc.Lifecycle, svc.Clock())}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-contract",
		Method:      http.MethodPost,
		Path:        "/api/v1/contracts/{id}/events",
		Summary:     "Apply a lifecycle event to a contract",
		Tags:        []string{"Contracts"},
	}, func(ctx context.Context, input *TransitionContractInput) (*ContractOutput, error) {
		c, err := svc.Contracts.Transition(ctx, domain.ContractID(input.ID), domain.Event(input.Body.Event))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ContractOutput{Body: toContractResponse(c, svc.Lifecycle, svc.Clock())}, nil
	})

	if svc.Scans == nil {
		return
	}

	huma.Register(api, huma.Operation{
		OperationID:   "schedule-ending-scan",
		Method:        http.MethodPost,
		Path:          "/api/v1/scans/ending",
		Summary:       "Schedule a scan for contracts ending soon",
		Tags:          []string{"Contracts"},
		DefaultStatus: http.StatusAccepted,
	}, func(ctx context.Context, input *ScheduleScanInput) (*ScheduleScanOutput, error) {
		if err := svc.Scans(ctx, input.Body.Months); err != nil {
			return nil, toHumaError(err)
		}
		return &ScheduleScanOutput{Status: http.StatusAccepted}, nil
	})
}
