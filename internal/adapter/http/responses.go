package http

import (
	"time"

	"github.com/neomorfeo/rentiq/internal/domain"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// PortfolioResponse is the API representation of a portfolio.
type PortfolioResponse struct {
	ID        string `json:"id" doc:"Unique identifier"`
	Name      string `json:"name" doc:"Display name"`
	CreatedAt string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

func toPortfolioResponse(p domain.Portfolio) PortfolioResponse {
	return PortfolioResponse{ID: string(p.ID), Name: p.Name, CreatedAt: formatTime(p.CreatedAt)}
}

// PropertyResponse is the API representation of a property.
type PropertyResponse struct {
	ID          string `json:"id" doc:"Unique identifier"`
	PortfolioID string `json:"portfolio_id" doc:"Owning portfolio"`
	Name        string `json:"name" doc:"Display name"`
	Kind        string `json:"kind" doc:"Property kind"`
	Address     string `json:"address,omitempty" doc:"Postal address"`
	CreatedAt   string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

func toPropertyResponse(p domain.Property) PropertyResponse {
	return PropertyResponse{
		ID:          string(p.ID),
		PortfolioID: string(p.PortfolioID),
		Name:        p.Name,
		Kind:        string(p.Kind),
		Address:     p.Address,
		CreatedAt:   formatTime(p.CreatedAt),
	}
}

// PartyResponse is the API representation of a tenant or landlord.
type PartyResponse struct {
	ID        string `json:"id" doc:"Unique identifier"`
	Kind      string `json:"kind" doc:"tenant or landlord"`
	Name      string `json:"name" doc:"Display name"`
	Email     string `json:"email,omitempty" doc:"Contact email"`
	CreatedAt string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

func toPartyResponse(p domain.Party) PartyResponse {
	return PartyResponse{
		ID:        string(p.ID),
		Kind:      string(p.Kind),
		Name:      p.Name,
		Email:     p.Email,
		CreatedAt: formatTime(p.CreatedAt),
	}
}

// ContractResponse is the API representation of a rent contract.
type ContractResponse struct {
	ID              string   `json:"id" doc:"Unique identifier"`
	PropertyID      string   `json:"property_id" doc:"Rented property"`
	PortfolioID     string   `json:"portfolio_id" doc:"Portfolio of the property"`
	TenantID        string   `json:"tenant_id" doc:"Tenant party"`
	LandlordID      string   `json:"landlord_id" doc:"Landlord party"`
	ValidFrom       string   `json:"valid_from" doc:"Start of validity (ISO 8601)"`
	ValidTo         *string  `json:"valid_to,omitempty" doc:"End of validity (ISO 8601); absent when open-ended"`
	Status          string   `json:"status" doc:"Lifecycle state"`
	Active          bool     `json:"active" doc:"Running and not archived at the reference time"`
	Past            bool     `json:"past" doc:"Ended before the reference time"`
	Future          bool     `json:"future" doc:"Starts after the reference time"`
	AvailableEvents []string `json:"available_events,omitempty" doc:"Lifecycle events accepted in the current state"`
	CreatedAt       string   `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt       string   `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

// toContractResponse renders c with its window flags evaluated at the
// reference time at.
func toContractResponse(c domain.RentContract, lifecycle Lifecycle, at time.Time) ContractResponse {
	resp := ContractResponse{
		ID:          string(c.ID),
		PropertyID:  string(c.PropertyID),
		PortfolioID: string(c.PortfolioID),
		TenantID:    string(c.TenantID),
		LandlordID:  string(c.LandlordID),
		ValidFrom:   formatTime(c.ValidFrom),
		Status:      string(c.Status()),
		Active:      c.IsActiveAt(at),
		Past:        c.IsPastAt(at),
		Future:      c.IsFutureAt(at),
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
	if c.ValidTo != nil {
		to := formatTime(*c.ValidTo)
		resp.ValidTo = &to
	}
	if lifecycle != nil {
		for _, e := range lifecycle.Available(c.Status()) {
			resp.AvailableEvents = append(resp.AvailableEvents, string(e))
		}
	}
	return resp
}

func toContractResponses(contracts []domain.RentContract, lifecycle Lifecycle, at time.Time) []ContractResponse {
	resp := make([]ContractResponse, len(contracts))
	for i, c := range contracts {
		resp[i] = toContractResponse(c, lifecycle, at)
	}
	return resp
}
