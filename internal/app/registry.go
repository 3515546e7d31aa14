package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// RegistryService manages the portfolios, properties and parties that
// contracts refer to.
type RegistryService struct {
	portfolios domain.PortfolioRepository
	properties domain.PropertyRepository
	parties    domain.PartyRepository
}

// NewRegistryService creates a service with the given adapters.
func NewRegistryService(portfolios domain.PortfolioRepository, properties domain.PropertyRepository, parties domain.PartyRepository) *RegistryService {
	return &RegistryService{
		portfolios: portfolios,
		properties: properties,
		parties:    parties,
	}
}

func (s *RegistryService) CreatePortfolio(ctx context.Context, name string) (domain.Portfolio, error) {
	portfolio := domain.NewPortfolio(domain.NewPortfolioID(), name)
	if err := s.portfolios.CreatePortfolio(ctx, portfolio); err != nil {
		return domain.Portfolio{}, fmt.Errorf("creating portfolio: %w", err)
	}
	return portfolio, nil
}

func (s *RegistryService) GetPortfolio(ctx context.Context, id domain.PortfolioID) (domain.Portfolio, error) {
	if err := domain.ValidateID("portfolio id", id); err != nil {
		return domain.Portfolio{}, err
	}
	return s.portfolios.GetPortfolio(ctx, id)
}

func (s *RegistryService) ListPortfolios(ctx context.Context) ([]domain.Portfolio, error) {
	return s.portfolios.ListPortfolios(ctx)
}

// CreateProperty adds a property to an existing portfolio.
func (s *RegistryService) CreateProperty(ctx context.Context, portfolioID domain.PortfolioID, name string, kind domain.PropertyKind, address string) (domain.Property, error) {
	if !kind.Valid() {
		return domain.Property{}, &domain.PropertyKindError{Kind: kind}
	}
	if _, err := s.GetPortfolio(ctx, portfolioID); err != nil {
		return domain.Property{}, err
	}

	property := domain.NewProperty(domain.NewPropertyID(), portfolioID, name, kind, address)
	if err := s.properties.CreateProperty(ctx, property); err != nil {
		return domain.Property{}, fmt.Errorf("creating property: %w", err)
	}
	return property, nil
}

func (s *RegistryService) GetProperty(ctx context.Context, id domain.PropertyID) (domain.Property, error) {
	if err := domain.ValidateID("property id", id); err != nil {
		return domain.Property{}, err
	}
	return s.properties.GetProperty(ctx, id)
}

// ListProperties returns the properties of a portfolio.
func (s *RegistryService) ListProperties(ctx context.Context, portfolioID domain.PortfolioID) ([]domain.Property, error) {
	if _, err := s.GetPortfolio(ctx, portfolioID); err != nil {
		return nil, err
	}
	return s.properties.ListProperties(ctx, portfolioID)
}

func (s *RegistryService) CreateParty(ctx context.Context, kind domain.PartyKind, name, email string) (domain.Party, error) {
	if !kind.Valid() {
		return domain.Party{}, &domain.PreconditionError{Argument: "party kind", Value: string(kind), Reason: "must be tenant or landlord"}
	}

	party := domain.NewParty(domain.NewPartyID(), kind, name, email)
	if err := s.parties.CreateParty(ctx, party); err != nil {
		return domain.Party{}, fmt.Errorf("creating party: %w", err)
	}
	return party, nil
}

func (s *RegistryService) GetParty(ctx context.Context, id domain.PartyID) (domain.Party, error) {
	if err := domain.ValidateID("party id", id); err != nil {
		return domain.Party{}, err
	}
	return s.parties.GetParty(ctx, id)
}

// ListParties returns parties of one kind, or all parties when kind is empty.
func (s *RegistryService) ListParties(ctx context.Context, kind domain.PartyKind) ([]domain.Party, error) {
	if kind != "" && !kind.Valid() {
		return nil, &domain.PreconditionError{Argument: "party kind", Value: string(kind), Reason: "must be tenant or landlord"}
	}
	return s.parties.ListParties(ctx, kind)
}
