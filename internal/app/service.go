package app

import (
	"context"
	"fmt"
	"time"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// CreateContractInput carries the data needed to open a rent contract.
type CreateContractInput struct {
	PropertyID domain.PropertyID
	TenantID   domain.PartyID
	LandlordID domain.PartyID
	Validity   domain.Validity
}

// ContractService orchestrates the rent contract lifecycle.
type ContractService struct {
	contracts  domain.ContractRepository
	properties domain.PropertyRepository
	parties    domain.PartyRepository
	window     *ContractWindowQuery
	publisher  domain.EventPublisher
	validator  domain.TransitionValidator
}

// NewContractService creates a service with the given adapters.
func NewContractService(
	contracts domain.ContractRepository,
	properties domain.PropertyRepository,
	parties domain.PartyRepository,
	window *ContractWindowQuery,
	publisher domain.EventPublisher,
	validator domain.TransitionValidator,
) *ContractService {
	return &ContractService{
		contracts:  contracts,
		properties: properties,
		parties:    parties,
		window:     window,
		publisher:  publisher,
		validator:  validator,
	}
}

// Create validates and persists a new contract and publishes a creation event.
func (s *ContractService) Create(ctx context.Context, in CreateContractInput) (domain.RentContract, error) {
	if err := domain.ValidateID("property id", in.PropertyID); err != nil {
		return domain.RentContract{}, err
	}
	if err := domain.ValidateID("tenant id", in.TenantID); err != nil {
		return domain.RentContract{}, err
	}
	if err := domain.ValidateID("landlord id", in.LandlordID); err != nil {
		return domain.RentContract{}, err
	}
	if err := in.Validity.Validate(); err != nil {
		return domain.RentContract{}, err
	}

	property, err := s.properties.GetProperty(ctx, in.PropertyID)
	if err != nil {
		return domain.RentContract{}, err
	}
	if err := s.requireParty(ctx, in.TenantID, domain.PartyTenant); err != nil {
		return domain.RentContract{}, err
	}
	if err := s.requireParty(ctx, in.LandlordID, domain.PartyLandlord); err != nil {
		return domain.RentContract{}, err
	}

	contract := domain.NewRentContract(domain.NewContractID(), property, in.TenantID, in.LandlordID, in.Validity)

	if err := s.contracts.Create(ctx, contract); err != nil {
		return domain.RentContract{}, fmt.Errorf("creating contract: %w", err)
	}

	if err := s.publisher.Publish(ctx, domain.EventCreated, contract); err != nil {
		return domain.RentContract{}, fmt.Errorf("publishing creation event: %w", err)
	}

	return contract, nil
}

// Get returns a contract by its identifier.
func (s *ContractService) Get(ctx context.Context, id domain.ContractID) (domain.RentContract, error) {
	if err := domain.ValidateID("contract id", id); err != nil {
		return domain.RentContract{}, err
	}
	return s.contracts.GetByID(ctx, id)
}

// Transition applies a lifecycle event (archive, restore) to a contract.
func (s *ContractService) Transition(ctx context.Context, id domain.ContractID, event domain.Event) (domain.RentContract, error) {
	contract, err := s.Get(ctx, id)
	if err != nil {
		return domain.RentContract{}, err
	}

	status, err := s.validator.Apply(ctx, contract.Status(), event)
	if err != nil {
		return domain.RentContract{}, err
	}

	contract = contract.WithStatus(status)
	contract.UpdatedAt = time.Now().UTC()

	if err := s.contracts.Update(ctx, contract); err != nil {
		return domain.RentContract{}, fmt.Errorf("updating contract: %w", err)
	}

	if err := s.publisher.Publish(ctx, event, contract); err != nil {
		return domain.RentContract{}, fmt.Errorf("publishing event %q: %w", event, err)
	}

	return contract, nil
}

// ScanEnding returns the contracts of every property that end within
// monthsAhead months of now.
func (s *ContractService) ScanEnding(ctx context.Context, now time.Time, monthsAhead int) ([]domain.RentContract, error) {
	properties, err := s.properties.ListProperties(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}

	ids := make([]domain.PropertyID, len(properties))
	for i, p := range properties {
		ids[i] = p.ID
	}

	return s.window.EndingInProperties(ctx, now, ids, monthsAhead)
}

func (s *ContractService) requireParty(ctx context.Context, id domain.PartyID, kind domain.PartyKind) error {
	party, err := s.parties.GetParty(ctx, id)
	if err != nil {
		return err
	}
	if party.Kind != kind {
		return &domain.PartyKindError{ID: id, Want: kind, Got: party.Kind}
	}
	return nil
}
