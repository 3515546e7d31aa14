package domain

import "context"

// ContractRepository defines the persistence contract for writing rent contracts.
type ContractRepository interface {
	Create(ctx context.Context, contract RentContract) error
	GetByID(ctx context.Context, id ContractID) (RentContract, error)
	Update(ctx context.Context, contract RentContract) error
}

// ContractQueryExecutor runs a ContractQuery against storage. It is the only
// thing the contract query layer needs from persistence.
type ContractQueryExecutor interface {
	// Find returns every matching contract in query order.
	Find(ctx context.Context, q ContractQuery) ([]RentContract, error)
	// FindOne returns the first matching contract; ok is false when none match.
	FindOne(ctx context.Context, q ContractQuery) (contract RentContract, ok bool, err error)
	// Count returns the number of matching contracts without loading them.
	Count(ctx context.Context, q ContractQuery) (int, error)
	// Project returns the distinct values of an identifier field over the
	// matching contracts, in ascending order.
	Project(ctx context.Context, q ContractQuery, field Field) ([]string, error)
}

// PortfolioRepository defines the persistence contract for portfolios.
type PortfolioRepository interface {
	CreatePortfolio(ctx context.Context, portfolio Portfolio) error
	GetPortfolio(ctx context.Context, id PortfolioID) (Portfolio, error)
	ListPortfolios(ctx context.Context) ([]Portfolio, error)
}

// PropertyRepository defines the persistence contract for properties.
type PropertyRepository interface {
	CreateProperty(ctx context.Context, property Property) error
	GetProperty(ctx context.Context, id PropertyID) (Property, error)
	// ListProperties returns the properties of one portfolio, or of every
	// portfolio when portfolioID is empty.
	ListProperties(ctx context.Context, portfolioID PortfolioID) ([]Property, error)
}

// PartyRepository defines the persistence contract for tenants and landlords.
type PartyRepository interface {
	CreateParty(ctx context.Context, party Party) error
	GetParty(ctx context.Context, id PartyID) (Party, error)
	// ListParties returns parties of the given kind, or all when kind is empty.
	ListParties(ctx context.Context, kind PartyKind) ([]Party, error)
}

// EventPublisher defines the contract for emitting contract events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event, contract RentContract) error
}

// TransitionValidator decides the outcome of a lifecycle event.
type TransitionValidator interface {
	Apply(ctx context.Context, current Status, event Event) (Status, error)
}
