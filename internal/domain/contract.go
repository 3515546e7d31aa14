package domain

import "time"

// Status represents the lifecycle state of a rent contract.
type Status string

const (
	StatusCurrent  Status = "current"
	StatusArchived Status = "archived"
)

// Event represents an action on a contract. Created is published but does not
// take part in any transition.
type Event string

const (
	EventCreated Event = "created"
	EventArchive Event = "archive"
	EventRestore Event = "restore"
)

// Transition defines a valid state change: an event moves a contract from Src to Dst.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// Transitions defines all valid state changes in the contract lifecycle.
// This is domain knowledge consumed by the FSM adapter.
var Transitions = []Transition{
	{Event: EventArchive, Src: StatusCurrent, Dst: StatusArchived},
	{Event: EventRestore, Src: StatusArchived, Dst: StatusCurrent},
}

// Validity is the period a contract is in force. A nil To means the contract
// is open-ended.
type Validity struct {
	From time.Time
	To   *time.Time
}

// Validate checks that From is set and not after To.
func (v Validity) Validate() error {
	if v.From.IsZero() {
		return &ValidityError{Reason: "valid from is required"}
	}
	if v.To != nil && v.To.Before(v.From) {
		return &ValidityError{Reason: "valid to is before valid from"}
	}
	return nil
}

// RentContract binds a tenant and a landlord to a property for a validity window.
// PortfolioID is denormalised from the property when the contract is read.
type RentContract struct {
	ID          ContractID
	PropertyID  PropertyID
	PortfolioID PortfolioID
	TenantID    PartyID
	LandlordID  PartyID
	ValidFrom   time.Time
	ValidTo     *time.Time
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewRentContract creates a current (not archived) contract.
func NewRentContract(id ContractID, property Property, tenantID, landlordID PartyID, validity Validity) RentContract {
	now := time.Now().UTC()
	return RentContract{
		ID:          id,
		PropertyID:  property.ID,
		PortfolioID: property.PortfolioID,
		TenantID:    tenantID,
		LandlordID:  landlordID,
		ValidFrom:   validity.From.UTC(),
		ValidTo:     utcPtr(validity.To),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Status derives the lifecycle state from the archived flag.
func (c RentContract) Status() Status {
	if c.Archived {
		return StatusArchived
	}
	return StatusCurrent
}

// WithStatus returns a copy of the contract in the given state.
func (c RentContract) WithStatus(s Status) RentContract {
	c.Archived = s == StatusArchived
	return c
}

// IsActiveAt reports whether t falls within [ValidFrom, ValidTo], both
// inclusive, and the contract is not archived.
func (c RentContract) IsActiveAt(t time.Time) bool {
	if c.Archived || c.ValidFrom.After(t) {
		return false
	}
	return c.ValidTo == nil || !c.ValidTo.Before(t)
}

// IsPastAt reports whether the contract ended strictly before t.
func (c RentContract) IsPastAt(t time.Time) bool {
	return c.ValidTo != nil && c.ValidTo.Before(t)
}

// IsFutureAt reports whether the contract starts strictly after t.
func (c RentContract) IsFutureAt(t time.Time) bool {
	return c.ValidFrom.After(t)
}

// AddMonths shifts t by n calendar months, normalising overflowing days the
// way time.AddDate does (Jan 31 + 1 month is Mar 2 or 3).
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
