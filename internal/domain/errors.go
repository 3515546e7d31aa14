package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrContractNotFound  = errors.New("contract not found")
	ErrPropertyNotFound  = errors.New("property not found")
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrPartyNotFound     = errors.New("party not found")
)

// PreconditionError is returned when a caller supplies malformed input.
// It is raised before any storage access.
type PreconditionError struct {
	Argument string
	Value    string
	Reason   string
}

func (e *PreconditionError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Argument, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Argument, e.Value, e.Reason)
}

// ValidityError is returned when a contract validity window is incomplete or
// out of order.
type ValidityError struct {
	Reason string
}

func (e *ValidityError) Error() string {
	return "invalid validity window: " + e.Reason
}

// PartyKindError is returned when a party is used in a role it does not have,
// e.g. a landlord referenced as the tenant of a contract.
type PartyKindError struct {
	ID   PartyID
	Want PartyKind
	Got  PartyKind
}

func (e *PartyKindError) Error() string {
	return fmt.Sprintf("party %q is a %s, want %s", e.ID, e.Got, e.Want)
}

// PropertyKindError is returned for an unknown property kind.
type PropertyKindError struct {
	Kind PropertyKind
}

func (e *PropertyKindError) Error() string {
	return fmt.Sprintf("unknown property kind %q", e.Kind)
}

// TransitionError is returned when a lifecycle transition is not allowed.
type TransitionError struct {
	Event   Event
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}
