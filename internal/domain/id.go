package domain

import (
	"github.com/google/uuid"
)

// Each entity has its own identifier type so a property id cannot be
// passed where a tenant id is expected.
type (
	ContractID  string
	PropertyID  string
	PortfolioID string
	PartyID     string
)

// NewContractID returns a fresh random contract identifier.
func NewContractID() ContractID { return ContractID(uuid.NewString()) }

// NewPropertyID returns a fresh random property identifier.
func NewPropertyID() PropertyID { return PropertyID(uuid.NewString()) }

// NewPortfolioID returns a fresh random portfolio identifier.
func NewPortfolioID() PortfolioID { return PortfolioID(uuid.NewString()) }

// NewPartyID returns a fresh random party identifier.
func NewPartyID() PartyID { return PartyID(uuid.NewString()) }

// ValidateID checks that id is a canonical UUID string.
func ValidateID[T ~string](argument string, id T) error {
	parsed, err := uuid.Parse(string(id))
	if err != nil || parsed.String() != string(id) {
		return &PreconditionError{
			Argument: argument,
			Value:    string(id),
			Reason:   "not a valid identifier",
		}
	}
	return nil
}

// ValidateIDs checks every identifier of a scoping set.
func ValidateIDs[T ~string](argument string, ids []T) error {
	for _, id := range ids {
		if err := ValidateID(argument, id); err != nil {
			return err
		}
	}
	return nil
}

// Strings converts a typed identifier set to plain strings, dropping duplicates
// while preserving first-seen order.
func Strings[T ~string](ids []T) []string {
	seen := make(map[T]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, string(id))
	}
	return out
}
