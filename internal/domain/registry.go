package domain

import "time"

// Portfolio groups the properties managed for one owner.
type Portfolio struct {
	ID        PortfolioID
	Name      string
	CreatedAt time.Time
}

// NewPortfolio creates a portfolio stamped with the current time.
func NewPortfolio(id PortfolioID, name string) Portfolio {
	return Portfolio{ID: id, Name: name, CreatedAt: time.Now().UTC()}
}

// PropertyKind classifies a property.
type PropertyKind string

const (
	PropertyApartment   PropertyKind = "apartment"
	PropertyFamilyHouse PropertyKind = "family_house"
	PropertyBuilding    PropertyKind = "building"
	PropertyOther       PropertyKind = "other"
)

// Valid reports whether k is one of the known property kinds.
func (k PropertyKind) Valid() bool {
	switch k {
	case PropertyApartment, PropertyFamilyHouse, PropertyBuilding, PropertyOther:
		return true
	}
	return false
}

// Property is a rentable unit owned through a portfolio.
type Property struct {
	ID          PropertyID
	PortfolioID PortfolioID
	Name        string
	Kind        PropertyKind
	Address     string
	CreatedAt   time.Time
}

// NewProperty creates a property stamped with the current time.
func NewProperty(id PropertyID, portfolioID PortfolioID, name string, kind PropertyKind, address string) Property {
	return Property{
		ID:          id,
		PortfolioID: portfolioID,
		Name:        name,
		Kind:        kind,
		Address:     address,
		CreatedAt:   time.Now().UTC(),
	}
}

// PartyKind is the role a party plays in contracts.
type PartyKind string

const (
	PartyTenant   PartyKind = "tenant"
	PartyLandlord PartyKind = "landlord"
)

// Valid reports whether k is a known party kind.
func (k PartyKind) Valid() bool {
	return k == PartyTenant || k == PartyLandlord
}

// Party is a person or company that rents (tenant) or lets (landlord).
type Party struct {
	ID        PartyID
	Kind      PartyKind
	Name      string
	Email     string
	CreatedAt time.Time
}

// NewParty creates a party stamped with the current time.
func NewParty(id PartyID, kind PartyKind, name, email string) Party {
	return Party{ID: id, Kind: kind, Name: name, Email: email, CreatedAt: time.Now().UTC()}
}
