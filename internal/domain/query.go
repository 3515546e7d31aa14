package domain

import (
	"slices"
	"sort"
	"strings"
	"time"
)

// Field names a queryable attribute of a rent contract.
type Field string

const (
	FieldID        Field = "id"
	FieldProperty  Field = "property_id"
	FieldPortfolio Field = "portfolio_id"
	FieldTenant    Field = "tenant_id"
	FieldLandlord  Field = "landlord_id"
	FieldValidFrom Field = "valid_from"
	FieldValidTo   Field = "valid_to"
	FieldArchived  Field = "archived"
)

// IsIdentifier reports whether f holds an identifier.
func (f Field) IsIdentifier() bool {
	switch f {
	case FieldID, FieldProperty, FieldPortfolio, FieldTenant, FieldLandlord:
		return true
	}
	return false
}

// IsTime reports whether f holds a timestamp.
func (f Field) IsTime() bool {
	return f == FieldValidFrom || f == FieldValidTo
}

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Bound is one end of a time range.
type Bound struct {
	At        time.Time
	Inclusive bool
}

// Filter is a single predicate of a ContractQuery. Storage adapters translate
// each concrete filter type; Matches evaluates it in memory.
type Filter interface {
	Matches(c RentContract) bool
	filter()
}

// EqualsFilter matches when the identifier field equals one of Values.
// An empty Values set matches nothing.
type EqualsFilter struct {
	Field  Field
	Values []string
}

// RangeFilter matches when the time field lies within the optional bounds.
// With OrUnset, a contract whose field is unset also matches; otherwise an
// unset field never matches.
type RangeFilter struct {
	Field   Field
	Lower   *Bound
	Upper   *Bound
	OrUnset bool
}

// FlagFilter matches when the boolean field equals Value.
type FlagFilter struct {
	Field Field
	Value bool
}

func (EqualsFilter) filter() {}
func (RangeFilter) filter()  {}
func (FlagFilter) filter()   {}

func (f EqualsFilter) Matches(c RentContract) bool {
	return slices.Contains(f.Values, c.identifier(f.Field))
}

func (f RangeFilter) Matches(c RentContract) bool {
	v := c.timestamp(f.Field)
	if v == nil {
		return f.OrUnset
	}
	if f.Lower != nil {
		if v.Before(f.Lower.At) || (!f.Lower.Inclusive && v.Equal(f.Lower.At)) {
			return false
		}
	}
	if f.Upper != nil {
		if v.After(f.Upper.At) || (!f.Upper.Inclusive && v.Equal(f.Upper.At)) {
			return false
		}
	}
	return true
}

func (f FlagFilter) Matches(c RentContract) bool {
	return f.Field == FieldArchived && c.Archived == f.Value
}

// Sort orders results by a field.
type Sort struct {
	Field     Field
	Direction Direction
}

// ContractQuery is an explicit query specification over rent contracts.
// Builder methods return a new value; a query is safe to reuse.
type ContractQuery struct {
	Filters []Filter
	Sorts   []Sort
	Limit   int
}

// NewContractQuery returns an empty query matching every contract.
func NewContractQuery() ContractQuery {
	return ContractQuery{}
}

func (q ContractQuery) where(f Filter) ContractQuery {
	q.Filters = append(slices.Clip(q.Filters), f)
	return q
}

// FilterEquals restricts an identifier field to the given values.
func (q ContractQuery) FilterEquals(field Field, values ...string) ContractQuery {
	return q.where(EqualsFilter{Field: field, Values: slices.Clone(values)})
}

// FilterRange restricts a time field to the given bounds.
func (q ContractQuery) FilterRange(field Field, lower, upper *Bound, orUnset bool) ContractQuery {
	return q.where(RangeFilter{Field: field, Lower: lower, Upper: upper, OrUnset: orUnset})
}

// FilterFlag restricts a boolean field.
func (q ContractQuery) FilterFlag(field Field, value bool) ContractQuery {
	return q.where(FlagFilter{Field: field, Value: value})
}

// SortBy appends a sort key.
func (q ContractQuery) SortBy(field Field, dir Direction) ContractQuery {
	q.Sorts = append(slices.Clip(q.Sorts), Sort{Field: field, Direction: dir})
	return q
}

// Take limits the number of results. Zero means no limit.
func (q ContractQuery) Take(n int) ContractQuery {
	q.Limit = n
	return q
}

func (q ContractQuery) ByTenant(id PartyID) ContractQuery {
	return q.FilterEquals(FieldTenant, string(id))
}

func (q ContractQuery) ByLandlord(id PartyID) ContractQuery {
	return q.FilterEquals(FieldLandlord, string(id))
}

func (q ContractQuery) ByProperties(ids ...PropertyID) ContractQuery {
	return q.FilterEquals(FieldProperty, Strings(ids)...)
}

func (q ContractQuery) ByPortfolios(ids ...PortfolioID) ContractQuery {
	return q.FilterEquals(FieldPortfolio, Strings(ids)...)
}

func (q ContractQuery) NotArchived() ContractQuery {
	return q.FilterFlag(FieldArchived, false)
}

func (q ContractQuery) ValidFromAtOrBefore(t time.Time) ContractQuery {
	return q.FilterRange(FieldValidFrom, nil, &Bound{At: t, Inclusive: true}, false)
}

func (q ContractQuery) ValidFromAfter(t time.Time) ContractQuery {
	return q.FilterRange(FieldValidFrom, &Bound{At: t}, nil, false)
}

func (q ContractQuery) ValidToAtOrAfterOrOpen(t time.Time) ContractQuery {
	return q.FilterRange(FieldValidTo, &Bound{At: t, Inclusive: true}, nil, true)
}

func (q ContractQuery) ValidToBefore(t time.Time) ContractQuery {
	return q.FilterRange(FieldValidTo, nil, &Bound{At: t}, false)
}

// ActiveAt restricts the query to contracts active at t: not archived, and
// t within [ValidFrom, ValidTo] inclusive, an unset ValidTo never ending.
func (q ContractQuery) ActiveAt(t time.Time) ContractQuery {
	return q.NotArchived().ValidFromAtOrBefore(t).ValidToAtOrAfterOrOpen(t)
}

// Matches reports whether c satisfies every filter.
func (q ContractQuery) Matches(c RentContract) bool {
	for _, f := range q.Filters {
		if !f.Matches(c) {
			return false
		}
	}
	return true
}

// Apply filters, sorts and limits contracts in memory. Ties, and queries
// without sort keys, are ordered by contract id.
func (q ContractQuery) Apply(contracts []RentContract) []RentContract {
	out := make([]RentContract, 0, len(contracts))
	for _, c := range contracts {
		if q.Matches(c) {
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		for _, s := range q.Sorts {
			c := compareField(out[i], out[j], s.Field)
			if s.Direction == Descending {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return out[i].ID < out[j].ID
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func (c RentContract) identifier(f Field) string {
	switch f {
	case FieldID:
		return string(c.ID)
	case FieldProperty:
		return string(c.PropertyID)
	case FieldPortfolio:
		return string(c.PortfolioID)
	case FieldTenant:
		return string(c.TenantID)
	case FieldLandlord:
		return string(c.LandlordID)
	}
	return ""
}

func (c RentContract) timestamp(f Field) *time.Time {
	switch f {
	case FieldValidFrom:
		return &c.ValidFrom
	case FieldValidTo:
		return c.ValidTo
	}
	return nil
}

// compareField orders two contracts by f. An unset time sorts before every
// set one, so a descending sort lists dated contracts first.
func compareField(a, b RentContract, f Field) int {
	switch {
	case f.IsIdentifier():
		return strings.Compare(a.identifier(f), b.identifier(f))
	case f.IsTime():
		ta, tb := a.timestamp(f), b.timestamp(f)
		switch {
		case ta == nil && tb == nil:
			return 0
		case ta == nil:
			return -1
		case tb == nil:
			return 1
		}
		return ta.Compare(*tb)
	case f == FieldArchived:
		return compareBools(a.Archived, b.Archived)
	}
	return 0
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
