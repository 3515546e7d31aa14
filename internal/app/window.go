package app

import (
	"context"
	"fmt"
	"time"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// DefaultEndingMonths is the look-ahead window used for ending-soon contracts
// when the caller does not choose one.
const DefaultEndingMonths = 3

// ContractWindowQuery answers which contracts are active, past, future or
// ending soon for a set of properties, portfolios or parties.
//
// It is stateless and read-only. Every time-dependent operation takes the
// reference time explicitly; archived contracts never appear in a result.
type ContractWindowQuery struct {
	exec domain.ContractQueryExecutor
}

// NewContractWindowQuery creates the query layer over the given executor.
func NewContractWindowQuery(exec domain.ContractQueryExecutor) *ContractWindowQuery {
	return &ContractWindowQuery{exec: exec}
}

// ByTenant returns every non-archived contract of a tenant, regardless of time.
func (q *ContractWindowQuery) ByTenant(ctx context.Context, tenantID domain.PartyID) ([]domain.RentContract, error) {
	if err := domain.ValidateID("tenant id", tenantID); err != nil {
		return nil, err
	}
	return q.find(ctx, domain.NewContractQuery().ByTenant(tenantID).NotArchived())
}

// ActiveByTenant returns the tenant's contracts active at now.
func (q *ContractWindowQuery) ActiveByTenant(ctx context.Context, now time.Time, tenantID domain.PartyID) ([]domain.RentContract, error) {
	if err := validateNow(now); err != nil {
		return nil, err
	}
	if err := domain.ValidateID("tenant id", tenantID); err != nil {
		return nil, err
	}
	return q.find(ctx, domain.NewContractQuery().ByTenant(tenantID).ActiveAt(now))
}

// ByLandlord returns every non-archived contract of a landlord.
func (q *ContractWindowQuery) ByLandlord(ctx context.Context, landlordID domain.PartyID) ([]domain.RentContract, error) {
	if err := domain.ValidateID("landlord id", landlordID); err != nil {
		return nil, err
	}
	return q.find(ctx, domain.NewContractQuery().ByLandlord(landlordID).NotArchived())
}

// ByProperties returns every non-archived contract on the given properties.
func (q *ContractWindowQuery) ByProperties(ctx context.Context, propertyIDs []domain.PropertyID) ([]domain.RentContract, error) {
	if err := domain.ValidateIDs("property id", propertyIDs); err != nil {
		return nil, err
	}
	if len(propertyIDs) == 0 {
		return []domain.RentContract{}, nil
	}
	return q.find(ctx, domain.NewContractQuery().ByProperties(propertyIDs...).NotArchived())
}

// ActiveByProperties returns the contracts on the given properties active at now.
func (q *ContractWindowQuery) ActiveByProperties(ctx context.Context, now time.Time, propertyIDs []domain.PropertyID) ([]domain.RentContract, error) {
	if err := validateNow(now); err != nil {
		return nil, err
	}
	if err := domain.ValidateIDs("property id", propertyIDs); err != nil {
		return nil, err
	}
	if len(propertyIDs) == 0 {
		return []domain.RentContract{}, nil
	}
	return q.find(ctx, domain.NewContractQuery().ByProperties(propertyIDs...).ActiveAt(now))
}

// EndingInProperties returns contracts that started by now and end within
// monthsAhead months: now <= validTo < now+monthsAhead. Open-ended and
// already-ended contracts are excluded.
func (q *ContractWindowQuery) EndingInProperties(ctx context.Context, now time.Time, propertyIDs []domain.PropertyID, monthsAhead int) ([]domain.RentContract, error) {
	if err := validateNow(now); err != nil {
		return nil, err
	}
	if monthsAhead < 1 {
		return nil, &domain.PreconditionError{
			Argument: "months ahead",
			Value:    fmt.Sprint(monthsAhead),
			Reason:   "must be at least 1",
		}
	}
	if err := domain.ValidateIDs("property id", propertyIDs); err != nil {
		return nil, err
	}
	if len(propertyIDs) == 0 {
		return []domain.RentContract{}, nil
	}

	query := domain.NewContractQuery().
		ByProperties(propertyIDs...).
		ValidFromAtOrBefore(now).
		ValidToBefore(domain.AddMonths(now, monthsAhead)).
		ValidToAtOrAfterOrOpen(now).
		NotArchived()
	return q.find(ctx, query)
}

// LatestByProperty returns the property's contract with the latest end date.
// An open-ended contract ranks below every dated one, so it is returned only
// when no contract of the property has an end date. ok is false when the
// property has no contracts.
func (q *ContractWindowQuery) LatestByProperty(ctx context.Context, propertyID domain.PropertyID) (domain.RentContract, bool, error) {
	if err := domain.ValidateID("property id", propertyID); err != nil {
		return domain.RentContract{}, false, err
	}
	query := domain.NewContractQuery().
		ByProperties(propertyID).
		NotArchived().
		SortBy(domain.FieldValidTo, domain.Descending)
	return q.exec.FindOne(ctx, query)
}

// ActiveByProperty returns the property's contracts that have not ended by
// now, earliest start first. Unlike AllActive it does not require the contract
// to have started, so an open-ended contract is always included.
func (q *ContractWindowQuery) ActiveByProperty(ctx context.Context, now time.Time, propertyID domain.PropertyID) ([]domain.RentContract, error) {
	if err := validateNow(now); err != nil {
		return nil, err
	}
	if err := domain.ValidateID("property id", propertyID); err != nil {
		return nil, err
	}
	query := domain.NewContractQuery().
		ByProperties(propertyID).
		NotArchived().
		ValidToAtOrAfterOrOpen(now).
		SortBy(domain.FieldValidFrom, domain.Ascending)
	return q.find(ctx, query)
}

// PastByProperty returns the property's contracts that ended strictly before
// now, earliest start first. A contract ending exactly at now is not past.
func (q *ContractWindowQuery) PastByProperty(ctx context.Context, now time.Time, propertyID domain.PropertyID) ([]domain.RentContract, error) {
	if err := validateNow(now); err != nil {
		return nil, err
	}
	if err := domain.ValidateID("property id", propertyID); err != nil {
		return nil, err
	}
	query := domain.NewContractQuery().
		ByProperties(propertyID).
		ValidToBefore(now).
		NotArchived().
		SortBy(domain.FieldValidFrom, domain.Ascending)
	return q.find(ctx, query)
}

// AllActive returns every contract active at now, earliest start first.
func (q *ContractWindowQuery) AllActive(ctx context.Context, now time.Time) ([]domain.RentContract, error) {
	if err := validateNow(now); err != nil {
		return nil, err
	}
	return q.find(ctx, domain.NewContractQuery().ActiveAt(now).SortBy(domain.FieldValidFrom, domain.Ascending))
}

// ByPortfolios returns every non-archived contract on properties of the given portfolios.
func (q *ContractWindowQuery) ByPortfolios(ctx context.Context, portfolioIDs []domain.PortfolioID) ([]domain.RentContract, error) {
	if err := domain.ValidateIDs("portfolio id", portfolioIDs); err != nil {
		return nil, err
	}
	if len(portfolioIDs) == 0 {
		return []domain.RentContract{}, nil
	}
	return q.find(ctx, domain.NewContractQuery().ByPortfolios(portfolioIDs...).NotArchived())
}

// FutureInProperty returns the property's contracts starting strictly after
// now, earliest start first.
func (q *ContractWindowQuery) FutureInProperty(ctx context.Context, now time.Time, propertyID domain.PropertyID) ([]domain.RentContract, error) {
	if err := validateNow(now); err != nil {
		return nil, err
	}
	if err := domain.ValidateID("property id", propertyID); err != nil {
		return nil, err
	}
	query := domain.NewContractQuery().
		ByProperties(propertyID).
		ValidFromAfter(now).
		NotArchived().
		SortBy(domain.FieldValidFrom, domain.Ascending)
	return q.find(ctx, query)
}

// TenantIDsInProperties returns the distinct tenants with a non-archived
// contract on any of the given properties.
func (q *ContractWindowQuery) TenantIDsInProperties(ctx context.Context, propertyIDs []domain.PropertyID) ([]domain.PartyID, error) {
	if err := domain.ValidateIDs("property id", propertyIDs); err != nil {
		return nil, err
	}
	if len(propertyIDs) == 0 {
		return []domain.PartyID{}, nil
	}
	return q.tenantIDs(ctx, domain.NewContractQuery().ByProperties(propertyIDs...).NotArchived())
}

// CurrentTenantIDsInProperties returns the distinct tenants with a contract
// active at now on any of the given properties.
func (q *ContractWindowQuery) CurrentTenantIDsInProperties(ctx context.Context, now time.Time, propertyIDs []domain.PropertyID) ([]domain.PartyID, error) {
	if err := validateNow(now); err != nil {
		return nil, err
	}
	if err := domain.ValidateIDs("property id", propertyIDs); err != nil {
		return nil, err
	}
	if len(propertyIDs) == 0 {
		return []domain.PartyID{}, nil
	}
	return q.tenantIDs(ctx, domain.NewContractQuery().ByProperties(propertyIDs...).ActiveAt(now))
}

// CountActiveByProperty counts the contracts ActiveByProperty returns.
func (q *ContractWindowQuery) CountActiveByProperty(ctx context.Context, now time.Time, propertyID domain.PropertyID) (int, error) {
	if err := validateNow(now); err != nil {
		return 0, err
	}
	if err := domain.ValidateID("property id", propertyID); err != nil {
		return 0, err
	}
	query := domain.NewContractQuery().
		ByProperties(propertyID).
		NotArchived().
		ValidToAtOrAfterOrOpen(now)
	return q.exec.Count(ctx, query)
}

func (q *ContractWindowQuery) find(ctx context.Context, query domain.ContractQuery) ([]domain.RentContract, error) {
	contracts, err := q.exec.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	if contracts == nil {
		contracts = []domain.RentContract{}
	}
	return contracts, nil
}

func (q *ContractWindowQuery) tenantIDs(ctx context.Context, query domain.ContractQuery) ([]domain.PartyID, error) {
	values, err := q.exec.Project(ctx, query, domain.FieldTenant)
	if err != nil {
		return nil, err
	}
	ids := make([]domain.PartyID, len(values))
	for i, v := range values {
		ids[i] = domain.PartyID(v)
	}
	return ids, nil
}

func validateNow(now time.Time) error {
	if now.IsZero() {
		return &domain.PreconditionError{Argument: "reference time", Reason: "must be set"}
	}
	return nil
}
