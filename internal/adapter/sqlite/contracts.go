package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neomorfeo/rentiq/internal/domain"
)

func (s *Store) Create(ctx context.Context, c domain.RentContract) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contracts (id, property_id, tenant_id, landlord_id, valid_from, valid_to, archived, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(c.ID), string(c.PropertyID), string(c.TenantID), string(c.LandlordID),
		formatTime(c.ValidFrom), nullTime(c.ValidTo), c.Archived,
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting contract: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id domain.ContractID) (domain.RentContract, error) {
	c, ok, err := s.FindOne(ctx, domain.NewContractQuery().FilterEquals(domain.FieldID, string(id)))
	if err != nil {
		return domain.RentContract{}, err
	}
	if !ok {
		return domain.RentContract{}, domain.ErrContractNotFound
	}
	return c, nil
}

func (s *Store) Update(ctx context.Context, c domain.RentContract) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE contracts SET valid_from = ?, valid_to = ?, archived = ?, updated_at = ?
		 WHERE id = ?`,
		formatTime(c.ValidFrom), nullTime(c.ValidTo), c.Archived,
		time.Now().UTC().Format(timeFormat), string(c.ID),
	)
	if err != nil {
		return fmt.Errorf("updating contract: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrContractNotFound
	}

	return nil
}

// Find runs q and returns the matching contracts in query order.
func (s *Store) Find(ctx context.Context, q domain.ContractQuery) ([]domain.RentContract, error) {
	stmt, args, err := selectContracts(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("querying contracts: %w", err)
	}
	defer rows.Close()

	var contracts []domain.RentContract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// FindOne returns the first contract matching q.
func (s *Store) FindOne(ctx context.Context, q domain.ContractQuery) (domain.RentContract, bool, error) {
	stmt, args, err := selectContracts(q.Take(1))
	if err != nil {
		return domain.RentContract{}, false, err
	}

	c, err := scanContract(s.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RentContract{}, false, nil
		}
		return domain.RentContract{}, false, err
	}
	return c, true, nil
}

// Count returns the number of contracts matching q. Sorts and limit are ignored.
func (s *Store) Count(ctx context.Context, q domain.ContractQuery) (int, error) {
	stmt, args, err := buildSelect(domain.ContractQuery{Filters: q.Filters}, "COUNT(*)", "")
	if err != nil {
		return 0, err
	}

	var n int
	if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting contracts: %w", err)
	}
	return n, nil
}

// Project returns the distinct values of an identifier field over the
// contracts matching q, ascending.
func (s *Store) Project(ctx context.Context, q domain.ContractQuery, field domain.Field) ([]string, error) {
	if !field.IsIdentifier() {
		return nil, fmt.Errorf("cannot project field %q", field)
	}
	col, err := column(field)
	if err != nil {
		return nil, err
	}

	projection := domain.ContractQuery{Filters: q.Filters, Limit: q.Limit}
	stmt, args, err := buildSelect(projection, "DISTINCT "+col, col+" ASC")
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("projecting %s: %w", field, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", field, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

const contractColumns = `c.id, c.property_id, p.portfolio_id, c.tenant_id, c.landlord_id,
	c.valid_from, c.valid_to, c.archived, c.created_at, c.updated_at`

func scanContract(row rowScanner) (domain.RentContract, error) {
	var (
		c                                             domain.RentContract
		id, propertyID, portfolioID, tenant, landlord string
		validFrom, createdAt, updatedAt               string
		validTo                                       sql.NullString
	)
	err := row.Scan(&id, &propertyID, &portfolioID, &tenant, &landlord,
		&validFrom, &validTo, &c.Archived, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RentContract{}, err
		}
		return domain.RentContract{}, fmt.Errorf("scanning contract: %w", err)
	}

	c.ID = domain.ContractID(id)
	c.PropertyID = domain.PropertyID(propertyID)
	c.PortfolioID = domain.PortfolioID(portfolioID)
	c.TenantID = domain.PartyID(tenant)
	c.LandlordID = domain.PartyID(landlord)

	if c.ValidFrom, err = parseTime(validFrom); err != nil {
		return domain.RentContract{}, err
	}
	if validTo.Valid {
		to, err := parseTime(validTo.String)
		if err != nil {
			return domain.RentContract{}, err
		}
		c.ValidTo = &to
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.RentContract{}, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.RentContract{}, err
	}
	return c, nil
}

// selectContracts selects full contract rows in the query's sort order, with
// the contract id as the final tie-break.
func selectContracts(q domain.ContractQuery) (string, []any, error) {
	keys := make([]string, 0, len(q.Sorts)+1)
	for _, s := range q.Sorts {
		key, err := orderBy(s)
		if err != nil {
			return "", nil, err
		}
		keys = append(keys, key)
	}
	keys = append(keys, "c.id ASC")
	return buildSelect(q, contractColumns, strings.Join(keys, ", "))
}

// buildSelect translates the filters and limit of q into a SELECT over
// contracts joined with their property. Sort keys are the caller's concern.
func buildSelect(q domain.ContractQuery, columns, order string) (string, []any, error) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT " + columns + " FROM contracts c JOIN properties p ON p.id = c.property_id")

	for i, f := range q.Filters {
		clause, fArgs, err := where(f)
		if err != nil {
			return "", nil, err
		}
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(clause)
		args = append(args, fArgs...)
	}

	if order != "" {
		b.WriteString(" ORDER BY " + order)
	}

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	return b.String(), args, nil
}

func where(f domain.Filter) (string, []any, error) {
	switch f := f.(type) {
	case domain.EqualsFilter:
		col, err := column(f.Field)
		if err != nil {
			return "", nil, err
		}
		switch len(f.Values) {
		case 0:
			return "1 = 0", nil, nil
		case 1:
			return col + " = ?", []any{f.Values[0]}, nil
		}
		args := make([]any, len(f.Values))
		for i, v := range f.Values {
			args[i] = v
		}
		return col + " IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ") + ")", args, nil

	case domain.RangeFilter:
		col, err := column(f.Field)
		if err != nil {
			return "", nil, err
		}
		var parts []string
		var args []any
		if f.Lower != nil {
			op := " > ?"
			if f.Lower.Inclusive {
				op = " >= ?"
			}
			parts = append(parts, col+op)
			args = append(args, formatTime(f.Lower.At))
		}
		if f.Upper != nil {
			op := " < ?"
			if f.Upper.Inclusive {
				op = " <= ?"
			}
			parts = append(parts, col+op)
			args = append(args, formatTime(f.Upper.At))
		}
		clause := col + " IS NOT NULL"
		if len(parts) > 0 {
			clause = strings.Join(parts, " AND ")
		}
		if f.OrUnset {
			clause = "(" + col + " IS NULL OR (" + clause + "))"
		}
		return clause, args, nil

	case domain.FlagFilter:
		col, err := column(f.Field)
		if err != nil {
			return "", nil, err
		}
		return col + " = ?", []any{f.Value}, nil
	}
	return "", nil, fmt.Errorf("unsupported filter %T", f)
}

// orderBy sorts unset timestamps before every set one, the same order
// compareField uses.
func orderBy(s domain.Sort) (string, error) {
	col, err := column(s.Field)
	if err != nil {
		return "", err
	}
	dir := strings.ToUpper(s.Direction.String())
	if s.Field.IsTime() {
		return "(" + col + " IS NOT NULL) " + dir + ", " + col + " " + dir, nil
	}
	return col + " " + dir, nil
}

func column(f domain.Field) (string, error) {
	switch f {
	case domain.FieldID:
		return "c.id", nil
	case domain.FieldProperty:
		return "c.property_id", nil
	case domain.FieldPortfolio:
		return "p.portfolio_id", nil
	case domain.FieldTenant:
		return "c.tenant_id", nil
	case domain.FieldLandlord:
		return "c.landlord_id", nil
	case domain.FieldValidFrom:
		return "c.valid_from", nil
	case domain.FieldValidTo:
		return "c.valid_to", nil
	case domain.FieldArchived:
		return "c.archived", nil
	}
	return "", fmt.Errorf("unknown contract field %q", f)
}
