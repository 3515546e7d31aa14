package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) CreatePortfolio(ctx context.Context, p domain.Portfolio) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO portfolios (id, name, created_at) VALUES (?, ?, ?)`,
		string(p.ID), p.Name, formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting portfolio: %w", err)
	}
	return nil
}

func (s *Store) GetPortfolio(ctx context.Context, id domain.PortfolioID) (domain.Portfolio, error) {
	p, err := scanPortfolio(s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM portfolios WHERE id = ?`, string(id),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Portfolio{}, domain.ErrPortfolioNotFound
	}
	return p, err
}

func (s *Store) ListPortfolios(ctx context.Context) ([]domain.Portfolio, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM portfolios ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []domain.Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}
	return portfolios, rows.Err()
}

func scanPortfolio(row rowScanner) (domain.Portfolio, error) {
	var p domain.Portfolio
	var id, createdAt string
	if err := row.Scan(&id, &p.Name, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Portfolio{}, err
		}
		return domain.Portfolio{}, fmt.Errorf("scanning portfolio: %w", err)
	}
	p.ID = domain.PortfolioID(id)

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Portfolio{}, err
	}
	return p, nil
}

func (s *Store) CreateProperty(ctx context.Context, p domain.Property) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO properties (id, portfolio_id, name, kind, address, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(p.ID), string(p.PortfolioID), p.Name, string(p.Kind), p.Address, formatTime(p.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrPortfolioNotFound
		}
		return fmt.Errorf("inserting property: %w", err)
	}
	return nil
}

const propertyColumns = `id, portfolio_id, name, kind, address, created_at`

func (s *Store) GetProperty(ctx context.Context, id domain.PropertyID) (domain.Property, error) {
	p, err := scanProperty(s.db.QueryRowContext(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = ?`, string(id),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Property{}, domain.ErrPropertyNotFound
	}
	return p, err
}

func (s *Store) ListProperties(ctx context.Context, portfolioID domain.PortfolioID) ([]domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties`
	var args []any

	if portfolioID != "" {
		query += ` WHERE portfolio_id = ?`
		args = append(args, string(portfolioID))
	}

	query += ` ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer rows.Close()

	var properties []domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

func scanProperty(row rowScanner) (domain.Property, error) {
	var p domain.Property
	var id, portfolioID, kind, createdAt string
	if err := row.Scan(&id, &portfolioID, &p.Name, &kind, &p.Address, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Property{}, err
		}
		return domain.Property{}, fmt.Errorf("scanning property: %w", err)
	}
	p.ID = domain.PropertyID(id)
	p.PortfolioID = domain.PortfolioID(portfolioID)
	p.Kind = domain.PropertyKind(kind)

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Property{}, err
	}
	return p, nil
}

func (s *Store) CreateParty(ctx context.Context, p domain.Party) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO parties (id, kind, name, email, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(p.ID), string(p.Kind), p.Name, p.Email, formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting party: %w", err)
	}
	return nil
}

const partyColumns = `id, kind, name, email, created_at`

func (s *Store) GetParty(ctx context.Context, id domain.PartyID) (domain.Party, error) {
	p, err := scanParty(s.db.QueryRowContext(ctx,
		`SELECT `+partyColumns+` FROM parties WHERE id = ?`, string(id),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Party{}, domain.ErrPartyNotFound
	}
	return p, err
}

func (s *Store) ListParties(ctx context.Context, kind domain.PartyKind) ([]domain.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties`
	var args []any

	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}

	query += ` ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing parties: %w", err)
	}
	defer rows.Close()

	var parties []domain.Party
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

func scanParty(row rowScanner) (domain.Party, error) {
	var p domain.Party
	var id, kind, createdAt string
	if err := row.Scan(&id, &kind, &p.Name, &p.Email, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Party{}, err
		}
		return domain.Party{}, fmt.Errorf("scanning party: %w", err)
	}
	p.ID = domain.PartyID(id)
	p.Kind = domain.PartyKind(kind)

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Party{}, err
	}
	return p, nil
}
