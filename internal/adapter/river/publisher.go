package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// EventJobArgs carries a contract event to the worker. River serializes it
// as JSON into its job table; the contract snapshot means the worker never
// queries the database.
type EventJobArgs struct {
	Event       string `json:"event"`
	ContractID  string `json:"contract_id"`
	PropertyID  string `json:"property_id"`
	PortfolioID string `json:"portfolio_id"`
	TenantID    string `json:"tenant_id"`
	LandlordID  string `json:"landlord_id"`
	ValidFrom   string `json:"valid_from"`
	ValidTo     string `json:"valid_to,omitempty"`
	Status      string `json:"status"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (EventJobArgs) Kind() string { return "contract.event" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a contract event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.Event, c domain.RentContract) error {
	args := EventJobArgs{
		Event:       string(event),
		ContractID:  string(c.ID),
		PropertyID:  string(c.PropertyID),
		PortfolioID: string(c.PortfolioID),
		TenantID:    string(c.TenantID),
		LandlordID:  string(c.LandlordID),
		ValidFrom:   c.ValidFrom.UTC().Format(time.RFC3339),
		Status:      string(c.Status()),
	}
	if c.ValidTo != nil {
		args.ValidTo = c.ValidTo.UTC().Format(time.RFC3339)
	}

	if _, err := p.client.Insert(ctx, args, nil); err != nil {
		return fmt.Errorf("enqueuing event job: %w", err)
	}
	return nil
}
