package river

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// EventWorker processes contract event jobs from the River queue.
type EventWorker struct {
	river.WorkerDefaults[EventJobArgs]
}

// Work processes a single event job.
func (w *EventWorker) Work(ctx context.Context, job *river.Job[EventJobArgs]) error {
	slog.InfoContext(ctx, "processing contract event",
		"event", job.Args.Event,
		"contract_id", job.Args.ContractID,
		"property_id", job.Args.PropertyID,
		"status", job.Args.Status,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}

// ExpiryScanArgs asks for the contracts ending within Months months.
type ExpiryScanArgs struct {
	Months int `json:"months"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (ExpiryScanArgs) Kind() string { return "contract.expiry_scan" }

// Scanner finds contracts ending soon. app.ContractService satisfies it.
type Scanner interface {
	ScanEnding(ctx context.Context, now time.Time, monthsAhead int) ([]domain.RentContract, error)
}

// ExpiryScanWorker runs the ending-soon scan and logs every contract found.
type ExpiryScanWorker struct {
	river.WorkerDefaults[ExpiryScanArgs]

	scanner Scanner
	now     func() time.Time
}

// NewExpiryScanWorker creates a worker that scans relative to the wall clock.
func NewExpiryScanWorker(scanner Scanner) *ExpiryScanWorker {
	return &ExpiryScanWorker{scanner: scanner, now: time.Now}
}

// Work runs one scan.
func (w *ExpiryScanWorker) Work(ctx context.Context, job *river.Job[ExpiryScanArgs]) error {
	now := w.now().UTC()

	contracts, err := w.scanner.ScanEnding(ctx, now, job.Args.Months)
	if err != nil {
		return fmt.Errorf("scanning ending contracts: %w", err)
	}

	for _, c := range contracts {
		slog.InfoContext(ctx, "contract ending soon",
			"contract_id", c.ID,
			"property_id", c.PropertyID,
			"tenant_id", c.TenantID,
			"valid_to", c.ValidTo,
		)
	}
	slog.InfoContext(ctx, "expiry scan finished",
		"months", job.Args.Months,
		"ending", len(contracts),
		"job_id", job.ID,
	)
	return nil
}
