package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riversqlite"
	"github.com/riverqueue/river/rivermigrate"
)

// Options configures the jobs a client runs besides contract events.
type Options struct {
	// Scanner enables the contract.expiry_scan worker when set.
	Scanner Scanner
	// ScanInterval schedules the scan periodically when positive.
	ScanInterval time.Duration
	// EndingMonths is the look-ahead window of scheduled scans.
	EndingMonths int
}

// Setup creates a River client with the workers registered and runs River's
// internal migrations. The caller must call client.Start() to begin
// processing jobs and client.Stop() for graceful shutdown.
func Setup(ctx context.Context, db *sql.DB, opts Options) (*Client, error) {
	driver := riversqlite.New(db)

	// River's own tables (river_job, river_leader, ...) are migrated
	// separately from the application schema.
	migrator, err := rivermigrate.New(driver, nil)
	if err != nil {
		return nil, fmt.Errorf("creating river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return nil, fmt.Errorf("running river migrations: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &EventWorker{})

	var periodic []*river.PeriodicJob
	if opts.Scanner != nil {
		river.AddWorker(workers, NewExpiryScanWorker(opts.Scanner))

		if opts.ScanInterval > 0 {
			months := opts.EndingMonths
			periodic = append(periodic, river.NewPeriodicJob(
				river.PeriodicInterval(opts.ScanInterval),
				func() (river.JobArgs, *river.InsertOpts) {
					return ExpiryScanArgs{Months: months}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			))
		}
	}

	client, err := river.NewClient(driver, &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 2},
		},
		Workers:      workers,
		PeriodicJobs: periodic,
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}

	return client, nil
}

// EnqueueScan inserts a one-off expiry scan.
func EnqueueScan(ctx context.Context, client *Client, months int) error {
	if _, err := client.Insert(ctx, ExpiryScanArgs{Months: months}, nil); err != nil {
		return fmt.Errorf("enqueuing expiry scan: %w", err)
	}
	return nil
}
