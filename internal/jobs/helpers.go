// Package jobs defines the River job types that drive a batch through
// validation and submission, plus the periodic stale batch sweep.
package jobs

import (
	"time"

	"github.com/riverqueue/river"

	"github.com/abeyonalaja/waste-tracking-service-sub010/internal/batch"
)

// Queue names. Validation and submission run on separate queues so a large
// finalize does not starve uploads.
const (
	QueueValidation = "batch_validation"
	QueueSubmission = "batch_submission"
)

// Config tunes the batch jobs.
type Config struct {
	// MaxSubmitAttempts bounds how often River retries an incomplete
	// submission before leaving the batch to the sweep.
	MaxSubmitAttempts int
	// SweepInterval is how often the stale batch sweep runs.
	SweepInterval time.Duration
	// StaleAfter is how long a batch may sit in Processing or Submitting
	// before the sweep dispatches it again.
	StaleAfter time.Duration
	// SweepLimit caps the batches handled by one sweep.
	SweepLimit int
}

// Defaults.
const (
	DefaultMaxSubmitAttempts = 10
	DefaultSweepInterval     = 5 * time.Minute
	DefaultStaleAfter        = 15 * time.Minute
	DefaultSweepLimit        = 100
)

func (c Config) withDefaults() Config {
	if c.MaxSubmitAttempts <= 0 {
		c.MaxSubmitAttempts = DefaultMaxSubmitAttempts
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = DefaultStaleAfter
	}
	if c.SweepLimit <= 0 {
		c.SweepLimit = DefaultSweepLimit
	}
	return c
}

// Register adds every batch worker to workers.
func Register(workers *river.Workers, svc *batch.Service, cfg Config) {
	cfg = cfg.withDefaults()
	river.AddWorker(workers, NewValidateBatchWorker(svc))
	river.AddWorker(workers, NewSubmitBatchWorker(svc))
	river.AddWorker(workers, NewBatchSweepWorker(svc, cfg.StaleAfter, cfg.SweepLimit))
}

// PeriodicJobs returns the periodic jobs of the batch pipeline.
func PeriodicJobs(cfg Config) []*river.PeriodicJob {
	cfg = cfg.withDefaults()
	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(cfg.SweepInterval),
			func() (river.JobArgs, *river.InsertOpts) {
				return BatchSweepArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	}
}

// QueueConfigs returns the River queues used by the batch jobs, sharing
// maxWorkers between them.
func QueueConfigs(maxWorkers int) map[string]river.QueueConfig {
	if maxWorkers < 2 {
		maxWorkers = 2
	}
	return map[string]river.QueueConfig{
		river.QueueDefault: {MaxWorkers: 1},
		QueueValidation:    {MaxWorkers: maxWorkers / 2},
		QueueSubmission:    {MaxWorkers: maxWorkers - maxWorkers/2},
	}
}
