// Package workers runs batches of independent units of work concurrently
// under an optional concurrency cap. It recovers panics per unit, records
// metrics and waits for every unit before returning.
package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/anstrom/hostsweep/internal/errors"
	"github.com/anstrom/hostsweep/internal/logging"
	"github.com/anstrom/hostsweep/internal/metrics"
)

// Job is a unit of work producing a value of type T.
type Job[T any] struct {
	// ID identifies the job in logs, e.g. the target address.
	ID string
	// Type groups jobs for metrics and logging.
	Type string
	// Execute performs the work.
	Execute func(ctx context.Context) (T, error)
}

// Result represents the result of executing a job.
type Result[T any] struct {
	JobID    string
	JobType  string
	Value    T
	Error    error
	Duration time.Duration
}

// Config holds configuration for a run.
type Config struct {
	// Size is the maximum number of jobs running at once. Zero means no cap.
	// A size of 1 runs the jobs strictly one after another, in order.
	Size int
	// Logger receives failure logs. Nil uses the default logger.
	Logger *logging.Logger
	// Metrics receives job metrics. Nil disables them.
	Metrics metrics.Recorder
}

// DefaultConfig returns an unbounded configuration.
func DefaultConfig() Config {
	return Config{Size: 0}
}

// Run executes every job and returns one Result per job, in job order.
// Each job writes only its own slot, so no locking is needed. A panicking
// job yields a PROBE_FAILED error in its slot and does not affect the
// others. When ctx is canceled while waiting for a free slot, the jobs not
// yet started get a CANCELED error.
func Run[T any](ctx context.Context, cfg Config, jobs []Job[T]) []Result[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	recorder := metrics.OrNop(cfg.Metrics)

	var sem *semaphore.Weighted
	if cfg.Size > 0 {
		sem = semaphore.NewWeighted(int64(cfg.Size))
	}

	results := make([]Result[T], len(jobs))
	var wg sync.WaitGroup

	for i, job := range jobs {
		results[i].JobID = job.ID
		results[i].JobType = job.Type

		if sem != nil {
			if err := sem.Acquire(ctx, 1); err != nil {
				cancelRemaining(results[i:], jobs[i:], err)
				break
			}
		}

		wg.Add(1)
		go func(slot *Result[T], job Job[T]) {
			defer wg.Done()
			if sem != nil {
				defer sem.Release(1)
			}
			execute(ctx, slot, job, logger, recorder)
		}(&results[i], job)
	}

	wg.Wait()
	return results
}

// execute runs a single job into slot.
func execute[T any](ctx context.Context, slot *Result[T], job Job[T], logger *logging.Logger,
	recorder metrics.Recorder) {
	start := time.Now()
	recorder.JobStarted(job.Type)

	status := metrics.StatusSuccess
	defer func() {
		if r := recover(); r != nil {
			status = metrics.StatusPanic
			slot.Error = errors.ErrProbeFailed(job.ID, fmt.Errorf("panic: %v", r)).
				WithContext("job_type", job.Type)
			logger.Error("Unit of work panicked",
				"job_id", job.ID,
				"job_type", job.Type,
				"panic", r)
		}
		slot.Duration = time.Since(start)
		recorder.JobFinished(job.Type, status, slot.Duration)
	}()

	value, err := job.Execute(ctx)
	slot.Value = value
	slot.Error = err
	if err != nil {
		status = metrics.StatusError
		logger.Debug("Unit of work failed",
			"job_id", job.ID,
			"job_type", job.Type,
			"error", err)
	}
}

func cancelRemaining[T any](results []Result[T], jobs []Job[T], cause error) {
	for i := range results {
		results[i].JobID = jobs[i].ID
		results[i].JobType = jobs[i].Type
		results[i].Error = errors.WrapScanErrorWithTarget(errors.CodeCanceled,
			"Unit of work not started", jobs[i].ID, cause)
	}
}

// Values returns the values of all successful results, in order.
func Values[T any](results []Result[T]) []T {
	values := make([]T, 0, len(results))
	for _, r := range results {
		if r.Error == nil {
			values = append(values, r.Value)
		}
	}
	return values
}
