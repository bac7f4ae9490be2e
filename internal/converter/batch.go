package converter

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Job is one race to export in a batch.
type Job struct {
	XMLPath string
	Options Options
}

// RunBatch exports every job using at most concurrency workers and returns
// the results in job order. Jobs are started in order. Each job gets its own
// Converter; nothing is shared between jobs apart from the logger.
//
// A failed job does not stop the others. When stopOnError is set, jobs that
// have not started when the first failure is seen are reported with
// ErrSkipped instead of being run.
func RunBatch(jobs []Job, concurrency int, stopOnError bool, logger Logger) []Result {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]Result, len(jobs))
	var failed atomic.Bool

	// Failures are reported per job, so every goroutine returns nil.
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if stopOnError && failed.Load() {
				results[i] = Result{
					Name:     job.Options.Name,
					FilePath: job.XMLPath,
					Error:    ErrSkipped,
				}
				return nil
			}
			result := New(job.XMLPath, job.Options, logger).Run()
			if !result.Success {
				failed.Store(true)
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()
	return results
}
