package mastering

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-master/dsp/buffer"
	"github.com/cwbudde/algo-master/mastering/preset"
)

// Preview masters in once per preset name, running the jobs concurrently.
// Results are returned in the order of names; a failed job leaves a nil
// entry and contributes to the joined error. A context that is already done
// returns its error without starting any job.
func Preview(ctx context.Context, catalog *preset.Catalog, in *buffer.AudioBuffer, names ...string) ([]*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]*Result, len(names))
	errs := make([]error, len(names))

	jobs := make([]*Job, len(names))

	for i := range names {
		job, err := New(catalog, WithName(fmt.Sprintf("preview-%d", i)))
		if err != nil {
			return nil, err
		}

		jobs[i] = job
	}

	var wg sync.WaitGroup

	for i, name := range names {
		job := jobs[i]

		wg.Add(1)

		go func() {
			defer wg.Done()

			results[i], errs[i] = job.Run(ctx, in, name)
		}()
	}

	wg.Wait()

	return results, errors.Join(errs...)
}
