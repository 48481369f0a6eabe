package deliverables

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DheerG/LogicPull/internal/models"
	"github.com/DheerG/LogicPull/internal/pkg/workerpool"
	"github.com/DheerG/LogicPull/pkg/fault"
)

// Each file copy is retried a couple of times before it counts as a
// batch failure. Transient fs errors shouldn't sink a whole clone.
const (
	copyAttempts   = 2
	copyRetryDelay = 50 * time.Millisecond
)

// Copier fans deliverable copies out over a worker pool and fans the
// results back in. A copy batch is all-or-nothing from the caller's
// point of view: every failure is collected and reported together, and
// a batch with any failure is an error.
type Copier struct {
	pool *workerpool.WorkerPool
}

func NewCopier(pool *workerpool.WorkerPool) *Copier {
	return &Copier{pool: pool}
}

// CopyAll copies every deliverable file from srcDir into dstDir. The
// batch gets a job id for log correlation. Files are copied
// independently and unordered, but CopyAll does not return until every
// copy has finished or ctx is canceled.
func (c *Copier) CopyAll(ctx context.Context, srcDir, dstDir string, files []models.Deliverable) error {
	if len(files) == 0 {
		return nil
	}

	batch := uuid.NewString()
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	for i, file := range files {
		i, name := i, file.Name
		wg.Add(1)

		retried := workerpool.WithRetry(copyAttempts, copyRetryDelay, func() error {
			err := copyFile(filepath.Join(srcDir, name), filepath.Join(dstDir, name))
			if err != nil {
				errs[i] = fmt.Errorf("batch %s: copying %s: %w", batch, name, err)
				return err
			}
			errs[i] = nil
			return nil
		})

		job := func(jobCtx context.Context) {
			defer wg.Done()
			if jobCtx.Err() != nil {
				errs[i] = jobCtx.Err()
				return
			}
			retried(jobCtx)
		}

		// a full queue falls back to copying on the caller's goroutine
		// so the batch can never silently drop a file
		if !c.pool.Submit(job) {
			job(ctx)
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	if err := errors.Join(errs...); err != nil {
		return fault.FileSystem("copying deliverables", err)
	}
	return nil
}
