package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/yaklabco/gomdwrap/internal/logging"
	"github.com/yaklabco/gomdwrap/pkg/editor"
	"github.com/yaklabco/gomdwrap/pkg/fsutil"
)

// Run discovers the files under opts.Paths and formats each one as a whole
// document on a pool of workers. Outcomes come back in path order. Nothing
// is written; callers decide what to do with each outcome.
func Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.workers(len(files))
	workCh := make(chan int)
	outcomes := make([]FileOutcome, len(files))

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				outcomes[i] = formatFile(ctx, files[i], opts)
			}
		}()
	}

feed:
	for i := range files {
		select {
		case <-ctx.Done():
			break feed
		case workCh <- i:
		}
	}
	close(workCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("run cancelled: %w", err)
	}
	for _, outcome := range outcomes {
		result.accumulate(outcome)
	}
	return result, nil
}

func formatFile(ctx context.Context, path string, opts Options) FileOutcome {
	outcome := FileOutcome{Path: path}
	ctx, logger := logging.WithPath(ctx, path)

	content, snap, err := fsutil.Read(ctx, path)
	if err != nil {
		outcome.Error = err
		return outcome
	}
	outcome.Snapshot = snap
	outcome.Original = content

	buf := editor.NewBuffer(content)
	buf.Select(0, buf.Len())
	res, err := editor.Format(ctx, buf, opts.Format)
	if err != nil {
		outcome.Error = err
		return outcome
	}
	outcome.Formatted = buf.Text()
	outcome.Changed = res.Changed
	logger.Debug("formatted file", logging.FieldChanged, res.Changed)
	return outcome
}
