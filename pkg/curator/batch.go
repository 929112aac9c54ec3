package curator

import (
	"context"
	"sync"
	"time"

	"github.com/tripfeed/curator/pkg/curator/observability"
)

// ProcessBatch processes the given source keys in parallel, bounded by
// the processor's max concurrency. The returned slice is index-aligned
// with keys. Per-key failures land in their Outcome.Err; the batch keeps
// going. When ctx is cancelled, keys not yet started report ctx.Err().
func (p *Processor) ProcessBatch(ctx context.Context, keys []string) []Outcome {
	stop := observability.TimedOperation()
	outcomes := make([]Outcome, len(keys))

	sem := make(chan struct{}, p.maxConcurrency)
	var wg sync.WaitGroup

	for i, key := range keys {
		wg.Add(1)
		go func(idx int, k string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				outcomes[idx] = Outcome{Key: k, Err: ctx.Err()}
				return
			}

			outcomes[idx] = p.Process(ctx, k)
		}(i, key)
	}
	wg.Wait()

	failed := 0
	for _, out := range outcomes {
		if out.Err != nil {
			failed++
		}
	}
	elapsed := stop()
	observability.LogBatchComplete(p.logger, len(keys)-failed, failed, elapsed)
	p.metrics.RecordBatch(ctx, len(keys), time.Duration(elapsed*float64(time.Millisecond)))
	return outcomes
}
