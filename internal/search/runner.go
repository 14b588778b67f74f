package search

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/collegiate-app/collegiate/internal/model"
)

// DefaultDebounce is how long filter changes are coalesced before a
// query is launched.
const DefaultDebounce = 350 * time.Millisecond

// Searcher is the query dependency of the Runner. *Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, f Filters) ([]model.College, error)
}

// Result is one published search outcome. Degraded is set when the
// catalog was unreachable and the bundled dataset was served instead.
type Result struct {
	Filters    Filters
	Colleges   []model.College
	TotalCount int
	Degraded   bool
}

// Runner supervises at most one in-flight search. Submitting new
// filters debounces, cancels the in-flight query, and bumps a
// generation counter so a stale response can never be published over a
// newer one. Publish is called from the query goroutine; it must not
// call back into the Runner.
type Runner struct {
	searcher Searcher
	publish  func(Result)
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	filters Filters
	timer   *time.Timer
	cancel  context.CancelFunc
	gen     uint64
}

type RunnerOption func(*Runner)

func WithDebounce(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.debounce = d
	}
}

func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

func NewRunner(searcher Searcher, publish func(Result), opts ...RunnerOption) *Runner {
	r := &Runner{
		searcher: searcher,
		publish:  publish,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		filters:  DefaultFilters(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Submit records new filters and (re)arms the debounce timer. Only the
// filters in effect when the timer fires are queried.
func (r *Runner) Submit(f Filters) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters = f
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, r.launch)
}

// Retry re-runs the current filters immediately, skipping the debounce.
func (r *Runner) Retry() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.launchLocked()
}

// Stop cancels any pending timer and in-flight query. The cancelled
// query publishes nothing.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.gen++
}

func (r *Runner) launch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.launchLocked()
}

func (r *Runner) launchLocked() {
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.gen++
	go r.run(ctx, r.gen, r.filters)
}

func (r *Runner) run(ctx context.Context, gen uint64, f Filters) {
	colleges, err := r.searcher.Search(ctx, f)
	degraded := false
	if err != nil {
		// A superseded or stopped query stays silent.
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return
		}
		r.logger.Warn("college search failed, serving bundled data", "error", err)
		colleges = FilterMock(f)
		degraded = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return
	}
	r.publish(Result{
		Filters:    f,
		Colleges:   colleges,
		TotalCount: len(colleges),
		Degraded:   degraded,
	})
}
