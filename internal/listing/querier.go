package listing

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront-gateway/internal/backend"
	"storefront-gateway/internal/filter"
)

// ErrSuperseded is returned when a newer query for the same key was issued
// while this one was pending. Callers drop the result; it must never reach
// the UI.
var ErrSuperseded = errors.New("query superseded by a newer request")

// Querier serializes search-as-you-type traffic per logical key (one key
// per search box / client session). Each new query for a key cancels the
// in-flight one, and a result that loses the race to a newer query is
// discarded even if its response arrives later. A debounce window absorbs
// bursts of keystrokes before any request is issued.
type Querier struct {
	exec     *Executor
	debounce time.Duration

	mu      sync.Mutex
	lastGen uint64
	active  map[string]*inquiry
}

type inquiry struct {
	gen    uint64
	cancel context.CancelFunc
}

// NewQuerier builds a Querier. debounce may be zero to issue immediately.
func NewQuerier(exec *Executor, debounce time.Duration) *Querier {
	return &Querier{
		exec:     exec,
		debounce: debounce,
		active:   make(map[string]*inquiry),
	}
}

// Query runs one superseding query for key. It blocks through the debounce
// window and the request, returning ErrSuperseded if a newer Query (or
// Clear) for the same key arrived at any point in between.
func (q *Querier) Query(ctx context.Context, key, categoryID string, f filter.Filter) (*backend.ProductPage, error) {
	ctx, gen := q.begin(ctx, key)

	if q.debounce > 0 {
		timer := time.NewTimer(q.debounce)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, q.doneErr(ctx, key, gen)
		case <-timer.C:
		}
	}

	page, err := q.exec.Fetch(ctx, categoryID, f)

	// Even a response that made it back is stale if a newer query started
	// meanwhile; ordering comes from discarding, not sequencing.
	if !q.finish(key, gen) {
		return nil, ErrSuperseded
	}
	return page, err
}

// Clear cancels any pending query for key, for when the search input is
// emptied.
func (q *Querier) Clear(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if cur, ok := q.active[key]; ok {
		cur.cancel()
		delete(q.active, key)
	}
}

func (q *Querier) begin(ctx context.Context, key string) (context.Context, uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if cur, ok := q.active[key]; ok {
		cur.cancel()
	}
	// Generations never restart, even after a key's entry is retired: a
	// reused number would let a stale response match a newer query's entry
	// and be applied as current.
	q.lastGen++
	gen := q.lastGen
	ctx, cancel := context.WithCancel(ctx)
	q.active[key] = &inquiry{gen: gen, cancel: cancel}
	return ctx, gen
}

// finish reports whether gen is still the current query for key and, if so,
// retires it so its context is released.
func (q *Querier) finish(key string, gen uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	cur, ok := q.active[key]
	if !ok || cur.gen != gen {
		return false
	}
	cur.cancel()
	delete(q.active, key)
	return true
}

func (q *Querier) doneErr(ctx context.Context, key string, gen uint64) error {
	if !q.finish(key, gen) {
		return ErrSuperseded
	}
	return ctx.Err()
}
