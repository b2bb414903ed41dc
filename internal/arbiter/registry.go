package arbiter

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/geofix/internal/geo"
	"github.com/abhisek/geofix/internal/provider"
)

// Registry owns engine lifetimes. An open engine has no external owner —
// callers may fire and forget — so the registry holds the one strong
// reference from Begin until resolution, and doubles as the
// "query in progress" indicator. At most one query is open per registry.
type Registry struct {
	clock Clock
	rec   Recorder

	mu      sync.Mutex
	current *Query
}

// NewRegistry creates a Registry. A nil clock means the wall clock; a nil
// recorder disables diagnostics.
func NewRegistry(clock Clock, rec Recorder) *Registry {
	if clock == nil {
		clock = RealClock()
	}
	return &Registry{clock: clock, rec: rec}
}

// Query is the handle on one in-flight (or resolved) acquisition.
type Query struct {
	// ID identifies the query in diagnostics records.
	ID string

	eng  *engine
	cell *completion
}

// Begin opens a one-shot query against the provider and starts the
// deadline race. Returns ErrQueryInProgress if this registry already has
// an open query. The provider is exclusively the engine's until
// resolution.
func (r *Registry) Begin(p provider.Provider, timeout time.Duration) (*Query, error) {
	cell := newCompletion()
	q := &Query{ID: uuid.NewString(), cell: cell}

	r.mu.Lock()
	if r.current != nil {
		r.mu.Unlock()
		return nil, ErrQueryInProgress
	}
	r.current = q
	r.mu.Unlock()

	q.eng = newEngine(q.ID, r.clock, p, r.rec, cell, func() { r.detach(q) })

	// Outside the registry lock: a perfect cached sample resolves
	// synchronously, which re-enters detach.
	q.eng.start(timeout)
	return q, nil
}

// detach drops the strong reference and clears the in-progress state.
func (r *Registry) detach(q *Query) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == q {
		r.current = nil
	}
}

// InProgress reports whether this registry has an open query. For
// external observers only; arbitration does not depend on it.
func (r *Registry) InProgress() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}

// AcquireOneShotLocation runs one query to completion: the best sample
// observed within the budget, or ErrOutOfTime / *ProviderError. Context
// cancellation forces an immediate out-of-time evaluation that may still
// succeed with what was collected.
func (r *Registry) AcquireOneShotLocation(ctx context.Context, p provider.Provider, timeout time.Duration) (geo.Sample, error) {
	q, err := r.Begin(p, timeout)
	if err != nil {
		return geo.Sample{}, err
	}

	select {
	case <-ctx.Done():
		q.Cancel()
		<-q.Done()
	case <-q.Done():
	}
	return q.Result()
}

// Done is closed when the query resolves.
func (q *Query) Done() <-chan struct{} { return q.cell.doneCh() }

// Result returns the terminal outcome. Valid only after Done is closed.
func (q *Query) Result() (geo.Sample, error) { return q.cell.result() }

// Wait blocks until resolution or context cancellation. Cancellation does
// not resolve the query; use Cancel for that.
func (q *Query) Wait(ctx context.Context) (geo.Sample, error) {
	select {
	case <-ctx.Done():
		return geo.Sample{}, ctx.Err()
	case <-q.cell.doneCh():
		return q.cell.result()
	}
}

// Cancel forces an out-of-time evaluation: the query resolves now with
// the best acceptable candidate collected so far, or rejects.
func (q *Query) Cancel() {
	q.eng.forceOutOfTime()
}
