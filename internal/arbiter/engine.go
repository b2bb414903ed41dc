// Package arbiter implements the one-shot location arbitration engine: it
// races asynchronously delivered samples against a time budget and
// resolves exactly once with the best sample observed or a terminal error.
package arbiter

import (
	"fmt"
	"os"
	"time"

	"github.com/abhisek/geofix/internal/geo"
	"github.com/abhisek/geofix/internal/provider"
)

// Recorder persists failure and resolution diagnostics. Recording is
// best-effort: errors are logged and never affect query resolution.
type Recorder interface {
	// RecordFailure is invoked once per provider failure notification.
	RecordFailure(queryID string, cause error, at time.Time) error

	// RecordFix is invoked once at resolution with the terminal outcome.
	// For rejections the sample is the zero value.
	RecordFix(queryID string, s geo.Sample, outcome string, at time.Time) error
}

// Resolution outcomes persisted by the Recorder.
const (
	OutcomeFulfilled        = "fulfilled"
	OutcomeRejectedTimeout  = "rejected_out_of_time"
	OutcomeRejectedProvider = "rejected_provider"
)

type nopRecorder struct{}

func (nopRecorder) RecordFailure(string, error, time.Time) error { return nil }

func (nopRecorder) RecordFix(string, geo.Sample, string, time.Time) error { return nil }

// engine owns the arbitration state of one query. All mutation is
// serialized under mu: the deadline timer and provider callbacks are the
// only entry points, and both funnel through evaluateLocked.
type engine struct {
	id    string
	clock Clock
	prov  provider.Provider
	rec   Recorder
	cell  *completion

	// release drops the registry's strong reference at resolution and
	// clears its in-progress flag.
	release func()

	mu         chan struct{} // 1-buffered; doubles as a held-by assertion
	candidates []geo.Candidate
	resolved   bool
	timer      Timer
}

func newEngine(id string, clock Clock, prov provider.Provider, rec Recorder, cell *completion, release func()) *engine {
	if rec == nil {
		rec = nopRecorder{}
	}
	e := &engine{
		id:      id,
		clock:   clock,
		prov:    prov,
		rec:     rec,
		cell:    cell,
		release: release,
		mu:      make(chan struct{}, 1),
	}
	return e
}

// lock acquires the engine's serialization token.
func (e *engine) lock() { e.mu <- struct{}{} }

// unlock releases it.
func (e *engine) unlock() { <-e.mu }

// assertHeld panics if called without the serialization token. Guards the
// single-execution-context discipline the same way the original relied on
// thread-affinity assertions.
func (e *engine) assertHeld() {
	if len(e.mu) == 0 {
		panic("arbiter: engine state touched outside its execution context")
	}
}

// start seeds the cached sample, arms the deadline and starts the
// provider. A perfect cached sample resolves before the provider ever
// runs.
func (e *engine) start(timeout time.Duration) {
	e.prov.Subscribe(e)

	e.lock()
	e.timer = e.clock.AfterFunc(timeout, e.deadlineFired)
	if s, ok := e.prov.CachedSample(); ok {
		e.candidates = append(e.candidates, geo.MakeCandidate(s, e.clock.Now()))
	}
	e.evaluateLocked(false)
	resolved := e.resolved
	e.unlock()

	if !resolved {
		e.prov.Start()
	}
}

// OnSamples implements provider.Observer.
func (e *engine) OnSamples(batch []geo.Sample) {
	e.lock()
	defer e.unlock()
	if e.resolved {
		return
	}

	now := e.clock.Now()
	for _, s := range batch {
		e.candidates = append(e.candidates, geo.MakeCandidate(s, now))
	}
	e.evaluateLocked(false)
}

// OnFailure implements provider.Observer. With nothing collected there is
// no value in waiting out the timer, so the query fails fast; otherwise
// the collected candidates get a forced out-of-time evaluation.
func (e *engine) OnFailure(cause error) {
	e.lock()
	defer e.unlock()
	if e.resolved {
		return
	}

	if err := e.rec.RecordFailure(e.id, cause, e.clock.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record provider failure: %v\n", err)
	}

	if len(e.candidates) == 0 {
		e.resolveLocked(geo.Sample{}, &ProviderError{Err: cause})
		return
	}
	e.evaluateLocked(true)
}

func (e *engine) deadlineFired() {
	e.lock()
	defer e.unlock()
	if e.resolved {
		return
	}
	e.evaluateLocked(true)
}

// forceOutOfTime is the external cancellation path: it drains whatever
// was collected instead of hard-rejecting.
func (e *engine) forceOutOfTime() {
	e.lock()
	defer e.unlock()
	if e.resolved {
		return
	}
	e.evaluateLocked(true)
}

// evaluateLocked applies the decision policy to the accumulated
// candidates. The candidate set only ever grows, so a remain-open outcome
// here can only improve on the next event.
func (e *engine) evaluateLocked(outOfTime bool) {
	e.assertHeld()

	best, ok := geo.Best(e.candidates)
	switch {
	case ok && best.Tier == geo.TierPerfect:
		// A perfect sample never waits for the rest of the budget.
		e.resolveLocked(best.Sample, nil)
	case ok && best.Tier == geo.TierAcceptable && outOfTime:
		e.resolveLocked(best.Sample, nil)
	case outOfTime:
		// Best is invalid or nothing arrived at all.
		e.resolveLocked(geo.Sample{}, ErrOutOfTime)
	}
}

// resolveLocked performs the single Open -> Resolved transition: stop the
// timer, tear down the provider, publish the outcome, record it, and let
// the registry drop its reference.
func (e *engine) resolveLocked(s geo.Sample, err error) {
	e.assertHeld()

	e.resolved = true
	if e.timer != nil {
		e.timer.Stop()
	}
	e.prov.Stop()
	e.cell.resolve(s, err)

	if recErr := e.rec.RecordFix(e.id, s, outcomeFor(err), e.clock.Now()); recErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record resolution: %v\n", recErr)
	}

	if e.release != nil {
		e.release()
	}
}

func outcomeFor(err error) string {
	switch err.(type) {
	case nil:
		return OutcomeFulfilled
	case *ProviderError:
		return OutcomeRejectedProvider
	default:
		return OutcomeRejectedTimeout
	}
}
