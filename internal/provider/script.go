package provider

import (
	"sync"
	"time"

	"github.com/abhisek/geofix/internal/geo"
)

// Event is one scripted provider event: either a sample batch or a failure.
type Event struct {
	// After is the delay before delivery, relative to the previous event.
	After time.Duration

	// Samples is delivered via OnSamples when Err is nil.
	Samples []geo.Sample

	// Err, when set, is delivered via OnFailure instead.
	Err error
}

// Script is a deterministic Provider for tests and smoke runs.
// It replays a canned event sequence in order and records lifecycle calls.
type Script struct {
	mu     sync.Mutex
	events []Event
	cached *geo.Sample
	obs    Observer
	stop   chan struct{}

	// StartCalls and StopCalls count lifecycle transitions, for tests.
	StartCalls int
	StopCalls  int
}

// NewScript creates a Script that will replay the given events.
func NewScript(events ...Event) *Script {
	return &Script{events: events, stop: make(chan struct{})}
}

// SetCached gives the script an immediately-available cached sample.
func (s *Script) SetCached(sample geo.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = &sample
}

func (s *Script) Subscribe(obs Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obs = obs
}

// Start replays the scripted events on a background goroutine.
func (s *Script) Start() {
	s.mu.Lock()
	s.StartCalls++
	obs := s.obs
	events := s.events
	s.mu.Unlock()

	if obs == nil {
		return
	}

	go func() {
		for _, ev := range events {
			if ev.After > 0 {
				select {
				case <-s.stop:
					return
				case <-time.After(ev.After):
				}
			} else {
				select {
				case <-s.stop:
					return
				default:
				}
			}

			if ev.Err != nil {
				obs.OnFailure(ev.Err)
			} else {
				obs.OnSamples(ev.Samples)
			}
		}
	}()
}

// Stop halts replay. Safe to call more than once.
func (s *Script) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.StopCalls++
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}

func (s *Script) CachedSample() (geo.Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached == nil {
		return geo.Sample{}, false
	}
	return *s.cached, true
}
