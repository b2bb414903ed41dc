// Package provider defines the sensing provider contract and the adapters
// that implement it: a gpsd client, a recorded-track replayer, and a
// scripted in-memory source for tests.
package provider

import (
	"github.com/abhisek/geofix/internal/geo"
)

// Observer receives asynchronous provider events for one query.
// The arbitration engine implements it; any implementation registered via
// Subscribe must tolerate events after it has stopped caring.
type Observer interface {
	// OnSamples delivers a batch of zero or more raw samples.
	// Called any number of times between Start and Stop.
	OnSamples(batch []geo.Sample)

	// OnFailure reports a provider-level failure, at most once per
	// underlying failure condition. May arrive before or after samples.
	OnFailure(err error)
}

// Provider is a source of position samples. A provider is exclusively
// controlled by a single consumer for the duration of a query.
type Provider interface {
	// Subscribe registers the observer for sample batches and failures.
	// Must be called before Start.
	Subscribe(obs Observer)

	// Start begins sample delivery.
	Start()

	// Stop ends sample delivery. Idempotent and non-blocking: a batch
	// already in flight may still reach the observer after Stop returns.
	Stop()

	// CachedSample returns the provider's immediately-available
	// last-known sample, if it has one.
	CachedSample() (geo.Sample, bool)
}
