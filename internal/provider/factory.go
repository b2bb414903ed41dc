package provider

import (
	"fmt"
	"time"

	"github.com/abhisek/geofix/internal/config"
	"github.com/abhisek/geofix/internal/geo"
)

// New creates a Provider from configuration.
func New(cfg config.Config) (Provider, error) {
	switch cfg.Provider {
	case "gpsd":
		return NewGpsd(cfg.Gpsd.Addr, cfg.Gpsd.DialTimeout), nil
	case "replay":
		return NewReplay(cfg.Replay.Path), nil
	case "script":
		return newSmokeScript(), nil
	default:
		return nil, fmt.Errorf("unknown provider: %q", cfg.Provider)
	}
}

// newSmokeScript builds the canned provider behind the "script" config
// value: a stale cached fix followed by one fresh accurate sample, enough
// to exercise the whole pipeline without hardware.
func newSmokeScript() *Script {
	now := time.Now()
	s := NewScript(
		Event{After: 200 * time.Millisecond, Samples: []geo.Sample{{
			Latitude:  52.5200,
			Longitude: 13.4050,
			AccuracyM: 25,
			Time:      now,
		}}},
	)
	s.SetCached(geo.Sample{
		Latitude:  52.5190,
		Longitude: 13.4010,
		AccuracyM: 800,
		Time:      now.Add(-5 * time.Minute),
	})
	return s
}
