// Package geo holds the position sample data model and the pure quality
// rules — classification and ranking — used to arbitrate between samples.
package geo

import (
	"fmt"
	"math"
	"time"
)

// Sample is a single position report from a sensing provider.
// Immutable once constructed.
type Sample struct {
	// Latitude in decimal degrees, positive north.
	Latitude float64

	// Longitude in decimal degrees, positive east.
	Longitude float64

	// AccuracyM is the horizontal accuracy radius in meters.
	// Smaller is better.
	AccuracyM float64

	// Time is the provider-supplied measurement time. It may predate the
	// sample's arrival, and under clock skew it may even lie in the future.
	Time time.Time
}

// Sane reports whether the sample's coordinates survive sanitization:
// finite values inside the valid latitude/longitude ranges, and not the
// degenerate 0,0 point that receivers emit before a first fix.
//
// An insane sample is still kept as a candidate (tiered Invalid) so a
// timed-out query with nothing better retains debuggable state.
func (s Sample) Sane() bool {
	if math.IsNaN(s.Latitude) || math.IsInf(s.Latitude, 0) {
		return false
	}
	if math.IsNaN(s.Longitude) || math.IsInf(s.Longitude, 0) {
		return false
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		return false
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return false
	}
	if s.Latitude == 0 && s.Longitude == 0 {
		return false
	}
	return true
}

// String renders the sample for logs and CLI output.
func (s Sample) String() string {
	return fmt.Sprintf("%.6f,%.6f ±%.0fm @ %s",
		s.Latitude, s.Longitude, s.AccuracyM, s.Time.Format(time.RFC3339))
}
