package geo

import "time"

// Tier is the discrete quality classification of a sample.
type Tier int

const (
	// TierInvalid marks samples that failed sanitization, are too
	// inaccurate, or too old to be trusted.
	TierInvalid Tier = iota

	// TierAcceptable marks usable samples worth returning once the time
	// budget is exhausted.
	TierAcceptable

	// TierPerfect marks samples good enough to resolve on immediately.
	TierPerfect
)

// Quality thresholds. A sample at most DesiredAccuracyM wide and at most
// DesiredAge old is Perfect; one beyond InvalidAccuracyM or InvalidAge is
// Invalid; everything between is Acceptable.
const (
	DesiredAccuracyM = 100.0
	InvalidAccuracyM = 1500.0

	DesiredAge = 30 * time.Second
	InvalidAge = 600 * time.Second
)

func (t Tier) String() string {
	switch t {
	case TierPerfect:
		return "perfect"
	case TierAcceptable:
		return "acceptable"
	default:
		return "invalid"
	}
}

// Classify maps a sample to its quality tier relative to now.
//
// Age is taken as-is: a future-stamped sample (negative age under clock
// skew) is not clamped, so it trivially satisfies the age bounds.
func Classify(s Sample, now time.Time) Tier {
	if !s.Sane() {
		return TierInvalid
	}

	age := now.Sub(s.Time)

	if s.AccuracyM <= DesiredAccuracyM && age <= DesiredAge {
		return TierPerfect
	}
	if s.AccuracyM > InvalidAccuracyM || age > InvalidAge {
		return TierInvalid
	}
	return TierAcceptable
}
