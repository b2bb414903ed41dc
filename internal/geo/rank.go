package geo

import "time"

// FreshnessWindow is the timestamp gap beyond which recency dominates
// accuracy when comparing two Acceptable candidates.
const FreshnessWindow = 60 * time.Second

// Candidate is a sample plus the tier computed when it entered the
// arbitration state.
type Candidate struct {
	Sample Sample
	Tier   Tier
}

// MakeCandidate classifies a raw sample against now and wraps it.
func MakeCandidate(s Sample, now time.Time) Candidate {
	return Candidate{Sample: s, Tier: Classify(s, now)}
}

// Less is a strict weak ordering over candidates; the maximum under it is
// the preferred candidate. Rules:
//
//   - different tiers: the higher tier wins (Perfect > Acceptable > Invalid)
//   - both Perfect: the newer timestamp wins, regardless of accuracy
//   - both Acceptable: more than FreshnessWindow apart, the newer wins;
//     otherwise the smaller accuracy value wins
//   - both Invalid: no preference
func Less(a, b Candidate) bool {
	if a.Tier != b.Tier {
		return a.Tier < b.Tier
	}

	switch a.Tier {
	case TierPerfect:
		return a.Sample.Time.Before(b.Sample.Time)

	case TierAcceptable:
		gap := a.Sample.Time.Sub(b.Sample.Time)
		if gap < 0 {
			gap = -gap
		}
		if gap > FreshnessWindow {
			return a.Sample.Time.Before(b.Sample.Time)
		}
		return a.Sample.AccuracyM > b.Sample.AccuracyM

	default:
		return false
	}
}

// Best returns the maximum candidate under Less, or false for an empty
// set. Ties keep the earliest-inserted candidate, which makes repeated
// evaluation of the same set stable.
func Best(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if Less(best, c) {
			best = c
		}
	}
	return best, true
}
