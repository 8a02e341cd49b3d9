// Package quality scores repositories into tiers and lifecycle statuses.
//
// Tiers combine a minimum star count with a maximum age since the last
// push. Bands are evaluated best to worst and the first satisfied band wins:
//
//	tier 1: stars >= 100 and age <= 30 days
//	tier 2: stars >= 20  and age <= 90 days
//	tier 3: stars >= 5   and age <= 180 days
//	tier 4: stars >= 2   and age <= 365 days
//	tier 5: everything else
//
// Functions take the evaluation time explicitly so results are reproducible.
// A zero timestamp means "never active" and always lands in the worst band.
package quality

import (
	"math"
	"time"

	"github.com/matzehuels/skillcat/pkg/catalog"
)

// Band is one tier threshold.
type Band struct {
	Tier     catalog.Tier
	MinStars int
	MaxAge   int // days
}

// Bands lists tiers 1 through 4 in evaluation order.
var Bands = []Band{
	{Tier: 1, MinStars: 100, MaxAge: 30},
	{Tier: 2, MinStars: 20, MaxAge: 90},
	{Tier: 3, MinStars: 5, MaxAge: 180},
	{Tier: 4, MinStars: 2, MaxAge: 365},
}

const (
	activeDays     = 30
	maintainedDays = 365
)

// AgeDays returns the whole days elapsed from t to now, rounded down.
func AgeDays(t, now time.Time) int {
	if t.IsZero() {
		return math.MaxInt32
	}
	return int(math.Floor(now.Sub(t).Hours() / 24))
}

// TierForAge applies the tier bands to a star count and an age in days.
func TierForAge(stars, ageDays int) catalog.Tier {
	for _, b := range Bands {
		if stars >= b.MinStars && ageDays <= b.MaxAge {
			return b.Tier
		}
	}
	return catalog.TierWorst
}

// CalculateTier scores a repository by stars and last activity as of now.
func CalculateTier(stars int, lastActivity, now time.Time) catalog.Tier {
	return TierForAge(stars, AgeDays(lastActivity, now))
}

// StatusForAge derives the lifecycle status from the archival flag and an
// age in days. Archival always wins.
func StatusForAge(archived bool, ageDays int) catalog.Status {
	switch {
	case archived:
		return catalog.StatusArchived
	case ageDays <= activeDays:
		return catalog.StatusActive
	case ageDays <= maintainedDays:
		return catalog.StatusMaintained
	default:
		return catalog.StatusUnknown
	}
}

// InferStatus derives the lifecycle status as of now.
func InferStatus(archived bool, lastActivity, now time.Time) catalog.Status {
	return StatusForAge(archived, AgeDays(lastActivity, now))
}

// Promote improves a tier by one level, never past the best tier.
func Promote(t catalog.Tier) catalog.Tier {
	if t > catalog.TierBest {
		return t - 1
	}
	return t
}
