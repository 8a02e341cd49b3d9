// Package snapshot assembles the versioned catalogue document.
package snapshot

import (
	"time"

	"github.com/matzehuels/skillcat/pkg/catalog"
)

// Build wraps entries in a snapshot. lastUpdated is the moment the catalogue
// reflects (the run start); generatedAt is when it was assembled. The
// snapshot always has non-nil stats maps and skills list, so an empty pool
// still serializes to a complete document.
func Build(entries []catalog.Entry, lastUpdated, generatedAt time.Time) *catalog.Snapshot {
	s := catalog.EmptySnapshot()
	if entries != nil {
		s.Skills = entries
	}
	s.Total = len(s.Skills)
	s.LastUpdated = lastUpdated.UTC()
	s.GeneratedAt = generatedAt.UTC()
	s.Stats = ComputeStats(s.Skills)
	return s
}

// ComputeStats counts entries by source, tier and primary category in a
// single pass.
func ComputeStats(entries []catalog.Entry) catalog.Stats {
	st := catalog.Stats{
		BySource:   map[catalog.Source]int{},
		ByTier:     map[catalog.Tier]int{},
		ByCategory: map[catalog.Category]int{},
	}
	for i := range entries {
		e := &entries[i]
		st.BySource[e.Source]++
		st.ByTier[e.Tier]++
		st.ByCategory[e.Category]++
	}
	return st
}
