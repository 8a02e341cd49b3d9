// Package merge reconciles candidates from all collectors into catalogue
// entries.
//
// Candidates are keyed by [catalog.MergeKey]. For each key the candidate
// from the highest-priority source wins every scalar field; candidates from
// lower-priority sources only contribute their tags. The surviving entries
// are ordered by popularity and then given slugs in that order, so slug
// assignment is deterministic for a given input.
package merge

import (
	"sort"
	"strings"
	"time"

	"github.com/matzehuels/skillcat/pkg/catalog"
	"github.com/matzehuels/skillcat/pkg/identity"
)

// Merge reconciles candidates into one entry per repository, sorted by
// [Sort], with unique slugs and content-derived IDs. collectedAt is stamped
// on every entry. The input slice is not modified.
func Merge(candidates []catalog.Candidate, collectedAt time.Time) []catalog.Entry {
	ordered := make([]catalog.Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Source.Priority() < ordered[j].Source.Priority()
	})

	index := make(map[string]int, len(ordered))
	entries := make([]catalog.Entry, 0, len(ordered))
	for i := range ordered {
		c := &ordered[i]
		key := c.Key()
		if at, ok := index[key]; ok {
			entries[at].Tags = UnionTags(entries[at].Tags, c.Tags)
			continue
		}
		index[key] = len(entries)
		entries = append(entries, newEntry(c, collectedAt))
	}

	Sort(entries)

	slugs := identity.NewSlugSet()
	for i := range entries {
		entries[i].Slug = slugs.Claim(entries[i].Name, entries[i].Author)
	}
	return entries
}

func newEntry(c *catalog.Candidate, collectedAt time.Time) catalog.Entry {
	categories := c.Categories
	if len(categories) == 0 {
		categories = []catalog.Category{c.Category}
	}
	return catalog.Entry{
		ID:           identity.ComputeID(c.FullName, c.IDSubPath()),
		Name:         c.Name,
		Description:  c.Description,
		Author:       c.Author,
		AuthorAvatar: c.AuthorAvatar,
		RepoURL:      c.RepoURL,
		RepoFullName: c.FullName,
		Path:         c.Path,
		Stars:        c.Stars,
		Forks:        c.Forks,
		Category:     c.Category,
		Categories:   append([]catalog.Category(nil), categories...),
		Tags:         UnionTags(nil, c.Tags),
		Tier:         c.Tier,
		Status:       c.Status,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		LastCommitAt: c.PushedAt,
		Source:       c.Source,
		CollectedAt:  collectedAt,
	}
}

// Sort orders entries by stars descending, then by lower-cased full name,
// then by sub-path. The sort is stable.
func Sort(entries []catalog.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := &entries[i], &entries[j]
		if a.Stars != b.Stars {
			return a.Stars > b.Stars
		}
		an, bn := strings.ToLower(a.RepoFullName), strings.ToLower(b.RepoFullName)
		if an != bn {
			return an < bn
		}
		return a.Path < b.Path
	})
}

// UnionTags appends the tags of extra not already in base. Empty tags are
// dropped. The result is never nil.
func UnionTags(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, t := range list {
			t = strings.TrimSpace(t)
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
