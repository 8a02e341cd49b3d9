package query

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/matzehuels/skillcat/pkg/catalog"
	errs "github.com/matzehuels/skillcat/pkg/errors"
)

// SortKey orders search results.
type SortKey string

const (
	SortRelevance SortKey = ""
	SortStars     SortKey = "stars"
	SortUpdated   SortKey = "updated"
	SortName      SortKey = "name"
)

// ParseSortKey validates a user-supplied sort key.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortRelevance, SortStars, SortUpdated, SortName:
		return k, nil
	case "relevance":
		return SortRelevance, nil
	default:
		return "", errs.New(errs.ErrCodeInvalidInput, "unknown sort %q (want stars, updated or name)", s)
	}
}

// Fuzzy field weights and the cut-off relative to the best match.
const (
	weightName        = 0.4
	weightDescription = 0.3
	weightTags        = 0.2
	weightAuthor      = 0.1

	FuzzyThreshold = 0.3
)

// Search returns the entries whose name, description, author or one of
// whose tags contains q, case-insensitively, in input order. An empty
// query returns every entry.
func Search(entries []catalog.Entry, q string) []catalog.Entry {
	q = strings.ToLower(strings.TrimSpace(q))
	out := []catalog.Entry{}
	for _, e := range entries {
		if q == "" || matches(&e, q) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e *catalog.Entry, q string) bool {
	if strings.Contains(strings.ToLower(e.Name), q) ||
		strings.Contains(strings.ToLower(e.Description), q) ||
		strings.Contains(strings.ToLower(e.Author), q) {
		return true
	}
	for _, t := range e.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// field adapts one entry attribute to fuzzy.Source.
type field struct {
	entries []catalog.Entry
	get     func(*catalog.Entry) string
}

func (f field) String(i int) string { return f.get(&f.entries[i]) }
func (f field) Len() int            { return len(f.entries) }

// FuzzySearch ranks entries by a weighted fuzzy match over name,
// description, tags and author. Each field's scores are normalized to
// (0.5, 1] before weighting; results scoring below [FuzzyThreshold] of the
// best are dropped. Ties keep input order.
func FuzzySearch(entries []catalog.Entry, q string) []catalog.Entry {
	q = strings.TrimSpace(q)
	if q == "" {
		return append([]catalog.Entry{}, entries...)
	}

	fields := []struct {
		weight float64
		get    func(*catalog.Entry) string
	}{
		{weightName, func(e *catalog.Entry) string { return e.Name }},
		{weightDescription, func(e *catalog.Entry) string { return e.Description }},
		{weightTags, func(e *catalog.Entry) string { return strings.Join(e.Tags, " ") }},
		{weightAuthor, func(e *catalog.Entry) string { return e.Author }},
	}

	scores := make([]float64, len(entries))
	for _, f := range fields {
		ms := fuzzy.FindFrom(q, field{entries: entries, get: f.get})
		if len(ms) == 0 {
			continue
		}
		lo, hi := ms[0].Score, ms[0].Score
		for _, m := range ms {
			lo, hi = min(lo, m.Score), max(hi, m.Score)
		}
		for _, m := range ms {
			norm := 1.0
			if hi > lo {
				norm = 0.5 + 0.5*float64(m.Score-lo)/float64(hi-lo)
			}
			scores[m.Index] += f.weight * norm
		}
	}

	best := 0.0
	for _, s := range scores {
		best = max(best, s)
	}
	if best == 0 {
		return []catalog.Entry{}
	}

	idx := []int{}
	for i, s := range scores {
		if s > 0 && s >= FuzzyThreshold*best {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })

	out := make([]catalog.Entry, len(idx))
	for i, j := range idx {
		out[i] = entries[j]
	}
	return out
}

// Sort orders entries in place. Stars and updated sort descending; name
// sorts ascending by locale collation. Ties fall back to slug so the order
// is total. SortRelevance leaves entries untouched.
func Sort(entries []catalog.Entry, key SortKey) {
	var less func(a, b *catalog.Entry) bool
	switch key {
	case SortStars:
		less = func(a, b *catalog.Entry) bool { return a.Stars > b.Stars }
	case SortUpdated:
		less = func(a, b *catalog.Entry) bool { return a.UpdatedAt.After(b.UpdatedAt) }
	case SortName:
		col := collate.New(language.English, collate.IgnoreCase)
		less = func(a, b *catalog.Entry) bool { return col.CompareString(a.Name, b.Name) < 0 }
	default:
		return
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := &entries[i], &entries[j]
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.Slug < b.Slug
	})
}

// Query combines the filters, search and sort of one request.
type Query struct {
	Text     string
	Fuzzy    bool
	Category catalog.Category
	Tier     catalog.Tier
	Sort     SortKey
	Limit    int
}

// Find runs q against the catalogue: category and tier filters first,
// then the text search, then the sort and limit. Without an explicit sort
// a fuzzy search keeps relevance order and everything else sorts by
// stars.
func (c *Catalog) Find(q Query) []catalog.Entry {
	out := c.filter(func(e *catalog.Entry) bool {
		if q.Category != "" && !e.HasCategory(q.Category) {
			return false
		}
		return q.Tier == 0 || e.Tier == q.Tier
	})

	fuzzyRanked := q.Fuzzy && strings.TrimSpace(q.Text) != ""
	if fuzzyRanked {
		out = FuzzySearch(out, q.Text)
	} else {
		out = Search(out, q.Text)
	}

	key := q.Sort
	if key == SortRelevance && !fuzzyRanked {
		key = SortStars
	}
	Sort(out, key)

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
