// Package query is the read side of the catalogue.
//
// A [Catalog] loads a published index once and answers lookups, filters,
// searches and sorts over it without touching the upstream API. Detail
// documents are loaded lazily, cached in a bounded LRU and, when absent,
// synthesized from the index entry.
package query

import (
	"context"
	"slices"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/skillcat/pkg/catalog"
	errs "github.com/matzehuels/skillcat/pkg/errors"
)

// DefaultDetailCacheSize bounds the number of detail documents kept in
// memory.
const DefaultDetailCacheSize = 256

// Source provides published documents. *store.FileStore implements it.
type Source interface {
	ReadIndex() (*catalog.Snapshot, error)
	ReadDetail(slug string) (*catalog.Detail, error)
}

// Catalog answers queries over one loaded snapshot.
type Catalog struct {
	src Source

	mu     sync.RWMutex
	snap   *catalog.Snapshot
	bySlug map[string]int

	details *lru.Cache[string, *catalog.Detail]
	group   singleflight.Group
}

// Open loads the index from src. A missing index yields an empty catalogue.
func Open(src Source) (*Catalog, error) {
	return OpenSize(src, DefaultDetailCacheSize)
}

// OpenSize is [Open] with an explicit detail cache size.
func OpenSize(src Source, cacheSize int) (*Catalog, error) {
	details, err := lru.New[string, *catalog.Detail](cacheSize)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "detail cache")
	}
	c := &Catalog{src: src, details: details}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the index and drops cached details.
func (c *Catalog) Reload() error {
	snap, err := c.src.ReadIndex()
	if errs.Is(err, errs.ErrCodeNotFound) {
		snap, err = catalog.EmptySnapshot(), nil
	}
	if err != nil {
		return err
	}
	if snap.Skills == nil {
		snap.Skills = []catalog.Entry{}
	}

	bySlug := make(map[string]int, len(snap.Skills))
	for i, e := range snap.Skills {
		bySlug[e.Slug] = i
	}

	c.mu.Lock()
	c.snap, c.bySlug = snap, bySlug
	c.mu.Unlock()
	c.details.Purge()
	return nil
}

// Index returns the loaded snapshot. Callers must not modify it.
func (c *Catalog) Index() *catalog.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Entries returns a copy of every entry in snapshot order.
func (c *Catalog) Entries() []catalog.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]catalog.Entry(nil), c.snap.Skills...)
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snap.Skills)
}

// Entry looks up an entry by slug.
func (c *Catalog) Entry(slug string) (catalog.Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.bySlug[slug]
	if !ok {
		return catalog.Entry{}, false
	}
	return c.snap.Skills[i], true
}

// Slugs returns every slug in snapshot order.
func (c *Catalog) Slugs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.snap.Skills))
	for i, e := range c.snap.Skills {
		out[i] = e.Slug
	}
	return out
}

// ByCategory returns the entries whose primary or secondary category is cat.
func (c *Catalog) ByCategory(cat catalog.Category) []catalog.Entry {
	return c.filter(func(e *catalog.Entry) bool { return e.HasCategory(cat) })
}

// ByTier returns the entries of tier t.
func (c *Catalog) ByTier(t catalog.Tier) []catalog.Entry {
	return c.filter(func(e *catalog.Entry) bool { return e.Tier == t })
}

func (c *Catalog) filter(keep func(*catalog.Entry) bool) []catalog.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []catalog.Entry{}
	for i := range c.snap.Skills {
		if keep(&c.snap.Skills[i]) {
			out = append(out, c.snap.Skills[i])
		}
	}
	return out
}

// Detail returns the detail document for slug. When the entry exists but
// was never enriched, a minimal detail is synthesized from the index
// entry. An unknown slug is ErrCodeNotFound.
func (c *Catalog) Detail(ctx context.Context, slug string) (*catalog.Detail, error) {
	if err := errs.ValidateSlug(slug); err != nil {
		return nil, err
	}
	if d, ok := c.details.Get(slug); ok {
		return copyDetail(d), nil
	}

	v, err, _ := c.group.Do(slug, func() (any, error) {
		return c.loadDetail(slug)
	})
	if err != nil {
		return nil, err
	}
	return copyDetail(v.(*catalog.Detail)), nil
}

func (c *Catalog) loadDetail(slug string) (*catalog.Detail, error) {
	entry, ok := c.Entry(slug)
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "no skill with slug %q", slug)
	}

	d, err := c.src.ReadDetail(slug)
	switch {
	case errs.Is(err, errs.ErrCodeNotFound):
		d = nil
	case err != nil:
		return nil, err
	}
	// A document written for an earlier holder of the slug is not served.
	if d == nil || d.ID != entry.ID {
		synth := catalog.NewDetail(entry)
		d = &synth
	}
	c.details.Add(slug, d)
	return d, nil
}

// copyDetail returns a deep copy so callers cannot modify cached values.
func copyDetail(d *catalog.Detail) *catalog.Detail {
	out := *d
	out.Tags = slices.Clone(d.Tags)
	out.Categories = slices.Clone(d.Categories)
	if d.License != nil {
		license := *d.License
		out.License = &license
	}
	return &out
}
