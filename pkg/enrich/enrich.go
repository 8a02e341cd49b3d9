// Package enrich builds detail documents for the best catalogue entries.
//
// Only entries at or above a tier cutoff are enriched. For each one the
// enricher fetches repository metadata, the first skill document it can
// find, and probes for a marketplace manifest. A failure on one entry is
// logged and that entry is skipped; enrichment continues with the next.
package enrich

import (
	"context"
	"path"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skillcat/pkg/catalog"
	"github.com/matzehuels/skillcat/pkg/httputil"
	"github.com/matzehuels/skillcat/pkg/integrations"
	"github.com/matzehuels/skillcat/pkg/integrations/github"
)

// API is the upstream surface the enricher consumes.
type API interface {
	GetRepo(ctx context.Context, owner, repo string) (*github.Repo, error)
	GetFile(ctx context.Context, owner, repo, path string) (*github.File, bool, error)
	Exists(ctx context.Context, owner, repo, path string) (bool, error)
}

var _ API = (*github.Client)(nil)

// Options control which entries are enriched and where content is looked
// for.
type Options struct {
	// TierCutoff is the worst tier still enriched.
	TierCutoff catalog.Tier

	// Documents are tried in order, relative to the entry's sub-path.
	Documents []string

	// Manifests are probed at the repository root.
	Manifests []string
}

// DefaultOptions enriches tiers 1 to 3.
var DefaultOptions = Options{
	TierCutoff: 3,
	Documents:  []string{"SKILL.md", "README.md"},
	Manifests:  []string{"marketplace.json", ".claude-plugin/marketplace.json"},
}

// Enricher builds [catalog.Detail] documents.
type Enricher struct {
	API    API
	Pacer  *httputil.Pacer
	Logger *log.Logger
	Opts   Options
}

// New returns an enricher. A nil logger uses the default logger.
func New(api API, pacer *httputil.Pacer, logger *log.Logger, opts Options) *Enricher {
	if logger == nil {
		logger = log.Default()
	}
	return &Enricher{API: api, Pacer: pacer, Logger: logger, Opts: opts}
}

// Eligible reports whether e is good enough to enrich.
func (en *Enricher) Eligible(e *catalog.Entry) bool {
	return e.Tier.Valid() && e.Tier <= en.Opts.TierCutoff
}

// Enrich builds the detail document of one entry. Only a failure to fetch
// the repository itself or the skill document is an error; a missing
// document falls back to the entry's description and a failed manifest
// probe counts as no manifest.
func (en *Enricher) Enrich(ctx context.Context, e catalog.Entry) (*catalog.Detail, error) {
	owner, name := e.Owner(), e.Repo()
	repo, err := en.API.GetRepo(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	d := catalog.NewDetail(e)
	d.License = repo.LicenseID()
	if repo.DefaultBranch != "" {
		d.DefaultBranch = repo.DefaultBranch
	}

	for _, doc := range en.Opts.Documents {
		p := path.Join(e.Path, doc)
		file, found, err := en.API.GetFile(ctx, owner, name, p)
		if err != nil {
			return nil, err
		}
		if found {
			d.Readme = file.Text()
			d.SkillPath = p
			break
		}
	}

	for _, m := range en.Opts.Manifests {
		ok, err := en.API.Exists(ctx, owner, name, m)
		if err != nil {
			en.Logger.Debug("manifest probe failed", "repo", e.RepoFullName, "path", m, "err", err)
			continue
		}
		if ok {
			d.HasMarketplaceJSON = true
			break
		}
	}
	return &d, nil
}

// Result summarizes an enrichment pass.
type Result struct {
	Attempted int
	Written   int
	Failed    int
	Duration  time.Duration
	Err       error // set when the pass was cut short by cancellation
}

// Run enriches every eligible entry in order and hands each detail to
// write. Entries that fail to enrich or to write are logged and skipped.
func (en *Enricher) Run(ctx context.Context, entries []catalog.Entry, write func(*catalog.Detail) error) Result {
	start := time.Now()
	var res Result
	for i := range entries {
		e := entries[i]
		if !en.Eligible(&e) {
			continue
		}
		if err := ctx.Err(); err != nil {
			res.Err = err
			break
		}
		res.Attempted++

		d, err := en.Enrich(ctx, e)
		switch {
		case err != nil:
			res.Failed++
			en.logFailure(e, err)
		default:
			if err := write(d); err != nil {
				res.Failed++
				en.Logger.Warn("write detail", "slug", e.Slug, "err", err)
			} else {
				res.Written++
				en.Logger.Debug("enriched", "slug", e.Slug, "document", d.SkillPath)
			}
		}

		if err := en.Pacer.AfterItem(ctx); err != nil {
			res.Err = err
			break
		}
	}
	res.Duration = time.Since(start)
	return res
}

func (en *Enricher) logFailure(e catalog.Entry, err error) {
	if integrations.Classify(err) == integrations.NotFound {
		en.Logger.Info("repository gone, skipping detail", "slug", e.Slug, "repo", e.RepoFullName)
		return
	}
	en.Logger.Warn("enrich failed", "slug", e.Slug, "repo", e.RepoFullName, "err", err)
}
