package collect

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/skillcat/pkg/catalog"
	"github.com/matzehuels/skillcat/pkg/integrations/github"
	"github.com/matzehuels/skillcat/pkg/quality"
)

// TopicSearch collects repositories tagged with a topic, most starred first.
type TopicSearch struct {
	Env
	Topic  string
	Paging Paging
}

// NewTopicSearch returns a collector for one topic.
func NewTopicSearch(env Env, topic string, p Paging) *TopicSearch {
	return &TopicSearch{Env: env, Topic: topic, Paging: p.normalized()}
}

func (t *TopicSearch) Name() string           { return "topic:" + t.Topic }
func (t *TopicSearch) Source() catalog.Source { return catalog.SourceTopic }

func (t *TopicSearch) Collect(ctx context.Context) ([]catalog.Candidate, *catalog.CollectorReport) {
	r := startRun(t.Env, t.Name(), t.Source())
	p := t.Paging.normalized()
	now := t.now()
	var out []catalog.Candidate

	for page := 1; page <= p.MaxPages; page++ {
		res, err := t.API.SearchRepos(ctx, "topic:"+t.Topic, page, p.PageSize)
		if err != nil {
			r.abort(err)
			break
		}
		r.report.Pages++
		r.logger.Debug("page", "page", page, "items", len(res.Items))

		for i := range res.Items {
			repo := &res.Items[i]
			r.report.Attempted++
			c, err := Transform(repo, t.Source(), now)
			switch {
			case err != nil:
				r.handle(repo.FullName, err)
			case c == nil:
				r.report.Skipped++
			default:
				out = append(out, *c)
				r.logger.Debug("collected", "repo", repo.FullName, "stars", repo.Stars)
			}
		}

		if !res.HasMore(p.PageSize) {
			break
		}
		if err := t.Pacer.AfterPage(ctx); err != nil {
			r.abort(err)
			break
		}
	}
	return r.finish(out)
}

// FilenameSearch collects repositories containing a file matched by a code
// search query. Each repository is fetched once per invocation, however many
// files in it match.
type FilenameSearch struct {
	Env
	Label  string
	Query  string
	Paging Paging

	// Exclude lists repositories to ignore, typically those covered by a
	// curated listing.
	Exclude []string

	// Tags are appended to every candidate.
	Tags []string

	// TierBonus improves every candidate's tier by one level.
	TierBonus bool
}

// NewFilenameSearch returns a collector for repositories containing a file
// named filename anywhere.
func NewFilenameSearch(env Env, filename string, p Paging, exclude []string) *FilenameSearch {
	return &FilenameSearch{
		Env:     env,
		Label:   "filename:" + filename,
		Query:   "filename:" + filename,
		Paging:  p.normalized(),
		Exclude: exclude,
	}
}

// NewMarketplace returns a collector for repositories with a
// marketplace.json at their root. Such repositories are tagged
// "marketplace" and get the tier bonus.
func NewMarketplace(env Env, p Paging, exclude []string) *FilenameSearch {
	return &FilenameSearch{
		Env:       env,
		Label:     "marketplace",
		Query:     "filename:marketplace.json path:/",
		Paging:    p.normalized(),
		Exclude:   exclude,
		Tags:      []string{"marketplace"},
		TierBonus: true,
	}
}

func (f *FilenameSearch) Name() string           { return f.Label }
func (f *FilenameSearch) Source() catalog.Source { return catalog.SourceSearch }

func (f *FilenameSearch) Collect(ctx context.Context) ([]catalog.Candidate, *catalog.CollectorReport) {
	r := startRun(f.Env, f.Name(), f.Source())
	p := f.Paging.normalized()
	now := f.now()
	var out []catalog.Candidate

	seen := make(map[string]bool)
	for _, x := range f.Exclude {
		seen[strings.ToLower(x)] = true
	}

pages:
	for page := 1; page <= p.MaxPages; page++ {
		res, err := f.API.SearchCode(ctx, f.Query, page, p.PageSize)
		if err != nil {
			r.abort(err)
			break
		}
		r.report.Pages++
		r.logger.Debug("page", "page", page, "items", len(res.Items))

		for _, hit := range res.Items {
			ref := hit.Repository
			key := strings.ToLower(ref.FullName)
			if ref.FullName == "" || seen[key] {
				continue
			}
			seen[key] = true
			r.report.Attempted++

			c, abort := f.fetch(ctx, r, ref, now)
			if abort {
				break pages
			}
			if c != nil {
				out = append(out, *c)
			}
			if err := f.Pacer.AfterItem(ctx); err != nil {
				r.abort(err)
				break pages
			}
		}

		if !res.HasMore(p.PageSize) {
			break
		}
		if err := f.Pacer.AfterPage(ctx); err != nil {
			r.abort(err)
			break
		}
	}
	return r.finish(out)
}

func (f *FilenameSearch) fetch(ctx context.Context, r *run, ref github.RepoRef, now time.Time) (*catalog.Candidate, bool) {
	owner, name := ref.Owner.Login, ref.Name
	if owner == "" || name == "" {
		owner, name, _ = strings.Cut(ref.FullName, "/")
	}
	repo, err := f.API.GetRepo(ctx, owner, name)
	if err != nil {
		return nil, r.handle(ref.FullName, err)
	}
	c, err := Transform(repo, f.Source(), now)
	if err != nil {
		return nil, r.handle(ref.FullName, err)
	}
	if c == nil {
		r.report.Skipped++
		return nil, false
	}
	c.Tags = append(c.Tags, f.Tags...)
	if f.TierBonus {
		c.Tier = quality.Promote(c.Tier)
	}
	r.logger.Debug("collected", "repo", c.FullName, "stars", c.Stars)
	return c, false
}
