package collect

import (
	"context"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/skillcat/pkg/catalog"
	errs "github.com/matzehuels/skillcat/pkg/errors"
	"github.com/matzehuels/skillcat/pkg/integrations/github"
)

// ManualEntry is one hand-maintained repository.
type ManualEntry struct {
	Repo string   `yaml:"repo"`
	Tags []string `yaml:"tags"`
}

type manualFile struct {
	Repos []ManualEntry `yaml:"repos"`
}

// LoadManual reads a manual entries file:
//
//	repos:
//	  - repo: owner/name
//	    tags: [cli, git]
//
// Every repository reference is validated.
func LoadManual(path string) ([]ManualEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read manual entries")
	}
	var f manualFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	for i, e := range f.Repos {
		if err := errs.ValidateFullName(e.Repo); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "%s: entry %d", path, i+1)
		}
		f.Repos[i].Repo = strings.TrimSpace(e.Repo)
	}
	return f.Repos, nil
}

// Manual collects a fixed list of repositories. The entries go through the
// same noise filter as search results.
type Manual struct {
	Env
	Entries []ManualEntry
}

// NewManual returns a collector for entries.
func NewManual(env Env, entries []ManualEntry) *Manual {
	return &Manual{Env: env, Entries: entries}
}

func (m *Manual) Name() string           { return "manual" }
func (m *Manual) Source() catalog.Source { return catalog.SourceManual }

func (m *Manual) Collect(ctx context.Context) ([]catalog.Candidate, *catalog.CollectorReport) {
	r := startRun(m.Env, m.Name(), m.Source())
	now := m.now()
	var out []catalog.Candidate

	for _, e := range m.Entries {
		r.report.Attempted++
		owner, name, err := github.ParseRepoRef(e.Repo)
		if err != nil {
			r.report.Failed++
			r.logger.Warn("invalid manual entry", "repo", e.Repo, "err", err)
			continue
		}

		repo, err := m.API.GetRepo(ctx, owner, name)
		if err == nil {
			var c *catalog.Candidate
			c, err = Transform(repo, m.Source(), now)
			switch {
			case err == nil && c == nil:
				r.report.Skipped++
				r.logger.Debug("filtered", "repo", e.Repo, "stars", repo.Stars)
			case err == nil:
				c.Tags = append(c.Tags, e.Tags...)
				out = append(out, *c)
			}
		}
		if r.handle(e.Repo, err) {
			break
		}

		if err := m.Pacer.AfterItem(ctx); err != nil {
			r.abort(err)
			break
		}
	}
	return r.finish(out)
}
