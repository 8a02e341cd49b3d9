package collect

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/matzehuels/skillcat/pkg/catalog"
	"github.com/matzehuels/skillcat/pkg/classify"
	"github.com/matzehuels/skillcat/pkg/config"
	"github.com/matzehuels/skillcat/pkg/identity"
	"github.com/matzehuels/skillcat/pkg/integrations/github"
)

// Curated collects one skill per subdirectory of a curated repository.
//
// With a Document configured, subdirectories without that file are skipped
// and the name and description come from the document. With only Manifests
// configured, every subdirectory is a skill and the first manifest found
// supplies the name and description.
//
// Curated entries are trusted: every one gets the best tier and the active
// status regardless of repository activity.
type Curated struct {
	Env
	Listing config.Listing
}

// NewCurated returns a collector for one curated listing.
func NewCurated(env Env, l config.Listing) *Curated {
	return &Curated{Env: env, Listing: l}
}

func (c *Curated) Name() string           { return "curated:" + c.Listing.Repo }
func (c *Curated) Source() catalog.Source { return catalog.SourceOfficial }

func (c *Curated) Collect(ctx context.Context) ([]catalog.Candidate, *catalog.CollectorReport) {
	r := startRun(c.Env, c.Name(), c.Source())
	var out []catalog.Candidate

	owner, name, err := github.ParseRepoRef(c.Listing.Repo)
	if err != nil {
		r.abort(err)
		return r.finish(out)
	}
	repo, err := c.API.GetRepo(ctx, owner, name)
	if err != nil {
		r.abort(err)
		return r.finish(out)
	}
	items, err := c.API.ListDir(ctx, owner, name, c.Listing.Dir)
	if err != nil {
		r.abort(err)
		return r.finish(out)
	}
	r.report.Pages = 1

	branch := c.Listing.Branch
	if branch == "" {
		branch = repo.DefaultBranch
	}
	if branch == "" {
		branch = "main"
	}

	for _, item := range items {
		if !item.IsDir() || strings.HasPrefix(item.Name, ".") {
			continue
		}
		r.report.Attempted++

		doc, found, err := c.describe(ctx, owner, name, item)
		if r.handle(item.Path, err) {
			break
		}
		if err == nil && !found {
			r.report.Skipped++
			r.logger.Debug("no skill document", "dir", item.Path)
		}
		if err == nil && found {
			out = append(out, c.candidate(repo, branch, item, doc))
			r.logger.Debug("collected", "dir", item.Path)
		}

		if err := c.Pacer.AfterItem(ctx); err != nil {
			r.abort(err)
			break
		}
	}
	return r.finish(out)
}

// describe reads the name and description of one subdirectory. found is
// false only for document listings whose document is absent.
func (c *Curated) describe(ctx context.Context, owner, repo string, item github.ContentItem) (Document, bool, error) {
	fallback := identity.ExtractSkillName(item.Name)

	if c.Listing.Document != "" {
		file, found, err := c.API.GetFile(ctx, owner, repo, path.Join(item.Path, c.Listing.Document))
		if err != nil || !found {
			return Document{}, false, err
		}
		doc := ParseDocument(file.Text())
		if doc.Name == "" {
			doc.Name = fallback
		}
		if doc.Description == "" {
			doc.Description = catalog.DefaultDescription
		}
		return doc, true, nil
	}

	var doc Document
	for _, m := range c.Listing.Manifests {
		file, found, err := c.API.GetFile(ctx, owner, repo, path.Join(item.Path, m))
		if err != nil {
			return Document{}, false, err
		}
		if !found {
			continue
		}
		if d, ok := ParseManifest(file.Content); ok {
			doc = d
			break
		}
		c.logger().Debug("unreadable manifest", "path", file.Path)
	}
	if doc.Name == "" {
		doc.Name = fallback
	}
	if doc.Description == "" {
		doc.Description = fmt.Sprintf("Official plugin: %s", item.Name)
	}
	return doc, true, nil
}

// relativePath strips the listing directory, so skills are identified by
// their directory name under the listing.
func (c *Curated) relativePath(p string) string {
	dir := strings.Trim(c.Listing.Dir, "/")
	if dir == "" {
		return p
	}
	return strings.TrimPrefix(p, dir+"/")
}

func (c *Curated) candidate(repo *github.Repo, branch string, item github.ContentItem, doc Document) catalog.Candidate {
	category, categories := classify.Classify(classify.Text(doc.Name, doc.Description))
	return catalog.Candidate{
		FullName:     repo.FullName,
		Path:         item.Path,
		IDPath:       c.relativePath(item.Path),
		Name:         doc.Name,
		Description:  doc.Description,
		Author:       repo.Owner.Login,
		AuthorAvatar: repo.Owner.AvatarURL,
		RepoURL:      fmt.Sprintf("https://github.com/%s/tree/%s/%s", repo.FullName, branch, item.Path),
		Stars:        repo.Stars,
		Forks:        repo.Forks,
		Tags:         append([]string(nil), c.Listing.Tags...),
		Source:       catalog.SourceOfficial,
		CreatedAt:    repo.CreatedAt,
		UpdatedAt:    repo.UpdatedAt,
		PushedAt:     repo.PushedAt,
		Archived:     repo.Archived,
		Category:     category,
		Categories:   categories,
		Tier:         catalog.TierBest,
		Status:       catalog.StatusActive,
	}
}
