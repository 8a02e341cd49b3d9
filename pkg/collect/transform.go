package collect

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/matzehuels/skillcat/pkg/catalog"
	"github.com/matzehuels/skillcat/pkg/classify"
	errs "github.com/matzehuels/skillcat/pkg/errors"
	"github.com/matzehuels/skillcat/pkg/identity"
	"github.com/matzehuels/skillcat/pkg/integrations/github"
	"github.com/matzehuels/skillcat/pkg/quality"
)

// MaxDescription is the maximum description length in characters.
const MaxDescription = 200

// Noise filters applied to every repository-level candidate.
const (
	minStars         = 1
	minArchivedStars = 10
)

// Transform turns repository metadata into a candidate. It returns nil
// without error for repositories filtered as noise: fewer than 1 star, or
// archived with fewer than 10. A repository without a valid full name is
// MALFORMED_DATA.
func Transform(repo *github.Repo, source catalog.Source, now time.Time) (*catalog.Candidate, error) {
	if repo == nil {
		return nil, errs.New(errs.ErrCodeMalformedData, "nil repository")
	}
	if err := errs.ValidateFullName(repo.FullName); err != nil {
		return nil, errs.Wrap(errs.ErrCodeMalformedData, err, "repository metadata")
	}
	if repo.Stars < 0 {
		return nil, errs.New(errs.ErrCodeMalformedData, "%s: negative star count", repo.FullName)
	}
	if repo.Stars < minStars || (repo.Archived && repo.Stars < minArchivedStars) {
		return nil, nil
	}

	name := repo.Name
	if name == "" {
		_, name, _ = strings.Cut(repo.FullName, "/")
	}
	desc := Truncate(strings.TrimSpace(repo.Description), MaxDescription)
	category, categories := classify.Classify(classify.Text(name, desc))

	author := repo.Owner.Login
	if author == "" {
		author, _, _ = strings.Cut(repo.FullName, "/")
	}
	url := repo.HTMLURL
	if url == "" {
		url = "https://github.com/" + repo.FullName
	}

	return &catalog.Candidate{
		FullName:     repo.FullName,
		Name:         identity.ExtractSkillName(name),
		Description:  desc,
		Author:       author,
		AuthorAvatar: repo.Owner.AvatarURL,
		RepoURL:      url,
		Stars:        repo.Stars,
		Forks:        repo.Forks,
		Tags:         append([]string(nil), repo.Topics...),
		Source:       source,
		CreatedAt:    repo.CreatedAt,
		UpdatedAt:    repo.UpdatedAt,
		PushedAt:     repo.PushedAt,
		Archived:     repo.Archived,
		Category:     category,
		Categories:   categories,
		Tier:         quality.CalculateTier(repo.Stars, repo.PushedAt, now),
		Status:       quality.InferStatus(repo.Archived, repo.PushedAt, now),
	}, nil
}

// Truncate shortens s to at most n characters.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}
