// Package catalog defines the skill catalogue data model shared by every
// stage of the pipeline and by the read-side query layer.
//
// A [Candidate] is one collector's unreconciled observation of a repository
// (or of a sub-directory of a repository for curated listings). The merge
// stage reconciles candidates into [Entry] values, one per logical skill, and
// the snapshot stage wraps them in a versioned [Snapshot]. Higher-tier entries
// additionally get a [Detail] document.
//
// JSON field names are part of the persisted catalogue format and must not
// change without bumping [FormatVersion].
package catalog

import (
	"fmt"
	"strings"
	"time"
)

// FormatVersion is the version tag written into every snapshot.
const FormatVersion = "2.0"

// DefaultDescription is used when no description can be extracted.
const DefaultDescription = "No description available"

// =============================================================================
// Provenance
// =============================================================================

// Source identifies the discovery strategy that produced a candidate.
type Source string

const (
	SourceOfficial Source = "anthropics-official"
	SourceTopic    Source = "github-topic"
	SourceSearch   Source = "github-search"
	SourceManual   Source = "manual"
)

// Priority returns the merge priority of a source. Lower wins.
// Unknown sources sort after every known one.
func (s Source) Priority() int {
	switch s {
	case SourceOfficial:
		return 1
	case SourceTopic:
		return 2
	case SourceSearch:
		return 3
	case SourceManual:
		return 4
	default:
		return 99
	}
}

// =============================================================================
// Classification
// =============================================================================

// Category is the primary functional area of a skill.
type Category string

const (
	CategoryTesting       Category = "testing"
	CategoryDevOps        Category = "devops"
	CategoryAutomation    Category = "automation"
	CategoryWriting       Category = "writing"
	CategoryDocumentation Category = "documentation"
	CategoryProductivity  Category = "productivity"
	CategorySecurity      Category = "security"
	CategoryAIML          Category = "ai-ml"
	CategoryCoding        Category = "coding"
	CategoryOther         Category = "other"
)

// Categories lists every category in classifier rule order, followed by the
// catch-all.
var Categories = []Category{
	CategoryTesting,
	CategoryDevOps,
	CategoryAutomation,
	CategoryWriting,
	CategoryDocumentation,
	CategoryProductivity,
	CategorySecurity,
	CategoryAIML,
	CategoryCoding,
	CategoryOther,
}

// Tier is an ordinal quality classification, 1 (best) to 5 (worst).
type Tier int

const (
	TierBest  Tier = 1
	TierWorst Tier = 5
)

// Valid reports whether t is within 1..5.
func (t Tier) Valid() bool { return t >= TierBest && t <= TierWorst }

// Status is the lifecycle status of a skill's repository.
type Status string

const (
	StatusActive     Status = "active"
	StatusMaintained Status = "maintained"
	StatusArchived   Status = "archived"
	StatusUnknown    Status = "unknown"
)

// =============================================================================
// Records
// =============================================================================

// Candidate is one collector's observation of a skill. Collectors fill in
// Category, Tier and Status; the merge stage assigns identity.
type Candidate struct {
	FullName     string // owner/repo, case preserved
	Path         string // sub-directory within the repository, empty for whole-repo skills
	IDPath       string // sub-path hashed into the ID when it differs from Path
	Name         string
	Description  string
	Author       string
	AuthorAvatar string
	RepoURL      string
	Stars        int
	Forks        int
	Tags         []string
	Source       Source
	CreatedAt    time.Time
	UpdatedAt    time.Time
	PushedAt     time.Time
	Archived     bool

	Category   Category
	Categories []Category
	Tier       Tier
	Status     Status
}

// IDSubPath returns the sub-path that identifies the candidate within its
// repository.
func (c *Candidate) IDSubPath() string {
	if c.IDPath != "" {
		return c.IDPath
	}
	return c.Path
}

// Key returns the merge key: the lower-cased full name. Candidates for
// different sub-paths of one repository share a key.
func (c *Candidate) Key() string {
	return MergeKey(c.FullName)
}

// MergeKey builds the identity key used to reconcile candidates.
func MergeKey(fullName string) string {
	return strings.ToLower(strings.TrimSpace(fullName))
}

// Entry is the reconciled catalogue record for one skill.
type Entry struct {
	ID           string     `json:"id"`
	Slug         string     `json:"slug"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Author       string     `json:"author"`
	AuthorAvatar string     `json:"authorAvatar"`
	RepoURL      string     `json:"repoUrl"`
	RepoFullName string     `json:"repoFullName"`
	Path         string     `json:"path,omitempty"`
	Stars        int        `json:"stars"`
	Forks        int        `json:"forks"`
	Category     Category   `json:"category"`
	Categories   []Category `json:"categories"`
	Tags         []string   `json:"tags"`
	Tier         Tier       `json:"tier"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastCommitAt time.Time  `json:"lastCommitAt"`
	Source       Source     `json:"source"`
	CollectedAt  time.Time  `json:"collectedAt"`
}

// Key returns the merge key of the entry.
func (e *Entry) Key() string {
	return MergeKey(e.RepoFullName)
}

// Owner returns the repository owner part of RepoFullName.
func (e *Entry) Owner() string {
	owner, _, _ := strings.Cut(e.RepoFullName, "/")
	return owner
}

// Repo returns the repository name part of RepoFullName.
func (e *Entry) Repo() string {
	_, repo, _ := strings.Cut(e.RepoFullName, "/")
	return repo
}

// HasCategory reports whether c is the entry's primary category or one of
// its secondary categories.
func (e *Entry) HasCategory(c Category) bool {
	if e.Category == c {
		return true
	}
	for _, x := range e.Categories {
		if x == c {
			return true
		}
	}
	return false
}

// Detail is an entry plus extended content fetched during enrichment.
type Detail struct {
	Entry
	AuthorURL          string  `json:"authorUrl"`
	License            *string `json:"license"`
	Readme             string  `json:"readme"`
	InstallCommand     string  `json:"installCommand"`
	DefaultBranch      string  `json:"defaultBranch"`
	HasMarketplaceJSON bool    `json:"hasMarketplaceJson"`
	SkillPath          string  `json:"skillPath"`
}

// NewDetail derives the minimal detail view of an entry. Enrichment starts
// from it; readers synthesize it when no detail document exists.
func NewDetail(e Entry) Detail {
	return Detail{
		Entry:          e,
		AuthorURL:      AuthorURL(e.Author),
		Readme:         e.Description,
		InstallCommand: InstallCommand(e.RepoURL, e.Slug),
		DefaultBranch:  "main",
	}
}

// AuthorURL returns the profile URL of a repository owner.
func AuthorURL(author string) string {
	return "https://github.com/" + author
}

// InstallCommand returns the shell command that installs a skill locally.
func InstallCommand(repoURL, slug string) string {
	return fmt.Sprintf("git clone %s ~/.claude/skills/%s", repoURL, slug)
}

// =============================================================================
// Snapshot
// =============================================================================

// Stats holds aggregate counts over a snapshot's entries.
type Stats struct {
	BySource   map[Source]int   `json:"bySource"`
	ByTier     map[Tier]int     `json:"byTier"`
	ByCategory map[Category]int `json:"byCategory"`
}

// Snapshot is one complete publication of the catalogue.
type Snapshot struct {
	Version     string    `json:"version"`
	Total       int       `json:"total"`
	LastUpdated time.Time `json:"lastUpdated"`
	GeneratedAt time.Time `json:"generatedAt"`
	Stats       Stats     `json:"stats"`
	Skills      []Entry   `json:"skills"`
}

// EmptySnapshot returns a snapshot with no entries and present-but-empty
// stats, the value readers fall back to when no index exists.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		Version: FormatVersion,
		Stats: Stats{
			BySource:   map[Source]int{},
			ByTier:     map[Tier]int{},
			ByCategory: map[Category]int{},
		},
		Skills: []Entry{},
	}
}
