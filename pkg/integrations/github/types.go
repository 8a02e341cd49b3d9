package github

import (
	"strings"
	"time"
)

// Owner is the account that owns a repository.
type Owner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// License is the detected license of a repository.
type License struct {
	SPDXID string `json:"spdx_id"`
}

// Repo is the subset of repository metadata the catalogue uses. Search
// results and GET /repos/{owner}/{repo} share this shape.
type Repo struct {
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   string    `json:"description"`
	HTMLURL       string    `json:"html_url"`
	Owner         Owner     `json:"owner"`
	Stars         int       `json:"stargazers_count"`
	Forks         int       `json:"forks_count"`
	Topics        []string  `json:"topics"`
	Archived      bool      `json:"archived"`
	Fork          bool      `json:"fork"`
	DefaultBranch string    `json:"default_branch"`
	License       *License  `json:"license"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	PushedAt      time.Time `json:"pushed_at"`
}

// LicenseID returns the SPDX identifier, or nil when GitHub reports no
// license or an unrecognized one.
func (r *Repo) LicenseID() *string {
	if r.License == nil || r.License.SPDXID == "" || r.License.SPDXID == "NOASSERTION" {
		return nil
	}
	id := r.License.SPDXID
	return &id
}

// RepoPage is one page of repository search results.
type RepoPage struct {
	TotalCount        int    `json:"total_count"`
	IncompleteResults bool   `json:"incomplete_results"`
	Items             []Repo `json:"items"`
}

// HasMore reports whether a page of size perPage was full, the signal to
// request the next one.
func (p *RepoPage) HasMore(perPage int) bool { return len(p.Items) >= perPage }

// RepoRef is the lightweight repository reference embedded in code search
// hits.
type RepoRef struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    Owner  `json:"owner"`
}

// CodeHit is one file matched by a code search.
type CodeHit struct {
	Name       string  `json:"name"`
	Path       string  `json:"path"`
	Repository RepoRef `json:"repository"`
}

// CodePage is one page of code search results.
type CodePage struct {
	TotalCount        int       `json:"total_count"`
	IncompleteResults bool      `json:"incomplete_results"`
	Items             []CodeHit `json:"items"`
}

// HasMore reports whether a page of size perPage was full.
func (p *CodePage) HasMore(perPage int) bool { return len(p.Items) >= perPage }

// ContentItem is an entry in a directory listing.
type ContentItem struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "file", "dir", "symlink" or "submodule"
	Size int    `json:"size"`
}

// IsDir reports whether the item is a directory.
func (i ContentItem) IsDir() bool { return i.Type == "dir" }

// File is a decoded repository file.
type File struct {
	Path    string
	Size    int
	Content []byte
}

// Text returns the file content as a string with CRLF line endings
// normalized to LF.
func (f *File) Text() string {
	return strings.ReplaceAll(string(f.Content), "\r\n", "\n")
}

// Quota is the request budget of one API resource family.
type Quota struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}

// ResetTime returns when the budget refills.
func (q Quota) ResetTime() time.Time { return time.Unix(q.Reset, 0).UTC() }

// RateLimit is the caller's budget for the core and search APIs.
type RateLimit struct {
	Core   Quota
	Search Quota
}

type rateLimitResponse struct {
	Resources struct {
		Core   Quota `json:"core"`
		Search Quota `json:"search"`
	} `json:"resources"`
}

type contentResponse struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	Size     int    `json:"size"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}
