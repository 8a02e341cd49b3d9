package github

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/skillcat/pkg/buildinfo"
	"github.com/matzehuels/skillcat/pkg/cache"
	"github.com/matzehuels/skillcat/pkg/integrations"
)

// DefaultBaseURL is the public GitHub REST API endpoint.
const DefaultBaseURL = "https://api.github.com"

// Client provides access to the GitHub REST API: repository metadata, file
// content, directory listings and search. It handles HTTP requests with
// caching, retry of transient failures and optional authentication.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client. Pass an empty token for
// unauthenticated requests (lower rate limits), an empty baseURL for
// [DefaultBaseURL], and a nil cache to disable response caching.
func NewClient(token, baseURL string, c cache.Cache, ttl time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
		"User-Agent":           buildinfo.UserAgent(),
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	if c != nil {
		c = cache.Namespaced(c, "github:")
	}
	return &Client{
		Client:  integrations.NewClient(c, ttl, headers),
		baseURL: baseURL,
	}
}

// GetRepo fetches repository metadata. A missing repository is a
// NOT_FOUND error.
func (c *Client) GetRepo(ctx context.Context, owner, repo string) (*Repo, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}
	var r Repo
	url := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo)
	if err := c.Get(ctx, url, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// RateLimit returns the caller's current request budget. It is never
// cached and does not count against the budget, which makes it the
// credential check run before any collector starts: a bad token fails
// here with UNAUTHORIZED.
func (c *Client) RateLimit(ctx context.Context) (*RateLimit, error) {
	var resp rateLimitResponse
	if err := c.Fetch(ctx, c.baseURL+"/rate_limit", &resp); err != nil {
		return nil, err
	}
	return &RateLimit{Core: resp.Resources.Core, Search: resp.Resources.Search}, nil
}
