package github

import (
	"context"
	"fmt"

	"github.com/matzehuels/skillcat/pkg/integrations"
)

// MaxPerPage is the largest page size the search API accepts.
const MaxPerPage = 100

// SearchRepos runs a repository search ordered by stars, descending.
// Pages are 1-based.
func (c *Client) SearchRepos(ctx context.Context, query string, page, perPage int) (*RepoPage, error) {
	var resp RepoPage
	url := fmt.Sprintf("%s/search/repositories?q=%s&sort=stars&order=desc&per_page=%d&page=%d",
		c.baseURL, integrations.URLEncode(query), clampPerPage(perPage), max(page, 1))
	if err := c.Get(ctx, url, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchCode runs a code search. Each hit references the repository that
// contains the matching file; one repository may appear many times.
func (c *Client) SearchCode(ctx context.Context, query string, page, perPage int) (*CodePage, error) {
	var resp CodePage
	url := fmt.Sprintf("%s/search/code?q=%s&per_page=%d&page=%d",
		c.baseURL, integrations.URLEncode(query), clampPerPage(perPage), max(page, 1))
	if err := c.Get(ctx, url, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func clampPerPage(n int) int {
	if n <= 0 || n > MaxPerPage {
		return MaxPerPage
	}
	return n
}
