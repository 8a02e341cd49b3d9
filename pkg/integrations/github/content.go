package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	errs "github.com/matzehuels/skillcat/pkg/errors"
	"github.com/matzehuels/skillcat/pkg/integrations"
)

// GetFile fetches and decodes a file from the default branch. A missing file
// is reported as found == false with a nil error; every other failure is
// returned as an error.
func (c *Client) GetFile(ctx context.Context, owner, repo, path string) (*File, bool, error) {
	u, err := c.contentsURL(owner, repo, path)
	if err != nil {
		return nil, false, err
	}
	var resp contentResponse
	if err := c.Get(ctx, u, &resp); err != nil {
		if integrations.Classify(err) == integrations.NotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	if resp.Type != "file" {
		return nil, false, errs.New(errs.ErrCodeMalformedData, "%s/%s/%s is a %s, not a file", owner, repo, path, resp.Type)
	}
	if resp.Encoding != "base64" {
		return nil, false, errs.New(errs.ErrCodeMalformedData, "%s/%s/%s: unsupported encoding %q", owner, repo, path, resp.Encoding)
	}

	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		return nil, false, errs.Wrap(errs.ErrCodeMalformedData, err, "decode %s/%s/%s", owner, repo, path)
	}
	return &File{Path: resp.Path, Size: resp.Size, Content: content}, true, nil
}

// Exists reports whether path exists in the repository, without decoding
// its content.
func (c *Client) Exists(ctx context.Context, owner, repo, path string) (bool, error) {
	u, err := c.contentsURL(owner, repo, path)
	if err != nil {
		return false, err
	}
	_, err = c.GetBytes(ctx, u)
	switch integrations.Classify(err) {
	case integrations.Found:
		return true, nil
	case integrations.NotFound:
		return false, nil
	default:
		return false, err
	}
}

// ListDir lists the entries of a directory. An empty path lists the
// repository root. Listing a path that is a file is MALFORMED_DATA.
func (c *Client) ListDir(ctx context.Context, owner, repo, path string) ([]ContentItem, error) {
	u, err := c.contentsURL(owner, repo, path)
	if err != nil {
		return nil, err
	}
	var items []ContentItem
	if err := c.Get(ctx, u, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// contentsURL builds the contents endpoint for path. Paths come from
// listings and config, so they are validated before use; an empty path is
// the repository root.
func (c *Client) contentsURL(owner, repo, path string) (string, error) {
	path = strings.Trim(path, "/")
	if path != "" {
		if err := errs.ValidatePath(path); err != nil {
			return "", err
		}
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, repo, strings.Join(segments, "/")), nil
}
