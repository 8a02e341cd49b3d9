package collect

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/skillcat/pkg/errors"
	"github.com/matzehuels/skillcat/pkg/integrations/github"
)

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// fakeAPI is an in-memory upstream. Keys are lower-cased "owner/repo" for
// repositories and "owner/repo/path" for files and directories.
type fakeAPI struct {
	repos     map[string]*github.Repo
	files     map[string]string
	dirs      map[string][]github.ContentItem
	repoPages []github.RepoPage
	codePages []github.CodePage
	fail      map[string]error

	calls []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		repos: map[string]*github.Repo{},
		files: map[string]string{},
		dirs:  map[string][]github.ContentItem{},
		fail:  map[string]error{},
	}
}

func (f *fakeAPI) record(call string) error {
	f.calls = append(f.calls, call)
	return f.fail[call]
}

func (f *fakeAPI) GetRepo(_ context.Context, owner, repo string) (*github.Repo, error) {
	key := strings.ToLower(owner + "/" + repo)
	if err := f.record("repo:" + key); err != nil {
		return nil, err
	}
	r, ok := f.repos[key]
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "repo %s", key)
	}
	return r, nil
}

func (f *fakeAPI) GetFile(_ context.Context, owner, repo, path string) (*github.File, bool, error) {
	key := strings.ToLower(owner+"/"+repo) + "/" + path
	if err := f.record("file:" + key); err != nil {
		return nil, false, err
	}
	content, ok := f.files[key]
	if !ok {
		return nil, false, nil
	}
	return &github.File{Path: path, Size: len(content), Content: []byte(content)}, true, nil
}

func (f *fakeAPI) ListDir(_ context.Context, owner, repo, path string) ([]github.ContentItem, error) {
	key := strings.ToLower(owner+"/"+repo) + "/" + path
	if err := f.record("dir:" + key); err != nil {
		return nil, err
	}
	items, ok := f.dirs[key]
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "dir %s", key)
	}
	return items, nil
}

func (f *fakeAPI) SearchRepos(_ context.Context, query string, page, _ int) (*github.RepoPage, error) {
	if err := f.record(fmt.Sprintf("repos:%s:%d", query, page)); err != nil {
		return nil, err
	}
	if page > len(f.repoPages) {
		return &github.RepoPage{}, nil
	}
	return &f.repoPages[page-1], nil
}

func (f *fakeAPI) SearchCode(_ context.Context, query string, page, _ int) (*github.CodePage, error) {
	if err := f.record(fmt.Sprintf("code:%s:%d", query, page)); err != nil {
		return nil, err
	}
	if page > len(f.codePages) {
		return &github.CodePage{}, nil
	}
	return &f.codePages[page-1], nil
}

func (f *fakeAPI) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func testEnv(api API) Env {
	return Env{
		API:    api,
		Logger: log.New(io.Discard),
		Now:    func() time.Time { return testNow },
	}
}

func repo(fullName string, stars int, pushed time.Time) *github.Repo {
	owner, name, _ := strings.Cut(fullName, "/")
	return &github.Repo{
		Name:          name,
		FullName:      fullName,
		HTMLURL:       "https://github.com/" + fullName,
		Owner:         github.Owner{Login: owner, AvatarURL: "https://avatars.example/" + owner},
		Stars:         stars,
		DefaultBranch: "main",
		PushedAt:      pushed,
		CreatedAt:     pushed.AddDate(-1, 0, 0),
		UpdatedAt:     pushed,
	}
}

func daysAgo(n int) time.Time { return testNow.AddDate(0, 0, -n) }

func rateLimited() error {
	return errs.Wrap(errs.ErrCodeRateLimited, &errs.RateLimitedError{RetryAfter: 60}, "search")
}
