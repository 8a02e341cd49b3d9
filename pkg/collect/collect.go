// Package collect discovers skill candidates on GitHub.
//
// Each [Collector] implements one discovery strategy and tags its candidates
// with a [catalog.Source]:
//
//   - [Curated]: walks the subdirectories of a curated repository
//   - [TopicSearch]: repository search by topic
//   - [FilenameSearch]: code search for a marker file, one candidate per
//     repository
//   - [Manual]: a hand-maintained list of repositories
//
// Collectors run one at a time and share one [httputil.Pacer], so the whole
// pipeline makes at most one upstream request at a time.
//
// # Failures
//
// Failures are contained at the smallest unit. A malformed item is counted
// as failed and skipped. An expected absence (a subdirectory without a
// skill document, a deleted repository) is counted as skipped. A rate limit,
// auth failure or exhausted retry stops the collector: it returns what it has
// accumulated and records the error in its [catalog.CollectorReport].
package collect

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skillcat/pkg/catalog"
	"github.com/matzehuels/skillcat/pkg/httputil"
	"github.com/matzehuels/skillcat/pkg/integrations"
	"github.com/matzehuels/skillcat/pkg/integrations/github"
)

// API is the upstream surface collectors consume. [github.Client]
// implements it.
type API interface {
	GetRepo(ctx context.Context, owner, repo string) (*github.Repo, error)
	GetFile(ctx context.Context, owner, repo, path string) (*github.File, bool, error)
	ListDir(ctx context.Context, owner, repo, path string) ([]github.ContentItem, error)
	SearchRepos(ctx context.Context, query string, page, perPage int) (*github.RepoPage, error)
	SearchCode(ctx context.Context, query string, page, perPage int) (*github.CodePage, error)
}

var _ API = (*github.Client)(nil)

// Collector produces candidates from one discovery strategy.
type Collector interface {
	// Name identifies the collector in logs and reports.
	Name() string

	// Source is the provenance tag of every candidate the collector emits.
	Source() catalog.Source

	// Collect runs the strategy to completion or until an unrecoverable
	// upstream failure. It never returns an error: failures are recorded in
	// the report and whatever was collected is returned.
	Collect(ctx context.Context) ([]catalog.Candidate, *catalog.CollectorReport)
}

// Env is what every collector needs from the pipeline.
type Env struct {
	API    API
	Pacer  *httputil.Pacer
	Logger *log.Logger

	// Now is the evaluation time for tier and status. Defaults to time.Now.
	Now func() time.Time
}

func (e Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Env) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.Default()
}

// Paging bounds a paginated search.
type Paging struct {
	PageSize int
	MaxPages int
}

// DefaultPaging is 10 pages of 100 results, the most GitHub search returns.
var DefaultPaging = Paging{PageSize: 100, MaxPages: 10}

func (p Paging) normalized() Paging {
	if p.PageSize <= 0 || p.PageSize > github.MaxPerPage {
		p.PageSize = DefaultPaging.PageSize
	}
	if p.MaxPages <= 0 {
		p.MaxPages = DefaultPaging.MaxPages
	}
	return p
}

// run tracks one collector invocation.
type run struct {
	report *catalog.CollectorReport
	logger *log.Logger
	start  time.Time
}

func startRun(env Env, name string, source catalog.Source) *run {
	logger := env.logger().With("collector", name)
	logger.Info("collecting")
	return &run{
		report: &catalog.CollectorReport{Name: name, Source: source},
		logger: logger,
		start:  time.Now(),
	}
}

// handle classifies an upstream error for one item. It returns true when the
// collector must stop.
func (r *run) handle(item string, err error) (abort bool) {
	o := integrations.Classify(err)
	if o.Fatal() {
		r.abort(err)
		return true
	}
	switch o {
	case integrations.NotFound:
		r.report.Skipped++
		r.logger.Debug("not found", "item", item)
	case integrations.Malformed:
		r.report.Failed++
		r.logger.Warn("malformed upstream data", "item", item, "err", err)
	}
	return false
}

func (r *run) abort(err error) {
	r.report.Err = err.Error()
	r.logger.Warn("collector stopped early", "err", err)
}

func (r *run) finish(out []catalog.Candidate) ([]catalog.Candidate, *catalog.CollectorReport) {
	r.report.Succeeded = len(out)
	r.report.Duration = time.Since(r.start)
	r.logger.Info("collected",
		"candidates", len(out),
		"attempted", r.report.Attempted,
		"skipped", r.report.Skipped,
		"failed", r.report.Failed,
		"duration", r.report.Duration.Round(time.Millisecond))
	return out, r.report
}
