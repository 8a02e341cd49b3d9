package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/skillcat/pkg/catalog"
	"github.com/matzehuels/skillcat/pkg/collect"
	"github.com/matzehuels/skillcat/pkg/config"
	"github.com/matzehuels/skillcat/pkg/enrich"
	errs "github.com/matzehuels/skillcat/pkg/errors"
	"github.com/matzehuels/skillcat/pkg/httputil"
	"github.com/matzehuels/skillcat/pkg/integrations"
	"github.com/matzehuels/skillcat/pkg/merge"
	"github.com/matzehuels/skillcat/pkg/observability"
	"github.com/matzehuels/skillcat/pkg/snapshot"
	"github.com/matzehuels/skillcat/pkg/store"
)

// Runner executes pipeline runs against one upstream and one output store.
// A Runner holds no per-run state; the output directory lock keeps two
// runs from writing the same directory.
type Runner struct {
	API       API
	Store     *store.FileStore
	Publisher *store.Publisher
	Logger    *log.Logger

	// Now is the clock used for run timestamps. Defaults to time.Now.
	Now func() time.Time
}

// NewRunner creates a runner. A nil logger uses the default logger.
func NewRunner(api API, st *store.FileStore, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{API: api, Store: st, Logger: logger, Now: time.Now}
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Execute performs one run. The returned report is non-nil whenever the
// run got past preflight, including when it fails later.
func (r *Runner) Execute(ctx context.Context, cfg *config.Config, opts Options) (*catalog.RunReport, error) {
	runID := uuid.NewString()
	logger := r.Logger.With("run", runID)
	started := r.now().UTC()
	report := &catalog.RunReport{RunID: runID, StartedAt: started}

	if err := r.preflight(ctx, logger); err != nil {
		return nil, err
	}

	if err := r.Store.Lock(); err != nil {
		return nil, err
	}
	defer r.Store.Unlock()

	collectors, err := Collectors(cfg, collect.Env{API: r.API, Logger: logger, Now: r.now})
	if err != nil {
		return nil, err
	}

	// Collect
	var candidates []catalog.Candidate
	for _, c := range collectors {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		observability.Pipeline().OnCollectorStart(ctx, c.Name())
		got, cr := c.Collect(ctx)
		var cerr error
		if cr.Aborted() {
			cerr = errs.New(errs.ErrCodeNetwork, "%s", cr.Err)
		}
		observability.Pipeline().OnCollectorComplete(ctx, c.Name(), len(got), cr.Duration, cerr)
		report.Collectors = append(report.Collectors, *cr)
		candidates = append(candidates, got...)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	report.Candidates = len(candidates)

	// Merge
	start := time.Now()
	entries := merge.Merge(candidates, started)
	report.Entries = len(entries)
	observability.Pipeline().OnStageComplete(ctx, StageMerge, len(entries), time.Since(start), nil)
	logger.Info("merged candidates", "candidates", len(candidates), "entries", len(entries), "duration", since(start))

	// Snapshot
	start = time.Now()
	snap := snapshot.Build(entries, started, r.now())
	err = r.Store.WriteIndex(snap)
	observability.Pipeline().OnStageComplete(ctx, StageSnapshot, snap.Total, time.Since(start), err)
	if err != nil {
		return report, err
	}
	logger.Info("wrote index", "path", r.Store.IndexPath(), "skills", snap.Total)

	// Enrich and prune
	details, err := r.enrich(ctx, logger, cfg, opts, entries, report)
	if err != nil {
		return report, err
	}

	// Publish
	if opts.Publish && r.Publisher != nil && r.Publisher.Len() > 0 {
		start = time.Now()
		report.Published = r.Publisher.Publish(ctx, snap, details)
		observability.Pipeline().OnStageComplete(ctx, StagePublish, len(report.Published), time.Since(start), nil)
	}

	report.Duration = r.now().Sub(started)
	if err := r.Store.WriteReport(report); err != nil {
		return report, err
	}

	logger.Info("run complete",
		"collectors", len(report.Collectors),
		"attempted", report.Attempted(),
		"succeeded", report.Succeeded(),
		"entries", report.Entries,
		"details", report.DetailsWritten,
		"pruned", report.DetailsPruned,
		"partial", report.Partial(),
		"duration", report.Duration.Round(time.Millisecond))
	return report, nil
}

// preflight checks the token and logs the remaining budget. Only an
// authentication failure stops the run; any other error is logged and the
// collectors find out for themselves.
func (r *Runner) preflight(ctx context.Context, logger *log.Logger) error {
	rl, err := r.API.RateLimit(ctx)
	if err != nil {
		if integrations.Classify(err) == integrations.Unauthorized {
			return err
		}
		logger.Warn("rate limit preflight failed", "err", err)
		return nil
	}
	logger.Info("rate limit",
		"core", rl.Core.Remaining, "search", rl.Search.Remaining,
		"reset", rl.Core.ResetTime().Format(time.Kitchen))
	if rl.Core.Remaining == 0 || rl.Search.Remaining == 0 {
		logger.Warn("rate limit exhausted, collectors will stop early",
			"core_reset", rl.Core.ResetTime(), "search_reset", rl.Search.ResetTime())
	}
	return nil
}

func (r *Runner) enrich(ctx context.Context, logger *log.Logger, cfg *config.Config, opts Options,
	entries []catalog.Entry, report *catalog.RunReport) ([]*catalog.Detail, error) {

	keep := make(map[string]bool, len(entries))
	var details []*catalog.Detail

	if opts.SkipDetails || !cfg.Enrich.Enabled {
		details = r.keptDetails(logger, entries, keep)
		logger.Info("skipping details", "kept", len(details))
	} else {
		start := time.Now()
		en := enrich.New(r.API, httputil.NewPacer(cfg.Collect.ItemDelay.Duration, 0), logger, enrich.Options{
			TierCutoff: catalog.Tier(cfg.Enrich.TierCutoff),
			Documents:  cfg.Enrich.Documents,
			Manifests:  cfg.Enrich.Manifests,
		})
		res := en.Run(ctx, entries, func(d *catalog.Detail) error {
			if err := r.Store.WriteDetail(d); err != nil {
				return err
			}
			keep[d.Slug] = true
			details = append(details, d)
			return nil
		})
		report.DetailsAttempted = res.Attempted
		report.DetailsWritten = res.Written
		observability.Pipeline().OnStageComplete(ctx, StageEnrich, res.Written, res.Duration, res.Err)
		logger.Info("wrote details", "attempted", res.Attempted, "written", res.Written,
			"failed", res.Failed, "duration", since(start))
		if res.Err != nil {
			return details, res.Err
		}
	}

	start := time.Now()
	n, err := r.Store.Prune(keep)
	observability.Pipeline().OnStageComplete(ctx, StagePrune, n, time.Since(start), err)
	if err != nil {
		return details, err
	}
	report.DetailsPruned = n
	if n > 0 {
		logger.Info("pruned stale details", "count", n)
	}
	return details, nil
}

// keptDetails reads back the existing detail documents that still belong to
// an index entry. A document survives only when its slug still exists and
// its ID matches the entry now holding that slug; everything else is left
// for Prune.
func (r *Runner) keptDetails(logger *log.Logger, entries []catalog.Entry, keep map[string]bool) []*catalog.Detail {
	var details []*catalog.Detail
	for _, e := range entries {
		d, err := r.Store.ReadDetail(e.Slug)
		if err != nil {
			if !errs.Is(err, errs.ErrCodeNotFound) {
				logger.Warn("dropping unreadable detail", "slug", e.Slug, "err", err)
			}
			continue
		}
		if d.ID != e.ID {
			logger.Debug("dropping detail of earlier slug holder", "slug", e.Slug, "was", d.RepoFullName, "now", e.RepoFullName)
			continue
		}
		keep[e.Slug] = true
		details = append(details, d)
	}
	return details
}
