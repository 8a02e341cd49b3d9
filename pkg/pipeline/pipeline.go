// Package pipeline runs one complete catalogue collection.
//
// The pipeline is a single sequential batch job:
//
//  1. Preflight: check the API token and rate-limit budget
//  2. Collect: run every configured collector in turn
//  3. Merge: reconcile candidates into unique, ranked entries with slugs
//  4. Snapshot: write the versioned index document
//  5. Enrich: write detail documents for the best tiers, prune stale ones
//  6. Publish: mirror the result to S3 and MongoDB when configured
//
// A collector that fails stops early and contributes what it gathered; the
// run still produces a snapshot. Only an authentication failure, a locked
// output directory, cancellation or a local write failure fails the run.
//
// # Usage
//
//	runner := pipeline.NewRunner(client, store.NewFileStore(cfg.Output), logger)
//	report, err := runner.Execute(ctx, cfg, pipeline.Options{})
package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/skillcat/pkg/collect"
	"github.com/matzehuels/skillcat/pkg/config"
	"github.com/matzehuels/skillcat/pkg/enrich"
	"github.com/matzehuels/skillcat/pkg/httputil"
	"github.com/matzehuels/skillcat/pkg/integrations/github"
)

// API is everything the pipeline needs from the upstream.
// [github.Client] implements it.
type API interface {
	collect.API
	Exists(ctx context.Context, owner, repo, path string) (bool, error)
	RateLimit(ctx context.Context) (*github.RateLimit, error)
}

var (
	_ API        = (*github.Client)(nil)
	_ enrich.API = (API)(nil)
)

// Stage names reported to observability hooks.
const (
	StageMerge    = "merge"
	StageSnapshot = "snapshot"
	StageEnrich   = "enrich"
	StagePrune    = "prune"
	StagePublish  = "publish"
)

// Options adjust one run on top of the configuration.
type Options struct {
	// SkipDetails disables enrichment even when the config enables it.
	SkipDetails bool

	// Publish sends the result to the configured mirrors.
	Publish bool
}

// Collectors builds the configured collectors in run order: curated
// listings, topic searches, the marker filename search, the marketplace
// search and finally the manual list.
func Collectors(cfg *config.Config, env collect.Env) ([]collect.Collector, error) {
	c := cfg.Collect
	paging := collect.Paging{PageSize: c.PageSize, MaxPages: c.MaxPages}
	pacer := httputil.NewPacer(c.ItemDelay.Duration, c.PageDelay.Duration)
	env.Pacer = pacer

	var out []collect.Collector

	curatedEnv := env
	curatedEnv.Pacer = pacer.WithItem(c.CuratedDelay.Duration)
	for _, l := range c.Listings {
		out = append(out, collect.NewCurated(curatedEnv, l))
	}
	for _, t := range c.Topics {
		out = append(out, collect.NewTopicSearch(env, t, paging))
	}
	if c.MarkerFilename != "" {
		out = append(out, collect.NewFilenameSearch(env, c.MarkerFilename, paging, c.Exclude))
	}
	if c.Marketplace {
		out = append(out, collect.NewMarketplace(env, paging, c.Exclude))
	}
	if c.ManualFile != "" {
		entries, err := collect.LoadManual(c.ManualFile)
		if err != nil {
			return nil, err
		}
		out = append(out, collect.NewManual(env, entries))
	}
	return out, nil
}

func since(t time.Time) time.Duration {
	return time.Since(t).Round(time.Millisecond)
}
