// Package pkg provides the libraries behind skillcat, a catalogue of Claude
// skill packages discovered on GitHub.
//
// # Overview
//
// Skillcat crawls the GitHub search and content APIs, reconciles what it
// finds into one record per skill, ranks the records, and publishes a
// versioned snapshot. The pkg directory is organized into four areas:
//
//  1. Model - [catalog] records, [identity] IDs and slugs, [classify]
//     categories, [quality] tiers and status
//  2. Pipeline - [collect] discovery strategies, [merge], [snapshot],
//     [enrich] detail documents, orchestrated by [pipeline]
//  3. Infrastructure - [integrations] upstream clients, [cache],
//     [httputil] retry and pacing, [store] persistence and mirrors,
//     [config], [observability], [errors]
//  4. Read side - [query] lookups, filters and search over a snapshot
//
// # Architecture
//
// The data flow of one collect run:
//
//	GitHub API
//	     ↓
//	[collect] collectors (curated listings, topics, filename search, manual)
//	     ↓
//	[merge] one entry per repository or sub-path, unique slugs
//	     ↓
//	[snapshot] versioned index with stats
//	     ↓
//	[enrich] detail documents for high tiers
//	     ↓
//	[store] local files, then S3 / MongoDB mirrors
//
// # Quick Start
//
//	cfg, _ := config.Load("")
//	client := github.NewClient(cfg.GitHub.Token, "", cache.NewNullCache(), 0)
//	runner := pipeline.NewRunner(client, store.NewFileStore(cfg.Output), nil)
//	report, err := runner.Execute(ctx, cfg, pipeline.Options{})
//
// Reading the result:
//
//	cat, _ := query.Open(store.NewFileStore(cfg.Output))
//	hits := cat.Find(query.Query{Text: "pdf", Fuzzy: true})
package pkg
