package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skillcat/pkg/pipeline"
	"github.com/matzehuels/skillcat/pkg/store"
)

type collectOpts struct {
	noCache     bool
	skipDetails bool
	publish     bool
	tierCutoff  int
}

// collectCommand creates the collect command.
func (c *CLI) collectCommand() *cobra.Command {
	var opts collectOpts

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Crawl GitHub and write the skill catalogue",
		Long: `Collect runs every configured collector against the GitHub API, merges
and ranks the results, and writes the catalogue index plus detail documents
for the higher tiers to the output directory.

GITHUB_TOKEN (or the variable named by github.token_env) must be set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCollect(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the HTTP response cache")
	cmd.Flags().BoolVar(&opts.skipDetails, "skip-details", false, "write the index only, skip detail enrichment")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "publish to the configured S3 and MongoDB mirrors")
	cmd.Flags().IntVar(&opts.tierCutoff, "tier-cutoff", 0, "enrich entries with tier at or below this value (default from config)")

	return cmd
}

func (c *CLI) runCollect(ctx context.Context, opts collectOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.tierCutoff != 0 {
		cfg.Enrich.TierCutoff = opts.tierCutoff
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if err := cfg.RequireToken(); err != nil {
		return err
	}

	ch, err := newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer ch.Close()

	registerLogHooks(c.Logger)
	runner := pipeline.NewRunner(newClient(cfg, ch), store.NewFileStore(cfg.Output), c.Logger)

	if opts.publish {
		pub := store.NewFromConfig(ctx, cfg.Publish, cfg.Output, c.Logger)
		defer pub.Close(context.WithoutCancel(ctx))
		if pub.Len() == 0 {
			printWarning("--publish given but no mirror is configured")
		}
		runner.Publisher = pub
	}

	report, err := runner.Execute(ctx, cfg, pipeline.Options{
		SkipDetails: opts.skipDetails,
		Publish:     opts.publish,
	})
	if report != nil {
		printReport(report)
	}
	if err != nil {
		return err
	}

	printFile(cfg.Output.IndexPath())
	printNextStep("Browse the catalogue", appName+" browse")
	return nil
}
