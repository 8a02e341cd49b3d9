package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skillcat/pkg/integrations/github"
)

const authTimeout = 30 * time.Second

// authCommand creates the auth command with subcommands.
func (c *CLI) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Check GitHub credentials",
		Long: `Collect talks to the GitHub API with the token from GITHUB_TOKEN (or the
variable named by github.token_env in the config). .env.local and .env in the
working directory are loaded first.`,
	}

	cmd.AddCommand(c.authStatusCommand())

	return cmd
}

// authStatusCommand creates the "auth status" subcommand.
func (c *CLI) authStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Verify the token and show the remaining API budget",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireToken(); err != nil {
				printError("No GitHub token")
				printDetail("Set %s or add it to .env.local", cfg.GitHub.TokenEnv)
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), authTimeout)
			defer cancel()

			spinner := newSpinnerWithContext(ctx, "Checking rate limit...")
			spinner.Start()

			client := github.NewClient(cfg.GitHub.Token, cfg.GitHub.BaseURL, nil, 0)
			rl, err := client.RateLimit(ctx)
			if err != nil {
				spinner.StopWithError("Token rejected")
				return fmt.Errorf("check token: %w", err)
			}
			spinner.StopWithSuccess("Token accepted")

			printQuota("Core", rl.Core)
			printQuota("Search", rl.Search)
			return nil
		},
	}
}

func printQuota(name string, q github.Quota) {
	value := fmt.Sprintf("%d/%d", q.Remaining, q.Limit)
	if q.Remaining == 0 {
		value = StyleWarning.Render(value)
	}
	printKeyValue(name, value+StyleDim.Render(" resets "+q.ResetTime().Local().Format("15:04")))
}
