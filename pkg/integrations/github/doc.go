// Package github is a small client for the parts of the GitHub REST API the
// catalogue pipeline consumes.
//
// # Operations
//
//   - [Client.GetRepo]: repository metadata (stars, forks, timestamps,
//     archival flag, license, default branch, owner avatar)
//   - [Client.GetFile], [Client.Exists], [Client.ListDir]: repository content
//   - [Client.SearchRepos], [Client.SearchCode]: paginated search
//   - [Client.RateLimit]: the remaining request budget, used as a
//     credential check before a run
//
// # Usage
//
//	client := github.NewClient(os.Getenv("GITHUB_TOKEN"), "", cache, time.Hour)
//
//	repo, err := client.GetRepo(ctx, "anthropics", "skills")
//	if err != nil {
//	    return err
//	}
//
//	file, found, err := client.GetFile(ctx, "anthropics", "skills", "pdf/SKILL.md")
//
// # Errors
//
// Failures carry codes from the errors package: NOT_FOUND, UNAUTHORIZED,
// RATE_LIMITED (with the budget reset time), NETWORK_ERROR and
// MALFORMED_DATA. Use integrations.Classify to branch on them. Optional
// content is returned with a found flag so an absent file is never an error.
//
// # Authentication
//
// A token is optional for reads but search is heavily throttled without
// one: 60 requests per hour unauthenticated, 5000 with a token.
package github
