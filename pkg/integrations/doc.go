// Package integrations provides the shared HTTP plumbing for upstream API
// clients.
//
// # Overview
//
// The [Client] type wraps an [net/http.Client] with response caching via
// [cache.Cache], bounded retry of transient failures and a fixed mapping from
// HTTP status to coded errors:
//
//   - 404 becomes NOT_FOUND
//   - 401 becomes UNAUTHORIZED
//   - 429, or 403 with an exhausted rate-limit budget, becomes RATE_LIMITED
//   - 5xx and connection failures become NETWORK_ERROR and are retried
//   - undecodable bodies become MALFORMED_DATA
//
// # Outcomes
//
// Callers that need to branch on the kind of failure use [Classify], which
// turns any error into an [Outcome]:
//
//	switch integrations.Classify(err) {
//	case integrations.Found:
//	case integrations.NotFound:
//	    // expected absence
//	case integrations.RateLimited, integrations.Transient:
//	    // stop paginating
//	}
//
// The GitHub API client lives in the [github] subpackage.
//
// [cache.Cache]: github.com/matzehuels/skillcat/pkg/cache.Cache
// [github]: github.com/matzehuels/skillcat/pkg/integrations/github
package integrations
