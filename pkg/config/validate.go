package config

import (
	"strings"

	"github.com/matzehuels/skillcat/pkg/catalog"
	errs "github.com/matzehuels/skillcat/pkg/errors"
)

// Validate checks the configuration for values the pipeline cannot run
// with. All errors carry the INVALID_CONFIG code.
func (c *Config) Validate() error {
	if c.GitHub.TokenEnv == "" {
		return invalid("github.token_env is required")
	}
	if err := errs.ValidateURL(c.GitHub.BaseURL); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "github.base_url")
	}

	col := c.Collect
	if col.PageSize < 1 || col.PageSize > 100 {
		return invalid("collect.page_size must be between 1 and 100, got %d", col.PageSize)
	}
	if col.MaxPages < 1 {
		return invalid("collect.max_pages must be positive, got %d", col.MaxPages)
	}
	if col.ItemDelay.Duration < 0 || col.PageDelay.Duration < 0 || col.CuratedDelay.Duration < 0 {
		return invalid("collect delays cannot be negative")
	}
	for i, l := range col.Listings {
		if err := errs.ValidateFullName(l.Repo); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "collect.listing[%d].repo", i)
		}
		if l.Document == "" && len(l.Manifests) == 0 {
			return invalid("collect.listing[%d] (%s) needs a document or manifests", i, l.Repo)
		}
		if l.Dir != "" {
			if err := errs.ValidatePath(l.Dir); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidConfig, err, "collect.listing[%d].dir", i)
			}
		}
		if err := validatePaths(l.Manifests, "collect.listing[%d].manifests", i); err != nil {
			return err
		}
		if l.Document != "" {
			if err := errs.ValidatePath(l.Document); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidConfig, err, "collect.listing[%d].document", i)
			}
		}
	}
	for _, t := range col.Topics {
		if strings.TrimSpace(t) == "" || strings.ContainsAny(t, " \t") {
			return invalid("collect.topics: invalid topic %q", t)
		}
	}
	for _, r := range col.Exclude {
		if err := errs.ValidateFullName(r); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "collect.exclude")
		}
	}

	if cut := catalog.Tier(c.Enrich.TierCutoff); !cut.Valid() {
		return invalid("enrich.tier_cutoff must be between 1 and 5, got %d", c.Enrich.TierCutoff)
	}
	if c.Enrich.Enabled && len(c.Enrich.Documents) == 0 {
		return invalid("enrich.documents cannot be empty")
	}
	if err := validatePaths(c.Enrich.Documents, "enrich.documents"); err != nil {
		return err
	}
	if err := validatePaths(c.Enrich.Manifests, "enrich.manifests"); err != nil {
		return err
	}

	if c.Output.Dir == "" {
		return invalid("output.dir is required")
	}
	for name, v := range map[string]string{"output.index": c.Output.Index, "output.detail_dir": c.Output.DetailDir, "output.report": c.Output.Report} {
		if v == "" || strings.ContainsAny(v, `/\`) {
			return invalid("%s must be a plain file name, got %q", name, v)
		}
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return invalid("cache.redis_url (or SKILLCAT_REDIS_URL) is required for the redis backend")
		}
	default:
		return invalid("cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return invalid("cache.ttl cannot be negative")
	}

	if s3 := c.Publish.S3; s3.Enabled() && (s3.AccessKey == "" || s3.SecretKey == "") {
		return invalid("publish.s3: %s and %s must be set", s3.AccessKeyEnv, s3.SecretKeyEnv)
	}
	if m := c.Publish.Mongo; m.Enabled() && (m.Database == "" || m.Collection == "") {
		return invalid("publish.mongo: database and collection are required")
	}
	return nil
}

// validatePaths checks repository-relative file names from the config.
func validatePaths(paths []string, field string, args ...any) error {
	for _, p := range paths {
		if err := errs.ValidatePath(p); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, field, args...)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errs.New(errs.ErrCodeInvalidConfig, format, args...)
}
