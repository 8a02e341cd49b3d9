// Package config loads skillcat settings.
//
// Values are layered, each layer overriding the previous one:
//
//  1. built-in defaults ([Default])
//  2. a TOML file: the --config path, else ./skillcat.toml, else
//     $XDG_CONFIG_HOME/skillcat/config.toml
//  3. environment variables, after .env.local and .env are loaded
//  4. command-line flags, applied by the CLI
//
// Secrets (the GitHub token, S3 keys, database URIs) are only ever read from
// the environment; the file names the variables to read them from.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	errs "github.com/matzehuels/skillcat/pkg/errors"
)

// FileName is the config file looked up in the working directory.
const FileName = "skillcat.toml"

// Duration is a time.Duration that reads from TOML strings such as "500ms".
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the complete skillcat configuration.
type Config struct {
	GitHub  GitHubConfig  `toml:"github"`
	Collect CollectConfig `toml:"collect"`
	Enrich  EnrichConfig  `toml:"enrich"`
	Output  OutputConfig  `toml:"output"`
	Cache   CacheConfig   `toml:"cache"`
	Publish PublishConfig `toml:"publish"`
	Serve   ServeConfig   `toml:"serve"`

	// Path is the config file that was loaded, empty if none.
	Path string `toml:"-"`
}

type GitHubConfig struct {
	TokenEnv string `toml:"token_env"`
	BaseURL  string `toml:"base_url"`

	// Token is resolved from TokenEnv.
	Token string `toml:"-"`
}

// Listing is a curated repository whose subdirectories are skills.
type Listing struct {
	Repo   string `toml:"repo"`
	Dir    string `toml:"dir"`
	Branch string `toml:"branch"`

	// Document is read from each subdirectory; subdirectories without it
	// are skipped. Leave empty for manifest listings.
	Document string `toml:"document"`

	// Manifests are JSON files probed in order for name and description.
	Manifests []string `toml:"manifests"`

	Tags []string `toml:"tags"`
}

type CollectConfig struct {
	Listings       []Listing `toml:"listing"`
	Topics         []string  `toml:"topics"`
	MarkerFilename string    `toml:"marker_filename"`
	PageSize       int       `toml:"page_size"`
	MaxPages       int       `toml:"max_pages"`
	CuratedDelay   Duration  `toml:"curated_delay"`
	ItemDelay      Duration  `toml:"item_delay"`
	PageDelay      Duration  `toml:"page_delay"`
	Exclude        []string  `toml:"exclude"`
	Marketplace    bool      `toml:"marketplace"`
	ManualFile     string    `toml:"manual_file"`
}

type EnrichConfig struct {
	Enabled    bool     `toml:"enabled"`
	TierCutoff int      `toml:"tier_cutoff"`
	Documents  []string `toml:"documents"`
	Manifests  []string `toml:"manifests"`
}

type OutputConfig struct {
	Dir       string `toml:"dir"`
	Index     string `toml:"index"`
	DetailDir string `toml:"detail_dir"`
	Report    string `toml:"report"`
}

// IndexPath returns the full path of the index document.
func (o OutputConfig) IndexPath() string { return filepath.Join(o.Dir, o.Index) }

// DetailPath returns the directory holding detail documents.
func (o OutputConfig) DetailPath() string { return filepath.Join(o.Dir, o.DetailDir) }

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

type CacheConfig struct {
	Backend  string   `toml:"backend"`
	TTL      Duration `toml:"ttl"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
}

type PublishConfig struct {
	S3    S3Config    `toml:"s3"`
	Mongo MongoConfig `toml:"mongo"`
}

type S3Config struct {
	Endpoint     string `toml:"endpoint"`
	Region       string `toml:"region"`
	Bucket       string `toml:"bucket"`
	Prefix       string `toml:"prefix"`
	AccessKeyEnv string `toml:"access_key_env"`
	SecretKeyEnv string `toml:"secret_key_env"`
	UseSSL       bool   `toml:"use_ssl"`

	AccessKey string `toml:"-"`
	SecretKey string `toml:"-"`
}

// Enabled reports whether an S3 mirror is configured.
func (c S3Config) Enabled() bool { return c.Endpoint != "" && c.Bucket != "" }

type MongoConfig struct {
	URIEnv     string `toml:"uri_env"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`

	URI string `toml:"-"`
}

// Enabled reports whether a MongoDB mirror is configured.
func (c MongoConfig) Enabled() bool { return c.URI != "" }

type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		GitHub: GitHubConfig{
			TokenEnv: "GITHUB_TOKEN",
			BaseURL:  "https://api.github.com",
		},
		Collect: CollectConfig{
			Listings: []Listing{
				{
					Repo:     "anthropics/skills",
					Branch:   "main",
					Document: "SKILL.md",
					Tags:     []string{"official", "anthropic"},
				},
				{
					Repo:      "anthropics/claude-code",
					Dir:       "plugins",
					Branch:    "main",
					Manifests: []string{".claude-plugin/plugin.json", "marketplace.json"},
					Tags:      []string{"official", "anthropic", "plugin"},
				},
			},
			Topics:         []string{"claude-skills", "claude-code-skills"},
			MarkerFilename: "SKILL.md",
			PageSize:       100,
			MaxPages:       10,
			CuratedDelay:   Duration{300 * time.Millisecond},
			ItemDelay:      Duration{500 * time.Millisecond},
			PageDelay:      Duration{2 * time.Second},
			Exclude:        []string{"anthropics/skills", "anthropics/claude-code"},
			Marketplace:    true,
		},
		Enrich: EnrichConfig{
			Enabled:    true,
			TierCutoff: 3,
			Documents:  []string{"SKILL.md", "README.md"},
			Manifests:  []string{"marketplace.json", ".claude-plugin/marketplace.json"},
		},
		Output: OutputConfig{
			Dir:       "data",
			Index:     "skills-index.json",
			DetailDir: "skills",
			Report:    "last-run.json",
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     Duration{6 * time.Hour},
		},
		Publish: PublishConfig{
			S3: S3Config{
				Region:       "us-east-1",
				Prefix:       "catalog/",
				AccessKeyEnv: "SKILLCAT_S3_ACCESS_KEY",
				SecretKeyEnv: "SKILLCAT_S3_SECRET_KEY",
				UseSSL:       true,
			},
			Mongo: MongoConfig{
				URIEnv:     "SKILLCAT_MONGO_URI",
				Database:   "skillcat",
				Collection: "skills",
			},
		},
		Serve: ServeConfig{Addr: ":8080"},
	}
}

// Load builds the configuration from defaults, the config file and the
// environment. An explicit path must exist; the implicit locations are
// optional.
func Load(path string) (*Config, error) {
	loadDotEnv()

	cfg := Default()
	file, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if file != "" {
		if err := cfg.decodeFile(file); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv loads .env.local, then .env. Variables already set in the
// environment win, so .env.local takes precedence over .env.
func loadDotEnv() {
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}
}

func resolvePath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", errs.Wrap(errs.ErrCodeInvalidConfig, err, "config file %s", path)
		}
		return path, nil
	}
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "skillcat", "config.toml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", nil
}

func (c *Config) decodeFile(path string) error {
	// Listings in the file replace the defaults wholesale; decoding into the
	// existing slice would merge fields element by element.
	listings := c.Collect.Listings
	c.Collect.Listings = nil

	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if !md.IsDefined("collect", "listing") {
		c.Collect.Listings = listings
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errs.New(errs.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	c.Path = path
	return nil
}

func (c *Config) applyEnv() {
	c.GitHub.Token = strings.TrimSpace(os.Getenv(c.GitHub.TokenEnv))
	if v := os.Getenv("SKILLCAT_REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv("SKILLCAT_OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if c.Publish.Mongo.URIEnv != "" {
		c.Publish.Mongo.URI = os.Getenv(c.Publish.Mongo.URIEnv)
	}
	if c.Publish.S3.AccessKeyEnv != "" {
		c.Publish.S3.AccessKey = os.Getenv(c.Publish.S3.AccessKeyEnv)
	}
	if c.Publish.S3.SecretKeyEnv != "" {
		c.Publish.S3.SecretKey = os.Getenv(c.Publish.S3.SecretKeyEnv)
	}
}

// RequireToken returns an UNAUTHORIZED error when no GitHub token is
// configured. Only commands that talk to the API call it.
func (c *Config) RequireToken() error {
	if c.GitHub.Token == "" {
		return errs.New(errs.ErrCodeUnauthorized, "%s is not set", c.GitHub.TokenEnv)
	}
	return nil
}
