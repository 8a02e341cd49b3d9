package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/skillcat/pkg/config"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir(config.Default())
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDir(nil)
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(xdg, "skillcat"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirFromConfig(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cfg := config.Default()
	cfg.Cache.Dir = "/var/cache/skills"
	dir, err := cacheDir(cfg)
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != "/var/cache/skills" {
		t.Errorf("cacheDir() = %q, config dir should win", dir)
	}
}

func TestNewCacheBackends(t *testing.T) {
	ctx := t.Context()

	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()

	c, err := newCache(ctx, cfg, true)
	if err != nil {
		t.Fatalf("newCache(noCache) error: %v", err)
	}
	if name := typeName(c); !strings.Contains(name, "NullCache") {
		t.Errorf("--no-cache gave %s, want NullCache", name)
	}

	cfg.Cache.Backend = config.CacheNone
	c, _ = newCache(ctx, cfg, false)
	if name := typeName(c); !strings.Contains(name, "NullCache") {
		t.Errorf("backend none gave %s, want NullCache", name)
	}

	cfg.Cache.Backend = config.CacheFile
	c, err = newCache(ctx, cfg, false)
	if err != nil {
		t.Fatalf("newCache(file) error: %v", err)
	}
	if name := typeName(c); !strings.Contains(name, "FileCache") {
		t.Errorf("backend file gave %s, want FileCache", name)
	}
}

func typeName(v any) string { return fmt.Sprintf("%T", v) }
