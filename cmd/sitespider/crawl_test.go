package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/nao1215/sitespider/internal/config"
)

// parseCrawlConfig parses the given command line and builds the config
// the way runCrawlCmd does, without starting a crawl.
func parseCrawlConfig(t *testing.T, args []string) (*config.Config, error) {
	t.Helper()

	cmd := NewCrawlCmd()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return buildCrawlConfig(cmd, cmd.Flags().Args())
}

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl [seed-url...]" {
			t.Errorf("expected use 'crawl [seed-url...]', got %q", cmd.Use)
		}
	})

	t.Run("has crawl behavior flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{
			"host", "concurrency", "nav-timeout", "delay", "max-pages",
			"click-retry", "scroll-rounds", "lookahead", "no-browser",
			"user-agent", "config", "output", "sitemap-limit", "gzip",
			"summary", "xlsx", "save",
		} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %q flag", name)
			}
		}
	})
}

// TestBuildCrawlConfig tests flag and file handling.
func TestBuildCrawlConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults with seed-derived scope", func(t *testing.T) {
		t.Parallel()

		cfg, err := parseCrawlConfig(t, []string{"https://www.example.com/jobs"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !reflect.DeepEqual(cfg.AllowedHosts, []string{"www.example.com"}) {
			t.Errorf("AllowedHosts = %v, want seed host", cfg.AllowedHosts)
		}
		if !reflect.DeepEqual(cfg.Seeds, []string{"https://www.example.com/jobs"}) {
			t.Errorf("Seeds = %v", cfg.Seeds)
		}
		if cfg.Concurrency != config.DefaultConcurrency {
			t.Errorf("Concurrency = %d, want default %d", cfg.Concurrency, config.DefaultConcurrency)
		}
		if !cfg.UseBrowser {
			t.Error("UseBrowser should default to true")
		}
		if cfg.DBDir != "" {
			t.Errorf("DBDir = %q, want empty without --save", cfg.DBDir)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("config should validate: %v", err)
		}
	})

	t.Run("explicit hosts win over seed hosts", func(t *testing.T) {
		t.Parallel()

		cfg, err := parseCrawlConfig(t, []string{
			"--host", "example.com",
			"--host", "www.example.com",
			"https://careers.example.net/",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"example.com", "www.example.com"}
		if !reflect.DeepEqual(cfg.AllowedHosts, want) {
			t.Errorf("AllowedHosts = %v, want %v", cfg.AllowedHosts, want)
		}
	})

	t.Run("flags override defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := parseCrawlConfig(t, []string{
			"-n", "2",
			"--nav-timeout", "10s",
			"--delay", "0",
			"--no-browser",
			"--gzip",
			"--save",
			"https://example.com/",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Concurrency != 2 {
			t.Errorf("Concurrency = %d, want 2", cfg.Concurrency)
		}
		if cfg.NavTimeout != 10*time.Second {
			t.Errorf("NavTimeout = %v, want 10s", cfg.NavTimeout)
		}
		if cfg.RequestDelay != 0 {
			t.Errorf("RequestDelay = %v, want 0", cfg.RequestDelay)
		}
		if cfg.UseBrowser {
			t.Error("UseBrowser should be false with --no-browser")
		}
		if !cfg.GzipSitemaps {
			t.Error("GzipSitemaps should be true with --gzip")
		}
		if cfg.DBDir == "" {
			t.Error("DBDir should be set with --save")
		}
	})

	t.Run("config file provides scope and seeds", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "spider.yaml")
		content := `allowed_hosts:
  - example.com
seeds:
  - https://example.com/
concurrency: 3
nav_timeout: 20s
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg, err := parseCrawlConfig(t, []string{"-c", path})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !reflect.DeepEqual(cfg.AllowedHosts, []string{"example.com"}) {
			t.Errorf("AllowedHosts = %v", cfg.AllowedHosts)
		}
		if cfg.Concurrency != 3 {
			t.Errorf("Concurrency = %d, want 3 from file", cfg.Concurrency)
		}
		if cfg.NavTimeout != 20*time.Second {
			t.Errorf("NavTimeout = %v, want 20s from file", cfg.NavTimeout)
		}
		if cfg.ConfigFilePath != path {
			t.Errorf("ConfigFilePath = %q, want %q", cfg.ConfigFilePath, path)
		}
	})

	t.Run("flag beats config file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "spider.yaml")
		content := `seeds:
  - https://example.com/
concurrency: 3
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg, err := parseCrawlConfig(t, []string{"-c", path, "-n", "5"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Concurrency != 5 {
			t.Errorf("Concurrency = %d, want flag value 5", cfg.Concurrency)
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()

		_, err := parseCrawlConfig(t, []string{"-c", "/no/such/file.yaml", "https://example.com/"})
		if err == nil {
			t.Fatal("expected error for missing explicit config file")
		}
	})

	t.Run("no seeds fails validation", func(t *testing.T) {
		t.Parallel()

		cfg, err := parseCrawlConfig(t, []string{"--host", "example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cfg.Validate(); err == nil {
			t.Error("expected validation error without seeds")
		}
	})
}

// TestHostsOf tests scope derivation from seed URLs.
func TestHostsOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		urls []string
		want []string
	}{
		{
			name: "single seed",
			urls: []string{"https://www.example.com/jobs"},
			want: []string{"www.example.com"},
		},
		{
			name: "duplicate hosts collapse",
			urls: []string{"https://example.com/a", "https://example.com/b"},
			want: []string{"example.com"},
		},
		{
			name: "mixed case is lowered",
			urls: []string{"https://Example.COM/"},
			want: []string{"example.com"},
		},
		{
			name: "port is kept",
			urls: []string{"http://localhost:8080/"},
			want: []string{"localhost:8080"},
		},
		{
			name: "invalid URLs are skipped",
			urls: []string{"://bad", "https://example.com/"},
			want: []string{"example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := hostsOf(tt.urls); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("hostsOf(%v) = %v, want %v", tt.urls, got, tt.want)
			}
		})
	}
}
