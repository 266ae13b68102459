package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.MaxPages != DefaultMaxPages {
		t.Errorf("MaxPages = %d, want %d", cfg.MaxPages, DefaultMaxPages)
	}
	if cfg.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", cfg.MaxDepth, DefaultMaxDepth)
	}
	if cfg.PageTimeout != DefaultPageTimeout {
		t.Errorf("PageTimeout = %v, want %v", cfg.PageTimeout, DefaultPageTimeout)
	}
	if cfg.CrawlDelay != DefaultCrawlDelay {
		t.Errorf("CrawlDelay = %v, want %v", cfg.CrawlDelay, DefaultCrawlDelay)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q, want %q", cfg.UserAgent, DefaultUserAgent)
	}
	if cfg.MaxBodySize != DefaultMaxBodySize {
		t.Errorf("MaxBodySize = %d, want %d", cfg.MaxBodySize, DefaultMaxBodySize)
	}
	if !cfg.Headless {
		t.Error("Headless should default to true")
	}
	if cfg.RespectRobots {
		t.Error("RespectRobots should default to false")
	}
	if cfg.Static {
		t.Error("Static should default to false")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Seeds = []string{"https://example.com"}
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		if err := valid().Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"no seed", func(c *Config) { c.Seeds = nil }, ErrNoSeed},
		{"zero max pages", func(c *Config) { c.MaxPages = 0 }, ErrInvalidMaxPages},
		{"negative max pages", func(c *Config) { c.MaxPages = -1 }, ErrInvalidMaxPages},
		{"zero max depth", func(c *Config) { c.MaxDepth = 0 }, ErrInvalidMaxDepth},
		{"zero timeout", func(c *Config) { c.PageTimeout = 0 }, ErrInvalidTimeout},
		{"negative crawl delay", func(c *Config) { c.CrawlDelay = -time.Second }, ErrInvalidCrawlDelay},
		{"negative max body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, ErrInvalidBatchSize},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tc.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads sites and defaults", func(t *testing.T) {
		t.Parallel()

		content := `
defaults:
  maxDepth: 3
sites:
  example.com:
    maxPages: 5
    crawlDelay: 1s
    respectRobots: true
`
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() error = %v", err)
		}

		site := cf.GetSiteConfig("example.com")
		if site.MaxPages != 5 {
			t.Errorf("MaxPages = %d, want 5", site.MaxPages)
		}
		if site.MaxDepth != 3 {
			t.Errorf("MaxDepth = %d, want 3 (from defaults)", site.MaxDepth)
		}
		if site.CrawlDelay.Duration != time.Second {
			t.Errorf("CrawlDelay = %v, want 1s", site.CrawlDelay)
		}
		if site.RespectRobots == nil || !*site.RespectRobots {
			t.Error("RespectRobots should be true")
		}
	})

	t.Run("unknown host gets defaults only", func(t *testing.T) {
		t.Parallel()

		content := `
defaults:
  maxDepth: 3
sites:
  example.com:
    maxPages: 5
`
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() error = %v", err)
		}

		site := cf.GetSiteConfig("other.example.org")
		if site.MaxPages != 0 {
			t.Errorf("MaxPages = %d, want 0", site.MaxPages)
		}
		if site.MaxDepth != 3 {
			t.Errorf("MaxDepth = %d, want 3", site.MaxDepth)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("LoadConfigFile() error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("sites: [not a map"), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("LoadConfigFile() should fail on malformed YAML")
		}
	})
}

func TestGetSiteConfigHeaders(t *testing.T) {
	t.Parallel()

	t.Run("site headers merge with defaults", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SiteConfig{Headers: map[string]string{"X-Base": "1"}},
			Sites: map[string]SiteConfig{
				"a.example.com": {Headers: map[string]string{"X-Token-A": "secret-a"}},
			},
		}

		got := cf.GetSiteConfig("a.example.com").Headers
		if got["X-Base"] != "1" {
			t.Error("default header missing from merged config")
		}
		if got["X-Token-A"] != "secret-a" {
			t.Error("site header missing from merged config")
		}
	})

	t.Run("one site's headers stay out of other sites", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SiteConfig{Headers: map[string]string{"X-Base": "1"}},
			Sites: map[string]SiteConfig{
				"a.example.com": {Headers: map[string]string{"X-Token-A": "secret-a"}},
			},
		}

		cf.GetSiteConfig("a.example.com")

		other := cf.GetSiteConfig("b.example.com").Headers
		if _, leaked := other["X-Token-A"]; leaked {
			t.Error("a.example.com's header leaked into b.example.com's config")
		}
		if other["X-Base"] != "1" {
			t.Error("default header missing for b.example.com")
		}
		if cf.Defaults.Headers["X-Token-A"] != "" {
			t.Error("shared defaults map was mutated by the merge")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path exists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yml")
		if err := os.WriteFile(path, []byte("sites: {}"), 0o600); err != nil {
			t.Fatal(err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile() = %q, want %q", got, path)
		}
	})

	t.Run("explicit path missing", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope")); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})
}

func TestConfigForSite(t *testing.T) {
	t.Parallel()

	t.Run("no config file returns base", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		got := cfg.ForSite("example.com")
		if got.MaxPages != DefaultMaxPages {
			t.Errorf("MaxPages = %d, want %d", got.MaxPages, DefaultMaxPages)
		}
	})

	t.Run("site overrides apply", func(t *testing.T) {
		t.Parallel()

		robots := true
		cfg := NewConfig()
		cfg.SiteConfigs = &File{
			Sites: map[string]SiteConfig{
				"example.com": {
					MaxPages:      3,
					CrawlDelay:    DurationFrom(2 * time.Second),
					RespectRobots: &robots,
				},
			},
		}

		got := cfg.ForSite("example.com")
		if got.MaxPages != 3 {
			t.Errorf("MaxPages = %d, want 3", got.MaxPages)
		}
		if got.MaxDepth != DefaultMaxDepth {
			t.Errorf("MaxDepth = %d, want default %d", got.MaxDepth, DefaultMaxDepth)
		}
		if got.CrawlDelay != 2*time.Second {
			t.Errorf("CrawlDelay = %v, want 2s", got.CrawlDelay)
		}
		if !got.RespectRobots {
			t.Error("RespectRobots override lost")
		}

		other := cfg.ForSite("other.example.org")
		if other.MaxPages != DefaultMaxPages {
			t.Errorf("unrelated host MaxPages = %d, want default", other.MaxPages)
		}
	})

	t.Run("explicit flags beat site overrides", func(t *testing.T) {
		t.Parallel()

		robots := true
		cfg := NewConfig()
		cfg.MaxPages = 11
		cfg.Explicit = Explicit{MaxPages: true}
		cfg.SiteConfigs = &File{
			Sites: map[string]SiteConfig{
				"example.com": {
					MaxPages:      3,
					MaxDepth:      5,
					RespectRobots: &robots,
				},
			},
		}

		got := cfg.ForSite("example.com")
		if got.MaxPages != 11 {
			t.Errorf("MaxPages = %d, want the explicit flag value 11", got.MaxPages)
		}
		if got.MaxDepth != 5 {
			t.Errorf("MaxDepth = %d, want the site override 5", got.MaxDepth)
		}
		if !got.RespectRobots {
			t.Error("RespectRobots site override should still apply")
		}
	})
}
