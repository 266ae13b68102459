package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. The crawl limits mirror the defaults the
// downstream transformation stage was tuned against.
const (
	// DefaultMaxPages caps the total distinct pages persisted per run.
	DefaultMaxPages = 20

	// DefaultMaxDepth caps hop distance from the seed; the seed itself is
	// depth 1, so the default crawls the seed plus one level of links.
	DefaultMaxDepth = 2

	// DefaultPageTimeout bounds a single page load. A page that exceeds it
	// is recorded as a fetch failure and the run continues.
	DefaultPageTimeout = 30 * time.Second

	// DefaultCrawlDelay is the politeness delay between page fetches.
	DefaultCrawlDelay = 500 * time.Millisecond

	// DefaultUserAgent identifies siteclone in HTTP requests so operators
	// can recognize crawler traffic in their logs.
	DefaultUserAgent = "siteclone/1.0 (+https://github.com/siteclone/siteclone)"

	// DefaultMaxBodySize caps the HTML read for one page. Larger documents
	// are truncated to prevent memory exhaustion.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultBatchSize is the number of seeds crawled concurrently when
	// several are given. Each seed still gets its own engine, output
	// directory, and budget.
	DefaultBatchSize = 2

	// AppName is used for XDG directory paths.
	AppName = "siteclone"
)

// Config holds all options for one invocation. It is populated from
// defaults, then the .siteclone file, then CLI flags, in that order.
type Config struct {
	// Seeds are the URLs to start crawling from, one run per seed.
	Seeds []string

	// MaxPages caps the total distinct pages persisted per run.
	MaxPages int

	// MaxDepth caps hop distance from the seed (seed is depth 1).
	MaxDepth int

	// PageTimeout bounds a single page load.
	PageTimeout time.Duration

	// CrawlDelay is the politeness delay between fetches.
	CrawlDelay time.Duration

	// OutputParent is the directory site output directories are created
	// under. Empty means the current working directory.
	OutputParent string

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodySize caps the HTML read for one page.
	MaxBodySize int64

	// Static selects the plain HTTP fetcher instead of the headless
	// browser renderer.
	Static bool

	// Headless controls whether the browser renderer runs headless.
	// Disabling it is a debugging aid.
	Headless bool

	// RespectRobots enables the robots.txt gate. Off by default: the
	// crawler's job is to snapshot the operator's own site.
	RespectRobots bool

	// Verbose switches logging from Warn to Debug.
	Verbose bool

	// BatchSize is the number of seeds crawled concurrently.
	BatchSize int

	// ConfigFilePath is an explicit .siteclone path. Empty means search
	// the current then home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// DBDir is the directory for the run-history database. Empty disables
	// recording. Defaults to the XDG data directory.
	DBDir string

	// MarkdownReport enables writing a human-readable REPORT.md next to
	// the manifest. The JSON manifest is always written regardless.
	MarkdownReport bool

	// JSONOutput prints the run manifest as JSON on stdout instead of the
	// text summary.
	JSONOutput bool

	// Headers are extra request headers for the static fetcher, populated
	// from per-site config.
	Headers map[string]string

	// MetricsAddr is the listen address for the Prometheus scrape endpoint.
	// Empty disables the endpoint.
	MetricsAddr string

	// Explicit records which limits were set explicitly on the command
	// line. An explicit flag always beats a .siteclone site override.
	Explicit Explicit
}

// Explicit marks values the user passed as flags, as opposed to values that
// came from defaults or the config file.
type Explicit struct {
	MaxPages      bool
	MaxDepth      bool
	CrawlDelay    bool
	RespectRobots bool
}

// NewConfig returns a Config with all defaults applied.
func NewConfig() *Config {
	return &Config{
		MaxPages:    DefaultMaxPages,
		MaxDepth:    DefaultMaxDepth,
		PageTimeout: DefaultPageTimeout,
		CrawlDelay:  DefaultCrawlDelay,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		BatchSize:   DefaultBatchSize,
		Headless:    true,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for siteclone, used for the
// run-history database.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for siteclone.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after flag parsing, before any crawling begins, so
// setup failures surface before a browser session is started.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.MaxDepth <= 0 {
		return ErrInvalidMaxDepth
	}
	if c.PageTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	return nil
}

// ForSite returns a copy of c with per-site overrides from the config file
// applied for host. Values the user set explicitly on the command line are
// left alone, keeping the defaults < file < flags precedence.
func (c *Config) ForSite(host string) Config {
	out := *c
	if c.SiteConfigs == nil {
		return out
	}

	site := c.SiteConfigs.GetSiteConfig(host)
	if site.MaxPages > 0 && !c.Explicit.MaxPages {
		out.MaxPages = site.MaxPages
	}
	if site.MaxDepth > 0 && !c.Explicit.MaxDepth {
		out.MaxDepth = site.MaxDepth
	}
	if !site.CrawlDelay.IsZero() && !c.Explicit.CrawlDelay {
		out.CrawlDelay = site.CrawlDelay.Duration
	}
	if site.RespectRobots != nil && !c.Explicit.RespectRobots {
		out.RespectRobots = *site.RespectRobots
	}
	if len(site.Headers) > 0 {
		out.Headers = site.Headers
	}
	return out
}
