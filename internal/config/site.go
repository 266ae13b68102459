package config

import "maps"

// SiteConfig holds site-specific configuration for a single host.
// This allows customizing crawl behavior per site in the .siteclone file.
type SiteConfig struct {
	// MaxPages overrides the global page budget for this site.
	// If zero, the global MaxPages is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// MaxDepth overrides the global depth bound for this site.
	// If zero, the global MaxDepth is used.
	MaxDepth int `yaml:"maxDepth,omitempty"`

	// CrawlDelay overrides the global politeness delay for this site.
	// If zero, the global CrawlDelay is used.
	CrawlDelay Duration `yaml:"crawlDelay,omitempty"`

	// RespectRobots overrides the global robots.txt setting for this site.
	// If nil, the global setting is used.
	RespectRobots *bool `yaml:"respectRobots,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	// They only apply to the static fetcher.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// File represents the structure of the .siteclone configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	// Keys are bare hostnames without the scheme (e.g., "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	// The defaults map is shared across calls; merging into it directly
	// would leak one site's headers into every later lookup.
	result.Headers = maps.Clone(cf.Defaults.Headers)

	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.MaxPages != 0 {
			result.MaxPages = siteConfig.MaxPages
		}
		if siteConfig.MaxDepth != 0 {
			result.MaxDepth = siteConfig.MaxDepth
		}
		if !siteConfig.CrawlDelay.IsZero() {
			result.CrawlDelay = siteConfig.CrawlDelay
		}
		if siteConfig.RespectRobots != nil {
			result.RespectRobots = siteConfig.RespectRobots
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
	}

	return result
}
