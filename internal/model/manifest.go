package model

import "time"

// ManifestFileName is the manifest file written at the site output directory
// root. Downstream tooling reads this file rather than parsing process
// output; log text is not a stable contract.
const ManifestFileName = "crawl_manifest.json"

// CrawlManifest is the machine-readable summary of one crawl run. It is
// created once and written once, at run completion, including partial
// completion after an interruption.
type CrawlManifest struct {
	// TargetURL is the seed URL the crawl started from.
	TargetURL string `json:"target_url"`

	// BaseHost is the host all crawled pages share.
	BaseHost string `json:"base_host"`

	// MaxPages is the configured page budget for the run.
	MaxPages int `json:"max_pages"`

	// MaxDepth is the configured hop limit; the seed is depth 1.
	MaxDepth int `json:"max_depth"`

	// PagesCrawled is the number of pages successfully fetched, extracted,
	// and persisted. Failed fetches never count here.
	PagesCrawled int `json:"pages_crawled"`

	// OutputDir is the site output directory the artifacts were written to.
	OutputDir string `json:"output_dir"`

	// CrawledURLs lists the canonical URL of every persisted page in crawl
	// order. Its length always equals PagesCrawled and it never contains
	// duplicates.
	CrawledURLs []string `json:"crawled_urls"`

	// Status is the authoritative outcome indicator for the run.
	Status Status `json:"status"`

	// StopReason records which terminal transition ended the run.
	StopReason StopReason `json:"stop_reason"`

	// StartedAt and FinishedAt bound the run in wall-clock time.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewCrawlManifest returns a manifest skeleton for a run that is about to
// start. CrawledURLs is allocated so an interrupted run with zero pages still
// serializes as an empty list, not null.
func NewCrawlManifest(targetURL, baseHost string, maxPages, maxDepth int) *CrawlManifest {
	return &CrawlManifest{
		TargetURL:   targetURL,
		BaseHost:    baseHost,
		MaxPages:    maxPages,
		MaxDepth:    maxDepth,
		CrawledURLs: make([]string, 0),
		StartedAt:   time.Now().UTC(),
	}
}
