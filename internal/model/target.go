package model

// CrawlTarget represents a pending or in-flight fetch in the frontier queue.
// Targets are created when a link is discovered and consumed when dequeued;
// they never outlive the run.
type CrawlTarget struct {
	// URL is the absolute URL to fetch.
	URL string

	// Depth is the hop distance from the seed. The seed itself is depth 1,
	// and every discovered link is one deeper than the page it was found on.
	Depth int
}
