// Package metrics defines Prometheus counters for crawl activity. The
// counters are registered on the default registry; the CLI decides whether
// to expose them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PagesFetched counts pages rendered and persisted successfully.
	PagesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "siteclone_pages_fetched_total",
		Help: "Total number of pages successfully fetched and saved",
	})

	// FetchFailures counts pages that failed to render, by failure kind.
	FetchFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "siteclone_fetch_failures_total",
		Help: "Total number of page fetch failures by kind",
	}, []string{"kind"})

	// BytesFetched counts HTML bytes persisted.
	BytesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "siteclone_bytes_fetched_total",
		Help: "Total HTML bytes persisted",
	})

	// LinksDiscovered counts internal links found during extraction,
	// before dedup.
	LinksDiscovered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "siteclone_links_discovered_total",
		Help: "Total internal links discovered during extraction",
	})

	// URLsRejected counts URLs dropped before fetching, by reason
	// (unsafe_host, robots, duplicate).
	URLsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "siteclone_urls_rejected_total",
		Help: "Total URLs rejected before fetching by reason",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(
		PagesFetched,
		FetchFailures,
		BytesFetched,
		LinksDiscovered,
		URLsRejected,
	)
}

// Handler returns the scrape endpoint for the registered counters. The CLI
// mounts it when a metrics address is configured.
func Handler() http.Handler {
	return promhttp.Handler()
}
