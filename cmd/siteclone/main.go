// Package main provides the entry point for the siteclone CLI.
//
// siteclone takes a snapshot of a website for offline processing. It crawls
// same-host pages breadth-first within configurable limits and saves each
// page's HTML, visible text, image URLs, and CSS into a per-page folder,
// plus a machine-readable manifest for the whole run.
//
// Usage:
//
//	siteclone crawl https://example.com
//	siteclone crawl --max-pages 50 --depth 3 https://example.com
//
// See --help for all available options.
package main

// main is the entry point for siteclone.
func main() {
	Execute()
}
