// Package fetcher provides the page fetch capability for the crawl engine.
//
// The engine depends only on the Renderer interface: given a validated URL it
// returns rendered HTML or a typed failure. Two implementations exist:
//
//   - ChromeRenderer: drives a headless Chrome session via chromedp. One
//     browser process is started per run and reused across every page, with a
//     per-navigation page-load timeout.
//   - HTTPFetcher: a plain net/http fetcher for static sites, with response
//     size capping, gzip/deflate/brotli decoding, and charset-aware decoding
//     to UTF-8.
//
// Fetch failures are returned as *FetchError carrying a failure kind, so the
// frontier can record why a URL failed without parsing error strings.
package fetcher
