// Package crawler implements the breadth-first crawl engine.
//
// A run starts from one seed URL and walks same-host links level by level
// until the page budget is exhausted, the frontier drains, or the run is
// cancelled. The frontier holds the pending (URL, depth) pairs and the
// visited set; the engine drives one run end to end, from validating each
// URL through rendering, extraction, and persistence, and produces the run
// manifest on every exit path.
package crawler
