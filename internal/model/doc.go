// Package model defines the core data structures used throughout siteclone.
//
// This package contains the following main types:
//   - CrawlTarget: A pending fetch in the frontier queue
//   - PageRecord: The extracted content of one successfully fetched page
//   - CrawlManifest: The machine-readable summary written at run completion
//   - Status: The terminal outcome of a crawl run
//
// The crawler, output, database, and report packages all consume these types,
// so centralizing them here prevents import cycles.
//
// The models are designed to be serializable to JSON for the manifest and
// database storage. Collections on PageRecord are always allocated: a page
// with no images carries an empty slice, never nil, so downstream consumers
// can range without nil checks.
package model
