package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// PageRecord holds everything extracted from one successfully fetched page.
// It is created once per page, immediately after extraction, and is immutable
// from the persistence writer's point of view.
type PageRecord struct {
	// URL is the absolute URL the page was fetched from.
	URL string `json:"url"`

	// HTML is the raw rendered HTML as returned by the fetch capability.
	HTML string `json:"-"` // excluded from JSON: the raw page lives on disk

	// Text is the visible text of the page with script and style content
	// removed, one logical line per block-level text run.
	Text string `json:"-"`

	// Images contains the absolute, deduplicated image URLs referenced by
	// the page, in first-seen document order.
	Images []string `json:"images"`

	// Stylesheets contains the absolute, deduplicated external stylesheet
	// URLs, in first-seen document order.
	Stylesheets []string `json:"stylesheets"`

	// InlineStyles contains the literal content of every inline <style>
	// block, in document order. Unlike Images and Stylesheets these are not
	// deduplicated: repeated blocks are meaningful to the downstream
	// rewrite stage.
	InlineStyles []string `json:"-"`

	// Links contains the absolute URLs of every anchor on the page. The
	// frontier filters these; the record itself carries them unclassified.
	Links []string `json:"-"`
}

// NewPageRecord returns a PageRecord for the given URL with all collections
// allocated and empty. Extraction fills the fields in; a malformed document
// leaves them empty rather than nil.
func NewPageRecord(pageURL string) *PageRecord {
	return &PageRecord{
		URL:          pageURL,
		Images:       make([]string, 0),
		Stylesheets:  make([]string, 0),
		InlineStyles: make([]string, 0),
		Links:        make([]string, 0),
	}
}

// ShortHash returns the first 8 hex characters of the SHA-256 digest of s.
// It is used wherever a compact, deterministic identity for a URL or query
// string is needed (folder disambiguation, collision fallback).
func ShortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:8]
}
