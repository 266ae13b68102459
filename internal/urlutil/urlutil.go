// Package urlutil provides URL canonicalization and link classification for
// the crawl engine.
//
// The canonical form of a URL is its deduplication identity: two URLs that
// differ only by fragment, or only by a trailing slash on the path, share one
// canonical key and are crawled at most once. The classifier decides whether
// a discovered href stays inside the crawl's origin.
package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// ignoredSchemes are href schemes the crawler never follows.
var ignoredSchemes = map[string]struct{}{
	"mailto":     {},
	"tel":        {},
	"javascript": {},
	"data":       {},
}

// Canonicalize reduces rawURL to its canonical key: scheme and host are
// lowercased, the fragment is stripped, and a single trailing slash is
// removed from the path. The query string is preserved because distinct
// queries are distinct pages.
func Canonicalize(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("cannot canonicalize %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("cannot canonicalize %q: not an absolute URL", rawURL)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String(), nil
}

// IsInternalLink reports whether href belongs to the crawl rooted at
// baseHost. Empty hrefs, mailto:/tel:/javascript:/data: links, non-HTTP
// schemes, and foreign hosts are all external.
//
// href is expected to already be absolute (resolved against the page it was
// found on). A same-page anchor resolves to the same canonical key as its
// containing page, so it is classified internal here and deduplicated by the
// frontier rather than rejected outright.
func IsInternalLink(href, baseHost string) bool {
	href = strings.TrimSpace(href)
	if href == "" {
		return false
	}

	u, err := url.Parse(href)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(u.Scheme)
	if _, ignored := ignoredSchemes[scheme]; ignored {
		return false
	}
	if scheme != "http" && scheme != "https" {
		return false
	}

	return strings.EqualFold(u.Host, baseHost)
}

// Resolve resolves href against base and returns the absolute form, or an
// empty string when the href is unparsable or uses an ignored scheme. The
// fragment is dropped; the frontier never distinguishes anchors.
func Resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if _, ignored := ignoredSchemes[strings.ToLower(ref.Scheme)]; ignored {
		return ""
	}

	abs := base.ResolveReference(ref)
	abs.Fragment = ""
	return abs.String()
}
