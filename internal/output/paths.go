// Package output maps crawled pages onto the on-disk layout consumed by the
// downstream transformation stage.
//
// Layout, rooted at the per-run site directory:
//
//	<site-dir>/<page-folder>/url.txt     the page's absolute URL, one line
//	<site-dir>/<page-folder>/page.html   raw fetched HTML
//	<site-dir>/<page-folder>/copy.txt    extracted visible text
//	<site-dir>/<page-folder>/images.txt  absolute image URLs, one per line
//	<site-dir>/<page-folder>/css.txt     stylesheet URL comments + inline styles
//	<site-dir>/crawl_manifest.json       the run manifest, written once
//
// Folder naming is a pure function of the URL, so re-resolving the same URL
// within a run can never produce a divergent folder name.
package output

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/siteclone/siteclone/internal/model"
)

// HomeFolder is the folder name used for the site's home page.
const HomeFolder = "home"

// hashedFolderPrefix prefixes the fallback folder name used when a URL
// sanitizes to nothing.
const hashedFolderPrefix = "page_"

// knownExtensions are page-file suffixes stripped from the final path
// segment before sanitizing.
var knownExtensions = []string{".html", ".htm", ".php", ".asp", ".aspx"}

var (
	unsafeChars   = regexp.MustCompile(`[^A-Za-z0-9_-]`)
	repeatedUnder = regexp.MustCompile(`_+`)
)

// FolderNameFor maps pageURL to its folder name inside the site directory.
// The function is pure: identical inputs always yield identical output.
//
// Rules, in order: the base URL's own path (or an empty path) maps to the
// home token; otherwise the last non-empty path segment is taken, a known
// page extension is stripped, and the remainder is sanitized to
// [A-Za-z0-9_-]. A segment that sanitizes to nothing falls back to a short
// hash of the full URL. A query string always appends its own short hash so
// distinct queries never share a folder.
func FolderNameFor(pageURL, baseURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return hashedFolderPrefix + model.ShortHash(pageURL)
	}

	name := segmentName(parsed, baseURL)

	if parsed.RawQuery != "" {
		name += "_" + model.ShortHash(parsed.RawQuery)
	}
	return name
}

// segmentName resolves the folder name before query disambiguation.
func segmentName(parsed *url.URL, baseURL string) string {
	pagePath := strings.Trim(parsed.Path, "/")

	basePath := ""
	if base, err := url.Parse(baseURL); err == nil {
		basePath = strings.Trim(base.Path, "/")
	}

	if pagePath == "" || pagePath == basePath {
		return HomeFolder
	}

	segments := strings.Split(pagePath, "/")
	last := segments[len(segments)-1]

	for _, ext := range knownExtensions {
		if strings.HasSuffix(strings.ToLower(last), ext) {
			last = last[:len(last)-len(ext)]
			break
		}
	}

	last = unsafeChars.ReplaceAllString(last, "_")
	last = repeatedUnder.ReplaceAllString(last, "_")
	last = strings.Trim(last, "_")

	if last == "" {
		return hashedFolderPrefix + model.ShortHash(parsed.String())
	}
	return last
}

// CreateSiteDir creates a fresh output directory for host under parent and
// returns its path. The host is sanitized (colons and dots become
// underscores) and a numeric suffix is probed on collision.
//
// Creation is attempted directly and retried on ErrExist rather than
// checking existence first, so two concurrent runs against the same host can
// never claim the same directory.
func CreateSiteDir(parent, host string) (string, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0o750); err != nil {
			return "", fmt.Errorf("failed to create output parent %s: %w", parent, err)
		}
	}

	base := strings.NewReplacer(":", "_", ".", "_").Replace(host)
	if base == "" {
		return "", errors.New("cannot derive site directory from empty host")
	}

	name := base
	for suffix := 1; ; suffix++ {
		dir := filepath.Join(parent, name)
		err := os.Mkdir(dir, 0o750)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("failed to create site directory %s: %w", dir, err)
		}
		name = fmt.Sprintf("%s_%d", base, suffix)
	}
}
