// Package extractor turns raw page HTML into a structured PageRecord.
//
// One parse pass over the document produces four outputs: absolute image
// URLs, absolute stylesheet URLs, inline style blocks in document order, and
// the visible text with script and style content removed. Anchor hrefs are
// collected in the same pass for the frontier.
//
// Extraction never fails the crawl: a document that cannot be parsed yields
// a record with empty collections.
package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/siteclone/siteclone/internal/model"
	"github.com/siteclone/siteclone/internal/urlutil"
)

// Extract parses pageHTML fetched from pageURL and returns the structured
// record. Relative references are resolved against pageURL.
func Extract(pageURL, pageHTML string) *model.PageRecord {
	rec := model.NewPageRecord(pageURL)
	rec.HTML = pageHTML

	base, err := url.Parse(pageURL)
	if err != nil {
		return rec
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return rec
	}

	seenImages := make(map[string]struct{})
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok {
			return
		}
		abs := urlutil.Resolve(base, src)
		if abs == "" {
			return
		}
		if _, dup := seenImages[abs]; dup {
			return
		}
		seenImages[abs] = struct{}{}
		rec.Images = append(rec.Images, abs)
	})

	seenSheets := make(map[string]struct{})
	doc.Find("link").Each(func(_ int, s *goquery.Selection) {
		if !isStylesheetRel(s.AttrOr("rel", "")) {
			return
		}
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		abs := urlutil.Resolve(base, href)
		if abs == "" {
			return
		}
		if _, dup := seenSheets[abs]; dup {
			return
		}
		seenSheets[abs] = struct{}{}
		rec.Stylesheets = append(rec.Stylesheets, abs)
	})

	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		if content := s.Text(); content != "" {
			rec.InlineStyles = append(rec.InlineStyles, content)
		}
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if abs := urlutil.Resolve(base, s.AttrOr("href", "")); abs != "" {
			rec.Links = append(rec.Links, abs)
		}
	})

	// Visible text last: script and style subtrees are dropped during the
	// walk, so the document itself stays intact for the collections above.
	rec.Text = visibleText(doc)

	return rec
}

// isStylesheetRel reports whether a link rel attribute names a stylesheet.
// rel is a space-separated token list ("stylesheet", "alternate stylesheet").
func isStylesheetRel(rel string) bool {
	for _, token := range strings.Fields(rel) {
		if strings.EqualFold(token, "stylesheet") {
			return true
		}
	}
	return false
}

// skippedElements are subtrees that never contribute visible text.
var skippedElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
	"head":     {},
}

// visibleText walks the DOM and returns the page's visible text, one line
// per text run, with redundant whitespace collapsed.
func visibleText(doc *goquery.Document) string {
	var lines []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, skip := skippedElements[n.Data]; skip {
				return
			}
		}
		if n.Type == html.TextNode {
			if line := strings.Join(strings.Fields(n.Data), " "); line != "" {
				lines = append(lines, line)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, root := range doc.Nodes {
		walk(root)
	}

	return strings.Join(lines, "\n")
}
