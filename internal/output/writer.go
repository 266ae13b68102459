package output

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/siteclone/siteclone/internal/model"
)

// Artifact file names inside a page folder.
const (
	URLFile    = "url.txt"
	HTMLFile   = "page.html"
	TextFile   = "copy.txt"
	ImagesFile = "images.txt"
	CSSFile    = "css.txt"
)

// Writer persists page records into a site output directory. It is stateful
// per run: it remembers which folder name belongs to which URL, so two
// distinct URLs that sanitize to the same folder are split apart
// deterministically.
type Writer struct {
	siteDir string
	logger  *slog.Logger

	// claimed maps folder name to the URL that owns it for this run.
	claimed map[string]string
}

// NewWriter creates a Writer rooted at siteDir.
func NewWriter(siteDir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		siteDir: siteDir,
		logger:  logger,
		claimed: make(map[string]string),
	}
}

// SiteDir returns the run's site output directory.
func (w *Writer) SiteDir() string {
	return w.siteDir
}

// WritePage persists all artifacts for rec into the folder resolved from
// folderName. Writing is best-effort per artifact: one failed artifact is
// logged and the rest are still written. The returned path is the page
// folder; an error is returned only when the folder itself cannot be
// created.
func (w *Writer) WritePage(rec *model.PageRecord, folderName string) (string, error) {
	folderName = w.disambiguate(rec.URL, folderName)

	pageDir := filepath.Join(w.siteDir, folderName)
	// Idempotent: re-creating an existing page folder is not an error.
	if err := os.MkdirAll(pageDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create page folder %s: %w", pageDir, err)
	}

	artifacts := []struct {
		name    string
		content string
	}{
		{URLFile, rec.URL + "\n"},
		{HTMLFile, rec.HTML},
		{TextFile, rec.Text},
		{ImagesFile, joinLines(rec.Images)},
		{CSSFile, renderCSS(rec)},
	}

	for _, a := range artifacts {
		path := filepath.Join(pageDir, a.name)
		if err := os.WriteFile(path, []byte(a.content), 0o640); err != nil {
			w.logger.Error("failed to write artifact",
				"url", rec.URL,
				"artifact", a.name,
				"error", err,
			)
		}
	}

	return pageDir, nil
}

// disambiguate resolves per-run folder collisions: when folderName is
// already claimed by a different URL, a short hash of this URL is appended.
// Deterministic, since the hash depends only on the URL.
func (w *Writer) disambiguate(pageURL, folderName string) string {
	owner, taken := w.claimed[folderName]
	if taken && owner != pageURL {
		folderName = folderName + "_" + model.ShortHash(pageURL)
	}
	w.claimed[folderName] = pageURL
	return folderName
}

// WriteManifest writes the run manifest to the site directory root. Unlike
// page artifacts this write is not best-effort: the manifest is the contract
// with downstream tooling, so its failure is surfaced to the caller.
func (w *Writer) WriteManifest(m *model.CrawlManifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	path := filepath.Join(w.siteDir, model.ManifestFileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o640); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}

// joinLines renders one URL per line with a trailing newline.
func joinLines(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	return strings.Join(urls, "\n") + "\n"
}

// renderCSS builds the combined CSS artifact: external stylesheet URLs as
// comments, then each inline style block wrapped for traceability.
func renderCSS(rec *model.PageRecord) string {
	var b strings.Builder

	for _, sheet := range rec.Stylesheets {
		fmt.Fprintf(&b, "/* external: %s */\n", sheet)
	}

	for i, style := range rec.InlineStyles {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "/* inline style %d */\n", i+1)
		b.WriteString(strings.TrimRight(style, "\n"))
		fmt.Fprintf(&b, "\n/* end inline style %d */\n", i+1)
	}

	return b.String()
}
