package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/siteclone/siteclone/internal/model"
)

// MarkdownWriter outputs run summaries in Markdown format, designed for
// documentation and sharing. It uses the nao1215/markdown library for
// fluent, type-safe markdown generation with tables and GitHub-flavored
// alerts.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run summary in Markdown format.
func (w *MarkdownWriter) Write(m *model.CrawlManifest) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, m)
	w.writeStatus(md, m)
	w.writePages(md, m)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, m *model.CrawlManifest) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target URL", "`" + m.TargetURL + "`"},
			{"Base Host", "`" + m.BaseHost + "`"},
			{"Pages Crawled", strconv.Itoa(m.PagesCrawled)},
			{"Page Budget", strconv.Itoa(m.MaxPages)},
			{"Max Depth", strconv.Itoa(m.MaxDepth)},
			{"Output Directory", "`" + m.OutputDir + "`"},
			{"Started", m.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Finished", m.FinishedAt.Format("2006-01-02 15:04:05 MST")},
			{"Status", statusText(m)},
		},
	})
	md.PlainText("")
}

// writeStatus writes an alert matching the run outcome.
func (w *MarkdownWriter) writeStatus(md *markdown.Markdown, m *model.CrawlManifest) {
	switch {
	case m.Status == model.StatusInterrupted:
		md.Warningf(
			"The crawl was interrupted after %d page(s). The output directory holds partial results.",
			m.PagesCrawled,
		)
	case m.StopReason == model.StopBudgetExhausted:
		md.Notef(
			"The page budget of %d was reached; the site may have more pages than were saved.",
			m.MaxPages,
		)
	case m.PagesCrawled == 0:
		md.Important("No pages were saved. Check that the target URL is reachable and resolves to a public address.")
	default:
		md.Tip("All reachable pages within the configured limits were saved.")
	}
	md.PlainText("")
}

// writePages writes the crawled page list.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, m *model.CrawlManifest) {
	md.H2("Crawled Pages")
	md.PlainText("")

	if len(m.CrawledURLs) == 0 {
		md.PlainText("No pages were crawled.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(m.CrawledURLs))
	for i, u := range m.CrawledURLs {
		rows[i] = []string{strconv.Itoa(i + 1), truncateString(u, 80)}
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "URL"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [siteclone](https://github.com/siteclone/siteclone)*")
}

// statusText returns the status cell for the header table.
func statusText(m *model.CrawlManifest) string {
	if m.Status == model.StatusInterrupted {
		return "⚠️ Interrupted (partial results)"
	}
	return "✅ Completed (" + m.StopReason.String() + ")"
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
