package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/siteclone/siteclone/internal/model"
)

// SimpleWriter outputs human-readable text summaries for terminal display.
// Plain text with ASCII formatting works in all terminals and pipes cleanly
// to files and other tools.
type SimpleWriter struct {
	baseWriter

	// verbose enables the full crawled URL list in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with the full crawled URL list.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run summary in human-readable format.
func (w *SimpleWriter) Write(m *model.CrawlManifest) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, m)
	w.writeCounts(&sb, m)
	w.writePages(&sb, m)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the summary header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, m *model.CrawlManifest) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        SITECLONE CRAWL SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Target URL:     %s\n", m.TargetURL)
	fmt.Fprintf(sb, "Base Host:      %s\n", m.BaseHost)
	fmt.Fprintf(sb, "Output Dir:     %s\n", m.OutputDir)
	fmt.Fprintf(sb, "Started:        %s\n", m.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Duration:       %s\n", m.FinishedAt.Sub(m.StartedAt).Round(10*time.Millisecond))

	if m.Status == model.StatusInterrupted {
		sb.WriteString("Status:         INTERRUPTED (partial results)\n")
	} else {
		fmt.Fprintf(sb, "Status:         Completed (%s)\n", m.StopReason)
	}

	sb.WriteString("\n")
}

// writeCounts writes the page counts against the configured limits.
func (w *SimpleWriter) writeCounts(sb *strings.Builder, m *model.CrawlManifest) {
	fmt.Fprintf(sb, "Pages Crawled:  %d of %d budget (max depth %d)\n", m.PagesCrawled, m.MaxPages, m.MaxDepth)
	sb.WriteString("\n")
}

// writePages writes the crawled URL list when verbose is enabled.
func (w *SimpleWriter) writePages(sb *strings.Builder, m *model.CrawlManifest) {
	if !w.verbose || len(m.CrawledURLs) == 0 {
		return
	}

	sb.WriteString("Crawled Pages:\n")
	for i, u := range m.CrawledURLs {
		fmt.Fprintf(sb, "  %3d. %s\n", i+1, u)
	}
	sb.WriteString("\n")
}
