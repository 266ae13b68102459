// Package report renders crawl run summaries for humans and tools.
//
// The JSON manifest inside the site directory is the machine contract; the
// writers here are presentation layers over the same manifest for terminals,
// files, and documentation.
package report

import (
	"io"

	"github.com/siteclone/siteclone/internal/model"
)

// Writer defines the interface for run summary output.
// Implementations render the manifest in various formats.
type Writer interface {
	// Write outputs the run summary to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(m *model.CrawlManifest) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously, useful for
// outputting to both terminal and file. It is a separate type rather than
// io.MultiWriter because this Writer interface takes manifests, not raw
// bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(manifest *model.CrawlManifest) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(manifest)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
