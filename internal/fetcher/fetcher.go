package fetcher

import (
	"context"
	"time"
)

// Renderer is the fetch capability the crawl engine depends on: given a
// validated URL, return the rendered HTML of the page or a typed failure.
//
// The engine owns exactly one Renderer per run and calls Close on every exit
// path, including interruption.
type Renderer interface {
	// Render navigates to pageURL and returns the document HTML. Failures
	// are returned as *FetchError; the caller decides whether to continue.
	Render(ctx context.Context, pageURL string) (string, error)

	// Close releases the underlying session (browser process, connection
	// pool). Render must not be called after Close.
	Close() error
}

// Options controls fetching behaviour shared by all implementations.
type Options struct {
	// UserAgent is sent with every request. Empty means the
	// implementation's default.
	UserAgent string

	// Timeout bounds a single page load. A page that exceeds it is a fetch
	// failure, not a crawl-fatal error.
	Timeout time.Duration

	// MaxBodyBytes caps the HTML read for one page.
	MaxBodyBytes int64

	// Headless controls whether the browser renderer runs without a
	// display. Ignored by the HTTP fetcher.
	Headless bool

	// Headers are extra request headers. They override the built-in
	// defaults on name collision. Ignored by the browser renderer.
	Headers map[string]string
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 5 * 1024 * 1024
	}
	return o
}
