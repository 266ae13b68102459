package fetcher

import (
	"context"
	"log/slog"

	"github.com/chromedp/chromedp"
)

// ChromeRenderer renders pages in a headless Chrome session via chromedp.
// The browser process is started lazily on the first Render and reused for
// every subsequent page in the run, so per-page cost is one navigation, not
// one browser launch.
type ChromeRenderer struct {
	opts   Options
	logger *slog.Logger

	allocCtx     context.Context
	allocCancel  context.CancelFunc
	browserCtx   context.Context
	browserClose context.CancelFunc
}

// NewChromeRenderer creates a renderer. The browser is not started until the
// first Render call, so constructing a renderer never fails.
func NewChromeRenderer(opts Options, logger *slog.Logger) *ChromeRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChromeRenderer{
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

// start launches the browser process shared by the whole run.
func (r *ChromeRenderer) start() {
	execOpts := []chromedp.ExecAllocatorOption{
		chromedp.Flag("headless", r.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
	}
	if r.opts.UserAgent != "" {
		execOpts = append(execOpts, chromedp.UserAgent(r.opts.UserAgent))
	}

	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), execOpts...)
	r.browserCtx, r.browserClose = chromedp.NewContext(r.allocCtx)
}

// Render navigates to pageURL in a fresh tab and returns the document's
// outer HTML. The page-load timeout applies to the whole navigation.
func (r *ChromeRenderer) Render(ctx context.Context, pageURL string) (string, error) {
	if r.browserCtx == nil {
		r.start()
	}

	// A tab per page keeps navigations isolated while sharing the browser.
	tabCtx, tabCancel := chromedp.NewContext(r.browserCtx)
	defer tabCancel()

	timeoutCtx, cancel := context.WithTimeout(tabCtx, r.opts.Timeout)
	defer cancel()

	// Propagate external cancellation into the navigation.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(pageURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", newFetchError(FailRender, pageURL, err)
	}

	if int64(len(html)) > r.opts.MaxBodyBytes {
		html = html[:r.opts.MaxBodyBytes]
	}

	r.logger.Debug("rendered page",
		"url", pageURL,
		"html_bytes", len(html),
	)
	return html, nil
}

// Close shuts down the browser process. Safe to call when the browser was
// never started, and on every exit path.
func (r *ChromeRenderer) Close() error {
	if r.browserClose != nil {
		r.browserClose()
		r.browserClose = nil
	}
	if r.allocCancel != nil {
		r.allocCancel()
		r.allocCancel = nil
	}
	return nil
}
