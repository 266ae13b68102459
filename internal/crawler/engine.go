package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/siteclone/siteclone/internal/config"
	"github.com/siteclone/siteclone/internal/extractor"
	"github.com/siteclone/siteclone/internal/fetcher"
	"github.com/siteclone/siteclone/internal/metrics"
	"github.com/siteclone/siteclone/internal/model"
	"github.com/siteclone/siteclone/internal/output"
	"github.com/siteclone/siteclone/internal/robots"
	"github.com/siteclone/siteclone/internal/safety"
	"github.com/siteclone/siteclone/internal/urlutil"
)

// SafetyChecker decides whether a URL may be fetched. safety.Validator
// satisfies it; tests inject a permissive fake so local test servers are
// reachable.
type SafetyChecker interface {
	IsSafe(ctx context.Context, rawURL, host string) bool
}

// Engine drives one crawl run: one seed, one renderer session, one output
// directory, one manifest.
type Engine struct {
	cfg      config.Config
	seed     string
	baseHost string
	renderer fetcher.Renderer
	writer   *output.Writer
	checker  SafetyChecker
	gate     *robots.Gate
	frontier *Frontier
	logger   *slog.Logger
}

// NewEngine creates an Engine for seed. A nil checker falls back to the DNS
// validator, a nil gate to one built from cfg, and a nil logger to
// slog.Default(). The seed must be an absolute http(s) URL; anything else is
// a setup failure, not a crawl failure.
func NewEngine(cfg config.Config, seed string, renderer fetcher.Renderer, writer *output.Writer, checker SafetyChecker, gate *robots.Gate, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	u, err := url.Parse(strings.TrimSpace(seed))
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL %q: %w", seed, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid seed URL %q: must be absolute http(s)", seed)
	}

	if checker == nil {
		checker = safety.NewValidator(nil, logger)
	}
	if gate == nil {
		gate = robots.NewGate(cfg.UserAgent, cfg.CrawlDelay, cfg.RespectRobots, logger)
	}

	return &Engine{
		cfg:      cfg,
		seed:     seed,
		baseHost: strings.ToLower(u.Host),
		renderer: renderer,
		writer:   writer,
		checker:  checker,
		gate:     gate,
		frontier: NewFrontier(),
		logger:   logger,
	}, nil
}

// Run crawls from the seed until a terminal condition is reached and returns
// the run manifest. The manifest is always written to the site directory
// first, including after cancellation, and the renderer is always closed.
// The returned error covers manifest persistence only; per-page failures are
// logged and absorbed.
func (e *Engine) Run(ctx context.Context) (*model.CrawlManifest, error) {
	defer func() {
		if err := e.renderer.Close(); err != nil {
			e.logger.Warn("failed to close renderer", "error", err)
		}
	}()

	manifest := model.NewCrawlManifest(e.seed, e.baseHost, e.cfg.MaxPages, e.cfg.MaxDepth)
	manifest.OutputDir = e.writer.SiteDir()

	e.frontier.Enqueue(e.seed, 1)

	reason := e.crawl(ctx, manifest)

	manifest.StopReason = reason
	manifest.Status = reason.Status()
	manifest.FinishedAt = time.Now().UTC()

	e.logger.Debug("crawl finished",
		"seed", e.seed,
		"pages", manifest.PagesCrawled,
		"stop_reason", reason.String(),
	)

	if err := e.writer.WriteManifest(manifest); err != nil {
		return manifest, err
	}
	return manifest, nil
}

// crawl runs the frontier loop and returns the terminal transition that
// ended it.
func (e *Engine) crawl(ctx context.Context, manifest *model.CrawlManifest) model.StopReason {
	for {
		if ctx.Err() != nil {
			return model.StopInterrupted
		}
		// Budget counts fetch attempts, not persisted pages, so a run
		// whose fetches all fail still ends as budget_exhausted.
		if e.frontier.VisitedCount() >= e.cfg.MaxPages {
			return model.StopBudgetExhausted
		}

		target, ok := e.frontier.Dequeue()
		if !ok {
			return model.StopFrontierEmpty
		}

		// Claim the key; a duplicate dequeued later is dropped here.
		if !e.frontier.MarkVisited(target.Key) {
			continue
		}

		if interrupted := e.visit(ctx, manifest, target); interrupted {
			return model.StopInterrupted
		}
	}
}

// visit processes a single claimed target. It reports true only when the run
// was cancelled mid-visit; every per-page failure is absorbed.
func (e *Engine) visit(ctx context.Context, manifest *model.CrawlManifest, target Target) bool {
	u, err := url.Parse(target.URL)
	if err != nil {
		e.logger.Warn("dropping unparsable URL", "url", target.URL, "error", err)
		return false
	}

	if !e.checker.IsSafe(ctx, target.URL, u.Hostname()) {
		metrics.URLsRejected.WithLabelValues("unsafe_host").Inc()
		return ctx.Err() != nil
	}

	allowed, wait := e.gate.Check(ctx, u)
	if !allowed {
		metrics.URLsRejected.WithLabelValues("robots").Inc()
		e.logger.Debug("skipping robots-disallowed URL", "url", target.URL)
		return false
	}
	if err := wait(ctx); err != nil {
		return true
	}

	e.logger.Debug("fetching page", "url", target.URL, "depth", target.Depth)

	pageCtx, cancel := context.WithTimeout(ctx, e.cfg.PageTimeout)
	html, err := e.renderer.Render(pageCtx, target.URL)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		e.recordFailure(target.URL, err)
		return false
	}

	rec := extractor.Extract(target.URL, html)

	folder := output.FolderNameFor(target.URL, e.seed)
	if _, err := e.writer.WritePage(rec, folder); err != nil {
		e.logger.Error("failed to persist page", "url", target.URL, "error", err)
		return false
	}

	manifest.CrawledURLs = append(manifest.CrawledURLs, target.Key)
	manifest.PagesCrawled++
	metrics.PagesFetched.Inc()
	metrics.BytesFetched.Add(float64(len(html)))

	if target.Depth < e.cfg.MaxDepth {
		e.enqueueLinks(rec.Links, target.Depth+1)
	}
	return false
}

// recordFailure logs a fetch failure and counts it. The page stays in the
// visited set so it is not retried, and it contributes nothing to the page
// count.
func (e *Engine) recordFailure(pageURL string, err error) {
	kind := fetcher.FailNetwork
	var fe *fetcher.FetchError
	if errors.As(err, &fe) {
		kind = fe.Kind
	}
	metrics.FetchFailures.WithLabelValues(string(kind)).Inc()
	e.logger.Warn("page fetch failed, continuing",
		"url", pageURL,
		"kind", string(kind),
		"error", err,
	)
}

// enqueueLinks feeds same-host links back into the frontier.
func (e *Engine) enqueueLinks(links []string, depth int) {
	for _, link := range links {
		if !urlutil.IsInternalLink(link, e.baseHost) {
			continue
		}
		metrics.LinksDiscovered.Inc()
		e.frontier.Enqueue(link, depth)
	}
}
