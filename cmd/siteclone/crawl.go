package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/siteclone/siteclone/internal/config"
	"github.com/siteclone/siteclone/internal/crawler"
	"github.com/siteclone/siteclone/internal/database"
	"github.com/siteclone/siteclone/internal/fetcher"
	"github.com/siteclone/siteclone/internal/log"
	"github.com/siteclone/siteclone/internal/metrics"
	"github.com/siteclone/siteclone/internal/model"
	"github.com/siteclone/siteclone/internal/output"
	"github.com/siteclone/siteclone/internal/report"
	"github.com/siteclone/siteclone/internal/robots"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Crawl a website and save its pages for offline processing",
		Long: `Crawl one or more websites breadth-first, staying on each seed's host.

Every crawled page gets its own folder containing the page URL, rendered
HTML, visible text, image URLs, and inline CSS. A crawl_manifest.json
describing the whole run is written next to the page folders, including
when the run is interrupted with Ctrl-C.

Multiple seed URLs are crawled concurrently, each with its own output
directory and page budget.`,
		Example: `  siteclone crawl https://example.com
  siteclone crawl --max-pages 50 --depth 3 https://example.com
  siteclone crawl --static --output ./snapshots https://example.com https://example.org`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages, "Maximum number of pages to save per site")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth, "Maximum link depth from the seed (the seed is depth 1)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultPageTimeout, "Timeout for a single page load")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay, "Politeness delay between requests to the same host")
	cmd.Flags().StringP("output", "o", "", "Parent directory for site output directories (default: current directory)")
	cmd.Flags().StringP("config", "c", "", "Configuration file path (default: .siteclone in current or home directory)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of sites crawled concurrently")
	cmd.Flags().Bool("static", false, "Fetch raw HTML over HTTP instead of rendering with a headless browser")
	cmd.Flags().Bool("respect-robots", false, "Honor robots.txt disallow rules")
	cmd.Flags().String("user-agent", config.DefaultUserAgent, "User-Agent header sent with every request")
	cmd.Flags().String("metrics-addr", "", "Listen address for the Prometheus /metrics endpoint (empty disables it)")
	cmd.Flags().BoolP("json", "j", false, "Print each run manifest as JSON instead of the text summary")
	cmd.Flags().BoolP("markdown", "m", false, "Write a Markdown report (REPORT.md) into each site directory")

	return cmd
}

// runCrawlCmd handles the crawl command execution.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// First signal cancels the context so in-flight runs stop at the next
	// page boundary and still write their manifests. A second signal kills
	// the process the usual way.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Warn("received signal, finishing current page", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cfg, logger)
}

// buildConfig assembles the crawl configuration from defaults, the optional
// .siteclone file, and flags, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
		return nil, fmt.Errorf("failed to get max-pages flag: %w", err)
	}
	if cfg.MaxDepth, err = cmd.Flags().GetInt("depth"); err != nil {
		return nil, fmt.Errorf("failed to get depth flag: %w", err)
	}
	if cfg.PageTimeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, fmt.Errorf("failed to get timeout flag: %w", err)
	}
	if cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay"); err != nil {
		return nil, fmt.Errorf("failed to get delay flag: %w", err)
	}
	if cfg.OutputParent, err = cmd.Flags().GetString("output"); err != nil {
		return nil, fmt.Errorf("failed to get output flag: %w", err)
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return nil, fmt.Errorf("failed to get batch flag: %w", err)
	}
	if cfg.Static, err = cmd.Flags().GetBool("static"); err != nil {
		return nil, fmt.Errorf("failed to get static flag: %w", err)
	}
	if cfg.RespectRobots, err = cmd.Flags().GetBool("respect-robots"); err != nil {
		return nil, fmt.Errorf("failed to get respect-robots flag: %w", err)
	}
	if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
		return nil, fmt.Errorf("failed to get user-agent flag: %w", err)
	}
	if cfg.JSONOutput, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, fmt.Errorf("failed to get json flag: %w", err)
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, fmt.Errorf("failed to get markdown flag: %w", err)
	}
	if cfg.MetricsAddr, err = cmd.Flags().GetString("metrics-addr"); err != nil {
		return nil, fmt.Errorf("failed to get metrics-addr flag: %w", err)
	}
	cfg.Verbose = getVerboseFlag(cmd)

	// Flags passed explicitly keep their value even when a .siteclone site
	// entry would otherwise override it.
	cfg.Explicit = config.Explicit{
		MaxPages:      cmd.Flags().Changed("max-pages"),
		MaxDepth:      cmd.Flags().Changed("depth"),
		CrawlDelay:    cmd.Flags().Changed("delay"),
		RespectRobots: cmd.Flags().Changed("respect-robots"),
	}

	// An explicitly given config file must exist; the default search is
	// best-effort.
	if cfg.ConfigFilePath != "" {
		sites, err := config.LoadConfigFile(cfg.ConfigFilePath)
		if err != nil {
			return nil, err
		}
		cfg.SiteConfigs = sites
	} else if path := config.FindConfigFile(""); path != "" {
		sites, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg.SiteConfigs = sites
	}

	for _, arg := range args {
		cfg.Seeds = append(cfg.Seeds, normalizeSeed(arg))
	}
	return cfg, nil
}

// getVerboseFlag reads the persistent verbose flag, falling back to the root
// command when the flag set on cmd doesn't carry it (as in tests that build
// the crawl command standalone).
func getVerboseFlag(cmd *cobra.Command) bool {
	if v, err := cmd.Flags().GetBool("verbose"); err == nil {
		return v
	}
	if root := cmd.Root(); root != nil {
		if v, err := root.PersistentFlags().GetBool("verbose"); err == nil {
			return v
		}
	}
	return false
}

// normalizeSeed trims whitespace and defaults bare hostnames to https.
func normalizeSeed(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	return s
}

// runCrawl executes one crawl per seed and reports each run.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.MetricsAddr != "" {
		_, stop, err := serveMetrics(cfg.MetricsAddr, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	var db *database.HistoryDB
	if cfg.DBDir != "" {
		opened, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("run history disabled", "dir", log.RedactURL(cfg.DBDir), "error", err)
		} else {
			db = opened
			defer func() {
				if err := db.Close(); err != nil {
					logger.Warn("failed to close history database", "error", err)
				}
			}()
		}
	}

	manifests, runErr := crawler.RunBatch(ctx, cfg.Seeds, cfg.BatchSize, newEngineFactory(cfg, logger), logger)

	for _, m := range manifests {
		if err := outputRun(cfg, m); err != nil {
			logger.Error("failed to write report", "url", log.RedactURL(m.TargetURL), "error", err)
		}
		if db != nil {
			if _, err := db.RecordRun(context.WithoutCancel(ctx), m); err != nil {
				logger.Error("failed to record run history", "url", log.RedactURL(m.TargetURL), "error", err)
			}
		}
	}

	return runErr
}

// serveMetrics starts the Prometheus scrape endpoint on addr and returns the
// bound address plus a stop function. Failure to bind is a setup failure, so
// it is returned rather than logged.
func serveMetrics(addr string, logger *slog.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("failed to start metrics listener on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", "error", err)
		}
	}()

	bound := ln.Addr().String()
	logger.Debug("serving metrics", "addr", bound)
	return bound, func() { _ = srv.Close() }, nil
}

// newEngineFactory builds one crawl engine per seed, applying per-site
// configuration overrides.
func newEngineFactory(cfg *config.Config, logger *slog.Logger) crawler.EngineFactory {
	return func(_ context.Context, seed string) (*crawler.Engine, error) {
		u, err := url.Parse(seed)
		if err != nil {
			return nil, fmt.Errorf("invalid seed URL %q: %w", seed, err)
		}
		siteCfg := cfg.ForSite(u.Hostname())

		siteDir, err := output.CreateSiteDir(siteCfg.OutputParent, u.Host)
		if err != nil {
			return nil, err
		}
		writer := output.NewWriter(siteDir, logger)

		opts := fetcher.Options{
			UserAgent:    siteCfg.UserAgent,
			Timeout:      siteCfg.PageTimeout,
			MaxBodyBytes: siteCfg.MaxBodySize,
			Headless:     siteCfg.Headless,
			Headers:      siteCfg.Headers,
		}
		var renderer fetcher.Renderer
		if siteCfg.Static {
			renderer = fetcher.NewHTTPFetcher(opts)
		} else {
			renderer = fetcher.NewChromeRenderer(opts, logger)
		}

		gate := robots.NewGate(siteCfg.UserAgent, siteCfg.CrawlDelay, siteCfg.RespectRobots, logger)
		return crawler.NewEngine(siteCfg, seed, renderer, writer, nil, gate, logger)
	}
}

// outputRun reports one finished run: the text summary or JSON on stdout,
// plus an optional Markdown report inside the site directory.
func outputRun(cfg *config.Config, m *model.CrawlManifest) error {
	var errs []error

	if cfg.JSONOutput {
		if _, err := report.NewJSONWriter(os.Stdout, report.WithPrettyPrint()).Write(m); err != nil {
			errs = append(errs, err)
		}
	} else {
		if _, err := report.NewSimpleWriter(os.Stdout, report.WithVerbose(cfg.Verbose)).Write(m); err != nil {
			errs = append(errs, err)
		}
	}

	if cfg.MarkdownReport && m.OutputDir != "" {
		if err := writeMarkdownReport(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// writeMarkdownReport writes REPORT.md next to the run's manifest.
func writeMarkdownReport(m *model.CrawlManifest) error {
	path := filepath.Join(m.OutputDir, "REPORT.md")
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if _, err := report.NewMarkdownWriter(f).Write(m); err != nil {
		f.Close() //nolint:errcheck,gosec // write error takes precedence
		return err
	}
	return f.Close()
}
