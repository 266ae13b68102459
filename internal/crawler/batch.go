package crawler

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/siteclone/siteclone/internal/model"
)

// EngineFactory builds a ready Engine for one seed. The factory owns the
// per-seed setup that can fail before crawling starts: creating the site
// directory and the renderer session.
type EngineFactory func(ctx context.Context, seed string) (*Engine, error)

// RunBatch crawls several seeds with at most limit runs in flight. Each seed
// gets an independent engine, so a setup failure on one seed does not stop
// the others. Manifests are returned in seed order with failed setups
// omitted; the error joins all per-seed setup and manifest failures.
func RunBatch(ctx context.Context, seeds []string, limit int, factory EngineFactory, logger *slog.Logger) ([]*model.CrawlManifest, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 {
		limit = 1
	}

	manifests := make([]*model.CrawlManifest, len(seeds))
	errs := make([]error, len(seeds))

	var g errgroup.Group
	g.SetLimit(limit)

	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			engine, err := factory(ctx, seed)
			if err != nil {
				logger.Error("skipping seed, setup failed", "seed", seed, "error", err)
				errs[i] = err
				return nil
			}

			manifest, err := engine.Run(ctx)
			manifests[i] = manifest
			if err != nil {
				logger.Error("crawl run failed to persist manifest", "seed", seed, "error", err)
				errs[i] = err
			}
			return nil
		})
	}

	// Goroutines report through errs; Wait only synchronizes.
	_ = g.Wait()

	out := make([]*model.CrawlManifest, 0, len(seeds))
	for _, m := range manifests {
		if m != nil {
			out = append(out, m)
		}
	}
	return out, errors.Join(errs...)
}
