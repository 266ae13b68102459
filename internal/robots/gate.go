package robots

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// robotsFetchTimeout bounds the one-time robots.txt download per host.
const robotsFetchTimeout = 10 * time.Second

// hostInfo stores the crawl policy and limiter for one host.
type hostInfo struct {
	robots  *robotstxt.RobotsData // nil if fetch failed or gate disabled
	limiter *rate.Limiter
}

// Gate combines the robots.txt allow/deny decision with a per-host token
// bucket. One Gate serves one crawl run.
type Gate struct {
	mu        sync.RWMutex
	hosts     map[string]*hostInfo
	userAgent string
	delay     time.Duration
	enabled   bool
	client    *http.Client
	logger    *slog.Logger
}

// NewGate creates a Gate. userAgent is matched against robots.txt groups,
// delay is the minimum interval between requests to one host, and enabled
// controls whether robots.txt is consulted at all.
func NewGate(userAgent string, delay time.Duration, enabled bool, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		hosts:     make(map[string]*hostInfo),
		userAgent: userAgent,
		delay:     delay,
		enabled:   enabled,
		client:    &http.Client{Timeout: robotsFetchTimeout},
		logger:    logger,
	}
}

// Check reports whether u may be fetched and returns a wait function that
// blocks on the host's token bucket. The wait function must be called before
// the fetch even when the caller intends to skip the robots decision.
func (g *Gate) Check(ctx context.Context, u *url.URL) (bool, func(ctx context.Context) error) {
	g.mu.RLock()
	h, ok := g.hosts[u.Host]
	g.mu.RUnlock()

	if !ok {
		h = g.newHostInfo(ctx, u)

		g.mu.Lock()
		// Another goroutine may have won the race; keep the first entry so
		// the limiter state is shared.
		if existing, ok := g.hosts[u.Host]; ok {
			h = existing
		} else {
			g.hosts[u.Host] = h
		}
		g.mu.Unlock()
	}

	allowed := true
	if h.robots != nil {
		group := h.robots.FindGroup(g.userAgent)
		allowed = group.Test(u.Path)
	}
	if !allowed {
		g.logger.Debug("robots.txt disallows path", "host", u.Host, "path", u.Path)
	}

	return allowed, h.limiter.Wait
}

// newHostInfo builds the per-host state, fetching robots.txt when enabled.
func (g *Gate) newHostInfo(ctx context.Context, u *url.URL) *hostInfo {
	h := &hostInfo{limiter: newLimiter(g.delay)}
	if g.enabled {
		h.robots = g.fetchRobots(ctx, u.Scheme, u.Host)
	}
	return h
}

// newLimiter converts the politeness delay into a token bucket. A zero delay
// means unlimited.
func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// fetchRobots downloads and parses robots.txt for one host. Any failure is
// treated as an absent robots file.
func (g *Gate) fetchRobots(ctx context.Context, scheme, host string) *robotstxt.RobotsData {
	robotsURL := scheme + "://" + host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Debug("robots.txt fetch failed", "host", host, "error", err)
		return nil
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return nil
	}

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		g.logger.Debug("robots.txt parse failed", "host", host, "error", err)
		return nil
	}
	return robots
}
