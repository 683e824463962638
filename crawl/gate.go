// Package crawl provides the politeness gate, the resolution strategies,
// and the orchestration that drives full-text resolution across a batch
// of DOIs.
package crawl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rafguns/doifetch"
	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// DefaultCrawlDelay is used when a host's robots.txt cannot be fetched,
// cannot be parsed, or carries no Crawl-delay directive.
const DefaultCrawlDelay = 1 // seconds

// maxRobotsBody caps how much of a robots.txt response is read.
const maxRobotsBody = 1 << 20

var _ doifetch.Gate = (*HostGate)(nil)

// HostGate enforces per-host mutual exclusion and crawl-delay spacing.
// The first caller for a host discovers that host's crawl delay from its
// robots.txt; discovery happens under the host's lock, so it runs at most
// once per host even under concurrent first access. Different hosts proceed
// fully in parallel.
type HostGate struct {
	cache     doifetch.DelayCache
	client    *http.Client
	userAgent string
	logger    *slog.Logger

	mu    sync.Mutex
	hosts map[string]*hostEntry
}

// hostEntry serializes requests to one host. The limiter is created on
// first acquire, once the host's crawl delay is known.
type hostEntry struct {
	mu      sync.Mutex
	limiter *rate.Limiter
}

// GateOption configures a HostGate.
type GateOption func(*HostGate)

// WithRobotsClient sets the HTTP client used for robots.txt fetches.
func WithRobotsClient(client *http.Client) GateOption {
	return func(g *HostGate) {
		g.client = client
	}
}

// WithGateUserAgent sets the User-Agent for robots.txt fetches.
func WithGateUserAgent(ua string) GateOption {
	return func(g *HostGate) {
		g.userAgent = ua
	}
}

// WithGateLogger sets the logger for delay discovery events.
func WithGateLogger(logger *slog.Logger) GateOption {
	return func(g *HostGate) {
		g.logger = logger
	}
}

// NewHostGate creates a HostGate backed by the given delay cache.
func NewHostGate(cache doifetch.DelayCache, opts ...GateOption) *HostGate {
	g := &HostGate{
		cache:  cache,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		hosts:  make(map[string]*hostEntry),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Acquire blocks until the caller holds exclusive access for host and the
// host's crawl delay has elapsed since the previous request start. The
// returned release func must be called after the request completes; the next
// waiter for the same host is admitted only then.
func (g *HostGate) Acquire(ctx context.Context, scheme, host string) (func(), error) {
	g.mu.Lock()
	e, ok := g.hosts[host]
	if !ok {
		e = &hostEntry{}
		g.hosts[host] = e
	}
	g.mu.Unlock()

	e.mu.Lock()

	if e.limiter == nil {
		delay, ok := g.cache.Delay(host)
		if !ok {
			delay = g.discoverDelay(ctx, scheme, host)
			if err := g.cache.SetDelay(host, delay); err != nil {
				g.logger.Warn("failed to persist crawl delay", "host", host, "error", err)
			}
		}
		e.limiter = rate.NewLimiter(rate.Every(time.Duration(delay)*time.Second), 1)
	}

	if err := e.limiter.Wait(ctx); err != nil {
		e.mu.Unlock()
		return nil, err
	}

	return e.mu.Unlock, nil
}

// discoverDelay fetches and parses the host's robots.txt, returning the
// wildcard user-agent Crawl-delay in seconds. Any fetch or parse failure
// falls back to DefaultCrawlDelay.
func (g *HostGate) discoverDelay(ctx context.Context, scheme, host string) int {
	g.logger.Debug("checking robots policy", "host", host)

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return DefaultCrawlDelay
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return DefaultCrawlDelay
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBody))
	if err != nil {
		return DefaultCrawlDelay
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return DefaultCrawlDelay
	}

	group := data.FindGroup("*")
	if group == nil || group.CrawlDelay <= 0 {
		return DefaultCrawlDelay
	}

	seconds := int(group.CrawlDelay / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
