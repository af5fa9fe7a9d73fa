// internal/trending/trending.go
package trending

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/memescope/internal/risk"
)

const (
	DefaultInterval = 30 * time.Second
	DefaultWorkers  = 4
)

// Source returns the current list of candidate tokens.
type Source interface {
	Snapshots(ctx context.Context) ([]risk.Snapshot, error)
}

// Enricher adds data to a snapshot before scoring, e.g. holder stats from chain.
type Enricher interface {
	Enrich(ctx context.Context, s risk.Snapshot) (risk.Snapshot, error)
}

// Entry is one scored token in the cache.
type Entry struct {
	Snapshot   risk.Snapshot
	Assessment risk.Assessment
	Enriched   bool
}

// RefreshHook is called after every successful refresh with the new entries.
type RefreshHook func(ctx context.Context, entries []Entry)

// Config holds cache parameters.
type Config struct {
	Interval time.Duration
	Workers  int
	Limit    int // 0 means unlimited
}

// Cache keeps a scored list of trending tokens and refreshes it on a fixed
// interval driven by the injected clock.
type Cache struct {
	source   Source
	enricher Enricher
	clock    clock.Clock
	cfg      Config
	logger   *zap.Logger

	mu          sync.RWMutex
	entries     []Entry
	lastRefresh time.Time
	hooks       []RefreshHook

	refreshReq chan struct{}
}

// NewCache creates a cache. enricher may be nil; clk defaults to the wall clock.
func NewCache(source Source, enricher Enricher, clk clock.Clock, cfg Config, logger *zap.Logger) *Cache {
	if clk == nil {
		clk = clock.New()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &Cache{
		source:     source,
		enricher:   enricher,
		clock:      clk,
		cfg:        cfg,
		logger:     logger.Named("trending"),
		refreshReq: make(chan struct{}, 1),
	}
}

// AddHook registers a refresh hook.
func (c *Cache) AddHook(h RefreshHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, h)
}

// SetLimit changes the maximum number of kept entries; applies on next refresh.
func (c *Cache) SetLimit(limit int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Limit = limit
}

// Entries returns a copy of the current entries.
func (c *Cache) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// LastRefresh returns the clock time of the last successful refresh.
func (c *Cache) LastRefresh() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastRefresh
}

// RequestRefresh asks a running Run loop to refresh now. Never blocks.
func (c *Cache) RequestRefresh() {
	select {
	case c.refreshReq <- struct{}{}:
	default:
	}
}

// Refresh pulls, enriches and scores snapshots, then replaces the entries.
func (c *Cache) Refresh(ctx context.Context) error {
	snaps, err := c.source.Snapshots(ctx)
	if err != nil {
		return fmt.Errorf("load trending snapshots: %w", err)
	}

	entries := make([]Entry, len(snaps))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)

	for i, s := range snaps {
		g.Go(func() error {
			entries[i] = c.buildEntry(gCtx, s)
			return gCtx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("score trending snapshots: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Snapshot, entries[j].Snapshot
		if a.MarketCap != b.MarketCap {
			return a.MarketCap > b.MarketCap
		}
		return a.Symbol < b.Symbol
	})

	c.mu.Lock()
	if c.cfg.Limit > 0 && len(entries) > c.cfg.Limit {
		entries = entries[:c.cfg.Limit]
	}
	c.entries = entries
	c.lastRefresh = c.clock.Now()
	hooks := make([]RefreshHook, len(c.hooks))
	copy(hooks, c.hooks)
	c.mu.Unlock()

	c.logger.Info("Trending cache refreshed",
		zap.Int("tokens", len(snaps)),
		zap.Int("kept", len(entries)))

	for _, h := range hooks {
		h(ctx, c.Entries())
	}
	return nil
}

func (c *Cache) buildEntry(ctx context.Context, s risk.Snapshot) Entry {
	entry := Entry{Snapshot: s}
	if c.enricher != nil {
		enriched, err := c.enricher.Enrich(ctx, s)
		if err != nil {
			c.logger.Warn("Failed to enrich snapshot, scoring without chain data",
				zap.String("symbol", s.Symbol),
				zap.String("mint", s.Address),
				zap.Error(err))
		} else {
			entry.Snapshot = enriched
			entry.Enriched = true
		}
	}
	entry.Assessment = risk.Assess(entry.Snapshot)
	return entry
}

// Run refreshes immediately and then on every interval tick or refresh
// request until ctx is done. Refresh errors are logged, not returned.
func (c *Cache) Run(ctx context.Context) error {
	ticker := c.clock.Ticker(c.cfg.Interval)
	defer ticker.Stop()

	c.refreshLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.refreshLogged(ctx)
		case <-c.refreshReq:
			c.refreshLogged(ctx)
		}
	}
}

func (c *Cache) refreshLogged(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.logger.Error("Trending refresh failed", zap.Error(err))
	}
}
