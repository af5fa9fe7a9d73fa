package trending

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/memescope/internal/risk"
)

type countingSource struct {
	snaps []risk.Snapshot
	err   error
	calls atomic.Int32
}

func (s *countingSource) Snapshots(_ context.Context) ([]risk.Snapshot, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return append([]risk.Snapshot(nil), s.snaps...), nil
}

type whaleEnricher struct {
	pct  float64
	fail map[string]bool
}

func (e whaleEnricher) Enrich(_ context.Context, s risk.Snapshot) (risk.Snapshot, error) {
	if e.fail[s.Symbol] {
		return s, errors.New("rpc down")
	}
	return s.WithWhaleStats(risk.Float(e.pct), nil), nil
}

func sampleSnapshots() []risk.Snapshot {
	return []risk.Snapshot{
		{Symbol: "BBB", MarketCap: 5_000, SocialScore: 90},
		{Symbol: "AAA", MarketCap: 5_000, SocialScore: 90},
		{Symbol: "BIG", MarketCap: 90_000, SocialScore: 100},
		{Symbol: "TINY", MarketCap: 10, SocialScore: 0},
	}
}

func symbols(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Snapshot.Symbol)
	}
	return out
}

func TestRefreshSortsAndScores(t *testing.T) {
	mc := clock.NewMock()
	mc.Set(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	cache := NewCache(&countingSource{snaps: sampleSnapshots()}, nil, mc, Config{}, zap.NewNop())

	require.NoError(t, cache.Refresh(context.Background()))

	entries := cache.Entries()
	assert.Equal(t, []string{"BIG", "AAA", "BBB", "TINY"}, symbols(entries))
	assert.Equal(t, 1, entries[0].Assessment.Score)
	assert.Equal(t, risk.LabelLow, entries[0].Assessment.Label)
	assert.False(t, entries[0].Enriched)
	assert.Equal(t, mc.Now(), cache.LastRefresh())
}

func TestRefreshLimitAndEnrichment(t *testing.T) {
	enricher := whaleEnricher{pct: 40, fail: map[string]bool{"AAA": true}}
	cache := NewCache(&countingSource{snaps: sampleSnapshots()}, enricher, clock.NewMock(), Config{Limit: 2, Workers: 2}, zap.NewNop())

	require.NoError(t, cache.Refresh(context.Background()))
	entries := cache.Entries()
	require.Len(t, entries, 2)

	big, aaa := entries[0], entries[1]
	assert.True(t, big.Enriched)
	assert.Equal(t, 40.0, big.Snapshot.MaxHolderPercentage())
	assert.Contains(t, big.Assessment.Warnings, "Top holder controls 40.0% of supply")

	assert.False(t, aaa.Enriched)
	assert.Equal(t, 0.0, aaa.Snapshot.MaxHolderPercentage())

	cache.SetLimit(0)
	require.NoError(t, cache.Refresh(context.Background()))
	assert.Len(t, cache.Entries(), 4)
}

func TestRefreshSourceError(t *testing.T) {
	cache := NewCache(&countingSource{err: errors.New("feed offline")}, nil, clock.NewMock(), Config{}, zap.NewNop())
	err := cache.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed offline")
	assert.Empty(t, cache.Entries())
	assert.True(t, cache.LastRefresh().IsZero())
}

func TestRefreshHooks(t *testing.T) {
	cache := NewCache(StaticSource(sampleSnapshots()), nil, clock.NewMock(), Config{Limit: 1}, zap.NewNop())

	var got []Entry
	cache.AddHook(func(_ context.Context, entries []Entry) { got = entries })

	require.NoError(t, cache.Refresh(context.Background()))
	require.Len(t, got, 1)
	assert.Equal(t, "BIG", got[0].Snapshot.Symbol)
}

func TestRunRefreshesOnTicks(t *testing.T) {
	mc := clock.NewMock()
	src := &countingSource{snaps: sampleSnapshots()}
	cache := NewCache(src, nil, mc, Config{Interval: time.Minute}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var runErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = cache.Run(ctx)
	}()

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	mc.Add(30 * time.Second)
	assert.Equal(t, int32(1), src.calls.Load())

	mc.Add(30 * time.Second)
	require.Eventually(t, func() bool { return src.calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	cache.RequestRefresh()
	require.Eventually(t, func() bool { return src.calls.Load() == 3 }, time.Second, 5*time.Millisecond)

	cancel()
	wg.Wait()
	assert.ErrorIs(t, runErr, context.Canceled)
}

func TestRunSurvivesRefreshErrors(t *testing.T) {
	mc := clock.NewMock()
	src := &countingSource{err: errors.New("boom")}
	cache := NewCache(src, nil, mc, Config{Interval: time.Second}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cache.Run(ctx) }()

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	mc.Add(time.Second)
	require.Eventually(t, func() bool { return src.calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trending.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"symbol":"F","socialScore":10,"marketCap":3}]`), 0600))

	snaps, err := FileSource{Path: path}.Snapshots(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "F", snaps[0].Symbol)
}

func TestStaticSourceReturnsCopy(t *testing.T) {
	src := StaticSource(sampleSnapshots())
	snaps, err := src.Snapshots(context.Background())
	require.NoError(t, err)
	snaps[0].Symbol = "CHANGED"
	assert.Equal(t, "BBB", src[0].Symbol)
}
