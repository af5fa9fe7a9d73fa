// internal/app/runner.go
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/memescope/internal/backtest"
	"github.com/rovshanmuradov/memescope/internal/blockchain/solbc"
	"github.com/rovshanmuradov/memescope/internal/config"
	"github.com/rovshanmuradov/memescope/internal/export"
	"github.com/rovshanmuradov/memescope/internal/license"
	"github.com/rovshanmuradov/memescope/internal/logger"
	"github.com/rovshanmuradov/memescope/internal/risk"
	"github.com/rovshanmuradov/memescope/internal/snapshot"
	"github.com/rovshanmuradov/memescope/internal/storage"
	"github.com/rovshanmuradov/memescope/internal/storage/models"
	"github.com/rovshanmuradov/memescope/internal/storage/sqlite"
	"github.com/rovshanmuradov/memescope/internal/trending"
	"github.com/rovshanmuradov/memescope/internal/ui"
	"github.com/rovshanmuradov/memescope/internal/ui/component"
)

// TierResolver turns a license key into a dashboard tier.
type TierResolver interface {
	ResolveTier(ctx context.Context, licenseKey string) (license.Tier, error)
}

// Runner wires configuration into the commands of the CLI.
type Runner struct {
	cfg      *config.Config
	logger   *zap.Logger
	out      io.Writer
	clock    clock.Clock
	tiers    TierResolver
	logs     *logger.LogBuffer
	shutdown *ShutdownHandler

	mu sync.Mutex
	db storage.Storage

	// runProgram запускает TUI; в тестах подменяется.
	runProgram func(ctx context.Context, m tea.Model) error
}

// Option customizes a Runner.
type Option func(*Runner)

// WithClock sets the clock driving the trending refresh.
func WithClock(c clock.Clock) Option { return func(r *Runner) { r.clock = c } }

// WithTierResolver replaces the Keygen validator.
func WithTierResolver(t TierResolver) Option { return func(r *Runner) { r.tiers = t } }

// WithLogBuffer shows buffered log entries in the dashboard.
func WithLogBuffer(b *logger.LogBuffer) Option { return func(r *Runner) { r.logs = b } }

// NewRunner creates a runner writing command output to out.
func NewRunner(cfg *config.Config, log *zap.Logger, out io.Writer, opts ...Option) *Runner {
	r := &Runner{
		cfg:        cfg,
		logger:     log,
		out:        out,
		clock:      clock.New(),
		shutdown:   NewShutdownHandler(log.Named("shutdown"), 0),
		runProgram: runTeaProgram,
	}
	if cfg.LicenseConfigured() {
		r.tiers = license.NewKeygenValidator(cfg.KeygenAccount, cfg.KeygenToken, cfg.KeygenProduct, log.Named("license"))
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close releases everything the commands opened.
func (r *Runner) Close(ctx context.Context) error {
	return r.shutdown.Shutdown(ctx)
}

// ScoreOptions configure the score command.
type ScoreOptions struct {
	File string
	JSON bool
	Save bool
}

// Score assesses every snapshot in a dataset.
func (r *Runner) Score(ctx context.Context, opts ScoreOptions) ([]risk.Assessment, error) {
	log := logger.WithOperation(r.logger, "score")

	snaps, err := r.loadSnapshots(opts.File)
	if err != nil {
		return nil, err
	}

	enricher, err := r.enricher()
	if err != nil {
		return nil, err
	}
	if enricher != nil {
		snaps = r.enrichAll(ctx, enricher, snaps)
	}

	assessments := make([]risk.Assessment, len(snaps))
	for i, s := range snaps {
		assessments[i] = risk.Assess(s)
	}
	log.Info("Snapshots scored", zap.Int("count", len(assessments)))

	if opts.Save {
		store, err := r.store()
		if err != nil {
			return nil, err
		}
		for i, a := range assessments {
			if err := store.SaveAssessment(ctx, toAssessmentModel(a, snaps[i], r.clock.Now())); err != nil {
				return nil, fmt.Errorf("save assessment for %s: %w", a.Symbol, err)
			}
		}
	}

	if opts.JSON {
		return assessments, writeJSON(r.out, assessments)
	}
	_, err = io.WriteString(r.out, renderAssessments(assessments))
	return assessments, err
}

// BacktestOptions configure the backtest command.
type BacktestOptions struct {
	File       string
	Export     string // формат; пусто - без экспорта
	OnlyMisses bool
	Save       bool
}

// Backtest runs a backtest over a labelled dataset and optionally exports it.
func (r *Runner) Backtest(ctx context.Context, opts BacktestOptions) (*backtest.Report, string, error) {
	snaps, err := r.loadSnapshots(opts.File)
	if err != nil {
		return nil, "", err
	}

	var store storage.Storage
	if opts.Save {
		if store, err = r.store(); err != nil {
			return nil, "", err
		}
	}

	runner := backtest.NewRunner(r.logger, store)
	report, err := runner.Run(ctx, snaps)
	if err != nil {
		return report, "", err
	}

	if _, err := io.WriteString(r.out, renderReport(report)); err != nil {
		return report, "", err
	}

	if opts.Export == "" {
		return report, "", nil
	}
	format, err := export.ParseFormat(opts.Export)
	if err != nil {
		return report, "", err
	}
	path, err := export.NewReportExporter(r.logger).Export(report, export.ExportOptions{
		Format:     format,
		OutputDir:  r.cfg.ExportDir,
		OnlyMisses: opts.OnlyMisses,
	})
	if err != nil {
		return report, "", err
	}
	fmt.Fprintf(r.out, "Exported to %s\n", path)
	return report, path, nil
}

// History prints stored assessments of one token.
func (r *Runner) History(ctx context.Context, address string, limit int) ([]*models.Assessment, error) {
	store, err := r.store()
	if err != nil {
		return nil, err
	}
	items, err := store.ListAssessments(ctx, address, limit)
	if err != nil {
		return nil, err
	}
	_, err = io.WriteString(r.out, renderHistory(items))
	return items, err
}

// ShowRun prints a stored backtest run.
func (r *Runner) ShowRun(ctx context.Context, id string) (*models.BacktestRun, error) {
	store, err := r.store()
	if err != nil {
		return nil, err
	}
	run, err := store.GetBacktestRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("backtest run %s: %w", id, err)
	}
	_, err = io.WriteString(r.out, renderRun(run))
	return run, err
}

// Tier resolves the dashboard tier from the configured license.
func (r *Runner) Tier(ctx context.Context) (license.Tier, error) {
	if r.tiers == nil || r.cfg.LicenseKey == "" {
		return license.TierFree, nil
	}
	tier, err := r.tiers.ResolveTier(ctx, r.cfg.LicenseKey)
	if errors.Is(err, license.ErrExpired) {
		r.logger.Warn("License expired, falling back to free tier")
		return license.TierFree, nil
	}
	return tier, err
}

// NewTrendingCache builds the trending cache for the configured source.
func (r *Runner) NewTrendingCache(ctx context.Context) (*trending.Cache, license.Tier, error) {
	if r.cfg.SnapshotFile == "" {
		return nil, "", errors.New("snapshot_file is required for watch")
	}

	tier, err := r.Tier(ctx)
	if err != nil {
		return nil, "", err
	}

	enricher, err := r.enricher()
	if err != nil {
		return nil, "", err
	}

	cache := trending.NewCache(
		trending.FileSource{Path: r.cfg.SnapshotFile},
		enricher,
		r.clock,
		trending.Config{
			Interval: r.cfg.RefreshInterval,
			Workers:  r.cfg.Workers,
			Limit:    tier.TrendingLimit(),
		},
		r.logger,
	)

	if r.cfg.SQLitePath != "" {
		store, err := r.store()
		if err != nil {
			return nil, "", err
		}
		cache.AddHook(r.persistHook(store))
	}
	return cache, tier, nil
}

// Watch runs the trending cache and the dashboard until the user quits or ctx ends.
func (r *Runner) Watch(ctx context.Context) error {
	cache, tier, err := r.NewTrendingCache(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := cache.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		model := ui.NewModel(cache, ui.Options{
			Tier:  string(tier),
			Limit: tier.TrendingLimit(),
			Logs:  r.logsSource(),
			Now:   r.clock.Now,
		})
		return r.runProgram(gctx, model)
	})
	return g.Wait()
}

func (r *Runner) logsSource() component.LogSource {
	if r.logs == nil {
		return nil
	}
	return r.logs
}

func (r *Runner) persistHook(store storage.Storage) trending.RefreshHook {
	return func(ctx context.Context, entries []trending.Entry) {
		now := r.clock.Now()
		for _, e := range entries {
			if err := store.SaveAssessment(ctx, toAssessmentModel(e.Assessment, e.Snapshot, now)); err != nil {
				r.logger.Warn("Failed to store assessment",
					zap.String("symbol", e.Assessment.Symbol),
					zap.Error(err))
			}
		}
	}
}

func (r *Runner) loadSnapshots(path string) ([]risk.Snapshot, error) {
	if path == "" {
		path = r.cfg.SnapshotFile
	}
	if path == "" {
		return nil, errors.New("no snapshot file given")
	}
	return snapshot.LoadFile(path)
}

// enricher returns nil when no RPC endpoint is configured.
func (r *Runner) enricher() (trending.Enricher, error) {
	if r.cfg.RPCURL == "" {
		return nil, nil
	}
	exclude, err := solbc.ParseAccounts(r.cfg.ExcludeAccounts)
	if err != nil {
		return nil, fmt.Errorf("exclude_accounts: %w", err)
	}
	return solbc.NewHolderStats(solbc.NewClient(r.cfg.RPCURL, r.logger), exclude, r.logger), nil
}

// enrichAll enriches in input order; snapshots that fail keep their file values.
func (r *Runner) enrichAll(ctx context.Context, enricher trending.Enricher, snaps []risk.Snapshot) []risk.Snapshot {
	out := make([]risk.Snapshot, len(snaps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.cfg.Workers))
	for i, s := range snaps {
		g.Go(func() error {
			enriched, err := enricher.Enrich(gctx, s)
			if err != nil {
				r.logger.Warn("Enrichment failed, using snapshot values",
					zap.String("symbol", s.Symbol),
					zap.Error(err))
				enriched = s
			}
			out[i] = enriched
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (r *Runner) store() (storage.Storage, error) {
	if r.cfg.SQLitePath == "" {
		return nil, errors.New("sqlite_path is not configured")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != nil {
		return r.db, nil
	}
	db, err := sqlite.NewStorage(r.cfg.SQLitePath, r.logger)
	if err != nil {
		return nil, err
	}
	r.db = db
	r.shutdown.Add("sqlite", db)
	return db, nil
}

func toAssessmentModel(a risk.Assessment, s risk.Snapshot, at time.Time) *models.Assessment {
	return &models.Assessment{
		Address:   s.Address,
		Symbol:    a.Symbol,
		Name:      a.Name,
		Score:     a.Score,
		Label:     string(a.Label),
		Warnings:  a.Warnings,
		MarketCap: s.MarketCap,
		CreatedAt: at,
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runTeaProgram(ctx context.Context, m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
