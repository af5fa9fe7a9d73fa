// internal/backtest/runner.go
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/memescope/internal/risk"
	"github.com/rovshanmuradov/memescope/internal/storage"
	"github.com/rovshanmuradov/memescope/internal/storage/models"
)

// Report is the output of a single backtest run.
type Report struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Records   []Record  `json:"records"`
	Summary   Summary   `json:"summary"`
}

// Runner runs backtests and optionally persists them.
type Runner struct {
	logger *zap.Logger
	store  storage.Storage
	now    func() time.Time
}

// NewRunner creates a runner. store may be nil.
func NewRunner(logger *zap.Logger, store storage.Storage) *Runner {
	return &Runner{
		logger: logger.Named("backtest"),
		store:  store,
		now:    time.Now,
	}
}

// Run evaluates snaps and saves the resulting run when a store is configured.
func (r *Runner) Run(ctx context.Context, snaps []risk.Snapshot) (*Report, error) {
	report := &Report{
		ID:        uuid.New().String(),
		StartedAt: r.now().UTC(),
	}
	report.Records = Evaluate(snaps)
	report.Summary = Summarize(report.Records)

	r.logger.Info("Backtest finished",
		zap.String("run_id", report.ID),
		zap.Int("total", report.Summary.Total),
		zap.Int("correct", report.Summary.Correct),
		zap.Float64("accuracy", report.Summary.Accuracy),
		zap.Int("false_negatives", report.Summary.FalseNegatives),
		zap.Int("false_positives", report.Summary.FalsePositives))

	if r.store == nil {
		return report, nil
	}
	if err := r.store.SaveBacktestRun(ctx, report.toModel()); err != nil {
		return report, fmt.Errorf("save backtest run: %w", err)
	}
	r.logger.Debug("Backtest run stored", zap.String("run_id", report.ID))
	return report, nil
}

func (rep *Report) toModel() *models.BacktestRun {
	run := &models.BacktestRun{
		ID:             rep.ID,
		StartedAt:      rep.StartedAt,
		Total:          rep.Summary.Total,
		Correct:        rep.Summary.Correct,
		Accuracy:       rep.Summary.Accuracy,
		TruePositives:  rep.Summary.TruePositives,
		FalsePositives: rep.Summary.FalsePositives,
		TrueNegatives:  rep.Summary.TrueNegatives,
		FalseNegatives: rep.Summary.FalseNegatives,
		Records:        make([]models.BacktestRecord, 0, len(rep.Records)),
	}
	for _, rec := range rep.Records {
		run.Records = append(run.Records, models.BacktestRecord{
			Index:             rec.Index,
			Symbol:            rec.Symbol,
			Address:           rec.Address,
			Score:             rec.Score,
			Outcome:           string(rec.Outcome),
			PredictedHighRisk: rec.PredictedHighRisk,
			Correct:           rec.Correct,
			RunningAccuracy:   rec.RunningAccuracy,
		})
	}
	return run
}
