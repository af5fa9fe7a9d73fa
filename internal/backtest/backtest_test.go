package backtest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/memescope/internal/risk"
	"github.com/rovshanmuradov/memescope/internal/storage/models"
)

// rug: every signal saturated, score 10, all four indicators
func rugSnapshot() risk.Snapshot {
	return risk.Snapshot{
		Symbol:         "RUG",
		SocialScore:    0,
		BundledBuys:    risk.Int(10),
		WhaleStats:     &risk.WhaleStats{MaxHolderPercentage: risk.Float(50), DeveloperHoldingPercentage: risk.Float(10)},
		LiquidityStats: &risk.LiquidityStats{PercentageChange24h: risk.Float(-80)},
		CreatorRisk:    &risk.CreatorRisk{PreviousScams: risk.Int(2)},
	}
}

// clean: score 1, no indicators
func cleanSnapshot() risk.Snapshot {
	return risk.Snapshot{Symbol: "CLEAN", SocialScore: 100}
}

// sneaky: two indicators fire but the score stays low (2)
func sneakySnapshot() risk.Snapshot {
	return risk.Snapshot{
		Symbol:      "SNEAKY",
		SocialScore: 100,
		BundledBuys: risk.Int(6),
		CreatorRisk: &risk.CreatorRisk{PreviousScams: risk.Int(1)},
	}
}

func TestEvaluateRunningAccuracy(t *testing.T) {
	records := Evaluate([]risk.Snapshot{rugSnapshot(), cleanSnapshot(), sneakySnapshot()})
	require.Len(t, records, 3)

	assert.Equal(t, []bool{true, true, false}, []bool{records[0].Correct, records[1].Correct, records[2].Correct})
	assert.Equal(t, []float64{100, 100, 66.67}, []float64{
		records[0].RunningAccuracy, records[1].RunningAccuracy, records[2].RunningAccuracy,
	})

	assert.Equal(t, 10, records[0].Score)
	assert.Equal(t, risk.OutcomeRugpull, records[0].Outcome)
	assert.True(t, records[0].PredictedHighRisk)

	assert.Equal(t, 1, records[1].Score)
	assert.Equal(t, risk.OutcomeLegitimate, records[1].Outcome)

	assert.Equal(t, 2, records[2].Score)
	assert.Equal(t, risk.OutcomeRugpull, records[2].Outcome)
	assert.False(t, records[2].PredictedHighRisk)

	for i, r := range records {
		assert.Equal(t, i, r.Index)
	}
}

func TestEvaluateEmpty(t *testing.T) {
	records := Evaluate(nil)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Equal(t, Summary{}, Summarize(records))
}

func TestIsHighRisk(t *testing.T) {
	assert.False(t, IsHighRisk(7))
	assert.True(t, IsHighRisk(8))
}

func TestSummarize(t *testing.T) {
	legitHigh := risk.Snapshot{
		Symbol:         "LOUD",
		SocialScore:    0,
		BundledBuys:    risk.Int(2),
		WhaleStats:     &risk.WhaleStats{MaxHolderPercentage: risk.Float(20), DeveloperHoldingPercentage: risk.Float(5)},
		LiquidityStats: &risk.LiquidityStats{PercentageChange24h: risk.Float(30)},
	}
	records := Evaluate([]risk.Snapshot{rugSnapshot(), cleanSnapshot(), sneakySnapshot(), legitHigh})
	sum := Summarize(records)

	assert.Equal(t, Summary{
		Total:          4,
		Correct:        2,
		Accuracy:       50,
		TruePositives:  1,
		FalsePositives: 1,
		TrueNegatives:  1,
		FalseNegatives: 1,
	}, sum)
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) SaveAssessment(ctx context.Context, a *models.Assessment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockStorage) ListAssessments(ctx context.Context, address string, limit int) ([]*models.Assessment, error) {
	args := m.Called(ctx, address, limit)
	return args.Get(0).([]*models.Assessment), args.Error(1)
}

func (m *mockStorage) SaveBacktestRun(ctx context.Context, run *models.BacktestRun) error {
	return m.Called(ctx, run).Error(0)
}

func (m *mockStorage) GetBacktestRun(ctx context.Context, id string) (*models.BacktestRun, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.BacktestRun), args.Error(1)
}

func (m *mockStorage) Close() error { return nil }

func TestRunnerStoresRun(t *testing.T) {
	st := &mockStorage{}
	st.On("SaveBacktestRun", mock.Anything, mock.MatchedBy(func(run *models.BacktestRun) bool {
		return run.Total == 3 && run.Correct == 2 && len(run.Records) == 3 &&
			run.Records[2].Outcome == "rugpull" && run.Records[2].RunningAccuracy == 66.67
	})).Return(nil).Once()

	runner := NewRunner(zap.NewNop(), st)
	report, err := runner.Run(context.Background(), []risk.Snapshot{rugSnapshot(), cleanSnapshot(), sneakySnapshot()})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.False(t, report.StartedAt.IsZero())
	assert.Equal(t, 66.67, report.Summary.Accuracy)
	st.AssertExpectations(t)
}

func TestRunnerStoreError(t *testing.T) {
	st := &mockStorage{}
	st.On("SaveBacktestRun", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	report, err := NewRunner(zap.NewNop(), st).Run(context.Background(), []risk.Snapshot{cleanSnapshot()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Summary.Total)
}

func TestRunnerWithoutStore(t *testing.T) {
	report, err := NewRunner(zap.NewNop(), nil).Run(context.Background(), []risk.Snapshot{cleanSnapshot()})
	require.NoError(t, err)
	assert.Equal(t, 100.0, report.Summary.Accuracy)
}
