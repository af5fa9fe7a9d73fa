// internal/backtest/backtest.go
package backtest

import (
	"math"

	"github.com/rovshanmuradov/memescope/internal/risk"
)

// HighRiskThreshold: scores strictly above it count as a rug prediction.
const HighRiskThreshold = 7

// Record is the backtest result for one historical snapshot.
type Record struct {
	Index             int          `json:"index"`
	Symbol            string       `json:"symbol"`
	Address           string       `json:"address,omitempty"`
	Score             int          `json:"score"`
	Outcome           risk.Outcome `json:"outcome"`
	PredictedHighRisk bool         `json:"predicted_high_risk"`
	Correct           bool         `json:"correct"`
	RunningAccuracy   float64      `json:"running_accuracy"`
}

// Summary aggregates a full backtest.
type Summary struct {
	Total          int     `json:"total"`
	Correct        int     `json:"correct"`
	Accuracy       float64 `json:"accuracy"`
	TruePositives  int     `json:"true_positives"`
	FalsePositives int     `json:"false_positives"`
	TrueNegatives  int     `json:"true_negatives"`
	FalseNegatives int     `json:"false_negatives"`
}

// Evaluate replays snaps in order and returns one record per snapshot with
// the running accuracy after that snapshot, rounded to two decimals.
func Evaluate(snaps []risk.Snapshot) []Record {
	records := make([]Record, 0, len(snaps))
	correct := 0

	for i, s := range snaps {
		score := risk.ComputeRiskScore(s)
		outcome := risk.ClassifyHistoricalOutcome(s)
		high := IsHighRisk(score)
		ok := high == (outcome == risk.OutcomeRugpull)
		if ok {
			correct++
		}

		records = append(records, Record{
			Index:             i,
			Symbol:            s.Symbol,
			Address:           s.Address,
			Score:             score,
			Outcome:           outcome,
			PredictedHighRisk: high,
			Correct:           ok,
			RunningAccuracy:   round2(float64(correct) / float64(i+1) * 100),
		})
	}

	return records
}

// IsHighRisk reports whether score is treated as a rug prediction.
func IsHighRisk(score int) bool {
	return score > HighRiskThreshold
}

// Summarize computes totals and the confusion matrix of records.
func Summarize(records []Record) Summary {
	var sum Summary
	sum.Total = len(records)

	for _, r := range records {
		rug := r.Outcome == risk.OutcomeRugpull
		switch {
		case r.PredictedHighRisk && rug:
			sum.TruePositives++
		case r.PredictedHighRisk && !rug:
			sum.FalsePositives++
		case !r.PredictedHighRisk && !rug:
			sum.TrueNegatives++
		default:
			sum.FalseNegatives++
		}
		if r.Correct {
			sum.Correct++
		}
	}

	if sum.Total > 0 {
		sum.Accuracy = round2(float64(sum.Correct) / float64(sum.Total) * 100)
	}
	return sum
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
