// internal/storage/models/backtest.go
package models

import "time"

type BacktestRun struct {
	ID             string
	StartedAt      time.Time
	Total          int
	Correct        int
	Accuracy       float64
	TruePositives  int
	FalsePositives int
	TrueNegatives  int
	FalseNegatives int
	Records        []BacktestRecord
}

type BacktestRecord struct {
	Index             int
	Symbol            string
	Address           string
	Score             int
	Outcome           string
	PredictedHighRisk bool
	Correct           bool
	RunningAccuracy   float64
}
