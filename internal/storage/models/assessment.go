// internal/storage/models/assessment.go
package models

import "time"

// Assessment is a persisted risk score for one token at one point in time.
type Assessment struct {
	ID        int64
	Address   string
	Symbol    string
	Name      string
	Score     int
	Label     string
	Warnings  []string
	MarketCap float64
	CreatedAt time.Time
}
