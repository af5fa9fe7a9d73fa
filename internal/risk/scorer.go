// internal/risk/scorer.go
package risk

import (
	"fmt"
	"math"
)

const (
	MinScore = 1
	MaxScore = 10
)

// Warning thresholds. They are independent of the factor saturation points.
const (
	WarnTopHolderPercent   = 10.0
	WarnDeveloperPercent   = 2.0
	WarnLiquidityDropPct   = -20.0
	WarnWeakSocialScore    = 30.0
	WarnBundledBuysMinimum = 1
)

// Label is the presentation label of a score.
type Label string

const (
	LabelLow    Label = "Low Risk"
	LabelMedium Label = "Medium Risk"
	LabelHigh   Label = "High Risk"
)

// Color is the display color category of a score.
type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
)

// Assessment is the full scoring result for one snapshot.
type Assessment struct {
	Address  string        `json:"address,omitempty"`
	Symbol   string        `json:"symbol"`
	Name     string        `json:"name"`
	Score    int           `json:"score"`
	Label    Label         `json:"label"`
	Color    Color         `json:"color"`
	Warnings []string      `json:"warnings"`
	Factors  []FactorScore `json:"factors"`
}

// ComputeRiskScore maps s to an integer risk score in [1,10].
func ComputeRiskScore(s Snapshot) int {
	return scoreFromFactors(Factors(s))
}

func scoreFromFactors(fs []FactorScore) int {
	var sum float64
	for _, f := range fs {
		sum += f.Weighted
	}
	score := int(math.Round(sum * 10))
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// ComputeRiskWarnings returns plain-language warnings for s in a stable order.
// The result is empty, never nil, when no threshold is crossed.
func ComputeRiskWarnings(s Snapshot) []string {
	warnings := []string{}

	if v := s.MaxHolderPercentage(); v > WarnTopHolderPercent {
		warnings = append(warnings, fmt.Sprintf("Top holder controls %.1f%% of supply", v))
	}
	if v := s.DeveloperHoldingPercentage(); v > WarnDeveloperPercent {
		warnings = append(warnings, fmt.Sprintf("Developer holds %.1f%% of supply", v))
	}
	if n := s.PreviousScams(); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d previous scam %s from this creator", n, plural(n, "token", "tokens")))
	}
	if v := s.LiquidityChange24h(); v < WarnLiquidityDropPct {
		warnings = append(warnings, fmt.Sprintf("Liquidity dropped %.1f%% in 24h", -v))
	}
	if n := s.BundledBuyCount(); n >= WarnBundledBuysMinimum {
		warnings = append(warnings, fmt.Sprintf("%d bundled %s detected", n, plural(n, "buy", "buys")))
	}
	if s.SocialScore < WarnWeakSocialScore {
		warnings = append(warnings, fmt.Sprintf("Weak social engagement (score %.0f)", s.SocialScore))
	}

	return warnings
}

// RiskLabel maps a score to its label.
func RiskLabel(score int) Label {
	switch {
	case score <= 3:
		return LabelLow
	case score <= 6:
		return LabelMedium
	default:
		return LabelHigh
	}
}

// RiskColor maps a score to its display color.
func RiskColor(score int) Color {
	switch RiskLabel(score) {
	case LabelLow:
		return ColorGreen
	case LabelMedium:
		return ColorYellow
	default:
		return ColorRed
	}
}

// Assess scores s and collects everything a consumer needs to render it.
func Assess(s Snapshot) Assessment {
	fs := Factors(s)
	score := scoreFromFactors(fs)
	return Assessment{
		Address:  s.Address,
		Symbol:   s.Symbol,
		Name:     s.Name,
		Score:    score,
		Label:    RiskLabel(score),
		Color:    RiskColor(score),
		Warnings: ComputeRiskWarnings(s),
		Factors:  fs,
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
