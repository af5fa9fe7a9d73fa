// internal/risk/factors.go
package risk

import "math"

// FactorName identifies one of the five risk factors.
type FactorName string

const (
	FactorWhaleConcentration FactorName = "whale_concentration"
	FactorDeveloperHoldings  FactorName = "developer_holdings"
	FactorBundledBuys        FactorName = "bundled_buys"
	FactorSocialSentiment    FactorName = "social_sentiment"
	FactorLiquidity          FactorName = "liquidity_instability"
)

// Saturation points: at or beyond these raw values a factor is at maximum risk.
const (
	WhaleSaturationPercent     = 15.0
	DeveloperSaturationPercent = 3.0
	BundledBuysSaturation      = 2.0
	LiquiditySaturationPercent = 20.0
	MaxSocialScore             = 100.0
)

// FactorScore is a single factor's contribution to the weighted score.
type FactorScore struct {
	Name     FactorName `json:"name"`
	Raw      float64    `json:"raw"`
	Value    float64    `json:"value"` // normalized to [0,1]
	Weight   float64    `json:"weight"`
	Weighted float64    `json:"weighted"`
}

type factor struct {
	name   FactorName
	weight float64
	raw    func(Snapshot) float64
	norm   func(raw float64) float64
}

// weights must sum to 1.0; the order is the evaluation order of the sum.
var factors = []factor{
	{FactorWhaleConcentration, 0.25, Snapshot.MaxHolderPercentage, WhaleConcentration},
	{FactorDeveloperHoldings, 0.20, Snapshot.DeveloperHoldingPercentage, DeveloperHoldings},
	{FactorBundledBuys, 0.20, func(s Snapshot) float64 { return float64(s.BundledBuyCount()) }, BundledBuys},
	{FactorSocialSentiment, 0.15, func(s Snapshot) float64 { return s.SocialScore }, SocialSentiment},
	{FactorLiquidity, 0.20, Snapshot.LiquidityChange24h, LiquidityInstability},
}

// WhaleConcentration normalizes the largest holder share.
func WhaleConcentration(maxHolderPercentage float64) float64 {
	return clamp01(maxHolderPercentage / WhaleSaturationPercent)
}

// DeveloperHoldings normalizes the creator wallet share.
func DeveloperHoldings(developerPercentage float64) float64 {
	return clamp01(developerPercentage / DeveloperSaturationPercent)
}

// BundledBuys normalizes the bundled buy count.
func BundledBuys(count float64) float64 {
	return clamp01(count / BundledBuysSaturation)
}

// SocialSentiment is the inverse of the social score.
func SocialSentiment(socialScore float64) float64 {
	return clamp01(1 - socialScore/MaxSocialScore)
}

// LiquidityInstability counts swings in either direction.
func LiquidityInstability(change24h float64) float64 {
	return clamp01(math.Abs(change24h) / LiquiditySaturationPercent)
}

// Factors evaluates every factor for s in fixed order.
func Factors(s Snapshot) []FactorScore {
	out := make([]FactorScore, 0, len(factors))
	for _, f := range factors {
		raw := f.raw(s)
		v := f.norm(raw)
		out = append(out, FactorScore{
			Name:     f.name,
			Raw:      raw,
			Value:    v,
			Weight:   f.weight,
			Weighted: v * f.weight,
		})
	}
	return out
}

// TotalWeight returns the sum of all factor weights.
func TotalWeight() float64 {
	var total float64
	for _, f := range factors {
		total += f.weight
	}
	return total
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
