package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleanSnapshot() Snapshot {
	return Snapshot{
		Symbol:      "CLEAN",
		SocialScore: 100,
		BundledBuys: Int(0),
		WhaleStats: &WhaleStats{
			MaxHolderPercentage:        Float(0),
			DeveloperHoldingPercentage: Float(0),
		},
		LiquidityStats: &LiquidityStats{PercentageChange24h: Float(0)},
		CreatorRisk:    &CreatorRisk{PreviousScams: Int(0)},
	}
}

func saturatedSnapshot() Snapshot {
	return Snapshot{
		Symbol:      "RUG",
		SocialScore: 0,
		BundledBuys: Int(10),
		WhaleStats: &WhaleStats{
			MaxHolderPercentage:        Float(50),
			DeveloperHoldingPercentage: Float(10),
		},
		LiquidityStats: &LiquidityStats{PercentageChange24h: Float(-80)},
		CreatorRisk:    &CreatorRisk{PreviousScams: Int(2)},
	}
}

func TestTotalWeightIsOne(t *testing.T) {
	assert.InDelta(t, 1.0, TotalWeight(), 1e-9)
}

func TestComputeRiskScore_EmptySnapshotFloor(t *testing.T) {
	assert.Equal(t, 1, ComputeRiskScore(Snapshot{SocialScore: 100}))
}

func TestComputeRiskScore_Clean(t *testing.T) {
	s := cleanSnapshot()
	assert.Equal(t, 1, ComputeRiskScore(s))
	assert.Empty(t, ComputeRiskWarnings(s))
	assert.NotNil(t, ComputeRiskWarnings(s))
}

func TestComputeRiskScore_Saturated(t *testing.T) {
	s := saturatedSnapshot()
	for _, f := range Factors(s) {
		assert.Equal(t, 1.0, f.Value, "factor %s", f.Name)
	}
	assert.Equal(t, 10, ComputeRiskScore(s))
}

func TestComputeRiskScore_Range(t *testing.T) {
	tests := []struct {
		name string
		s    Snapshot
	}{
		{"zero social, nothing else", Snapshot{}},
		{"negative inputs", Snapshot{
			SocialScore:    150,
			BundledBuys:    Int(-3),
			WhaleStats:     &WhaleStats{MaxHolderPercentage: Float(-20)},
			LiquidityStats: &LiquidityStats{PercentageChange24h: Float(500)},
		}},
		{"huge inputs", Snapshot{
			SocialScore: -900,
			BundledBuys: Int(1_000_000),
			WhaleStats:  &WhaleStats{MaxHolderPercentage: Float(1e9), DeveloperHoldingPercentage: Float(1e9)},
		}},
		{"partial whale stats", Snapshot{SocialScore: 50, WhaleStats: &WhaleStats{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := ComputeRiskScore(tt.s)
			assert.GreaterOrEqual(t, score, MinScore)
			assert.LessOrEqual(t, score, MaxScore)
		})
	}
}

func TestComputeRiskScore_Examples(t *testing.T) {
	// social 50 -> 0.5*0.15 = 0.075; whale 7.5% -> 0.5*0.25 = 0.125; total 0.2
	s := Snapshot{
		SocialScore: 50,
		WhaleStats:  &WhaleStats{MaxHolderPercentage: Float(7.5)},
	}
	assert.Equal(t, 2, ComputeRiskScore(s))

	// liquidity pumps count like drops
	up := Snapshot{SocialScore: 100, LiquidityStats: &LiquidityStats{PercentageChange24h: Float(40)}}
	down := Snapshot{SocialScore: 100, LiquidityStats: &LiquidityStats{PercentageChange24h: Float(-40)}}
	assert.Equal(t, ComputeRiskScore(up), ComputeRiskScore(down))
	assert.Equal(t, 2, ComputeRiskScore(up))
}

func TestComputeRiskScore_MonotonicWhale(t *testing.T) {
	base := cleanSnapshot()
	base.SocialScore = 40
	prev := 0
	for pct := 0.0; pct <= 100; pct += 0.5 {
		s := base.WithWhaleStats(Float(pct), nil)
		score := ComputeRiskScore(s)
		require.GreaterOrEqual(t, score, prev, "whale %.1f%%", pct)
		prev = score
	}
}

func TestComputeRiskScore_MonotonicSocial(t *testing.T) {
	base := saturatedSnapshot()
	base.WhaleStats = nil
	prev := MaxScore + 1
	for social := 0.0; social <= 100; social++ {
		s := base
		s.SocialScore = social
		score := ComputeRiskScore(s)
		require.LessOrEqual(t, score, prev, "social %.0f", social)
		prev = score
	}
}

func TestWhaleSaturation(t *testing.T) {
	at15 := Factors(Snapshot{WhaleStats: &WhaleStats{MaxHolderPercentage: Float(15)}})
	at30 := Factors(Snapshot{WhaleStats: &WhaleStats{MaxHolderPercentage: Float(30)}})
	require.Equal(t, FactorWhaleConcentration, at15[0].Name)
	assert.Equal(t, 1.0, at15[0].Value)
	assert.Equal(t, at15[0].Weighted, at30[0].Weighted)
}

func TestFactorsOrder(t *testing.T) {
	fs := Factors(Snapshot{})
	names := make([]FactorName, 0, len(fs))
	for _, f := range fs {
		names = append(names, f.Name)
	}
	assert.Equal(t, []FactorName{
		FactorWhaleConcentration,
		FactorDeveloperHoldings,
		FactorBundledBuys,
		FactorSocialSentiment,
		FactorLiquidity,
	}, names)
}

func TestComputeRiskWarnings(t *testing.T) {
	s := Snapshot{
		SocialScore: 12,
		BundledBuys: Int(1),
		WhaleStats: &WhaleStats{
			MaxHolderPercentage:        Float(12.5),
			DeveloperHoldingPercentage: Float(5),
		},
		LiquidityStats: &LiquidityStats{PercentageChange24h: Float(-35)},
		CreatorRisk:    &CreatorRisk{PreviousScams: Int(2)},
	}

	assert.Equal(t, []string{
		"Top holder controls 12.5% of supply",
		"Developer holds 5.0% of supply",
		"2 previous scam tokens from this creator",
		"Liquidity dropped 35.0% in 24h",
		"1 bundled buy detected",
		"Weak social engagement (score 12)",
	}, ComputeRiskWarnings(s))
}

func TestComputeRiskWarnings_BelowThresholds(t *testing.T) {
	s := Snapshot{
		SocialScore: 30,
		WhaleStats: &WhaleStats{
			MaxHolderPercentage:        Float(10),
			DeveloperHoldingPercentage: Float(2),
		},
		LiquidityStats: &LiquidityStats{PercentageChange24h: Float(25)},
		CreatorRisk:    &CreatorRisk{PreviousScams: Int(1)},
	}
	assert.Equal(t, []string{"1 previous scam token from this creator"}, ComputeRiskWarnings(s))
}

func TestRiskLabelAndColor(t *testing.T) {
	tests := []struct {
		score int
		label Label
		color Color
	}{
		{1, LabelLow, ColorGreen},
		{3, LabelLow, ColorGreen},
		{4, LabelMedium, ColorYellow},
		{6, LabelMedium, ColorYellow},
		{7, LabelHigh, ColorRed},
		{10, LabelHigh, ColorRed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.label, RiskLabel(tt.score), "score %d", tt.score)
		assert.Equal(t, tt.color, RiskColor(tt.score), "score %d", tt.score)
	}
}

func TestAssess(t *testing.T) {
	s := saturatedSnapshot()
	s.Address = "mint"
	a := Assess(s)

	assert.Equal(t, "mint", a.Address)
	assert.Equal(t, "RUG", a.Symbol)
	assert.Equal(t, 10, a.Score)
	assert.Equal(t, LabelHigh, a.Label)
	assert.Equal(t, ColorRed, a.Color)
	assert.Len(t, a.Factors, 5)
	assert.Equal(t, ComputeRiskWarnings(s), a.Warnings)
}

func TestWithWhaleStatsKeepsOriginal(t *testing.T) {
	s := cleanSnapshot()
	updated := s.WithWhaleStats(Float(40), nil)

	assert.Equal(t, 0.0, s.MaxHolderPercentage())
	assert.Equal(t, 40.0, updated.MaxHolderPercentage())
	assert.Equal(t, 0.0, updated.DeveloperHoldingPercentage())
}
