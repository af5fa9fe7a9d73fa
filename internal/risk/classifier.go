// internal/risk/classifier.go
package risk

// Outcome is the historical label of a token, used as backtest ground truth.
type Outcome string

const (
	OutcomeRugpull    Outcome = "rugpull"
	OutcomeLegitimate Outcome = "legitimate"
)

// Rug indicator thresholds. Coarser than the scorer on purpose so the
// classifier stays an independent check.
const (
	RugLiquidityDropPercent = -50.0
	RugMaxHolderPercent     = 30.0
	RugBundledBuys          = 5
	RugMinIndicators        = 2
)

// RugIndicators reports which of the four rug indicators fired for s.
type RugIndicators struct {
	LiquidityDrained bool `json:"liquidity_drained"`
	WhaleDominated   bool `json:"whale_dominated"`
	ScamCreator      bool `json:"scam_creator"`
	HeavyBundling    bool `json:"heavy_bundling"`
}

// Count returns the number of indicators that fired.
func (r RugIndicators) Count() int {
	n := 0
	for _, v := range []bool{r.LiquidityDrained, r.WhaleDominated, r.ScamCreator, r.HeavyBundling} {
		if v {
			n++
		}
	}
	return n
}

// EvaluateRugIndicators evaluates the four indicators independently.
func EvaluateRugIndicators(s Snapshot) RugIndicators {
	return RugIndicators{
		LiquidityDrained: s.LiquidityChange24h() < RugLiquidityDropPercent,
		WhaleDominated:   s.MaxHolderPercentage() > RugMaxHolderPercent,
		ScamCreator:      s.PreviousScams() > 0,
		HeavyBundling:    s.BundledBuyCount() > RugBundledBuys,
	}
}

// ClassifyHistoricalOutcome labels s as a rugpull when two or more
// indicators fire.
func ClassifyHistoricalOutcome(s Snapshot) Outcome {
	if EvaluateRugIndicators(s).Count() >= RugMinIndicators {
		return OutcomeRugpull
	}
	return OutcomeLegitimate
}
