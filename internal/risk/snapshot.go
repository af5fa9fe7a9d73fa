// internal/risk/snapshot.go
package risk

// Snapshot is a point-in-time record of a token's market, social and ownership
// metadata. Optional members are nil when the upstream pipeline had no data;
// every accessor below returns 0 in that case, which is the zero-risk default.
type Snapshot struct {
	Address   string  `json:"address,omitempty" yaml:"address,omitempty"`
	Creator   string  `json:"creator,omitempty" yaml:"creator,omitempty"`
	Name      string  `json:"name" yaml:"name"`
	Symbol    string  `json:"symbol" yaml:"symbol"`
	MarketCap float64 `json:"marketCap" yaml:"marketCap"`
	DexStatus string  `json:"dexStatus,omitempty" yaml:"dexStatus,omitempty"`

	// SocialScore is 0..100, higher means more positive engagement.
	SocialScore float64 `json:"socialScore" yaml:"socialScore"`
	BundledBuys *int    `json:"bundledBuys,omitempty" yaml:"bundledBuys,omitempty"`

	WhaleStats     *WhaleStats     `json:"whaleStats,omitempty" yaml:"whaleStats,omitempty"`
	LiquidityStats *LiquidityStats `json:"liquidityStats,omitempty" yaml:"liquidityStats,omitempty"`
	CreatorRisk    *CreatorRisk    `json:"creatorRisk,omitempty" yaml:"creatorRisk,omitempty"`

	Meta map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// WhaleStats holds ownership concentration in percent of supply (0..100).
type WhaleStats struct {
	MaxHolderPercentage        *float64 `json:"maxHolderPercentage,omitempty" yaml:"maxHolderPercentage,omitempty"`
	DeveloperHoldingPercentage *float64 `json:"developerHoldingPercentage,omitempty" yaml:"developerHoldingPercentage,omitempty"`
}

// LiquidityStats describes pool liquidity movement.
type LiquidityStats struct {
	PercentageChange24h *float64 `json:"percentageChange24h,omitempty" yaml:"percentageChange24h,omitempty"`
}

// CreatorRisk describes the history of the token's creator wallet.
type CreatorRisk struct {
	PreviousScams *int `json:"previousScams,omitempty" yaml:"previousScams,omitempty"`
}

// Float returns a pointer to v. Used to fill optional snapshot fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// MaxHolderPercentage returns the share of the largest non-contract holder, or 0.
func (s Snapshot) MaxHolderPercentage() float64 {
	if s.WhaleStats == nil || s.WhaleStats.MaxHolderPercentage == nil {
		return 0
	}
	return *s.WhaleStats.MaxHolderPercentage
}

// DeveloperHoldingPercentage returns the creator wallet share, or 0.
func (s Snapshot) DeveloperHoldingPercentage() float64 {
	if s.WhaleStats == nil || s.WhaleStats.DeveloperHoldingPercentage == nil {
		return 0
	}
	return *s.WhaleStats.DeveloperHoldingPercentage
}

// LiquidityChange24h returns the signed 24h liquidity change in percent, or 0.
func (s Snapshot) LiquidityChange24h() float64 {
	if s.LiquidityStats == nil || s.LiquidityStats.PercentageChange24h == nil {
		return 0
	}
	return *s.LiquidityStats.PercentageChange24h
}

// BundledBuyCount returns the number of bundled buys, or 0.
func (s Snapshot) BundledBuyCount() int {
	if s.BundledBuys == nil {
		return 0
	}
	return *s.BundledBuys
}

// PreviousScams returns the creator's flagged scam count, or 0.
func (s Snapshot) PreviousScams() int {
	if s.CreatorRisk == nil || s.CreatorRisk.PreviousScams == nil {
		return 0
	}
	return *s.CreatorRisk.PreviousScams
}

// WithWhaleStats returns a copy of s with ownership percentages replaced.
// A nil argument leaves the corresponding current value untouched.
func (s Snapshot) WithWhaleStats(maxHolder, developer *float64) Snapshot {
	ws := WhaleStats{}
	if s.WhaleStats != nil {
		ws = *s.WhaleStats
	}
	if maxHolder != nil {
		ws.MaxHolderPercentage = maxHolder
	}
	if developer != nil {
		ws.DeveloperHoldingPercentage = developer
	}
	s.WhaleStats = &ws
	return s
}
