// internal/license/tier.go
package license

import "strings"

// Tier is the access level of the dashboard.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// FreeTrendingLimit caps the trending list for unlicensed users.
const FreeTrendingLimit = 10

// TrendingLimit returns the maximum number of trending entries for t; 0 is unlimited.
func (t Tier) TrendingLimit() int {
	if t == TierPro {
		return 0
	}
	return FreeTrendingLimit
}

// TierFromMetadata reads the "tier" key of license metadata.
func TierFromMetadata(meta map[string]interface{}) Tier {
	raw, ok := meta["tier"].(string)
	if !ok {
		return TierFree
	}
	if Tier(strings.ToLower(strings.TrimSpace(raw))) == TierPro {
		return TierPro
	}
	return TierFree
}
