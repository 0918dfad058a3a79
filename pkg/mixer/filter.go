package mixer

import "github.com/dtnitsch/localfeed/models"

// TierPools holds the candidate items for each tier.
type TierPools map[models.Tier][]models.ContentItem

// FilterTiers splits items into per-tier pools. tiers must be ordered finest
// first. An item lands in the first tier it matches, so it is never counted
// again at a coarser tier. Items that match nothing go to TierNone when it is
// listed. Duplicate keys in the input are dropped.
func FilterTiers(items []models.ContentItem, loc models.Location, tiers []models.Tier, m Matcher) TierPools {
	pools := make(TierPools, len(tiers))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		key := item.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		for _, tier := range tiers {
			if tier == models.TierNone {
				pools[tier] = append(pools[tier], item)
				break
			}
			value := loc.Field(tier)
			if value == "" {
				continue
			}
			if m.Match(item, tier, value) {
				pools[tier] = append(pools[tier], item)
				break
			}
		}
	}

	return pools
}
