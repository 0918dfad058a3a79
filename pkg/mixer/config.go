package mixer

import (
	"fmt"

	"github.com/dtnitsch/localfeed/models"
)

// DefaultConfigs returns the tier weights used for each specificity level.
func DefaultConfigs() map[models.Specificity]models.MixConfig {
	return map[models.Specificity]models.MixConfig{
		models.SpecificityLocality: {
			models.TierLocality:  50,
			models.TierSubRegion: 25,
			models.TierRegion:    15,
			models.TierNone:      10,
		},
		models.SpecificitySubRegion: {
			models.TierSubRegion: 60,
			models.TierRegion:    25,
			models.TierNone:      15,
		},
		models.SpecificityRegion: {
			models.TierRegion: 80,
			models.TierNone:   20,
		},
		models.SpecificityNone: {
			models.TierNone: 100,
		},
	}
}

// ValidateConfig checks that weights are non-negative, only name tiers that
// take part at the given specificity, and sum to 100.
func ValidateConfig(s models.Specificity, cfg models.MixConfig) error {
	allowed := make(map[models.Tier]bool)
	for _, t := range TiersFor(s) {
		allowed[t] = true
	}
	for tier, w := range cfg {
		if !allowed[tier] {
			return fmt.Errorf("%s mix: tier %q does not apply", s, tier)
		}
		if w < 0 {
			return fmt.Errorf("%s mix: tier %q has negative weight %d", s, tier, w)
		}
	}
	if total := cfg.Total(); total != 100 {
		return fmt.Errorf("%s mix: weights sum to %d, want 100", s, total)
	}
	return nil
}
