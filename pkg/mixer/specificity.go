package mixer

import "github.com/dtnitsch/localfeed/models"

// ResolveSpecificity returns the finest level the location carries.
// Blank and whitespace-only fields count as absent.
func ResolveSpecificity(loc models.Location) models.Specificity {
	switch {
	case loc.Field(models.TierLocality) != "":
		return models.SpecificityLocality
	case loc.Field(models.TierSubRegion) != "":
		return models.SpecificitySubRegion
	case loc.Field(models.TierRegion) != "":
		return models.SpecificityRegion
	}
	return models.SpecificityNone
}

// TiersFor lists the tiers that take part in a mix at the given specificity,
// finest first. The general pool is always last.
func TiersFor(s models.Specificity) []models.Tier {
	switch s {
	case models.SpecificityLocality:
		return []models.Tier{models.TierLocality, models.TierSubRegion, models.TierRegion, models.TierNone}
	case models.SpecificitySubRegion:
		return []models.Tier{models.TierSubRegion, models.TierRegion, models.TierNone}
	case models.SpecificityRegion:
		return []models.Tier{models.TierRegion, models.TierNone}
	}
	return []models.Tier{models.TierNone}
}
