package models

import (
	"fmt"
	"strings"
)

// Location is a user's geographic context. Any field may be empty.
type Location struct {
	Region    string `json:"region,omitempty" yaml:"region,omitempty" validate:"omitempty,max=128"`
	SubRegion string `json:"subregion,omitempty" yaml:"subregion,omitempty" validate:"omitempty,max=128"`
	Locality  string `json:"locality,omitempty" yaml:"locality,omitempty" validate:"omitempty,max=128"`
}

// Field returns the location value that the given tier matches against.
func (l Location) Field(t Tier) string {
	switch t {
	case TierLocality:
		return strings.TrimSpace(l.Locality)
	case TierSubRegion:
		return strings.TrimSpace(l.SubRegion)
	case TierRegion:
		return strings.TrimSpace(l.Region)
	}
	return ""
}

// Specificity is how precisely a location pins the user down.
// Higher values are finer.
type Specificity int

const (
	SpecificityNone Specificity = iota
	SpecificityRegion
	SpecificitySubRegion
	SpecificityLocality
)

func (s Specificity) String() string {
	switch s {
	case SpecificityRegion:
		return "region"
	case SpecificitySubRegion:
		return "subregion"
	case SpecificityLocality:
		return "locality"
	}
	return "none"
}

// Tier is a pool of items selected at one level of geographic specificity.
// TierNone is the general pool: everything not claimed by a finer tier.
type Tier string

const (
	TierLocality  Tier = "locality"
	TierSubRegion Tier = "subregion"
	TierRegion    Tier = "region"
	TierNone      Tier = "none"
)

// AllTiers lists tiers from finest to coarsest.
var AllTiers = []Tier{TierLocality, TierSubRegion, TierRegion, TierNone}

// ParseTier converts a string into a Tier.
func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierLocality:
		return TierLocality, nil
	case TierSubRegion:
		return TierSubRegion, nil
	case TierRegion:
		return TierRegion, nil
	case TierNone, "":
		return TierNone, nil
	}
	return "", fmt.Errorf("unknown tier %q (valid: locality, subregion, region, none)", s)
}

// ParseSpecificity converts a level name into a Specificity.
func ParseSpecificity(s string) (Specificity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "locality":
		return SpecificityLocality, nil
	case "subregion":
		return SpecificitySubRegion, nil
	case "region":
		return SpecificityRegion, nil
	case "none", "":
		return SpecificityNone, nil
	}
	return SpecificityNone, fmt.Errorf("unknown specificity %q (valid: locality, subregion, region, none)", s)
}
