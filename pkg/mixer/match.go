package mixer

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/localfeed/models"
)

// MatchMode selects how items are matched against a location field.
type MatchMode string

const (
	// MatchText scans title, excerpt and body for locality and sub-region and
	// compares the region tag exactly.
	MatchText MatchMode = "text"
	// MatchTags compares explicit tags only.
	MatchTags MatchMode = "tags"
	// MatchHybrid compares tags and falls back to the text scan when an item
	// has no tag for a locality or sub-region tier.
	MatchHybrid MatchMode = "hybrid"
)

// Matcher decides whether an item belongs to a tier for the given location value.
// value is never empty.
type Matcher interface {
	Match(item models.ContentItem, tier models.Tier, value string) bool
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(item models.ContentItem, tier models.Tier, value string) bool

func (f MatcherFunc) Match(item models.ContentItem, tier models.Tier, value string) bool {
	return f(item, tier, value)
}

// NewMatcher returns the matcher for a mode. An empty mode means hybrid.
func NewMatcher(mode MatchMode) (Matcher, error) {
	switch MatchMode(strings.ToLower(string(mode))) {
	case MatchText:
		return MatcherFunc(matchText), nil
	case MatchTags:
		return MatcherFunc(matchTag), nil
	case MatchHybrid, "":
		return MatcherFunc(matchHybrid), nil
	}
	return nil, fmt.Errorf("unknown match mode %q (valid: text, tags, hybrid)", mode)
}

func matchTag(item models.ContentItem, tier models.Tier, value string) bool {
	tag := strings.TrimSpace(item.Tag(tier))
	return tag != "" && strings.EqualFold(tag, value)
}

func matchText(item models.ContentItem, tier models.Tier, value string) bool {
	if tier == models.TierRegion {
		return matchTag(item, tier, value)
	}
	return strings.Contains(item.SearchText(), strings.ToLower(value))
}

func matchHybrid(item models.ContentItem, tier models.Tier, value string) bool {
	if strings.TrimSpace(item.Tag(tier)) != "" || tier == models.TierRegion {
		return matchTag(item, tier, value)
	}
	return matchText(item, tier, value)
}
