package models

import (
	"strings"
	"time"
)

// ContentItem is a single fetched article. Items are treated as immutable once
// fetched; nothing in the mixer writes to them.
type ContentItem struct {
	ID          string    `json:"id" yaml:"id"`
	URL         string    `json:"url" yaml:"url"`
	Title       string    `json:"title" yaml:"title"`
	Excerpt     string    `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	Body        string    `json:"body,omitempty" yaml:"body,omitempty"`
	Category    string    `json:"category,omitempty" yaml:"category,omitempty"`
	Language    string    `json:"language,omitempty" yaml:"language,omitempty"`
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`
	FetchedAt   time.Time `json:"fetched_at" yaml:"fetched_at"`

	LocationTags `yaml:",inline"`
}

// LocationTags are the structured geographic tags of an item. An empty string
// means the tag is absent.
type LocationTags struct {
	Region    string `json:"region,omitempty" yaml:"region,omitempty"`
	SubRegion string `json:"subregion,omitempty" yaml:"subregion,omitempty"`
	Locality  string `json:"locality,omitempty" yaml:"locality,omitempty"`
}

// Key identifies an item for deduplication. Items without an ID fall back to
// URL, then title.
func (c ContentItem) Key() string {
	if c.ID != "" {
		return c.ID
	}
	if c.URL != "" {
		return c.URL
	}
	return c.Title
}

// SearchText returns the lowercased title, excerpt and body joined together.
func (c ContentItem) SearchText() string {
	return strings.ToLower(c.Title + "\n" + c.Excerpt + "\n" + c.Body)
}

// Tag returns the item's tag for the given tier.
func (c ContentItem) Tag(t Tier) string {
	switch t {
	case TierLocality:
		return c.Locality
	case TierSubRegion:
		return c.SubRegion
	case TierRegion:
		return c.Region
	}
	return ""
}
