package models

// MixConfig maps each tier to its percentage of the output. Weights sum to 100.
type MixConfig map[Tier]int

// Total returns the sum of all weights.
func (m MixConfig) Total() int {
	total := 0
	for _, w := range m {
		total += w
	}
	return total
}

// MixResult is the output of one mixer invocation.
type MixResult struct {
	Items       []ContentItem `json:"items" yaml:"items"`
	Counts      map[Tier]int  `json:"counts" yaml:"counts"`
	Specificity Specificity   `json:"-" yaml:"-"`
	Level       string        `json:"specificity" yaml:"specificity"`
	Requested   int           `json:"requested" yaml:"requested"`

	// Set when the feed was blended with a topical pool by ratio.
	Topic   string `json:"topic,omitempty" yaml:"topic,omitempty"`
	Topical int    `json:"topical,omitempty" yaml:"topical,omitempty"`
}
