// Package mixer blends location-tagged content into a single feed.
//
// A mix resolves how specific the user's location is, splits the item pool
// into tiers (locality, sub-region, region, general), gives each tier a quota
// from its percentage weight, picks a random sample from each tier and returns
// the union newest first.
package mixer

import (
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dtnitsch/localfeed/models"
)

// Mixer produces mixed feeds. The zero value is not usable; call New.
// A Mixer is safe for concurrent use.
type Mixer struct {
	configs map[models.Specificity]models.MixConfig
	matcher Matcher
	logger  *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Mixer.
type Option func(*Mixer)

// WithMatcher sets the tier matching strategy.
func WithMatcher(m Matcher) Option {
	return func(mx *Mixer) {
		if m != nil {
			mx.matcher = m
		}
	}
}

// WithRand sets the random source used for shuffling tier pools.
func WithRand(r *rand.Rand) Option {
	return func(mx *Mixer) {
		if r != nil {
			mx.rng = r
		}
	}
}

// WithSeed makes shuffling deterministic.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// WithConfigs overrides the tier weights for the given specificity levels.
// Levels not present keep their defaults.
func WithConfigs(configs map[models.Specificity]models.MixConfig) Option {
	return func(mx *Mixer) {
		for s, cfg := range configs {
			mx.configs[s] = cfg
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(mx *Mixer) {
		if l != nil {
			mx.logger = l
		}
	}
}

// New returns a Mixer with default weights and hybrid matching.
func New(opts ...Option) *Mixer {
	now := uint64(time.Now().UnixNano())
	m := &Mixer{
		configs: DefaultConfigs(),
		matcher: MatcherFunc(matchHybrid),
		logger:  zap.NewNop(),
		rng:     rand.New(rand.NewPCG(now, now>>1)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the weights used at a specificity level.
func (m *Mixer) Config(s models.Specificity) models.MixConfig {
	if cfg, ok := m.configs[s]; ok {
		return cfg
	}
	return models.MixConfig{models.TierNone: 100}
}

// Mix selects up to n items from items for the given location.
//
// The result holds n items whenever the pool has at least n distinct items,
// otherwise every distinct item. It is ordered by publish time, newest first.
// items is not modified.
func (m *Mixer) Mix(items []models.ContentItem, loc models.Location, n int) models.MixResult {
	spec := ResolveSpecificity(loc)
	tiers := TiersFor(spec)

	result := models.MixResult{
		Items:       []models.ContentItem{},
		Counts:      make(map[models.Tier]int, len(tiers)),
		Specificity: spec,
		Level:       spec.String(),
		Requested:   n,
	}
	for _, t := range tiers {
		result.Counts[t] = 0
	}
	if n <= 0 || len(items) == 0 {
		return result
	}

	pools := FilterTiers(items, loc, tiers, m.matcher)
	available := make(map[models.Tier]int, len(tiers))
	for _, t := range tiers {
		available[t] = len(pools[t])
	}
	quotas := AllocateQuotas(n, tiers, m.Config(spec), available)

	selected := make([]models.ContentItem, 0, n)
	leftovers := make(map[models.Tier][]models.ContentItem, len(tiers))
	for _, t := range tiers {
		pool := m.shuffled(pools[t])
		q := quotas[t]
		selected = append(selected, pool[:q]...)
		leftovers[t] = pool[q:]
		result.Counts[t] = q
	}

	// Top up from the coarsest tiers when finer tiers could not fill their share.
	for i := len(tiers) - 1; i >= 0 && len(selected) < n; i-- {
		t := tiers[i]
		rest := leftovers[t]
		if len(rest) == 0 {
			continue
		}
		SortByRecency(rest)
		take := min(n-len(selected), len(rest))
		selected = append(selected, rest[:take]...)
		result.Counts[t] += take
	}

	SortByRecency(selected)
	result.Items = selected

	m.logger.Debug("mixed feed",
		zap.String("specificity", spec.String()),
		zap.Int("requested", n),
		zap.Int("returned", len(selected)),
		zap.Any("quotas", quotas),
		zap.Any("counts", result.Counts),
	)
	return result
}

// shuffled returns a Fisher-Yates shuffled copy of items.
func (m *Mixer) shuffled(items []models.ContentItem) []models.ContentItem {
	out := make([]models.ContentItem, len(items))
	copy(out, items)

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(out) - 1; i > 0; i-- {
		j := m.rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// SortByRecency orders items newest first. Ties are broken by key so the
// order is stable across runs.
func SortByRecency(items []models.ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].PublishedAt.Equal(items[j].PublishedAt) {
			return items[i].PublishedAt.After(items[j].PublishedAt)
		}
		return items[i].Key() < items[j].Key()
	})
}
