package mixer

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/dtnitsch/localfeed/models"
)

// Blend splits items into a topical pool (Category equals prefs.Topic) and a
// local pool, mixes the local pool by location and interleaves the two by the
// user's ratio. Counts cover the local items; Topical counts the rest.
func (m *Mixer) Blend(items []models.ContentItem, loc models.Location, prefs models.RatioPreferences, n int) models.MixResult {
	topic := strings.TrimSpace(prefs.Topic)
	if topic == "" {
		topic = models.DefaultTopic
	}

	var localPool, topical []models.ContentItem
	for _, it := range items {
		if strings.EqualFold(strings.TrimSpace(it.Category), topic) {
			topical = append(topical, it)
		} else {
			localPool = append(localPool, it)
		}
	}
	SortByRecency(topical)

	// Ask the mixer for exactly what Interleave will take from the local side.
	pct := max(0, min(100, prefs.Local))
	wantLocal := int(math.Round(float64(n) * float64(pct) / 100))
	if short := (n - wantLocal) - len(topical); short > 0 {
		wantLocal += short
	}

	result := m.Mix(localPool, loc, min(wantLocal, max(n, 0)))
	localCount := len(result.Items)
	result.Items = Interleave(result.Items, topical, prefs, n)
	result.Requested = n
	result.Topic = topic
	result.Topical = len(result.Items) - localCount

	m.logger.Debug("blended feed",
		zap.String("topic", topic),
		zap.Int("local_pct", pct),
		zap.Int("topical", result.Topical),
		zap.Int("returned", len(result.Items)),
	)
	return result
}
