package mixer

import (
	"math"

	"github.com/dtnitsch/localfeed/models"
)

// Interleave merges local and topical items into a feed of at most n items
// following the user's ratio. Each list keeps its own order. When one list runs
// short the other fills the gap. Items appearing in both lists are kept once,
// on the local side.
//
// Local items are spread evenly: after k picks the local share stays within one
// item of k*Local/100.
func Interleave(local, topical []models.ContentItem, prefs models.RatioPreferences, n int) []models.ContentItem {
	if n <= 0 {
		return []models.ContentItem{}
	}

	seen := make(map[string]struct{}, len(local)+len(topical))
	local = dedupe(local, seen)
	topical = dedupe(topical, seen)

	pct := max(0, min(100, prefs.Local))
	wantLocal := int(math.Round(float64(n) * float64(pct) / 100))
	wantTopical := n - wantLocal

	if short := wantLocal - len(local); short > 0 {
		wantLocal = len(local)
		wantTopical += short
	}
	if short := wantTopical - len(topical); short > 0 {
		wantTopical = len(topical)
		wantLocal = min(len(local), wantLocal+short)
	}

	total := wantLocal + wantTopical
	out := make([]models.ContentItem, 0, total)
	li, ti := 0, 0
	for k := 0; k < total; k++ {
		pickLocal := li < wantLocal && (ti >= wantTopical || li*total < (k+1)*wantLocal)
		if pickLocal {
			out = append(out, local[li])
			li++
		} else {
			out = append(out, topical[ti])
			ti++
		}
	}
	return out
}

func dedupe(items []models.ContentItem, seen map[string]struct{}) []models.ContentItem {
	out := make([]models.ContentItem, 0, len(items))
	for _, item := range items {
		key := item.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
