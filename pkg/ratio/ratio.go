// Package ratio keeps complementary percentage pairs summing to 100 and
// persists a user's local versus topical split.
package ratio

import (
	"math"

	"github.com/dtnitsch/localfeed/models"
)

// Clamp limits v to the range [0, 100].
func Clamp(v int) int {
	return max(0, min(100, v))
}

// Pair is two complementary percentages. A + B is always 100.
type Pair struct {
	A int
	B int
}

// NewPair derives a pair from a changed value for A.
func NewPair(a int) Pair {
	a = Clamp(a)
	return Pair{A: a, B: 100 - a}
}

// SetA updates A and derives B.
func (p Pair) SetA(v int) Pair {
	return NewPair(v)
}

// SetB updates B and derives A.
func (p Pair) SetB(v int) Pair {
	v = Clamp(v)
	return Pair{A: 100 - v, B: v}
}

// SetLocal returns prefs with Local set to the clamped value and Topical derived.
func SetLocal(prefs models.RatioPreferences, local int) models.RatioPreferences {
	p := NewPair(local)
	prefs.Local, prefs.Topical = p.A, p.B
	return prefs
}

// SetTopical returns prefs with Topical set to the clamped value and Local derived.
func SetTopical(prefs models.RatioPreferences, topical int) models.RatioPreferences {
	p := Pair{}.SetB(topical)
	prefs.Local, prefs.Topical = p.A, p.B
	return prefs
}

// Normalize repairs a stored pair that does not sum to 100. Local wins.
func Normalize(prefs models.RatioPreferences) models.RatioPreferences {
	if prefs.Topic == "" {
		prefs.Topic = models.DefaultTopic
	}
	if Clamp(prefs.Local) == prefs.Local && prefs.Local+prefs.Topical == 100 {
		return prefs
	}
	return SetLocal(prefs, prefs.Local)
}

// Rebalance3 holds weight fixed at value and spreads what is left over the
// other two in proportion to their previous weights. Two zero weights split
// evenly. The result always sums to 100.
func Rebalance3(t models.TriRatio, fixed int, value int) models.TriRatio {
	if fixed < 0 || fixed > 2 {
		return t
	}
	value = Clamp(value)
	rest := 100 - value

	i, j := (fixed+1)%3, (fixed+2)%3
	wi, wj := max(0, t[i]), max(0, t[j])

	var out models.TriRatio
	out[fixed] = value
	if wi+wj == 0 {
		out[i] = rest / 2
		out[j] = rest - out[i]
		return out
	}

	out[i] = int(math.Round(float64(rest) * float64(wi) / float64(wi+wj)))
	out[j] = rest - out[i]
	return out
}
