package ratio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtnitsch/localfeed/models"
)

func TestSetLocalExample(t *testing.T) {
	got := SetLocal(models.DefaultPreferences("u1"), 70)
	assert.Equal(t, 70, got.Local)
	assert.Equal(t, 30, got.Topical)
}

func TestPairAlwaysSumsTo100(t *testing.T) {
	prefs := models.DefaultPreferences("u1")
	for v := -50; v <= 150; v++ {
		p := SetLocal(prefs, v)
		assert.Equal(t, 100, p.Local+p.Topical, "SetLocal(%d)", v)
		assert.Equal(t, Clamp(v), p.Local)

		p = SetTopical(prefs, v)
		assert.Equal(t, 100, p.Local+p.Topical, "SetTopical(%d)", v)
		assert.Equal(t, Clamp(v), p.Topical)

		pair := NewPair(v)
		assert.Equal(t, 100, pair.A+pair.B)
		pair = pair.SetB(v)
		assert.Equal(t, 100, pair.A+pair.B)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   models.RatioPreferences
		want models.RatioPreferences
	}{
		{"valid pair untouched", models.RatioPreferences{Local: 40, Topical: 60, Topic: "sport"}, models.RatioPreferences{Local: 40, Topical: 60, Topic: "sport"}},
		{"broken sum repaired from local", models.RatioPreferences{Local: 40, Topical: 40, Topic: "sport"}, models.RatioPreferences{Local: 40, Topical: 60, Topic: "sport"}},
		{"out of range clamped", models.RatioPreferences{Local: 130, Topical: -30, Topic: "sport"}, models.RatioPreferences{Local: 100, Topical: 0, Topic: "sport"}},
		{"missing topic defaulted", models.RatioPreferences{Local: 50, Topical: 50}, models.RatioPreferences{Local: 50, Topical: 50, Topic: models.DefaultTopic}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestRebalance3(t *testing.T) {
	tests := []struct {
		name  string
		in    models.TriRatio
		fixed int
		value int
		want  models.TriRatio
	}{
		{"proportional", models.TriRatio{50, 30, 20}, 0, 60, models.TriRatio{60, 24, 16}},
		{"fixed middle", models.TriRatio{50, 30, 20}, 1, 50, models.TriRatio{36, 50, 14}},
		{"others zero split evenly", models.TriRatio{100, 0, 0}, 0, 55, models.TriRatio{55, 22, 23}},
		{"clamped high", models.TriRatio{40, 40, 20}, 2, 140, models.TriRatio{0, 0, 100}},
		{"clamped low", models.TriRatio{40, 40, 20}, 2, -5, models.TriRatio{50, 50, 0}},
		{"bad index unchanged", models.TriRatio{40, 40, 20}, 3, 10, models.TriRatio{40, 40, 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rebalance3(tt.in, tt.fixed, tt.value)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 100, got.Sum())
		})
	}
}

func TestRebalance3AlwaysSums(t *testing.T) {
	starts := []models.TriRatio{{33, 33, 34}, {1, 0, 99}, {0, 0, 100}, {70, 20, 10}}
	for _, start := range starts {
		for fixed := 0; fixed < 3; fixed++ {
			for v := 0; v <= 100; v++ {
				got := Rebalance3(start, fixed, v)
				assert.Equal(t, 100, got.Sum(), "start=%v fixed=%d v=%d", start, fixed, v)
				assert.Equal(t, v, got[fixed])
			}
		}
	}
}
