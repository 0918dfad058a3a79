package mixer

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/localfeed/models"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func item(id string, age int, tags models.LocationTags) models.ContentItem {
	return models.ContentItem{
		ID:           id,
		Title:        "Story " + id,
		PublishedAt:  baseTime.Add(-time.Duration(age) * time.Hour),
		LocationTags: tags,
	}
}

func regionItems(n int, region string) []models.ContentItem {
	items := make([]models.ContentItem, n)
	for i := range items {
		items[i] = item(fmt.Sprintf("r%02d", i), i, models.LocationTags{Region: region})
	}
	return items
}

func assertNewestFirst(t *testing.T, items []models.ContentItem) {
	t.Helper()
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].PublishedAt.After(items[i-1].PublishedAt),
			"item %d (%s) is newer than item %d (%s)", i, items[i].ID, i-1, items[i-1].ID)
	}
}

func TestResolveSpecificity(t *testing.T) {
	tests := []struct {
		name string
		loc  models.Location
		want models.Specificity
	}{
		{"empty", models.Location{}, models.SpecificityNone},
		{"whitespace only", models.Location{Region: "  ", Locality: "\t"}, models.SpecificityNone},
		{"region", models.Location{Region: "North"}, models.SpecificityRegion},
		{"subregion", models.Location{Region: "North", SubRegion: "Yorkshire"}, models.SpecificitySubRegion},
		{"subregion without region", models.Location{SubRegion: "Yorkshire"}, models.SpecificitySubRegion},
		{"locality wins", models.Location{Region: "North", SubRegion: "Yorkshire", Locality: "Leeds"}, models.SpecificityLocality},
		{"locality alone", models.Location{Locality: "Leeds"}, models.SpecificityLocality},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveSpecificity(tt.loc))
		})
	}
}

func TestMixRegionOnlyPool(t *testing.T) {
	m := New(WithSeed(1))
	items := regionItems(10, "X")

	res := m.Mix(items, models.Location{Region: "X"}, 5)

	require.Len(t, res.Items, 5)
	assert.Equal(t, "region", res.Level)
	for _, it := range res.Items {
		assert.Equal(t, "X", it.Region)
	}
	assertNewestFirst(t, res.Items)
	assert.Equal(t, 5, res.Counts[models.TierRegion])
	assert.Equal(t, 0, res.Counts[models.TierNone])
}

func TestMixOutputLength(t *testing.T) {
	loc := models.Location{Region: "North", SubRegion: "Yorkshire", Locality: "Leeds"}
	tagSets := []models.LocationTags{
		{Region: "North", SubRegion: "Yorkshire", Locality: "Leeds"},
		{Region: "North", SubRegion: "Yorkshire"},
		{Region: "North"},
		{Region: "South"},
		{},
	}

	for seed := uint64(0); seed < 25; seed++ {
		r := rand.New(rand.NewPCG(seed, 7))
		poolSize := r.IntN(40)
		items := make([]models.ContentItem, poolSize)
		for i := range items {
			items[i] = item(fmt.Sprintf("i%03d", i), r.IntN(500), tagSets[r.IntN(len(tagSets))])
		}

		for _, n := range []int{1, 5, 10, 25, 60} {
			res := New(WithSeed(seed)).Mix(items, loc, n)
			assert.Len(t, res.Items, min(n, poolSize), "seed=%d n=%d pool=%d", seed, n, poolSize)
			assertNewestFirst(t, res.Items)

			total := 0
			for _, c := range res.Counts {
				total += c
			}
			assert.Equal(t, len(res.Items), total)

			seen := map[string]bool{}
			for _, it := range res.Items {
				assert.False(t, seen[it.ID], "duplicate %s", it.ID)
				seen[it.ID] = true
			}
		}
	}
}

func TestMixFollowsWeightsWhenPoolsAreDeep(t *testing.T) {
	var items []models.ContentItem
	for i := 0; i < 30; i++ {
		items = append(items,
			item(fmt.Sprintf("loc%02d", i), i, models.LocationTags{Region: "North", SubRegion: "Yorkshire", Locality: "Leeds"}),
			item(fmt.Sprintf("sub%02d", i), i, models.LocationTags{Region: "North", SubRegion: "Yorkshire"}),
			item(fmt.Sprintf("reg%02d", i), i, models.LocationTags{Region: "North"}),
			item(fmt.Sprintf("gen%02d", i), i, models.LocationTags{}),
		)
	}

	res := New(WithSeed(3)).Mix(items, models.Location{Region: "North", SubRegion: "Yorkshire", Locality: "Leeds"}, 20)

	require.Len(t, res.Items, 20)
	assert.Equal(t, 10, res.Counts[models.TierLocality])
	assert.Equal(t, 5, res.Counts[models.TierSubRegion])
	assert.Equal(t, 3, res.Counts[models.TierRegion])
	assert.Equal(t, 2, res.Counts[models.TierNone])
}

func TestMixCascadesShortfallOutward(t *testing.T) {
	items := []models.ContentItem{
		item("loc1", 1, models.LocationTags{Region: "North", SubRegion: "Yorkshire", Locality: "Leeds"}),
	}
	for i := 0; i < 20; i++ {
		items = append(items, item(fmt.Sprintf("sub%02d", i), i+2, models.LocationTags{Region: "North", SubRegion: "Yorkshire"}))
	}

	res := New(WithSeed(9)).Mix(items, models.Location{Region: "North", SubRegion: "Yorkshire", Locality: "Leeds"}, 10)

	require.Len(t, res.Items, 10)
	assert.Equal(t, 1, res.Counts[models.TierLocality])
	assert.Equal(t, 9, res.Counts[models.TierSubRegion])
}

func TestMixNoneSpecificityUsesWholePool(t *testing.T) {
	items := append(regionItems(3, "X"), item("g1", 0, models.LocationTags{}), item("g2", 10, models.LocationTags{}))

	res := New(WithSeed(5)).Mix(items, models.Location{}, 10)

	require.Len(t, res.Items, 5)
	assert.Equal(t, "none", res.Level)
	assert.Equal(t, 5, res.Counts[models.TierNone])
	assert.Equal(t, "g1", res.Items[0].ID)
}

func TestMixDegenerateInputs(t *testing.T) {
	m := New(WithSeed(1))

	res := m.Mix(nil, models.Location{Region: "X"}, 5)
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)

	res = m.Mix(regionItems(3, "X"), models.Location{Region: "X"}, 0)
	assert.Empty(t, res.Items)

	res = m.Mix(regionItems(3, "X"), models.Location{Region: "X"}, -4)
	assert.Empty(t, res.Items)
}

func TestMixDoesNotMutateInput(t *testing.T) {
	items := regionItems(12, "X")
	items[0], items[11] = items[11], items[0]
	before := make([]models.ContentItem, len(items))
	copy(before, items)

	New(WithSeed(2)).Mix(items, models.Location{Region: "X"}, 6)

	assert.Equal(t, before, items)
}

func TestMixDropsDuplicateInputs(t *testing.T) {
	items := regionItems(3, "X")
	items = append(items, items...)

	res := New(WithSeed(4)).Mix(items, models.Location{Region: "X"}, 10)

	assert.Len(t, res.Items, 3)
}

func TestMixSameSeedSameOutput(t *testing.T) {
	items := regionItems(30, "X")
	loc := models.Location{Region: "X"}

	a := New(WithSeed(42)).Mix(items, loc, 7)
	b := New(WithSeed(42)).Mix(items, loc, 7)

	assert.Equal(t, a.Items, b.Items)
}

func TestMixUsesConfiguredWeights(t *testing.T) {
	var items []models.ContentItem
	for i := 0; i < 10; i++ {
		items = append(items,
			item(fmt.Sprintf("reg%02d", i), i, models.LocationTags{Region: "X"}),
			item(fmt.Sprintf("gen%02d", i), i, models.LocationTags{}),
		)
	}

	m := New(WithSeed(1), WithConfigs(map[models.Specificity]models.MixConfig{
		models.SpecificityRegion: {models.TierRegion: 50, models.TierNone: 50},
	}))
	res := m.Mix(items, models.Location{Region: "X"}, 10)

	assert.Equal(t, 5, res.Counts[models.TierRegion])
	assert.Equal(t, 5, res.Counts[models.TierNone])
}
