package mapreduce

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/localfeed/pkg/analytics"
)

func TestMapReduce(t *testing.T) {
	a := &analytics.Analytics{}
	counts := Reduce([]map[string]int{
		Map("flood warning for leeds", a),
		Map("flood defences in leeds hold", a),
	})

	assert.Equal(t, 2, counts["flood"])
	assert.Equal(t, 2, counts["leeds"])
	assert.Equal(t, 1, counts["warning"])
}

func TestTopKeywords(t *testing.T) {
	counts := map[string]int{"flood": 5, "leeds": 5, "bridge": 2, "broken(": 9, "river": 1}

	assert.Equal(t, []string{"flood:5", "leeds:5", "bridge:2"}, TopKeywords(counts, 3))
	assert.Len(t, TopKeywords(counts, 100), 4)
	assert.Empty(t, TopKeywords(counts, -1))
}

func TestWriteTopKeywords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTopKeywords(&buf, map[string]int{"flood": 3, "river": 1}, 5))
	assert.Equal(t, "1. flood: 3\n2. river: 1\n", buf.String())
}

func TestIsValidKeyword(t *testing.T) {
	assert.True(t, isValidKeyword("x_train"))
	assert.True(t, isValidKeyword("f(x)"))
	assert.False(t, isValidKeyword("key:"))
	assert.False(t, isValidKeyword("it's"))
	assert.False(t, isValidKeyword("[open"))
}
