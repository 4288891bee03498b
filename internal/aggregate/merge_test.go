package aggregate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvmarrod/news-weaver/internal/telemetry"
)

func TestMergeEmpty(t *testing.T) {
	ds := Merge(nil)
	assert.True(t, ds.IsEmpty())
	assert.NotNil(t, ds.Fetches)

	ds = Merge([]*telemetry.Buffer{})
	assert.True(t, ds.IsEmpty())
}

func TestMergeKeepsEveryRecord(t *testing.T) {
	var buffers []*telemetry.Buffer
	total := 0
	for w := 1; w <= 4; w++ {
		b := telemetry.NewBuffer(w)
		for i := 0; i < w*3; i++ {
			url := fmt.Sprintf("https://www.nytimes.com/w%d/%d", w, i)
			b.RecordDecision(url, i%2 == 0)
			total++
		}
		b.RecordFetch(fmt.Sprintf("https://www.nytimes.com/w%d", w), 200)
		buffers = append(buffers, b)
	}

	ds := Merge(buffers)
	assert.Len(t, ds.Decisions, total)
	assert.Len(t, ds.Fetches, 4)
	assert.Empty(t, ds.Visits)
}

func TestMergePreservesPerBufferOrder(t *testing.T) {
	a := telemetry.NewBuffer(1)
	a.RecordFetch("a1", 200)
	a.RecordFetch("a2", 301)
	b := telemetry.NewBuffer(2)
	b.RecordFetch("b1", 404)

	ds := Merge([]*telemetry.Buffer{a, nil, b})
	require.Len(t, ds.Fetches, 3)
	assert.Equal(t, "a1", ds.Fetches[0].URL)
	assert.Equal(t, "a2", ds.Fetches[1].URL)
	assert.Equal(t, "b1", ds.Fetches[2].URL)
}

func TestMergeDoesNotDeduplicate(t *testing.T) {
	a := telemetry.NewBuffer(1)
	a.RecordDecision("https://www.nytimes.com/", true)
	b := telemetry.NewBuffer(2)
	b.RecordDecision("https://www.nytimes.com/", true)

	ds := Merge([]*telemetry.Buffer{a, b})
	assert.Len(t, ds.Decisions, 2)
}
