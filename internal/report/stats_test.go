package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvmarrod/news-weaver/internal/aggregate"
	"github.com/alvmarrod/news-weaver/internal/telemetry"
)

func TestSummarizeFetchStatistics(t *testing.T) {
	ds := aggregate.Dataset{
		Fetches: []telemetry.FetchRecord{
			{URL: "https://www.nytimes.com/", StatusCode: 200},
			{URL: "https://www.nytimes.com/a", StatusCode: 200},
			{URL: "https://www.nytimes.com/b", StatusCode: 404},
		},
	}

	stats := Summarize(ds)
	assert.Equal(t, 3, stats.FetchesAttempted)
	assert.Equal(t, 2, stats.FetchesSucceeded)
	assert.Equal(t, 1, stats.FetchesFailed)
	assert.Equal(t, map[int]int{200: 2, 404: 1}, stats.StatusCodes)
}

func TestSummarizeSucceededPlusFailedEqualsAttempted(t *testing.T) {
	codes := []int{0, 199, 200, 204, 299, 300, 301, 302, 403, 404, 500, 503}
	var fetches []telemetry.FetchRecord
	for _, c := range codes {
		fetches = append(fetches, telemetry.FetchRecord{URL: "u", StatusCode: c})
	}

	stats := Summarize(aggregate.Dataset{Fetches: fetches})
	assert.Equal(t, stats.FetchesAttempted, stats.FetchesSucceeded+stats.FetchesFailed)
	assert.Equal(t, 3, stats.FetchesSucceeded)
	assert.Len(t, stats.StatusCodes, len(codes))
}

func TestSummarizeSizeBuckets(t *testing.T) {
	sizes := []int{500, 2000, 50000, 500000, 2000000}
	var visits []telemetry.VisitRecord
	for _, s := range sizes {
		visits = append(visits, telemetry.VisitRecord{URL: "u", Size: s, ContentType: "text/html"})
	}

	stats := Summarize(aggregate.Dataset{Visits: visits})
	assert.Equal(t, [5]int{1, 1, 1, 1, 1}, stats.SizeBuckets)
	assert.Equal(t, len(visits), stats.VisitCount())
}

func TestSizeBucketBoundaries(t *testing.T) {
	cases := []struct {
		size   int
		bucket int
	}{
		{0, 0},
		{1023, 0},
		{1024, 1},
		{10239, 1},
		{10240, 2},
		{102399, 2},
		{102400, 3},
		{1048575, 3},
		{1048576, 4},
		{50 * 1048576, 4},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.bucket, SizeBucket(tc.size), "size %d", tc.size)
	}
}

func TestSummarizeOutgoingURLs(t *testing.T) {
	ds := aggregate.Dataset{
		Visits: []telemetry.VisitRecord{
			{URL: "https://www.nytimes.com/", Outlinks: 40},
			{URL: "https://www.nytimes.com/world", Outlinks: 2},
		},
		Decisions: []telemetry.URLDecision{
			{URL: "https://www.nytimes.com/world", WithinDomain: true},
			{URL: "https://www.nytimes.com/world", WithinDomain: true},
			{URL: "https://www.nytimes.com/us", WithinDomain: true},
			{URL: "https://www.facebook.com/nytimes", WithinDomain: false},
			{URL: "https://www.NYTimes.com/us", WithinDomain: true},
		},
	}

	stats := Summarize(ds)
	assert.Equal(t, 42, stats.TotalOutlinks)
	assert.Equal(t, 4, stats.UniqueURLs)
	assert.Equal(t, 3, stats.UniqueWithin)
	assert.Equal(t, 1, stats.UniqueOutside)
}

func TestSummarizeContentTypesFirstOccurrenceOrder(t *testing.T) {
	ds := aggregate.Dataset{
		Visits: []telemetry.VisitRecord{
			{ContentType: "text/html"},
			{ContentType: "image/jpeg"},
			{ContentType: "text/html"},
			{ContentType: ""},
			{ContentType: "image/jpeg"},
			{ContentType: "text/html"},
		},
	}

	stats := Summarize(ds)
	require.Len(t, stats.ContentTypes, 3)
	assert.Equal(t, []ContentTypeCount{
		{ContentType: "text/html", Count: 3},
		{ContentType: "image/jpeg", Count: 2},
		{ContentType: "", Count: 1},
	}, stats.ContentTypes)
}

func TestSummarizeEmptyDataset(t *testing.T) {
	stats := Summarize(aggregate.Dataset{})
	assert.Zero(t, stats.FetchesAttempted)
	assert.Empty(t, stats.StatusCodes)
	assert.Empty(t, stats.ContentTypes)
	assert.Zero(t, stats.VisitCount())
}
