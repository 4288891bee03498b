package crawler

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvmarrod/news-weaver/internal/telemetry"
)

type progressCounts struct {
	mu                               sync.Mutex
	fetches, visits, within, outside int
}

func (p *progressCounts) callback() ProgressCallback {
	return func(fetches, visits, within, outside int) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.fetches += fetches
		p.visits += visits
		p.within += within
		p.outside += outside
	}
}

func newTestHandler(counts *progressCounts) *Handler {
	c := NewClassifier("nytimes.com", []string{"jpg"}, false)
	if counts == nil {
		return NewHandler(3, c, nil)
	}
	return NewHandler(3, c, counts.callback())
}

func TestHandlerRecordsFetches(t *testing.T) {
	counts := &progressCounts{}
	h := newTestHandler(counts)

	h.OnStatusReceived("https://www.nytimes.com/", 200, "OK")
	h.OnStatusReceived("https://www.nytimes.com/old", 301, "")
	h.OnStatusReceived("https://www.nytimes.com/down", 0, "connection refused")

	buf := h.OnCrawlEnd()
	require.NotNil(t, buf)
	assert.Equal(t, 3, buf.WorkerID())
	assert.Equal(t, []telemetry.FetchRecord{
		{URL: "https://www.nytimes.com/", StatusCode: 200},
		{URL: "https://www.nytimes.com/old", StatusCode: 301},
		{URL: "https://www.nytimes.com/down", StatusCode: 0},
	}, buf.Fetches())
	assert.Equal(t, 3, counts.fetches)
}

func TestHandlerShouldVisitRecordsDecisions(t *testing.T) {
	counts := &progressCounts{}
	h := newTestHandler(counts)
	from := &Page{URL: "https://www.nytimes.com/"}

	assert.True(t, h.ShouldVisit(from, "https://www.nytimes.com/section/world"))
	assert.False(t, h.ShouldVisit(from, "https://www.facebook.com/nytimes"))
	assert.False(t, h.ShouldVisit(from, "https://www.nytimes.com/image.jpg"))
	assert.False(t, h.ShouldVisit(nil, "https://twitter.com/"))

	assert.Equal(t, []telemetry.URLDecision{
		{URL: "https://www.nytimes.com/section/world", WithinDomain: true},
		{URL: "https://www.facebook.com/nytimes", WithinDomain: false},
		{URL: "https://www.nytimes.com/image.jpg", WithinDomain: true},
		{URL: "https://twitter.com/", WithinDomain: false},
	}, h.OnCrawlEnd().Decisions())
	assert.Equal(t, 2, counts.within)
	assert.Equal(t, 2, counts.outside)
}

func TestHandlerOnPageVisited(t *testing.T) {
	counts := &progressCounts{}
	h := newTestHandler(counts)

	h.OnPageVisited(&Page{
		URL:         "https://www.nytimes.com/",
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Body:        make([]byte, 2048),
		Links:       []string{"https://a", "https://b"},
	})
	h.OnPageVisited(&Page{
		URL:         "https://www.nytimes.com/feed",
		StatusCode:  200,
		ContentType: "application/rss+xml",
	})
	h.OnPageVisited(nil)

	assert.Equal(t, []telemetry.VisitRecord{
		{URL: "https://www.nytimes.com/", Size: 2048, Outlinks: 2, ContentType: "text/html"},
		{URL: "https://www.nytimes.com/feed", Size: 0, Outlinks: 0, ContentType: "application/rss+xml"},
	}, h.OnCrawlEnd().Visits())
	assert.Equal(t, 2, counts.visits)
}

func TestHandlerWithoutProgress(t *testing.T) {
	h := newTestHandler(nil)

	assert.NotPanics(t, func() {
		h.OnStatusReceived("https://www.nytimes.com/", 200, "OK")
		h.ShouldVisit(nil, "https://www.nytimes.com/a")
	})

	var _ PageCallbackHandler = h
}
