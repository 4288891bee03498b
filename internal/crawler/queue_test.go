package crawler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDeduplicatesAndKeepsOrder(t *testing.T) {
	q := NewQueue(0)

	assert.True(t, q.Push(QueueEntry{URL: "https://a.com/1"}))
	assert.True(t, q.Push(QueueEntry{URL: "https://a.com/2", Depth: 1}))
	assert.False(t, q.Push(QueueEntry{URL: "https://a.com/1", Depth: 3}))
	assert.Equal(t, 2, q.Admitted())
	assert.True(t, q.Seen("https://a.com/1"))
	assert.False(t, q.Seen("https://a.com/3"))

	e, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "https://a.com/1", e.URL)
	q.Done()

	e, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, QueueEntry{URL: "https://a.com/2", Depth: 1}, e)
	q.Done()

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestQueueRespectsPageBudget(t *testing.T) {
	q := NewQueue(2)

	assert.True(t, q.Push(QueueEntry{URL: "u1"}))
	assert.True(t, q.Push(QueueEntry{URL: "u2"}))
	assert.False(t, q.Push(QueueEntry{URL: "u3"}))
	assert.Equal(t, 2, q.Admitted())
	assert.False(t, q.Seen("u3"))
}

func TestQueuePopWaitsForActiveWorkers(t *testing.T) {
	q := NewQueue(0)
	q.Push(QueueEntry{URL: "seed"})

	_, ok := q.Pop()
	require.True(t, ok)

	got := make(chan QueueEntry, 1)
	go func() {
		e, ok := q.Pop()
		if ok {
			got <- e
		}
		close(got)
	}()

	// The second Pop must block while the first entry is still being processed
	select {
	case <-got:
		t.Fatal("Pop returned while an entry was still active")
	case <-time.After(50 * time.Millisecond):
	}

	q.Push(QueueEntry{URL: "child", Depth: 1})
	q.Done()

	select {
	case e, ok := <-got:
		require.True(t, ok)
		assert.Equal(t, "child", e.URL)
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake up")
	}
}

func TestQueueDrainReleasesAllWorkers(t *testing.T) {
	q := NewQueue(0)
	q.Push(QueueEntry{URL: "seed"})

	_, ok := q.Pop()
	require.True(t, ok)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := q.Pop()
			assert.False(t, ok)
		}()
	}

	q.Done()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers were not released after the frontier drained")
	}
}

func TestQueueStopDropsPending(t *testing.T) {
	q := NewQueue(0)
	q.Push(QueueEntry{URL: "a"})
	q.Push(QueueEntry{URL: "b"})

	q.Stop()

	_, ok := q.Pop()
	assert.False(t, ok)
	assert.False(t, q.Push(QueueEntry{URL: "c"}))
}
