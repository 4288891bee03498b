package crawler

import (
	"sync"
)

// QueueEntry is a URL waiting in the frontier together with its crawl depth
type QueueEntry struct {
	URL   string
	Depth int
}

// Queue implements a thread-safe BFS frontier with URL deduplication.
// It also tracks entries handed out to workers, so that Pop can tell an
// empty-but-busy frontier apart from a drained crawl.
type Queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []QueueEntry
	seen     map[string]bool
	admitted int
	maxPages int
	active   int
	stopped  bool
}

// NewQueue creates a new frontier admitting at most maxPages URLs (0 = unlimited)
func NewQueue(maxPages int) *Queue {
	q := &Queue{
		items:    make([]QueueEntry, 0),
		seen:     make(map[string]bool),
		maxPages: maxPages,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push adds an entry unless its URL was already admitted or the page budget is spent.
// Returns true if added.
func (q *Queue) Push(entry QueueEntry) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return false
	}
	if q.seen[entry.URL] {
		return false
	}
	if q.maxPages > 0 && q.admitted >= q.maxPages {
		return false
	}

	q.seen[entry.URL] = true
	q.admitted++
	q.items = append(q.items, entry)

	q.cond.Signal()
	return true
}

// Pop removes and returns the first entry, blocking while other workers may still add links.
// Returns (empty, false) once the queue is stopped, or once it is empty with no entry in progress.
// Every successful Pop must be paired with a call to Done.
func (q *Queue) Pop() (QueueEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.stopped {
			return QueueEntry{}, false
		}

		if len(q.items) > 0 {
			entry := q.items[0]
			q.items = q.items[1:]
			q.active++
			return entry, true
		}

		// Nothing queued and nobody left to produce links
		if q.active == 0 {
			q.cond.Broadcast()
			return QueueEntry{}, false
		}

		q.cond.Wait()
	}
}

// Done marks an entry returned by Pop as fully processed
func (q *Queue) Done() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.active > 0 {
		q.active--
	}
	if q.active == 0 && len(q.items) == 0 {
		q.cond.Broadcast()
	}
}

// Seen reports whether the URL was ever admitted to the frontier
func (q *Queue) Seen(url string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.seen[url]
}

// Admitted returns how many URLs have entered the frontier so far
func (q *Queue) Admitted() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.admitted
}

// Stop drops pending entries and wakes all workers blocked on Pop
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopped = true
	q.items = nil
	q.cond.Broadcast()
}
