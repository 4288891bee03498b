package telemetry

// Buffer is the append-only telemetry store of one crawl worker.
// It is not safe for concurrent use: exactly one worker goroutine writes to it,
// and after the worker hands it back the buffer is only read.
type Buffer struct {
	workerID  int
	fetches   []FetchRecord
	visits    []VisitRecord
	decisions []URLDecision
}

// NewBuffer creates an empty buffer owned by the given worker
func NewBuffer(workerID int) *Buffer {
	return &Buffer{workerID: workerID}
}

// WorkerID returns the id of the owning worker
func (b *Buffer) WorkerID() int {
	return b.workerID
}

// RecordFetch appends a fetch outcome
func (b *Buffer) RecordFetch(url string, statusCode int) {
	b.fetches = append(b.fetches, FetchRecord{URL: url, StatusCode: statusCode})
}

// RecordVisit appends a page visit. Negative sizes or link counts are clamped to zero.
func (b *Buffer) RecordVisit(url string, size, outlinks int, contentType string) {
	b.visits = append(b.visits, VisitRecord{
		URL:         url,
		Size:        max(size, 0),
		Outlinks:    max(outlinks, 0),
		ContentType: contentType,
	})
}

// RecordDecision appends a classifier decision
func (b *Buffer) RecordDecision(url string, withinDomain bool) {
	b.decisions = append(b.decisions, URLDecision{URL: url, WithinDomain: withinDomain})
}

// Fetches returns the recorded fetch outcomes in insertion order.
// Callers must treat the slice as read-only.
func (b *Buffer) Fetches() []FetchRecord {
	return b.fetches
}

// Visits returns the recorded visits in insertion order
func (b *Buffer) Visits() []VisitRecord {
	return b.visits
}

// Decisions returns the recorded URL decisions in insertion order
func (b *Buffer) Decisions() []URLDecision {
	return b.decisions
}

// Len returns the number of fetch, visit and decision records
func (b *Buffer) Len() (fetches, visits, decisions int) {
	return len(b.fetches), len(b.visits), len(b.decisions)
}
