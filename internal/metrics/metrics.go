package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alvmarrod/news-weaver/internal/storage"
)

// Termination reasons written to the metrics file
const (
	ReasonFrontierDrained = "frontier_drained"
	ReasonSignal          = "signal"
	ReasonError           = "error"
)

// Tracker holds and manages live crawl metrics
type Tracker struct {
	mu   sync.Mutex
	data storage.Metrics
}

// NewTracker creates a new metrics tracker
func NewTracker() *Tracker {
	return &Tracker{
		data: storage.Metrics{
			StartTime: time.Now(),
		},
	}
}

// Record adds telemetry increments. Its signature matches crawler.ProgressCallback.
func (t *Tracker) Record(fetches, visits, within, outside int) {
	t.mu.Lock()
	t.data.PagesFetched += fetches
	t.data.PagesVisited += visits
	t.data.URLsWithin += within
	t.data.URLsOutside += outside
	t.mu.Unlock()

	observe(fetches, visits, within, outside)
}

// SetRunID attaches the persisted run id to the exported metrics
func (t *Tracker) SetRunID(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.RunID = id
}

// GetSnapshot returns a copy of current metrics
func (t *Tracker) GetSnapshot() storage.Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data
}

// WriteToFile exports metrics to a JSON file
func (t *Tracker) WriteToFile(path, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.EndTime = time.Now()
	t.data.TerminationReason = reason

	jsonData, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// LogProgress formats current metrics for periodic console updates
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.data.StartTime).Round(time.Second)
	return fmt.Sprintf("Pages: %d fetched, %d visited | URLs: %d within domain, %d outside | Elapsed: %s",
		t.data.PagesFetched,
		t.data.PagesVisited,
		t.data.URLsWithin,
		t.data.URLsOutside,
		elapsed,
	)
}
