package storage

import "time"

// Run describes one persisted crawl
type Run struct {
	RunID             string
	SiteName          string
	Domain            string
	SeedURL           string
	Workers           int
	StartedAt         time.Time
	EndedAt           time.Time
	TerminationReason string
}

// RunSummary is a run together with the number of records stored for it
type RunSummary struct {
	Run
	Fetches   int
	Visits    int
	Decisions int
}

// Metrics tracks crawl statistics for export on exit
type Metrics struct {
	RunID             string    `json:"run_id,omitempty"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	PagesFetched      int       `json:"pages_fetched"`
	PagesVisited      int       `json:"pages_visited"`
	URLsWithin        int       `json:"urls_within_domain"`
	URLsOutside       int       `json:"urls_outside_domain"`
	TerminationReason string    `json:"termination_reason"`
}
