package aggregate

import (
	"github.com/alvmarrod/news-weaver/internal/telemetry"
)

// Dataset is the union of every worker's telemetry after the crawl ends.
// It is built once and only read afterwards.
type Dataset struct {
	Fetches   []telemetry.FetchRecord
	Visits    []telemetry.VisitRecord
	Decisions []telemetry.URLDecision
}

// Merge concatenates worker buffers into a single dataset.
// Records keep their per-buffer order; buffers are appended in the order given,
// which carries no meaning since workers finish concurrently.
func Merge(buffers []*telemetry.Buffer) Dataset {
	var fetches, visits, decisions int
	for _, b := range buffers {
		if b == nil {
			continue
		}
		f, v, d := b.Len()
		fetches += f
		visits += v
		decisions += d
	}

	ds := Dataset{
		Fetches:   make([]telemetry.FetchRecord, 0, fetches),
		Visits:    make([]telemetry.VisitRecord, 0, visits),
		Decisions: make([]telemetry.URLDecision, 0, decisions),
	}
	for _, b := range buffers {
		if b == nil {
			continue
		}
		ds.Fetches = append(ds.Fetches, b.Fetches()...)
		ds.Visits = append(ds.Visits, b.Visits()...)
		ds.Decisions = append(ds.Decisions, b.Decisions()...)
	}
	return ds
}

// IsEmpty reports whether the dataset holds no records at all
func (d Dataset) IsEmpty() bool {
	return len(d.Fetches) == 0 && len(d.Visits) == 0 && len(d.Decisions) == 0
}
