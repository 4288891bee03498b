package report

import (
	"github.com/alvmarrod/news-weaver/internal/aggregate"
)

// Size bucket upper bounds in bytes (binary multiples). The last bucket is unbounded.
const (
	sizeKB  = 1024
	size10K = 10 * 1024
	size100 = 100 * 1024
	sizeMB  = 1024 * 1024
)

// SizeBucketLabels names the five size buckets in report order
var SizeBucketLabels = [5]string{
	"< 1KB",
	"1KB ~ <10KB",
	"10KB ~ <100KB",
	"100KB ~ <1MB",
	">= 1MB",
}

// ContentTypeCount is one row of the content-type histogram
type ContentTypeCount struct {
	ContentType string
	Count       int
}

// Stats holds every figure the summary report needs
type Stats struct {
	FetchesAttempted int
	FetchesSucceeded int
	FetchesFailed    int
	StatusCodes      map[int]int

	TotalOutlinks int
	UniqueURLs    int
	UniqueWithin  int
	UniqueOutside int

	SizeBuckets [5]int

	// ContentTypes is ordered by first occurrence in the visit list
	ContentTypes []ContentTypeCount
}

// Summarize computes report statistics from a merged dataset
func Summarize(ds aggregate.Dataset) Stats {
	stats := Stats{
		FetchesAttempted: len(ds.Fetches),
		StatusCodes:      make(map[int]int),
	}

	for _, f := range ds.Fetches {
		stats.StatusCodes[f.StatusCode]++
		if isSuccess(f.StatusCode) {
			stats.FetchesSucceeded++
		} else {
			stats.FetchesFailed++
		}
	}

	unique := make(map[string]struct{})
	within := make(map[string]struct{})
	outside := make(map[string]struct{})
	for _, d := range ds.Decisions {
		unique[d.URL] = struct{}{}
		if d.WithinDomain {
			within[d.URL] = struct{}{}
		} else {
			outside[d.URL] = struct{}{}
		}
	}
	stats.UniqueURLs = len(unique)
	stats.UniqueWithin = len(within)
	stats.UniqueOutside = len(outside)

	position := make(map[string]int)
	for _, v := range ds.Visits {
		stats.TotalOutlinks += v.Outlinks
		stats.SizeBuckets[SizeBucket(v.Size)]++

		if idx, ok := position[v.ContentType]; ok {
			stats.ContentTypes[idx].Count++
			continue
		}
		position[v.ContentType] = len(stats.ContentTypes)
		stats.ContentTypes = append(stats.ContentTypes, ContentTypeCount{ContentType: v.ContentType, Count: 1})
	}

	return stats
}

// SizeBucket returns the index of the size bucket a byte count falls in
func SizeBucket(size int) int {
	switch {
	case size < sizeKB:
		return 0
	case size < size10K:
		return 1
	case size < size100:
		return 2
	case size < sizeMB:
		return 3
	default:
		return 4
	}
}

// VisitCount returns the number of visits covered by the size buckets
func (s Stats) VisitCount() int {
	total := 0
	for _, n := range s.SizeBuckets {
		total += n
	}
	return total
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
