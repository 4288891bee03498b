package report

import (
	"bufio"
	"fmt"
	"io"
)

const sectionRule = "=============="

// reportedStatusCodes are the only codes printed in the summary.
// Other codes stay in Stats.StatusCodes and the fetch export.
var reportedStatusCodes = []struct {
	code  int
	label string
}{
	{200, "OK"},
	{301, "Moved Permanently"},
	{302, "Moved Temporarily"},
	{404, "Resource Not Found"},
}

// SummaryInfo carries the crawl facts printed ahead of the statistics
type SummaryInfo struct {
	Domain  string
	Workers int
}

// WriteSummary renders the plain-text crawl report
func WriteSummary(w io.Writer, info SummaryInfo, stats Stats) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "News site crawled: %s\n", info.Domain)
	fmt.Fprintf(bw, "Number of threads: %d\n", info.Workers)

	fmt.Fprintln(bw, "Fetch Statistics")
	fmt.Fprintf(bw, "# fetches total: %d\n", stats.FetchesAttempted)
	fmt.Fprintf(bw, "# fetches succeeded: %d\n", stats.FetchesSucceeded)
	fmt.Fprintf(bw, "# fetches failed or aborted: %d\n", stats.FetchesFailed)

	fmt.Fprintln(bw, "Outgoing URLs:")
	fmt.Fprintln(bw, sectionRule)
	fmt.Fprintf(bw, "Total URLs extracted: %d\n", stats.TotalOutlinks)
	fmt.Fprintf(bw, "# unique URLs extracted: %d\n", stats.UniqueURLs)
	fmt.Fprintf(bw, "# unique URLs within News Site: %d\n", stats.UniqueWithin)
	fmt.Fprintf(bw, "# unique URLs outside News Site: %d\n", stats.UniqueOutside)

	fmt.Fprintln(bw, "Status Codes:")
	fmt.Fprintln(bw, sectionRule)
	for _, sc := range reportedStatusCodes {
		if n, ok := stats.StatusCodes[sc.code]; ok {
			fmt.Fprintf(bw, "%d %s: %d\n", sc.code, sc.label, n)
		}
	}

	fmt.Fprintln(bw, "File Sizes:")
	fmt.Fprintln(bw, sectionRule)
	for i, label := range SizeBucketLabels {
		fmt.Fprintf(bw, "%s: %d\n", label, stats.SizeBuckets[i])
	}

	fmt.Fprintln(bw, "Content Types:")
	fmt.Fprintln(bw, sectionRule)
	for _, ct := range stats.ContentTypes {
		fmt.Fprintf(bw, "%s: %d\n", ct.ContentType, ct.Count)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
