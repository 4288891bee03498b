package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/alvmarrod/news-weaver/internal/telemetry"
)

// DefaultFetchRowCap limits the fetch export when no cap is configured
const DefaultFetchRowCap = 20000

var (
	fetchHeader    = []string{"URL", "Status"}
	visitHeader    = []string{"URL", "Size(Bytes)", "Outlinks", "ContentType"}
	decisionHeader = []string{"URL", "Indicator"}
)

// WriteFetches writes the fetch outcomes as CSV, stopping after rowCap rows.
// A rowCap <= 0 means no limit. It returns the number of data rows written.
func WriteFetches(w io.Writer, fetches []telemetry.FetchRecord, rowCap int) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(fetchHeader); err != nil {
		return 0, fmt.Errorf("failed to write fetch header: %w", err)
	}

	count := 0
	for _, f := range fetches {
		if rowCap > 0 && count >= rowCap {
			break
		}
		if err := cw.Write([]string{f.URL, strconv.Itoa(f.StatusCode)}); err != nil {
			return count, fmt.Errorf("failed to write fetch row: %w", err)
		}
		count++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return count, fmt.Errorf("failed to flush fetch rows: %w", err)
	}
	return count, nil
}

// WriteVisits writes every page visit as CSV
func WriteVisits(w io.Writer, visits []telemetry.VisitRecord) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(visitHeader); err != nil {
		return 0, fmt.Errorf("failed to write visit header: %w", err)
	}

	for i, v := range visits {
		row := []string{v.URL, strconv.Itoa(v.Size), strconv.Itoa(v.Outlinks), v.ContentType}
		if err := cw.Write(row); err != nil {
			return i, fmt.Errorf("failed to write visit row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return len(visits), fmt.Errorf("failed to flush visit rows: %w", err)
	}
	return len(visits), nil
}

// WriteDecisions writes every URL decision as CSV with its OK/N_OK indicator
func WriteDecisions(w io.Writer, decisions []telemetry.URLDecision) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(decisionHeader); err != nil {
		return 0, fmt.Errorf("failed to write url header: %w", err)
	}

	for i, d := range decisions {
		if err := cw.Write([]string{d.URL, d.Indicator()}); err != nil {
			return i, fmt.Errorf("failed to write url row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return len(decisions), fmt.Errorf("failed to flush url rows: %w", err)
	}
	return len(decisions), nil
}
