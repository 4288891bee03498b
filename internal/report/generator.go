package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/alvmarrod/news-weaver/internal/aggregate"
)

// Options configures where and how report artifacts are written
type Options struct {
	OutputDir   string
	SiteName    string
	Domain      string
	Workers     int
	FetchRowCap int
}

// Generator writes the three CSV exports and the summary report
type Generator struct {
	opts Options
}

// NewGenerator creates a report generator, applying defaults for unset options
func NewGenerator(opts Options) *Generator {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.SiteName == "" {
		opts.SiteName = "site"
	}
	if opts.FetchRowCap == 0 {
		opts.FetchRowCap = DefaultFetchRowCap
	}
	return &Generator{opts: opts}
}

// FetchPath returns the fetch export location
func (g *Generator) FetchPath() string {
	return g.path("fetch_%s.csv")
}

// VisitPath returns the visit export location
func (g *Generator) VisitPath() string {
	return g.path("visit_%s.csv")
}

// URLsPath returns the URL decision export location
func (g *Generator) URLsPath() string {
	return g.path("urls_%s.csv")
}

// ReportPath returns the summary report location
func (g *Generator) ReportPath() string {
	return g.path("CrawlReport_%s.txt")
}

func (g *Generator) path(pattern string) string {
	return filepath.Join(g.opts.OutputDir, fmt.Sprintf(pattern, g.opts.SiteName))
}

// Generate summarizes the dataset and writes every artifact.
// Each artifact is attempted even if an earlier one failed; all failures are
// logged and returned joined.
func (g *Generator) Generate(ds aggregate.Dataset) (Stats, error) {
	stats := Summarize(ds)

	if err := os.MkdirAll(g.opts.OutputDir, 0o755); err != nil {
		logrus.Errorf("Failed to create output directory %s: %v", g.opts.OutputDir, err)
	}

	var errs []error

	errs = append(errs, g.writeRows(g.FetchPath(), func(w io.Writer) (int, error) {
		return WriteFetches(w, ds.Fetches, g.opts.FetchRowCap)
	}))
	errs = append(errs, g.writeRows(g.VisitPath(), func(w io.Writer) (int, error) {
		return WriteVisits(w, ds.Visits)
	}))
	errs = append(errs, g.writeRows(g.URLsPath(), func(w io.Writer) (int, error) {
		return WriteDecisions(w, ds.Decisions)
	}))

	info := SummaryInfo{Domain: g.opts.Domain, Workers: g.opts.Workers}
	err := writeFile(g.ReportPath(), func(w io.Writer) error {
		return WriteSummary(w, info, stats)
	})
	if err != nil {
		logrus.Errorf("Failed to write crawl report: %v", err)
	} else {
		logrus.Infof("Wrote crawl report to %s", g.ReportPath())
	}
	errs = append(errs, err)

	return stats, errors.Join(errs...)
}

// writeRows writes one CSV artifact and logs the outcome
func (g *Generator) writeRows(path string, write func(io.Writer) (int, error)) error {
	var rows int
	err := writeFile(path, func(w io.Writer) error {
		var werr error
		rows, werr = write(w)
		return werr
	})
	if err != nil {
		logrus.Errorf("Failed to write %s: %v", path, err)
		return err
	}
	logrus.Infof("Wrote %d rows to %s", rows, path)
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	bw := bufio.NewWriter(file)
	if err := write(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}
