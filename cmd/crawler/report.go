package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/rodaine/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alvmarrod/news-weaver/internal/config"
	"github.com/alvmarrod/news-weaver/internal/report"
	"github.com/alvmarrod/news-weaver/internal/storage"
)

func newReportCmd() *cobra.Command {
	var runID string
	var list bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Regenerate the exports and crawl report from a stored run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			store, err := storage.NewStorage(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open run database: %w", err)
			}
			defer store.Close()

			if list {
				return listRuns(cmd.OutOrStdout(), store)
			}
			return regenerate(cmd.OutOrStdout(), cfg, store, runID)
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "run id to report on (default is the latest run)")
	cmd.Flags().BoolVar(&list, "list", false, "list stored runs instead of writing a report")

	return cmd
}

func regenerate(out io.Writer, cfg *config.Config, store *storage.Storage, runID string) error {
	var run *storage.Run
	var err error
	if runID == "" {
		run, err = store.LatestRun()
	} else {
		run, err = store.GetRun(runID)
	}
	if err != nil {
		return err
	}
	if run == nil {
		if runID == "" {
			return fmt.Errorf("no runs stored in %s", cfg.DBPath)
		}
		return fmt.Errorf("run %s not found", runID)
	}

	ds, err := store.LoadDataset(run.RunID)
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", run.RunID, err)
	}
	logrus.Infof("Loaded run %s (%s, %d fetches)", run.RunID, run.SiteName, len(ds.Fetches))

	gen := report.NewGenerator(report.Options{
		OutputDir:   cfg.OutputDir,
		SiteName:    run.SiteName,
		Domain:      run.Domain,
		Workers:     run.Workers,
		FetchRowCap: cfg.FetchExportCap(),
	})
	stats, genErr := gen.Generate(ds)

	printStatusTable(out, stats)

	if genErr != nil {
		return fmt.Errorf("crawl report incomplete: %w", genErr)
	}
	return nil
}

// printStatusTable prints every status code seen, including those the text report omits
func printStatusTable(out io.Writer, stats report.Stats) {
	codes := make([]int, 0, len(stats.StatusCodes))
	for code := range stats.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	tbl := table.New("Status", "Meaning", "Count").WithWriter(out)
	for _, code := range codes {
		meaning := http.StatusText(code)
		if code == 0 {
			meaning = "Transport error"
		}
		tbl.AddRow(code, meaning, stats.StatusCodes[code])
	}
	tbl.Print()
}

func listRuns(out io.Writer, store *storage.Storage) error {
	runs, err := store.ListRuns(20)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs stored")
		return nil
	}

	tbl := table.New("Run", "Site", "Started", "Reason", "Fetches", "Visits", "URLs").WithWriter(out)
	for _, r := range runs {
		tbl.AddRow(r.RunID, r.SiteName, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.TerminationReason, r.Fetches, r.Visits, r.Decisions)
	}
	tbl.Print()
	return nil
}

// ensureParentDir creates the directory holding path
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}
