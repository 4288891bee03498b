package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alvmarrod/news-weaver/internal/config"
	"github.com/alvmarrod/news-weaver/internal/version"
)

const defaultConfigFile = "config.json"

var cfgFile string

// newRootCmd creates the root command with its subcommands
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "crawler",
		Short:         "Crawl a news site and report fetch, visit and link statistics",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.json when present)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newReportCmd())

	return cmd
}

// loadConfig resolves the config file, loads it and applies the configured log level
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", defaultConfigFile, err)
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if path != "" {
		logrus.Infof("Configuration loaded from %s", path)
	}
	return cfg, nil
}
