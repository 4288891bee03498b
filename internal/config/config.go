package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultBlockedExtensions lists non-document file types the crawler never fetches
var DefaultBlockedExtensions = []string{
	"css", "js", "bmp", "gif", "jpg", "jpeg", "png", "tif", "tiff",
	"mid", "mp2", "mp3", "mp4", "wav", "avi", "mov", "mpeg", "ram", "m4v",
	"pdf", "rm", "smil", "wmv", "swf", "wma", "zip", "rar", "gz",
}

// Config holds all runtime configuration parameters
type Config struct {
	SeedURL           string   `mapstructure:"seed_url"`
	TargetDomain      string   `mapstructure:"target_domain"`
	SiteName          string   `mapstructure:"site_name"`
	StorageFolder     string   `mapstructure:"storage_folder"`
	PolitenessDelayMs int      `mapstructure:"politeness_delay_ms"`
	MaxDepth          int      `mapstructure:"max_depth"`
	MaxPages          int      `mapstructure:"max_pages"`
	ConcurrentWorkers int      `mapstructure:"concurrent_workers"`
	RequestTimeoutMs  int      `mapstructure:"request_timeout_ms"`
	UserAgent         string   `mapstructure:"user_agent"`
	RespectRobots     bool     `mapstructure:"respect_robots"`
	BlockedExtensions []string `mapstructure:"blocked_extensions"`
	StrictDomain      bool     `mapstructure:"strict_domain"`
	OutputDir         string   `mapstructure:"output_dir"`
	FetchRowCap       int      `mapstructure:"fetch_row_cap"`
	DBPath            string   `mapstructure:"db_path"`
	MetricsPath       string   `mapstructure:"metrics_path"`
	MetricsAddr       string   `mapstructure:"metrics_addr"`
	LogLevel          string   `mapstructure:"log_level"`
}

// LoadConfig reads configuration from a JSON file (optional) and CRAWLER_* environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDerived(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers default values for every key so env overrides resolve
func setDefaults(v *viper.Viper) {
	v.SetDefault("seed_url", "https://www.nytimes.com/")
	v.SetDefault("target_domain", "nytimes.com")
	v.SetDefault("site_name", "NYTimes")
	v.SetDefault("storage_folder", "data/crawl/root")
	v.SetDefault("politeness_delay_ms", 200)
	v.SetDefault("max_depth", 16)
	v.SetDefault("max_pages", 10000)
	v.SetDefault("concurrent_workers", 7)
	v.SetDefault("request_timeout_ms", 10000)
	v.SetDefault("user_agent", "news-weaver/1.0")
	v.SetDefault("respect_robots", true)
	v.SetDefault("blocked_extensions", DefaultBlockedExtensions)
	v.SetDefault("strict_domain", false)
	v.SetDefault("output_dir", ".")
	v.SetDefault("fetch_row_cap", 20000)
	v.SetDefault("db_path", "")
	v.SetDefault("metrics_path", "metrics.json")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("log_level", "info")
}

// applyDerived fills values that depend on other settings
func applyDerived(cfg *Config) {
	cfg.TargetDomain = strings.ToLower(strings.TrimSpace(cfg.TargetDomain))
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.StorageFolder, "crawl.db")
	}
	for i, ext := range cfg.BlockedExtensions {
		cfg.BlockedExtensions[i] = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	}
}

// validate checks that required fields are present and values are sensible
func validate(cfg *Config) error {
	if cfg.SeedURL == "" {
		return fmt.Errorf("seed_url is required")
	}
	if cfg.TargetDomain == "" {
		return fmt.Errorf("target_domain is required")
	}
	if cfg.SiteName == "" {
		return fmt.Errorf("site_name is required")
	}
	if cfg.StorageFolder == "" {
		return fmt.Errorf("storage_folder is required")
	}
	if cfg.PolitenessDelayMs < 0 {
		return fmt.Errorf("politeness_delay_ms must be >= 0")
	}
	if cfg.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0")
	}
	if cfg.MaxPages < 1 {
		return fmt.Errorf("max_pages must be >= 1")
	}
	if cfg.ConcurrentWorkers < 1 {
		return fmt.Errorf("concurrent_workers must be >= 1")
	}
	if cfg.RequestTimeoutMs < 1000 {
		return fmt.Errorf("request_timeout_ms must be >= 1000")
	}
	if cfg.FetchRowCap < 0 {
		return fmt.Errorf("fetch_row_cap must be >= 0")
	}
	return nil
}

// PolitenessDelay returns the minimum spacing between requests
func (c *Config) PolitenessDelay() time.Duration {
	return time.Duration(c.PolitenessDelayMs) * time.Millisecond
}

// RequestTimeout returns the per-request timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// FetchExportCap returns the row cap for the fetch export. A configured 0 disables the cap.
func (c *Config) FetchExportCap() int {
	if c.FetchRowCap == 0 {
		return -1
	}
	return c.FetchRowCap
}
