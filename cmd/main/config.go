package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CTAG07/crsexplorer/pkg/scrape"
	"github.com/CTAG07/crsexplorer/pkg/templating"
	"github.com/natefinch/atomic"
)

// defaultProjDB is used when neither the config, PROJ_DB, PROJ_DATA nor PROJ_LIB point elsewhere.
const defaultProjDB = "/usr/share/proj/proj.db"

// SiteConfig holds the settings of the generate and serve commands.
type SiteConfig struct {
	LogLevel        string   `json:"log_level"`
	DestDir         string   `json:"dest_dir"`
	ProjDBPath      string   `json:"proj_db_path"`
	ExtraLists      []string `json:"extra_lists"`
	Authorities     []string `json:"authorities"`
	Representations []string `json:"representations"`
	PageSize        int      `json:"page_size"`
	Workers         int      `json:"workers"`
	HighlightStyle  string   `json:"highlight_style"`
	TemplateDir     string   `json:"template_dir"`
	SiteURL         string   `json:"site_url"`
	Version         string   `json:"version"`
	ProjVersion     string   `json:"proj_version"`
	EPSGVersion     string   `json:"epsg_version"`
	ServeAddr       string   `json:"serve_addr"`
}

// FetchConfig holds the settings of the fetch command.
type FetchConfig struct {
	BaseURL    string   `json:"base_url"`
	Domains    []string `json:"domains"`
	MaxPages   int      `json:"max_pages"`
	TimeoutSec int      `json:"timeout_sec"`
	UserAgent  string   `json:"user_agent"`
	OutputDir  string   `json:"output_dir"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Site      *SiteConfig               `json:"site_config"`
	Templates templating.TemplateConfig `json:"template_config"`
	Fetch     *FetchConfig              `json:"fetch_config"`
}

// DefaultSiteConfig creates a site configuration with default values.
func DefaultSiteConfig() *SiteConfig {
	return &SiteConfig{
		LogLevel:        "info",
		DestDir:         "./site",
		ExtraLists:      []string{"./data/iau2000.json", "./data/sr-org.json"},
		Authorities:     []string{},
		Representations: []string{"wkt2", "wkt1", "projjson", "proj4"},
		PageSize:        100,
		Workers:         1,
		HighlightStyle:  "friendly",
		ServeAddr:       ":8080",
	}
}

// DefaultFetchConfig creates a fetch configuration with default values.
func DefaultFetchConfig() *FetchConfig {
	def := scrape.DefaultConfig()
	return &FetchConfig{
		BaseURL:    def.BaseURL,
		Domains:    def.Domains,
		MaxPages:   def.MaxPages,
		TimeoutSec: int(def.Timeout / time.Second),
		UserAgent:  def.UserAgent,
		OutputDir:  "./data",
	}
}

// ScrapeConfig converts the fetch settings for the scrape package.
func (fc *FetchConfig) ScrapeConfig() scrape.Config {
	return scrape.Config{
		BaseURL:   fc.BaseURL,
		Domains:   fc.Domains,
		MaxPages:  fc.MaxPages,
		Timeout:   time.Duration(fc.TimeoutSec) * time.Second,
		UserAgent: fc.UserAgent,
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := &Config{
		Site:      DefaultSiteConfig(),
		Templates: templating.DefaultConfig(),
		Fetch:     DefaultFetchConfig(),
	}

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Defaults are still usable without a file on disk.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.Site == nil {
		config.Site = DefaultSiteConfig()
	}
	if config.Fetch == nil {
		config.Fetch = DefaultFetchConfig()
	}

	return config, nil
}

// applyEnv overrides config values with the environment, read through lookup.
func applyEnv(config *Config, lookup func(string) (string, bool)) {
	overrides := []struct {
		name   string
		target *string
	}{
		{"DEST_DIR", &config.Site.DestDir},
		{"PROJ_DB", &config.Site.ProjDBPath},
		{"SITE_VERSION", &config.Site.Version},
		{"PROJ_VERSION", &config.Site.ProjVersion},
		{"EPSG_VERSION", &config.Site.EPSGVersion},
		{"LOG_LEVEL", &config.Site.LogLevel},
	}
	for _, o := range overrides {
		if v, ok := lookup(o.name); ok && v != "" {
			*o.target = v
		}
	}
}

// resolveProjDB returns configured if set, else the proj.db found through
// PROJ_DATA or PROJ_LIB, else defaultProjDB.
func resolveProjDB(configured string, getenv func(string) string) string {
	if configured != "" {
		return configured
	}
	for _, name := range []string{"PROJ_DATA", "PROJ_LIB"} {
		if dirs := getenv(name); dirs != "" {
			first := filepath.SplitList(dirs)[0]
			return filepath.Join(first, "proj.db")
		}
	}
	return defaultProjDB
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLogLevel(level)}))
}
