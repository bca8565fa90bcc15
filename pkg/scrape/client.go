package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/CTAG07/crsexplorer/pkg/crsdb"
	"github.com/natefinch/atomic"
)

// Config controls where and how much the Client fetches.
type Config struct {
	BaseURL   string
	Domains   []string
	MaxPages  int
	Timeout   time.Duration
	UserAgent string
}

// DefaultConfig returns the settings used against spatialreference.org.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "https://spatialreference.org",
		Domains:   []string{"IAU2000", "SR-ORG"},
		MaxPages:  70,
		Timeout:   30 * time.Second,
		UserAgent: "crsexplorer",
	}
}

// errStatus is returned by get for non-2xx responses.
var errStatus = errors.New("unexpected status")

// Client fetches CRS lists and definitions over HTTP.
type Client struct {
	config Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a Client. Zero fields of cfg take their DefaultConfig value.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if len(cfg.Domains) == 0 {
		cfg.Domains = def.Domains
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = def.MaxPages
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// FetchAuthority returns every CRS listed for domain, in list order. A list
// page that cannot be fetched is skipped; the first page without entries ends
// the listing. Entries whose WKT cannot be fetched are kept without OGCWKT.
func (c *Client) FetchAuthority(ctx context.Context, domain string) ([]crsdb.Record, error) {
	d := strings.ToLower(domain)
	auth := strings.ToUpper(domain)

	var records []crsdb.Record
	for page := 1; page <= c.config.MaxPages; page++ {
		listURL := c.config.BaseURL + "/ref/" + d + "/?page=" + strconv.Itoa(page)
		body, err := c.get(ctx, listURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("Skipping list page", "domain", auth, "page", page, "error", err)
			continue
		}

		entries, err := parseList(bytes.NewReader(body), d)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", listURL, err)
		}
		if len(entries) == 0 {
			c.logger.Debug("Reached end of list", "domain", auth, "page", page)
			break
		}
		c.logger.Info("Fetched list page", "domain", auth, "page", page, "entries", len(entries))

		for _, e := range entries {
			r := crsdb.Record{AuthName: auth, Code: e.code, Name: e.name}
			wkt, err := c.get(ctx, c.config.BaseURL+"/ref/"+d+"/"+e.code+"/ogcwkt/")
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				c.logger.Warn("Failed to fetch WKT", "crs", r.Key(), "error", err)
			} else {
				r.OGCWKT = string(wkt)
			}
			records = append(records, r)
		}
	}
	return records, nil
}

// FetchAll fetches every configured domain and writes {domain}.json into dir.
func (c *Client) FetchAll(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	for _, domain := range c.config.Domains {
		records, err := c.FetchAuthority(ctx, domain)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", domain, err)
		}

		var buf bytes.Buffer
		if err = crsdb.WriteJSON(&buf, records); err != nil {
			return err
		}
		path := filepath.Join(dir, strings.ToLower(domain)+".json")
		if err = atomic.WriteFile(path, &buf); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		c.logger.Info("Wrote CRS list", "domain", domain, "path", path, "records", len(records))
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", errStatus, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
