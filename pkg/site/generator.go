package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/CTAG07/crsexplorer/pkg/crsdb"
	"github.com/CTAG07/crsexplorer/pkg/templating"
	"github.com/natefinch/atomic"
	"golang.org/x/sync/errgroup"
)

const (
	indexTemplate     = "index.tmpl.html"
	authorityTemplate = "authority.tmpl.html"
	crsTemplate       = "crs.tmpl.html"

	// DefaultPageSize is the number of CRSs per authority index page.
	DefaultPageSize = 100
)

// Config controls the output of a Generator.
type Config struct {
	// DestDir is the root of the generated tree.
	DestDir string
	// PageSize is the number of CRSs per authority index page.
	PageSize int
	// Workers is the number of records rendered concurrently. Each worker
	// owns one Exporter. Values below 1 mean 1.
	Workers int
	// Representations to export; nil means AllRepresentations.
	Representations []Representation
	// SiteURL prefixes the entries of sitemap.txt, "/" by default.
	SiteURL string

	Version     string
	ProjVersion string
	EPSGVersion string
}

// Renderer executes a named page template.
type Renderer interface {
	Execute(w io.Writer, name string, data any) error
}

// Highlighter renders source text as HTML and provides the matching stylesheet.
type Highlighter interface {
	HTML(lang, source string) (template.HTML, error)
	WriteCSS(w io.Writer) error
}

// Deps are the collaborators of a Generator.
type Deps struct {
	Logger      *slog.Logger
	Templates   Renderer
	Highlighter Highlighter
	// NewExporter is called once per worker.
	NewExporter func() (Exporter, error)
}

// Report summarizes a run.
type Report struct {
	// Records is the number of CRSs in the list.
	Records int
	// Duplicates lists the keys that occur more than once.
	Duplicates []string
	// Failures counts the representations replaced by a placeholder.
	Failures int
	// Files counts the files written.
	Files int
}

// Generator writes the site for a list of CRSs.
type Generator struct {
	config Config
	deps   Deps
	logger *slog.Logger

	mu       sync.Mutex
	files    int
	failures int
	urls     map[string]struct{}
}

// NewGenerator validates cfg and deps and returns a Generator.
func NewGenerator(cfg Config, deps Deps) (*Generator, error) {
	if cfg.DestDir == "" {
		return nil, errors.New("destination directory not set")
	}
	if deps.Templates == nil || deps.Highlighter == nil || deps.NewExporter == nil {
		return nil, errors.New("templates, highlighter and exporter are required")
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if len(cfg.Representations) == 0 {
		cfg.Representations = AllRepresentations
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = "/"
	} else if !strings.HasSuffix(cfg.SiteURL, "/") {
		cfg.SiteURL += "/"
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{config: cfg, deps: deps, logger: logger}, nil
}

// Generate writes the whole tree for records. The slice is not modified.
func (g *Generator) Generate(ctx context.Context, records []crsdb.Record) (*Report, error) {
	g.mu.Lock()
	g.files, g.failures = 0, 0
	g.urls = make(map[string]struct{})
	g.mu.Unlock()

	sorted := make([]crsdb.Record, len(records))
	copy(sorted, records)
	crsdb.Sort(sorted)

	dups := crsdb.Duplicates(sorted)
	for _, key := range dups {
		g.logger.Warn("Duplicated code", "crs", key)
	}

	info := SiteInfo{
		Version:     g.config.Version,
		ProjVersion: g.config.ProjVersion,
		EPSGVersion: g.config.EPSGVersion,
		Total:       len(sorted),
	}

	var list bytes.Buffer
	if err := crsdb.WriteJSON(&list, sorted); err != nil {
		return nil, fmt.Errorf("failed to encode crs list: %w", err)
	}
	if err := g.writeFile("crslist.json", list.Bytes()); err != nil {
		return nil, err
	}

	if err := g.writeAssets(); err != nil {
		return nil, err
	}

	g.logger.Info("Rendering CRS pages", "records", len(sorted), "workers", g.config.Workers)
	if err := g.renderRecords(ctx, sorted, info); err != nil {
		return nil, err
	}

	if err := g.renderIndexes(ctx, sorted, info); err != nil {
		return nil, err
	}

	if err := g.writeSitemap(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	report := &Report{
		Records:    len(sorted),
		Duplicates: dups,
		Failures:   g.failures,
		Files:      g.files,
	}
	g.logger.Info("Site generated",
		"dest_dir", g.config.DestDir,
		"records", report.Records,
		"duplicates", len(report.Duplicates),
		"failures", report.Failures,
		"files", report.Files,
	)
	return report, nil
}

func (g *Generator) writeAssets() error {
	err := templating.WriteStatic("", func(p string, r io.Reader) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		return g.writeFile(filepath.ToSlash(p), data)
	})
	if err != nil {
		return fmt.Errorf("failed to write static assets: %w", err)
	}

	var css bytes.Buffer
	if err = g.deps.Highlighter.WriteCSS(&css); err != nil {
		return fmt.Errorf("failed to write highlight stylesheet: %w", err)
	}
	return g.writeFile("highlight.css", css.Bytes())
}

// renderRecords fans the records out to the workers. The first error cancels
// the remaining work.
func (g *Generator) renderRecords(ctx context.Context, records []crsdb.Record, info SiteInfo) error {
	eg, egCtx := errgroup.WithContext(ctx)
	jobs := make(chan crsdb.Record)

	eg.Go(func() error {
		defer close(jobs)
		for _, r := range records {
			select {
			case jobs <- r:
			case <-egCtx.Done():
				return egCtx.Err()
			}
		}
		return nil
	})

	for i := 0; i < g.config.Workers; i++ {
		eg.Go(func() error {
			exporter, err := g.deps.NewExporter()
			if err != nil {
				return fmt.Errorf("failed to create exporter: %w", err)
			}
			defer exporter.Close()

			for r := range jobs {
				if err = egCtx.Err(); err != nil {
					return err
				}
				if err = g.renderRecord(exporter, r, info); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return eg.Wait()
}

func (g *Generator) renderRecord(exporter Exporter, r crsdb.Record, info SiteInfo) error {
	page := CRSPage{
		Title:  r.Key(),
		Site:   info,
		Record: r,
	}

	for _, rep := range g.config.Representations {
		rendered := RenderedRepresentation{
			ID:    string(rep),
			Label: rep.Label(),
			File:  templating.TextPath(string(rep), r.AuthName, r.Code),
		}

		text, err := exporter.Export(r, rep)
		if err == nil && strings.TrimSpace(text) == "" {
			err = errors.New("empty output")
		}
		if err != nil {
			g.logger.Warn("Export failed", "crs", r.Key(), "representation", rep, "error", err)
			g.mu.Lock()
			g.failures++
			g.mu.Unlock()
			rendered.Failed = true
			text = Placeholder(r, rep)
		}
		rendered.Text = text

		if err = g.writePage(rendered.File, []byte(text+"\n")); err != nil {
			return err
		}

		if !rendered.Failed {
			rendered.HTML, err = g.deps.Highlighter.HTML(rep.Lang(), text)
			if err != nil {
				g.logger.Warn("Highlighting failed", "crs", r.Key(), "representation", rep, "error", err)
				rendered.HTML = template.HTML("<pre>" + template.HTMLEscapeString(text) + "</pre>")
			}
		}
		page.Representations = append(page.Representations, rendered)
	}

	return g.render(templating.CRSPath(r.AuthName, r.Code), crsTemplate, page)
}

func (g *Generator) renderIndexes(ctx context.Context, records []crsdb.Record, info SiteInfo) error {
	names, groups := crsdb.GroupByAuthority(records)
	summaries := make([]AuthoritySummary, 0, len(names))

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		group := groups[name]
		summary := AuthoritySummary{Name: name, Count: len(group)}
		for _, r := range group {
			if r.Deprecated {
				summary.Deprecated++
			}
		}
		summaries = append(summaries, summary)

		pages := (len(group) + g.config.PageSize - 1) / g.config.PageSize
		for p := 1; p <= pages; p++ {
			end := min(p*g.config.PageSize, len(group))
			data := AuthorityPage{
				Title:     name,
				Site:      info,
				Authority: name,
				Total:     len(group),
				Page:      p,
				Pages:     pages,
				Records:   group[(p-1)*g.config.PageSize : end],
			}
			if err := g.render(templating.PagePath(name, p), authorityTemplate, data); err != nil {
				return err
			}
		}
	}

	return g.render("", indexTemplate, IndexPage{
		Title:       "Index",
		Site:        info,
		Authorities: summaries,
	})
}

// render executes a template into dir/index.html. dir is slash-separated
// and relative to the destination, "" being the root.
func (g *Generator) render(dir, name string, data any) error {
	var buf bytes.Buffer
	if err := g.deps.Templates.Execute(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s for %s: %w", name, dir, err)
	}
	if err := g.writeFile(path.Join(dir, "index.html"), buf.Bytes()); err != nil {
		return err
	}
	g.addURL(dir)
	return nil
}

// writePage writes a file that is listed in the sitemap.
func (g *Generator) writePage(rel string, data []byte) error {
	if err := g.writeFile(rel, data); err != nil {
		return err
	}
	g.addURL(rel)
	return nil
}

func (g *Generator) addURL(rel string) {
	g.mu.Lock()
	g.urls[rel] = struct{}{}
	g.mu.Unlock()
}

func (g *Generator) writeSitemap() error {
	g.mu.Lock()
	urls := make([]string, 0, len(g.urls))
	for u := range g.urls {
		urls = append(urls, g.config.SiteURL+u)
	}
	g.mu.Unlock()
	sort.Strings(urls)

	var buf bytes.Buffer
	for _, u := range urls {
		buf.WriteString(u)
		buf.WriteByte('\n')
	}
	return g.writeFile("sitemap.txt", buf.Bytes())
}

// writeFile atomically replaces rel, a slash-separated path below DestDir.
func (g *Generator) writeFile(rel string, data []byte) error {
	target := filepath.Join(g.config.DestDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rel, err)
	}
	if err := atomic.WriteFile(target, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	// atomic.WriteFile creates new files with os.CreateTemp's 0600.
	if err := os.Chmod(target, 0644); err != nil {
		return fmt.Errorf("failed to set mode of %s: %w", rel, err)
	}
	g.mu.Lock()
	g.files++
	g.mu.Unlock()
	return nil
}
