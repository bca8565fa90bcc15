package templating

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	pageSuffix    = ".tmpl.html"
	partialSuffix = ".part.html"
)

// TemplateManager is the central controller for the templating engine.
// It manages the template set, configuration and function map, and is
// responsible for loading, parsing, and executing templates in a
// concurrent-safe manner. All methods are concurrent-safe.
type TemplateManager struct {
	logger         *slog.Logger
	config         TemplateConfig
	templates      *template.Template
	cleanTemplates *template.Template
	templateNames  []string
	funcMap        template.FuncMap
	templateDir    string
	mu             sync.RWMutex
}

// NewTemplateManager creates, initializes, and returns a new TemplateManager.
// templateDir is an optional directory whose templates override the embedded
// ones; pass "" to use the embedded set only. It performs an initial Refresh.
func NewTemplateManager(logger *slog.Logger, config TemplateConfig, templateDir string) (*TemplateManager, error) {
	tm := &TemplateManager{
		logger:      logger,
		config:      config,
		templateDir: templateDir,
	}
	tm.funcMap = tm.makeFuncMap()

	if err := tm.Refresh(); err != nil {
		return nil, err
	}

	logger.Debug("Template manager initialized", "template_dir", templateDir)
	return tm, nil
}

func (tm *TemplateManager) makeFuncMap() template.FuncMap {
	return template.FuncMap{
		// Site values (from config)
		"siteTitle":      tm.siteTitle,
		"baseURL":        tm.baseURL,
		"mapTileURL":     tm.mapTileURL,
		"mapAttribution": tm.mapAttribution,

		// Paths (from funcs_paths.go)
		"crsPath":  crsPath,
		"authPath": authPath,
		"pagePath": pagePath,
		"textPath": textPath,

		// Formatting (from funcs_format.go)
		"padCode":   padCode,
		"bbox":      bbox,
		"coord":     coord,
		"typeLabel": typeLabel,
		"jsonArray": jsonArray,
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"join":      strings.Join,

		// Logic & Control (from funcs_logic.go)
		"seq":  seq,
		"list": list,

		// Simple (from funcs_simple.go)
		"add":   add,
		"sub":   sub,
		"inc":   inc,
		"dec":   dec,
		"and":   and,
		"or":    or,
		"not":   not,
		"isSet": isSet,
	}
}

func (tm *TemplateManager) siteTitle() string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.config.SiteTitle
}

func (tm *TemplateManager) baseURL() string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	if tm.config.BaseURL == "" {
		return "/"
	}
	return tm.config.BaseURL
}

func (tm *TemplateManager) mapTileURL() string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.config.MapTileURL
}

func (tm *TemplateManager) mapAttribution() template.HTML {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return template.HTML(tm.config.MapAttribution)
}

// SetConfig applies a new configuration to the TemplateManager. Site values
// are read at execution time, so no Refresh is needed.
func (tm *TemplateManager) SetConfig(config TemplateConfig) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.config = config
}

// Refresh reloads the embedded templates and then the override directory,
// if any. Templates from the directory replace embedded ones of the same name.
func (tm *TemplateManager) Refresh() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	parsed, err := template.New("").Funcs(tm.funcMap).ParseFS(embeddedTemplates(), "*"+pageSuffix, "*"+partialSuffix)
	if err != nil {
		tm.logger.Error("failed to parse embedded templates", "error", err)
		return fmt.Errorf("failed to parse embedded templates: %w", err)
	}

	if tm.templateDir != "" {
		for _, suffix := range []string{pageSuffix, partialSuffix} {
			pattern := filepath.Join(tm.templateDir, "*"+suffix)
			tm.logger.Debug("Loading template overrides...", "pattern", pattern)
			next, err := parsed.ParseGlob(pattern)
			if err != nil {
				if strings.Contains(err.Error(), "pattern matches no files") {
					continue
				}
				tm.logger.Error("failed to parse template overrides", "pattern", pattern, "error", err)
				return err
			}
			parsed = next
		}
	}

	var names []string
	for _, t := range parsed.Templates() {
		// The root template has no name; partials are not executed on their own.
		if strings.HasSuffix(t.Name(), pageSuffix) {
			names = append(names, t.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return errors.New("no page templates loaded")
	}

	tm.templates = parsed
	tm.templateNames = names
	tm.logger.Debug("Loaded template and partial files", "count", len(parsed.Templates())-1) // Subtract one for the root template

	// Create a clean clone for string executions after all parsing is complete.
	tm.cleanTemplates, err = tm.templates.Clone()
	if err != nil {
		tm.logger.Error("failed to create a clean clone of templates", "error", err)
		return err
	}

	return nil
}

// Execute renders a specific template by name, writing the output to the provided io.Writer.
func (tm *TemplateManager) Execute(w io.Writer, name string, data any) error {
	if name == "" {
		return nil
	}
	tm.mu.RLock()
	t := tm.templates
	tm.mu.RUnlock()
	return t.ExecuteTemplate(w, name, data)
}

// GetConfig returns a copy of the current configuration.
func (tm *TemplateManager) GetConfig() TemplateConfig {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.config
}

// GetTemplateNames returns the names of the loaded page templates.
func (tm *TemplateManager) GetTemplateNames() []string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return append([]string(nil), tm.templateNames...)
}

// GetTemplateDir returns the override directory the TemplateManager uses.
func (tm *TemplateManager) GetTemplateDir() string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.templateDir
}

// ExecuteTemplateString parses and executes a raw template string using the
// manager's function map and partials. This is ideal for testing or
// previewing templates without saving them to disk.
func (tm *TemplateManager) ExecuteTemplateString(w io.Writer, content string, data any) error {
	tm.mu.RLock()
	clean := tm.cleanTemplates
	tm.mu.RUnlock()

	// Clone the clean, unexecuted template set to avoid execution state issues.
	tempSet, err := clean.Clone()
	if err != nil {
		return fmt.Errorf("failed to clone clean templates for string execution: %w", err)
	}

	t, err := tempSet.Parse(content)
	if err != nil {
		return fmt.Errorf("failed to parse string template: %w", err)
	}

	return t.Execute(w, data)
}

// WriteStatic copies the embedded static assets into dir through write,
// which receives the destination path and the file content.
func WriteStatic(dir string, write func(path string, r io.Reader) error) error {
	static := StaticFiles()
	return fs.WalkDir(static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		f, err := static.Open(path)
		if err != nil {
			return err
		}
		defer func(f fs.File) {
			_ = f.Close()
		}(f)
		return write(filepath.Join(dir, filepath.FromSlash(path)), f)
	})
}
