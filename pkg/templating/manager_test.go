package templating

import (
	"bytes"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CTAG07/crsexplorer/pkg/crsdb"
)

type testSite struct {
	Version     string
	ProjVersion string
	EPSGVersion string
	Total       int
}

type testRepresentation struct {
	ID, Label, File, Text string
	HTML                  template.HTML
	Failed                bool
}

type testCRSPage struct {
	Title           string
	Site            testSite
	Record          crsdb.Record
	Representations []testRepresentation
}

// setupTestManager creates a TemplateManager over the embedded templates and
// an empty override directory.
func setupTestManager(tb testing.TB) *TemplateManager {
	tb.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tm, err := NewTemplateManager(logger, DefaultConfig(), tb.TempDir())
	if err != nil {
		tb.Fatalf("NewTemplateManager failed: %v", err)
	}
	return tm
}

func sampleCRSPage() testCRSPage {
	return testCRSPage{
		Title: "EPSG:3857",
		Site:  testSite{Version: "1.2.3", ProjVersion: "9.4.1", EPSGVersion: "v11.004", Total: 7},
		Record: crsdb.Record{
			AuthName:             "EPSG",
			Code:                 "3857",
			Name:                 "WGS 84 / Pseudo-Mercator",
			Type:                 crsdb.TypeProjected,
			ProjectionMethodName: "Popular Visualisation Pseudo Mercator",
			AreaOfUse:            &crsdb.AreaOfUse{West: -180, South: -85.06, East: 180, North: 85.06, Name: "World between 85.06°S and 85.06°N."},
		},
		Representations: []testRepresentation{
			{ID: "wkt2", Label: "WKT2", File: "wkt2/EPSG/3857.txt", HTML: `<pre class="chroma">PROJCRS</pre>`},
			{ID: "wkt1", Label: "WKT1", File: "wkt1/EPSG/3857.txt", Text: "Error: EPSG:3857 cannot be written as WKT1_GDAL", Failed: true},
		},
	}
}

func TestNewTemplateManager(t *testing.T) {
	tm := setupTestManager(t)
	want := []string{"authority.tmpl.html", "crs.tmpl.html", "index.tmpl.html"}
	got := tm.GetTemplateNames()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("GetTemplateNames() = %v, want %v", got, want)
	}
}

func TestManager_ExecuteCRSPage(t *testing.T) {
	tm := setupTestManager(t)
	var buf bytes.Buffer
	if err := tm.Execute(&buf, "crs.tmpl.html", sampleCRSPage()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<h1>EPSG:3857</h1>",
		"<dd>Projected CRS</dd>",
		"<dd>Popular Visualisation Pseudo Mercator</dd>",
		"<dd>-180, -85.06, 180, 85.06</dd>",
		"init_map([-180, -85.06, 180, 85.06],",
		`<pre class="chroma">PROJCRS</pre>`,
		`<pre class="error">Error: EPSG:3857 cannot be written as WKT1_GDAL</pre>`,
		`href="/ref/epsg/"`,
		`href="/wkt1/EPSG/3857.txt"`,
		"PROJ 9.4.1",
		"EPSG v11.004",
		"leaflet.js",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestManager_ExecuteCRSPageWithoutArea(t *testing.T) {
	tm := setupTestManager(t)
	page := sampleCRSPage()
	page.Record.AreaOfUse = nil
	var buf bytes.Buffer
	if err := tm.Execute(&buf, "crs.tmpl.html", page); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if strings.Contains(buf.String(), "init_map") || strings.Contains(buf.String(), "leaflet") {
		t.Error("a CRS without area of use should not get a map")
	}
}

func TestManager_Override(t *testing.T) {
	tm := setupTestManager(t)
	override := filepath.Join(tm.GetTemplateDir(), "index.tmpl.html")
	if err := os.WriteFile(override, []byte(`custom {{siteTitle}}`), 0644); err != nil {
		t.Fatalf("failed to write override: %v", err)
	}
	extra := filepath.Join(tm.GetTemplateDir(), "about.tmpl.html")
	if err := os.WriteFile(extra, []byte(`{{template "header" .}}about`), 0644); err != nil {
		t.Fatalf("failed to write extra template: %v", err)
	}
	if err := tm.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	var buf bytes.Buffer
	if err := tm.Execute(&buf, "index.tmpl.html", nil); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if buf.String() != "custom Coordinate Reference Systems" {
		t.Errorf("override not applied, got %q", buf.String())
	}
	if len(tm.GetTemplateNames()) != 4 {
		t.Errorf("expected the extra page template to be loaded, got %v", tm.GetTemplateNames())
	}

	buf.Reset()
	if err := tm.Execute(&buf, "about.tmpl.html", nil); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(buf.String(), "about") || !strings.Contains(buf.String(), "<header>") {
		t.Errorf("extra template should see embedded partials, got %q", buf.String())
	}
}

func TestManager_RefreshRejectsBrokenOverride(t *testing.T) {
	tm := setupTestManager(t)
	broken := filepath.Join(tm.GetTemplateDir(), "broken.tmpl.html")
	if err := os.WriteFile(broken, []byte(`{{if}}`), 0644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}
	if err := tm.Refresh(); err == nil {
		t.Fatal("expected Refresh to fail on a broken template")
	}
	// The previously loaded set stays usable.
	if err := tm.Execute(io.Discard, "crs.tmpl.html", sampleCRSPage()); err != nil {
		t.Errorf("Execute after failed Refresh: %v", err)
	}
}

func TestManager_ExecuteUndefined(t *testing.T) {
	tm := setupTestManager(t)
	err := tm.Execute(io.Discard, "nonexistent.tmpl.html", nil)
	if err == nil {
		t.Fatal("expected an error for non-existent template, but got nil")
	}
	expectedErrString := `html/template: "nonexistent.tmpl.html" is undefined`
	if !strings.Contains(err.Error(), expectedErrString) {
		t.Errorf("error message mismatch: got '%v', expected to contain '%s'", err, expectedErrString)
	}
}

func TestManager_SetConfig(t *testing.T) {
	tm := setupTestManager(t)
	cfg := DefaultConfig()
	cfg.BaseURL = "/crs/"
	cfg.SiteTitle = "Test Site"
	tm.SetConfig(cfg)

	var buf bytes.Buffer
	if err := tm.ExecuteTemplateString(&buf, `{{baseURL}}{{crsPath "EPSG" "4326"}} {{siteTitle}}`, nil); err != nil {
		t.Fatalf("ExecuteTemplateString failed: %v", err)
	}
	if buf.String() != "/crs/ref/epsg/4326/ Test Site" {
		t.Errorf("unexpected output %q", buf.String())
	}
	if tm.GetConfig().BaseURL != "/crs/" {
		t.Error("GetConfig did not return the new config")
	}
}

func TestStaticFiles(t *testing.T) {
	written := map[string]string{}
	err := WriteStatic("out", func(path string, r io.Reader) error {
		b, err := io.ReadAll(r)
		written[filepath.ToSlash(path)] = string(b)
		return err
	})
	if err != nil {
		t.Fatalf("WriteStatic failed: %v", err)
	}
	if !strings.Contains(written["out/base.js"], "function init_map") {
		t.Error("base.js missing or empty")
	}
	if _, ok := written["out/base.css"]; !ok {
		t.Error("base.css missing")
	}
}

func BenchmarkExecute_CRSPage(b *testing.B) {
	tm := setupTestManager(b)
	page := sampleCRSPage()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tm.Execute(io.Discard, "crs.tmpl.html", page)
	}
}
