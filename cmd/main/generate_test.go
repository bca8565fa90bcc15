package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CTAG07/crsexplorer/pkg/crsdb"
)

const fixtureProjDB = `
CREATE TABLE geodetic_crs (auth_name TEXT, code TEXT, name TEXT, type TEXT, deprecated BOOLEAN);
CREATE TABLE projected_crs (auth_name TEXT, code TEXT, name TEXT, conversion_auth_name TEXT, conversion_code TEXT, deprecated BOOLEAN);
CREATE TABLE conversion (auth_name TEXT, code TEXT, method_name TEXT);
CREATE TABLE extent (auth_name TEXT, code TEXT, name TEXT, description TEXT, south_lat FLOAT, north_lat FLOAT, west_lon FLOAT, east_lon FLOAT);
CREATE TABLE usage (auth_name TEXT, code TEXT, object_table_name TEXT, object_auth_name TEXT, object_code TEXT, extent_auth_name TEXT, extent_code TEXT);
CREATE TABLE metadata (key TEXT, value TEXT);
INSERT INTO extent VALUES ('EPSG', '1262', 'World', 'World.', -90, 90, -180, 180);
INSERT INTO geodetic_crs VALUES ('EPSG', '4326', 'WGS 84', 'geographic 2D', 0);
INSERT INTO geodetic_crs VALUES ('EPSG', '4000', 'Old datum', 'geographic 2D', 1);
INSERT INTO geodetic_crs VALUES ('EPSG', '4978', 'WGS 84', 'geocentric', 0);
INSERT INTO geodetic_crs VALUES ('ESRI', '104000', 'GCS_Assumed_Geographic_NAD83', 'geographic 2D', 0);
INSERT INTO projected_crs VALUES ('EPSG', '3857', 'WGS 84 / Pseudo-Mercator', 'EPSG', '3856', 0);
INSERT INTO conversion VALUES ('EPSG', '3856', 'Popular Visualisation Pseudo Mercator');
INSERT INTO usage VALUES ('EPSG', 'u1', 'geodetic_crs', 'EPSG', '4326', 'EPSG', '1262');
INSERT INTO usage VALUES ('EPSG', 'u2', 'geodetic_crs', 'EPSG', '4000', 'EPSG', '1262');
INSERT INTO usage VALUES ('EPSG', 'u3', 'projected_crs', 'EPSG', '3857', 'EPSG', '1262');
INSERT INTO usage VALUES ('ESRI', 'u4', 'geodetic_crs', 'ESRI', '104000', 'EPSG', '1262');
INSERT INTO metadata VALUES ('EPSG.VERSION', 'v11.004');
`

// setupProjDB writes a small proj.db-like file and returns its path.
func setupProjDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "proj.db")
	db, err := initDB(path)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	defer func() { _ = db.Close() }()
	if _, err = db.Exec(fixtureProjDB); err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}
	return path
}

func TestLoadRecords(t *testing.T) {
	db, err := openProjDB(setupProjDB(t))
	if err != nil {
		t.Fatalf("openProjDB failed: %v", err)
	}
	defer func() { _ = db.Close() }()
	catalogue, err := crsdb.Open(db)
	if err != nil {
		t.Fatalf("crsdb.Open failed: %v", err)
	}
	defer catalogue.Close()

	extraDir := t.TempDir()
	extra := filepath.Join(extraDir, "iau2000.json")
	f, err := os.Create(extra)
	if err != nil {
		t.Fatalf("failed to create extra list: %v", err)
	}
	if err = crsdb.WriteJSON(f, []crsdb.Record{{AuthName: "IAU2000", Code: "1000", Name: "Mercury 2000", OGCWKT: `GEOGCS["Mercury 2000"]`}}); err != nil {
		t.Fatalf("failed to write extra list: %v", err)
	}
	_ = f.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sc := DefaultSiteConfig()
	sc.ExtraLists = []string{extra, filepath.Join(extraDir, "missing.json")}

	records, err := loadRecords(context.Background(), catalogue, sc, logger)
	if err != nil {
		t.Fatalf("loadRecords failed: %v", err)
	}
	var keys []string
	for _, r := range records {
		keys = append(keys, r.Key())
	}
	// EPSG:4978 has no area of use; the deprecated EPSG:4000 is kept.
	want := "EPSG:3857 EPSG:4000 EPSG:4326 ESRI:104000 IAU2000:1000"
	if got := strings.Join(keys, " "); got != want {
		t.Errorf("loadRecords keys = %q, want %q", got, want)
	}

	sc.Authorities = []string{"ESRI"}
	sc.ExtraLists = nil
	records, err = loadRecords(context.Background(), catalogue, sc, logger)
	if err != nil {
		t.Fatalf("loadRecords failed: %v", err)
	}
	if len(records) != 1 || records[0].Key() != "ESRI:104000" {
		t.Errorf("authority filter not applied: %+v", records)
	}
}

func TestOpenProjDB_Missing(t *testing.T) {
	if _, err := openProjDB(filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Fatal("expected an error for a missing proj.db")
	}
}

func TestRunGenerate(t *testing.T) {
	// No PROJ available: every export falls back to its placeholder.
	t.Setenv("PROJINFO", filepath.Join(t.TempDir(), "missing-projinfo"))

	config := &Config{Site: DefaultSiteConfig()}
	config.Templates.BaseURL = "/"
	config.Templates.SiteTitle = "CRS"
	config.Site.ProjDBPath = setupProjDB(t)
	config.Site.DestDir = t.TempDir()
	config.Site.ExtraLists = nil
	config.Site.ProjVersion = "9.4.1"
	config.Site.Representations = []string{"wkt1", "wkt2"}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	report, err := runGenerate(context.Background(), config, logger)
	if err != nil {
		t.Fatalf("runGenerate failed: %v", err)
	}
	if report.Records != 4 || report.Failures != 8 || len(report.Duplicates) != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	if config.Site.EPSGVersion != "v11.004" {
		t.Errorf("EPSG version not read from metadata, got %q", config.Site.EPSGVersion)
	}

	data, err := os.ReadFile(filepath.Join(config.Site.DestDir, "wkt1", "EPSG", "3857.txt"))
	if err != nil {
		t.Fatalf("wkt1 file missing: %v", err)
	}
	want := "Error: EPSG:3857 cannot be written as WKT1_GDAL\n type: PROJECTED_CRS\n name: WGS 84 / Pseudo-Mercator\n"
	if string(data) != want {
		t.Errorf("placeholder mismatch:\ngot  %q\nwant %q", data, want)
	}
	page, err := os.ReadFile(filepath.Join(config.Site.DestDir, "ref", "epsg", "3857", "index.html"))
	if err != nil {
		t.Fatalf("CRS page missing: %v", err)
	}
	if !strings.Contains(string(page), "EPSG v11.004") {
		t.Error("footer should show the EPSG version")
	}
}

func TestRunGenerate_BadRepresentation(t *testing.T) {
	config := &Config{Site: DefaultSiteConfig()}
	config.Site.ProjDBPath = setupProjDB(t)
	config.Site.DestDir = t.TempDir()
	config.Site.ExtraLists = nil
	config.Site.ProjVersion = "9.4.1"
	config.Site.Representations = []string{"kml"}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := runGenerate(context.Background(), config, logger); err == nil {
		t.Fatal("expected an error for an unknown representation")
	}
}

func TestRunGenerate_ExportsFromConfiguredDatabase(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "calls.log")
	script := filepath.Join(dir, "projinfo")
	body := "#!/bin/sh\nprintf '%s\\n' \"$*\" >> \"" + logFile + "\"\nprintf 'GEOGCRS[\"x\"]\\n'\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatalf("failed to write fake projinfo: %v", err)
	}
	t.Setenv("PROJINFO", script)

	dbPath := setupProjDB(t)
	config := &Config{Site: DefaultSiteConfig()}
	config.Site.ProjDBPath = dbPath
	config.Site.DestDir = t.TempDir()
	config.Site.ExtraLists = nil
	config.Site.ProjVersion = "9.4.1"
	config.Site.Representations = []string{"wkt2"}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	report, err := runGenerate(context.Background(), config, logger)
	if err != nil {
		t.Fatalf("runGenerate failed: %v", err)
	}
	if report.Failures != 0 {
		t.Errorf("expected no failed exports, got %d", report.Failures)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("projinfo was never run: %v", err)
	}
	calls := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(calls) != report.Records {
		t.Errorf("expected %d projinfo runs, got %d", report.Records, len(calls))
	}
	for _, call := range calls {
		if !strings.Contains(call, "--main-db-path "+dbPath+" ") {
			t.Errorf("export did not use the configured proj.db: %q", call)
		}
	}
}
