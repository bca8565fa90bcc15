package crsdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// fixtureSchema is a reduced proj.db layout: only the columns the catalogue reads.
const fixtureSchema = `
CREATE TABLE geodetic_crs (auth_name TEXT, code TEXT, name TEXT, type TEXT, deprecated BOOLEAN);
CREATE TABLE projected_crs (auth_name TEXT, code TEXT, name TEXT, conversion_auth_name TEXT, conversion_code TEXT, deprecated BOOLEAN);
CREATE TABLE vertical_crs (auth_name TEXT, code TEXT, name TEXT, deprecated BOOLEAN);
CREATE TABLE compound_crs (auth_name TEXT, code TEXT, name TEXT, deprecated BOOLEAN);
CREATE TABLE conversion (auth_name TEXT, code TEXT, method_name TEXT);
CREATE TABLE extent (auth_name TEXT, code TEXT, name TEXT, description TEXT, south_lat FLOAT, north_lat FLOAT, west_lon FLOAT, east_lon FLOAT);
CREATE TABLE usage (auth_name TEXT, code TEXT, object_table_name TEXT, object_auth_name TEXT, object_code TEXT, extent_auth_name TEXT, extent_code TEXT);
CREATE TABLE metadata (key TEXT, value TEXT);
`

const fixtureData = `
INSERT INTO extent VALUES ('EPSG', '1262', 'World', 'World.', -90, 90, -180, 180);
INSERT INTO extent VALUES ('EPSG', '3254', 'NZ', 'New Zealand - onshore.', -47.65, -33.89, 166.37, -176.0);
INSERT INTO geodetic_crs VALUES ('EPSG', '4326', 'WGS 84', 'geographic 2D', 0);
INSERT INTO geodetic_crs VALUES ('EPSG', '4979', 'WGS 84', 'geographic 3D', 0);
INSERT INTO geodetic_crs VALUES ('EPSG', '4978', 'WGS 84', 'geocentric', 0);
INSERT INTO geodetic_crs VALUES ('EPSG', '4000', 'Old datum', 'geographic 2D', 1);
INSERT INTO geodetic_crs VALUES ('IGNF', 'WGS84G', 'WGS84 geographiques', 'geographic 2D', 0);
INSERT INTO projected_crs VALUES ('EPSG', '3857', 'WGS 84 / Pseudo-Mercator', 'EPSG', '3856', 0);
INSERT INTO projected_crs VALUES ('EPSG', '2193', 'NZGD2000 / New Zealand Transverse Mercator 2000', 'EPSG', '19971', 0);
INSERT INTO conversion VALUES ('EPSG', '3856', 'Popular Visualisation Pseudo Mercator');
INSERT INTO conversion VALUES ('EPSG', '19971', 'Transverse Mercator');
INSERT INTO vertical_crs VALUES ('EPSG', '5703', 'NAVD88 height', 0);
INSERT INTO compound_crs VALUES ('EPSG', '9705', 'WGS 84 + MSL height', 0);
INSERT INTO usage VALUES ('EPSG', 'u1', 'geodetic_crs', 'EPSG', '4326', 'EPSG', '1262');
INSERT INTO usage VALUES ('EPSG', 'u2', 'geodetic_crs', 'EPSG', '4979', 'EPSG', '1262');
INSERT INTO usage VALUES ('EPSG', 'u3', 'projected_crs', 'EPSG', '3857', 'EPSG', '1262');
INSERT INTO usage VALUES ('EPSG', 'u4', 'projected_crs', 'EPSG', '2193', 'EPSG', '3254');
INSERT INTO usage VALUES ('EPSG', 'u5', 'projected_crs', 'EPSG', '2193', 'EPSG', '1262');
INSERT INTO usage VALUES ('EPSG', 'u6', 'geodetic_crs', 'EPSG', '4000', 'EPSG', '1262');
INSERT INTO metadata VALUES ('EPSG.VERSION', 'v11.004');
INSERT INTO metadata VALUES ('DATABASE.LAYOUT.VERSION.MAJOR', '1');
`

// setupFixtureDB creates a file-backed SQLite database with a small proj.db-like catalogue.
func setupFixtureDB(t *testing.T, statements ...string) *sql.DB {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "proj.db")
	db, err := sql.Open("sqlite3", dbFile)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if len(statements) == 0 {
		statements = []string{fixtureSchema, fixtureData}
	}
	for _, s := range statements {
		if _, err = db.Exec(s); err != nil {
			t.Fatalf("failed to load fixture: %v", err)
		}
	}
	return db
}

// setupDatabase opens a Database over the default fixture.
func setupDatabase(t *testing.T) *Database {
	t.Helper()
	d, err := Open(setupFixtureDB(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(d.Close)
	return d
}
