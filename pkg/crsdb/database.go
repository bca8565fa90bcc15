package crsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// ErrNoTables is returned by Open when the database contains none of the CRS tables.
var ErrNoTables = errors.New("database contains no crs tables")

// crsTable describes one of the CRS tables of proj.db and how its rows map to Records.
type crsTable struct {
	name string
	// typeExpr is the SQL expression yielding the database type string.
	typeExpr string
	// methodJoin and methodExpr fetch the projection method, for projected CRSs only.
	methodJoin string
	methodExpr string
}

var knownTables = []crsTable{
	{name: "geodetic_crs", typeExpr: "c.type", methodExpr: "NULL"},
	{
		name:       "projected_crs",
		typeExpr:   "'projected'",
		methodJoin: "LEFT JOIN conversion conv ON conv.auth_name = c.conversion_auth_name AND conv.code = c.conversion_code",
		methodExpr: "conv.method_name",
	},
	{name: "vertical_crs", typeExpr: "'vertical'", methodExpr: "NULL"},
	{name: "compound_crs", typeExpr: "'compound'", methodExpr: "NULL"},
	{name: "engineering_crs", typeExpr: "'engineering'", methodExpr: "NULL"},
}

// QueryOptions narrows QueryCRSInfo.
type QueryOptions struct {
	// AuthName restricts the result to one authority. Empty means all.
	AuthName string
	// AllowDeprecated includes deprecated CRSs.
	AllowDeprecated bool
	// Types restricts the result to the given kinds. Empty means all.
	Types []Type
}

// Database is a read-only view of the CRS catalogue in a proj.db file.
// It holds prepared statements built for the tables present in the file.
type Database struct {
	db              *sql.DB
	tables          []crsTable
	hasMetadata     bool
	stmtCRSInfo     *sql.Stmt
	stmtAuthorities *sql.Stmt
	stmtMetadata    *sql.Stmt
	logger          *slog.Logger
}

// Open inspects db, which must be a proj.db style database, and prepares the
// catalogue queries. The caller keeps ownership of db.
func Open(db *sql.DB) (*Database, error) {
	present, err := listTables(db)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	d := &Database{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, t := range knownTables {
		if _, ok := present[t.name]; ok {
			d.tables = append(d.tables, t)
		}
	}
	if len(d.tables) == 0 {
		return nil, ErrNoTables
	}
	_, hasUsage := present["usage"]
	_, hasExtent := present["extent"]
	_, d.hasMetadata = present["metadata"]

	d.stmtCRSInfo, err = db.Prepare(buildCRSInfoQuery(d.tables, hasUsage && hasExtent))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare crs info query: %w", err)
	}

	d.stmtAuthorities, err = db.Prepare(buildAuthoritiesQuery(d.tables))
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to prepare authorities query: %w", err)
	}

	if d.hasMetadata {
		d.stmtMetadata, err = db.Prepare(`SELECT key, value FROM metadata;`)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("failed to prepare metadata query: %w", err)
		}
	}

	return d, nil
}

func listTables(db *sql.DB) (map[string]struct{}, error) {
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type IN ('table', 'view');`)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	present := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, err
		}
		present[name] = struct{}{}
	}
	return present, rows.Err()
}

// buildCRSInfoQuery unions one SELECT per table. Every part takes three
// parameters: allow_deprecated, auth_name, auth_name.
func buildCRSInfoQuery(tables []crsTable, withExtent bool) string {
	parts := make([]string, 0, len(tables))
	for _, t := range tables {
		var sb strings.Builder
		sb.WriteString("SELECT c.auth_name, c.code, c.name, ")
		sb.WriteString(t.typeExpr)
		sb.WriteString(", c.deprecated, ")
		if withExtent {
			sb.WriteString("a.west_lon, a.south_lat, a.east_lon, a.north_lat, a.description, ")
		} else {
			sb.WriteString("NULL, NULL, NULL, NULL, NULL, ")
		}
		sb.WriteString(t.methodExpr)
		sb.WriteString(" FROM ")
		sb.WriteString(t.name)
		sb.WriteString(" c ")
		if withExtent {
			fmt.Fprintf(&sb, "LEFT JOIN usage u ON u.object_table_name = '%s' AND u.object_auth_name = c.auth_name AND u.object_code = c.code ", t.name)
			sb.WriteString("LEFT JOIN extent a ON a.auth_name = u.extent_auth_name AND a.code = u.extent_code ")
		}
		if t.methodJoin != "" {
			sb.WriteString(t.methodJoin)
			sb.WriteString(" ")
		}
		sb.WriteString("WHERE (? OR c.deprecated = 0) AND (? = '' OR c.auth_name = ?)")
		parts = append(parts, sb.String())
	}
	return "SELECT * FROM (" + strings.Join(parts, " UNION ALL ") + ") ORDER BY 1, 2;"
}

func buildAuthoritiesQuery(tables []crsTable) string {
	parts := make([]string, 0, len(tables))
	for _, t := range tables {
		parts = append(parts, "SELECT auth_name FROM "+t.name)
	}
	return strings.Join(parts, " UNION ") + " ORDER BY 1;"
}

// Close releases the prepared statements. The underlying *sql.DB is not closed.
func (d *Database) Close() {
	if d.stmtCRSInfo != nil {
		_ = d.stmtCRSInfo.Close()
	}
	if d.stmtAuthorities != nil {
		_ = d.stmtAuthorities.Close()
	}
	if d.stmtMetadata != nil {
		_ = d.stmtMetadata.Close()
	}
}

// SetLogger sets the logger for the Database. By default, all logs are discarded.
func (d *Database) SetLogger(logger *slog.Logger) {
	if logger != nil {
		d.logger = logger
	}
}

// Tables returns the names of the CRS tables found in the database.
func (d *Database) Tables() []string {
	names := make([]string, len(d.tables))
	for i, t := range d.tables {
		names[i] = t.name
	}
	return names
}

// QueryCRSInfo lists the CRSs of the catalogue, one Record per (CRS, area of
// use) pair, ordered by authority and code as the database compares them.
func (d *Database) QueryCRSInfo(ctx context.Context, opts QueryOptions) ([]Record, error) {
	args := make([]any, 0, 3*len(d.tables))
	for range d.tables {
		args = append(args, opts.AllowDeprecated, opts.AuthName, opts.AuthName)
	}

	rows, err := d.stmtCRSInfo.QueryContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query crs info: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var wanted map[Type]struct{}
	if len(opts.Types) > 0 {
		wanted = make(map[Type]struct{}, len(opts.Types))
		for _, t := range opts.Types {
			wanted[t] = struct{}{}
		}
	}

	var records []Record
	for rows.Next() {
		var (
			r                        Record
			dbType                   string
			west, south, east, north sql.NullFloat64
			areaName, method         sql.NullString
		)
		if err = rows.Scan(&r.AuthName, &r.Code, &r.Name, &dbType, &r.Deprecated,
			&west, &south, &east, &north, &areaName, &method); err != nil {
			return nil, fmt.Errorf("failed to scan crs info: %w", err)
		}
		r.Type = typeFromDB(dbType)
		if wanted != nil {
			if _, ok := wanted[r.Type]; !ok {
				continue
			}
		}
		if west.Valid && south.Valid && east.Valid && north.Valid {
			r.AreaOfUse = &AreaOfUse{
				West:  west.Float64,
				South: south.Float64,
				East:  east.Float64,
				North: north.Float64,
				Name:  areaName.String,
			}
		}
		r.ProjectionMethodName = method.String
		records = append(records, r)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	d.logger.DebugContext(ctx, "Queried crs info",
		slog.String("auth_name", opts.AuthName),
		slog.Bool("allow_deprecated", opts.AllowDeprecated),
		slog.Int("rows", len(records)),
	)
	return records, nil
}

// Authorities returns the distinct authority names found in the CRS tables.
func (d *Database) Authorities(ctx context.Context) ([]string, error) {
	rows, err := d.stmtAuthorities.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query authorities: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var names []string
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Metadata returns the key/value pairs of the metadata table, such as
// EPSG.VERSION. The map is empty when the database has no such table.
func (d *Database) Metadata(ctx context.Context) (map[string]string, error) {
	meta := make(map[string]string)
	if !d.hasMetadata {
		return meta, nil
	}
	rows, err := d.stmtMetadata.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	for rows.Next() {
		var key string
		var value sql.NullString
		if err = rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		meta[key] = value.String
	}
	return meta, rows.Err()
}

func typeFromDB(s string) Type {
	switch s {
	case "geographic 2D":
		return TypeGeographic2D
	case "geographic 3D":
		return TypeGeographic3D
	case "geocentric":
		return TypeGeocentric
	case "other":
		return TypeGeodetic
	case "projected":
		return TypeProjected
	case "vertical":
		return TypeVertical
	case "compound":
		return TypeCompound
	case "engineering":
		return TypeEngineering
	default:
		return TypeOther
	}
}
