package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

func initDB(dataSource string) (*sql.DB, error) {
	return sql.Open(sqliteDriver, dataSource)
}

// openProjDB opens a proj.db file read-only. The file must exist; SQLite
// would otherwise create an empty database.
func openProjDB(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("proj.db not found: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	db, err := initDB("file:" + filepath.ToSlash(abs) + "?mode=ro")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return db, nil
}
