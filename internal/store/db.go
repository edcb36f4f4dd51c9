package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure-Go SQLite driver, no cgo

	"dimpact/internal/dimpacterr"
)

// SchemaVersion is the current store schema version. It is encoded both in
// the scope directory name (§6.4) and in a meta table row; a mismatch on
// open triggers a full rebuild rather than silent coercion.
const SchemaVersion = 1

const storeFileName = "index.sqlite"

// openDB opens (creating if absent) the sqlite file under dir, in
// write-ahead journal mode with a modest durability setting, and ensures
// the schema. Grounded on internal/storage/db.go in SimplyLiz-CodeMCP.
func openDB(dir string) (*sql.DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, dimpacterr.Wrap(dimpacterr.KindIO, err, "creating store directory")
	}

	dbPath := filepath.Join(dir, storeFileName)
	existed := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, dimpacterr.Wrap(dimpacterr.KindIO, err, "opening store")
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA cache_size=-64000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, dimpacterr.Wrap(dimpacterr.KindIO, err, fmt.Sprintf("setting pragma %q", p))
		}
	}

	if !existed {
		if err := initializeSchema(conn); err != nil {
			conn.Close()
			return nil, err
		}
	} else {
		mismatch, err := checkSchema(conn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		if mismatch {
			conn.Close()
			if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
				return nil, dimpacterr.Wrap(dimpacterr.KindIO, err, "removing stale store for rebuild")
			}
			return openDB(dir)
		}
	}

	return conn, nil
}

// withTx runs fn inside a transaction, rolling back on error or panic and
// committing otherwise. Grounded on internal/storage/db.go's WithTx.
func withTx(db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return dimpacterr.Wrap(dimpacterr.KindIO, err, "beginning transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return dimpacterr.Wrap(dimpacterr.KindIO, err, "committing transaction")
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
