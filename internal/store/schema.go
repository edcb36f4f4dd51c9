package store

import (
	"database/sql"

	"dimpact/internal/dimpacterr"
)

// initializeSchema creates the three logical tables (files, symbols, edges)
// plus the meta table recording the schema version, transactionally.
// Grounded on internal/storage/schema.go's initializeSchema/
// createSchemaVersionTable pattern in SimplyLiz-CodeMCP, narrowed to the tables
// §4.5 names (no migration history is needed for a first schema version).
func initializeSchema(db *sql.DB) error {
	return withTx(db, func(tx *sql.Tx) error {
		statements := []string{
			`CREATE TABLE IF NOT EXISTS meta (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS files (
				path              TEXT PRIMARY KEY,
				language          TEXT NOT NULL,
				content_digest    TEXT NOT NULL,
				modification_time INTEGER NOT NULL,
				present           INTEGER NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS symbols (
				id         TEXT PRIMARY KEY,
				name       TEXT NOT NULL,
				kind       TEXT NOT NULL,
				file       TEXT NOT NULL,
				start_line INTEGER NOT NULL,
				end_line   INTEGER NOT NULL,
				language   TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file)`,
			`CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name)`,
			`CREATE TABLE IF NOT EXISTS edges (
				from_id TEXT NOT NULL,
				to_id   TEXT NOT NULL,
				file    TEXT NOT NULL,
				line    INTEGER NOT NULL,
				PRIMARY KEY (from_id, to_id, file, line)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id)`,
			`CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id)`,
			`CREATE TABLE IF NOT EXISTS graph_snapshot (
				id    INTEGER PRIMARY KEY CHECK (id = 1),
				blob  BLOB NOT NULL,
				valid INTEGER NOT NULL
			)`,
		}
		for _, stmt := range statements {
			if _, err := tx.Exec(stmt); err != nil {
				return dimpacterr.Wrap(dimpacterr.KindIO, err, "creating schema")
			}
		}
		return setSchemaVersion(tx, SchemaVersion)
	})
}

// checkSchema reports whether the on-disk schema_version meta row disagrees
// with SchemaVersion. A missing meta row (a store predating the meta table)
// also counts as a mismatch.
func checkSchema(db *sql.DB) (mismatch bool, err error) {
	var hasTable int
	err = db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='meta'`).Scan(&hasTable)
	if err != nil {
		return false, dimpacterr.Wrap(dimpacterr.KindIO, err, "checking schema")
	}
	if hasTable == 0 {
		return true, nil
	}

	version, err := getSchemaVersion(db)
	if err != nil {
		return false, err
	}
	return version != SchemaVersion, nil
}

func getSchemaVersion(db *sql.DB) (int, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, dimpacterr.Wrap(dimpacterr.KindIO, err, "reading schema version")
	}
	var version int
	for _, c := range value {
		if c < '0' || c > '9' {
			return 0, nil
		}
		version = version*10 + int(c-'0')
	}
	return version, nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec(`INSERT INTO meta(key, value) VALUES ('schema_version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, itoa(version))
	if err != nil {
		return dimpacterr.Wrap(dimpacterr.KindSchemaMismatch, err, "writing schema version")
	}
	return nil
}
