package results

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const (
	runsTableDDL  = `CREATE TABLE IF NOT EXISTS runs(id INTEGER PRIMARY KEY AUTOINCREMENT, mode VARCHAR, threads INTEGER, time_elapsed REAL)`
	insertRunSQL  = `INSERT INTO runs(mode, threads, time_elapsed, time_parallel, datadir) VALUES(?, ?, ?, ?, ?)`
	selectRunsSQL = `SELECT mode, threads, time_elapsed, time_parallel, datadir FROM runs ORDER BY id`
)

var migrations = []string{
	"ALTER TABLE runs ADD COLUMN time_parallel REAL NOT NULL DEFAULT 0;",
	"ALTER TABLE runs ADD COLUMN datadir VARCHAR NOT NULL DEFAULT '';",
}

// SQLite is a Store backed by a SQLite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at 'path' and migrates its schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error in opening db [%v]: %w", path, err)
	}
	if err := initDB(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error in initializing db [%v]: %w", path, err)
	}
	return &SQLite{db: db}, nil
}

func initDB(db *sql.DB) error {
	if _, err := db.Exec(runsTableDDL); err != nil {
		return fmt.Errorf("error in creating table [runs]: %w", err)
	}
	return migrateDB(db)
}

// migrateDB applies additive migrations; re-running them on a migrated schema is harmless.
func migrateDB(db *sql.DB) error {
	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil && !strings.Contains(err.Error(), "duplicate") &&
			!strings.Contains(err.Error(), "already exists") {

			return fmt.Errorf("error in migrating db: %w", err)
		}
	}
	return nil
}

// Add inserts 'rec'.
func (s *SQLite) Add(ctx context.Context, rec Record) error {
	if _, err := s.db.ExecContext(ctx, insertRunSQL, rec.Mode, rec.Threads, rec.TimeElapsed, rec.TimeParallel, rec.DataDir); err != nil {
		return fmt.Errorf("error in inserting run [%v]: %w", rec.Mode, err)
	}
	return nil
}

// All returns every stored record in insertion order.
func (s *SQLite) All(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRunsSQL)
	if err != nil {
		return nil, fmt.Errorf("error in querying runs: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Mode, &rec.Threads, &rec.TimeElapsed, &rec.TimeParallel, &rec.DataDir); err != nil {
			return nil, fmt.Errorf("error in scanning run: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
