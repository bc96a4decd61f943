// Package results stores the timing records produced by scheduler runs.
package results

import (
	"context"
	"strings"
)

// Record is the timing of one scheduler run.
type Record struct {
	Mode         string  `json:"mode"`
	Threads      int     `json:"threads"`
	TimeElapsed  float64 `json:"timeElapsed"`
	TimeParallel float64 `json:"timeParallel"`
	DataDir      string  `json:"datadir"`
}

// Store persists records.
type Store interface {
	// Add appends a record.
	Add(ctx context.Context, rec Record) error
	// All returns every record in insertion order.
	All(ctx context.Context) ([]Record, error)
	Close() error
}

// Open returns the store for 'dest':
//   - postgres:// or postgresql:// URLs open a PostgreSQL store
//   - paths ending in .db, .sqlite or .sqlite3 open a SQLite store
//   - anything else is a JSON-lines file
func Open(ctx context.Context, dest string) (Store, error) {
	switch {
	case strings.HasPrefix(dest, "postgres://"), strings.HasPrefix(dest, "postgresql://"):
		pg, err := OpenPostgres(ctx, dest)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case strings.HasSuffix(dest, ".db"), strings.HasSuffix(dest, ".sqlite"), strings.HasSuffix(dest, ".sqlite3"):
		db, err := OpenSQLite(dest)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return NewFile(dest), nil
	}
}
