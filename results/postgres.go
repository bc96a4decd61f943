package results

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	requestTimeout = time.Minute

	createRunsPGDDL = `CREATE TABLE IF NOT EXISTS runs(id BIGSERIAL PRIMARY KEY, mode TEXT, threads INTEGER,
		time_elapsed DOUBLE PRECISION, time_parallel DOUBLE PRECISION, datadir TEXT,
		created_at TIMESTAMP DEFAULT now());`
	insertRunPGSQL  = `INSERT INTO runs(mode, threads, time_elapsed, time_parallel, datadir) VALUES($1, $2, $3, $4, $5)`
	selectRunsPGSQL = `SELECT mode, threads, time_elapsed, time_parallel, datadir FROM runs ORDER BY id`
)

// Postgres is a Store backed by a PostgreSQL connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to 'url' and creates the runs table if needed.
func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("error in opening postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createRunsPGDDL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error in creating table [runs]: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Add inserts 'rec'.
func (p *Postgres) Add(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if _, err := p.pool.Exec(ctx, insertRunPGSQL, rec.Mode, rec.Threads, rec.TimeElapsed, rec.TimeParallel, rec.DataDir); err != nil {
		return fmt.Errorf("error in inserting run [%v]: %w", rec.Mode, err)
	}
	return nil
}

// All returns every stored record in insertion order.
func (p *Postgres) All(ctx context.Context) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	rows, err := p.pool.Query(ctx, selectRunsPGSQL)
	if err != nil {
		return nil, fmt.Errorf("error in querying runs: %w", err)
	}
	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var rec Record
		err := row.Scan(&rec.Mode, &rec.Threads, &rec.TimeElapsed, &rec.TimeParallel, &rec.DataDir)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("error in scanning runs: %w", err)
	}
	return recs, nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
