package results

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// execer is the subset of *pgxpool.Pool the sink needs.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGSink inserts each record into the qos_results table.
type PGSink struct {
	db    execer
	close func()
}

// NewPGSink connects to databaseURL, creating the results table if needed.
func NewPGSink(ctx context.Context, databaseURL string) (*PGSink, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Records arrive one at a time from a single writer.
	config.MaxConns = 2
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s, err := newPGSink(ctx, pool, pool.Close)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func newPGSink(ctx context.Context, db execer, closeFn func()) (*PGSink, error) {
	s := &PGSink{db: db, close: closeFn}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}

func (s *PGSink) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS qos_results (
		id BIGSERIAL PRIMARY KEY,
		run_id TEXT NOT NULL,
		recorded_at TIMESTAMP NOT NULL,
		scenario_id INTEGER NOT NULL,
		repeat_id INTEGER NOT NULL,
		algorithm TEXT NOT NULL,
		n_nodes INTEGER NOT NULL,
		n_edges INTEGER NOT NULL,
		source INTEGER NOT NULL,
		target INTEGER NOT NULL,
		w_delay DOUBLE PRECISION NOT NULL,
		w_rel DOUBLE PRECISION NOT NULL,
		w_res DOUBLE PRECISION NOT NULL,
		path_length INTEGER NOT NULL,
		total_delay DOUBLE PRECISION NOT NULL,
		rel_cost DOUBLE PRECISION NOT NULL,
		res_cost DOUBLE PRECISION NOT NULL,
		total_cost DOUBLE PRECISION NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_qos_results_run ON qos_results(run_id);
	CREATE INDEX IF NOT EXISTS idx_qos_results_algorithm ON qos_results(algorithm);
	`

	_, err := s.db.Exec(ctx, schema)
	return err
}

const insertRecord = `
	INSERT INTO qos_results (
		run_id, recorded_at, scenario_id, repeat_id, algorithm, n_nodes, n_edges, source, target,
		w_delay, w_rel, w_res, path_length, total_delay, rel_cost, res_cost, total_cost
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
`

// Write inserts one record.
func (s *PGSink) Write(ctx context.Context, r Record) error {
	_, err := s.db.Exec(ctx, insertRecord,
		r.RunID,
		r.Timestamp,
		r.ScenarioID,
		r.RepeatID,
		r.Algorithm,
		r.Nodes,
		r.Edges,
		int(r.Source),
		int(r.Target),
		r.Weights.Delay,
		r.Weights.Reliability,
		r.Weights.Resource,
		r.PathLength,
		r.Metrics.TotalDelay,
		r.Metrics.ReliabilityCost,
		r.Metrics.ResourceCost,
		r.Metrics.TotalCost,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PGSink) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}
