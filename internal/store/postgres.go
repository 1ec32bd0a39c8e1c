package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/mfroelund/json2tab/internal/db"
	"github.com/mfroelund/json2tab/internal/model"
)

// PostgresStore implements Store using pgxpool. Matched records go in through
// the COPY protocol; re-saving a run upserts on (run_id, line_no). The result
// tables live in the configured schema, or unqualified when none is set.
type PostgresStore struct {
	pool    db.Pool
	schema  string
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool. schema may be
// empty, placing the tables in the connection's default search path.
func NewPostgres(ctx context.Context, connString, schema string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, schema: schema, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests and callers that
// manage the pool themselves.
func NewPostgresWithPool(pool db.Pool, schema string) *PostgresStore {
	return &PostgresStore{pool: pool, schema: schema}
}

// table qualifies a table name with the configured schema.
func (s *PostgresStore) table(name string) string {
	if s.schema == "" {
		return name
	}
	return s.schema + "." + name
}

// Pool returns the underlying database pool for subsystems that need direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS %[1]s (
	id           TEXT PRIMARY KEY,
	suffix       TEXT NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL,
	total        INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS %[2]s (
	run_id             TEXT NOT NULL REFERENCES %[1]s(id),
	line_no            INTEGER NOT NULL,
	source_id          TEXT,
	name               TEXT,
	latitude           DOUBLE PRECISION NOT NULL,
	longitude          DOUBLE PRECISION NOT NULL,
	manufacturer       TEXT,
	type               TEXT,
	diameter           DOUBLE PRECISION,
	hub_height         DOUBLE PRECISION,
	power_rating       DOUBLE PRECISION,
	country            TEXT,
	is_offshore        BOOLEAN NOT NULL DEFAULT false,
	source             TEXT,
	model_designation  TEXT,
	matched_line_index INTEGER NOT NULL,
	matched_by         TEXT,
	PRIMARY KEY (run_id, line_no)
);

CREATE INDEX IF NOT EXISTS idx_matched_turbines_run_id ON %[2]s(run_id);
CREATE INDEX IF NOT EXISTS idx_matched_turbines_country ON %[2]s(country);
CREATE INDEX IF NOT EXISTS idx_matched_turbines_matched_by ON %[2]s(matched_by);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	migration := fmt.Sprintf(postgresMigration, s.table("match_runs"), s.table("matched_turbines"))
	if s.schema != "" {
		migration = fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;\n", s.schema) + migration
	}
	_, err := s.pool.Exec(ctx, migration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.MatchRun) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, suffix, generated_at, total) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET suffix = $2, generated_at = $3, total = $4`,
		s.table("match_runs")),
		run.ID, run.Suffix, run.Generated, run.Total,
	)
	return eris.Wrapf(err, "postgres: save run %s", run.ID)
}

func (s *PostgresStore) SaveRecords(ctx context.Context, runID string, records []*model.TurbineRecord) (int64, error) {
	rows := make([][]any, 0, len(records))
	for i, rec := range records {
		rows = append(rows, recordRow(runID, i, rec))
	}
	var (
		n   int64
		err error
	)
	if s.schema != "" {
		n, err = db.CopyFromSchema(ctx, s.pool, s.schema, "matched_turbines", recordColumns, rows)
	} else {
		n, err = db.CopyFrom(ctx, s.pool, "matched_turbines", recordColumns, rows)
	}
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: save records of run %s", runID)
	}
	return n, nil
}

// UpsertRecords re-saves a run's records, replacing rows that already exist.
func (s *PostgresStore) UpsertRecords(ctx context.Context, runID string, records []*model.TurbineRecord) (int64, error) {
	rows := make([][]any, 0, len(records))
	for i, rec := range records {
		rows = append(rows, recordRow(runID, i, rec))
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        s.table("matched_turbines"),
		Columns:      recordColumns,
		ConflictKeys: []string{"run_id", "line_no"},
	}, rows)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: upsert records of run %s", runID)
	}
	return n, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.MatchRun, error) {
	var run model.MatchRun
	err := s.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT id, suffix, generated_at, total FROM %s WHERE id = $1`,
		s.table("match_runs")),
		runID,
	).Scan(&run.ID, &run.Suffix, &run.Generated, &run.Total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return &run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.MatchRun, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		`SELECT id, suffix, generated_at, total FROM %s
		 ORDER BY generated_at DESC LIMIT $1`, s.table("match_runs")), limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.MatchRun
	for rows.Next() {
		var run model.MatchRun
		if err := rows.Scan(&run.ID, &run.Suffix, &run.Generated, &run.Total); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}
