package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/mfroelund/json2tab/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS match_runs (
	id           TEXT PRIMARY KEY,
	suffix       TEXT NOT NULL,
	generated_at DATETIME NOT NULL,
	total        INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS matched_turbines (
	run_id             TEXT NOT NULL REFERENCES match_runs(id),
	line_no            INTEGER NOT NULL,
	source_id          TEXT,
	name               TEXT,
	latitude           REAL NOT NULL,
	longitude          REAL NOT NULL,
	manufacturer       TEXT,
	type               TEXT,
	diameter           REAL,
	hub_height         REAL,
	power_rating       REAL,
	country            TEXT,
	is_offshore        INTEGER NOT NULL DEFAULT 0,
	source             TEXT,
	model_designation  TEXT,
	matched_line_index INTEGER NOT NULL,
	matched_by         TEXT,
	PRIMARY KEY (run_id, line_no)
);

CREATE INDEX IF NOT EXISTS idx_matched_turbines_run_id ON matched_turbines(run_id);
CREATE INDEX IF NOT EXISTS idx_matched_turbines_country ON matched_turbines(country);
CREATE INDEX IF NOT EXISTS idx_matched_turbines_matched_by ON matched_turbines(matched_by);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.MatchRun) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO match_runs (id, suffix, generated_at, total) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET suffix = ?, generated_at = ?, total = ?`,
		run.ID, run.Suffix, run.Generated, run.Total,
		run.Suffix, run.Generated, run.Total,
	)
	return eris.Wrapf(err, "sqlite: save run %s", run.ID)
}

func (s *SQLiteStore) SaveRecords(ctx context.Context, runID string, records []*model.TurbineRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	placeholders := "?" + strings.Repeat(", ?", len(recordColumns)-1)
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO matched_turbines (`+strings.Join(recordColumns, ", ")+`)
		 VALUES (`+placeholders+`)
		 ON CONFLICT (run_id, line_no) DO NOTHING`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	var written int64
	for i, rec := range records {
		res, err := stmt.ExecContext(ctx, recordRow(runID, i, rec)...)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert turbine %d of run %s", i, runID)
		}
		if n, err := res.RowsAffected(); err == nil {
			written += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit tx")
	}
	return written, nil
}

// UpsertRecords re-saves a run's records; rows that already exist for the
// (run_id, line_no) key are overwritten with the new match outcome.
func (s *SQLiteStore) UpsertRecords(ctx context.Context, runID string, records []*model.TurbineRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	var updates []string
	for _, col := range recordColumns[2:] {
		updates = append(updates, col+" = excluded."+col)
	}
	placeholders := "?" + strings.Repeat(", ?", len(recordColumns)-1)
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO matched_turbines (`+strings.Join(recordColumns, ", ")+`)
		 VALUES (`+placeholders+`)
		 ON CONFLICT (run_id, line_no) DO UPDATE SET `+strings.Join(updates, ", "))
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close()

	var written int64
	for i, rec := range records {
		res, err := stmt.ExecContext(ctx, recordRow(runID, i, rec)...)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert turbine %d of run %s", i, runID)
		}
		if n, err := res.RowsAffected(); err == nil {
			written += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit tx")
	}
	return written, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.MatchRun, error) {
	var run model.MatchRun
	err := s.db.QueryRowContext(ctx,
		`SELECT id, suffix, generated_at, total FROM match_runs WHERE id = ?`,
		runID,
	).Scan(&run.ID, &run.Suffix, &run.Generated, &run.Total)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return &run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.MatchRun, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, suffix, generated_at, total FROM match_runs
		 ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.MatchRun
	for rows.Next() {
		var run model.MatchRun
		if err := rows.Scan(&run.ID, &run.Suffix, &run.Generated, &run.Total); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}
