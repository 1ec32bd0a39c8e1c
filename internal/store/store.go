// Package store persists completed match runs: run metadata plus the matched
// turbine records, to SQLite for local runs or PostgreSQL for shared setups.
package store

import (
	"context"

	"github.com/mfroelund/json2tab/internal/model"
)

// Store is the persistence interface for match results.
type Store interface {
	// SaveRun records the metadata of one matching run.
	SaveRun(ctx context.Context, run *model.MatchRun) error

	// SaveRecords persists the matched records of a run and returns the
	// number of rows written.
	SaveRecords(ctx context.Context, runID string, records []*model.TurbineRecord) (int64, error)

	// UpsertRecords re-saves a run's records, replacing rows that already
	// exist. Used when a run id is reused across invocations.
	UpsertRecords(ctx context.Context, runID string, records []*model.TurbineRecord) (int64, error)

	// GetRun loads run metadata by ID.
	GetRun(ctx context.Context, runID string) (*model.MatchRun, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]model.MatchRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// recordColumns is the column order shared by both store backends.
var recordColumns = []string{
	"run_id", "line_no", "source_id", "name",
	"latitude", "longitude",
	"manufacturer", "type",
	"diameter", "hub_height", "power_rating",
	"country", "is_offshore", "source",
	"model_designation", "matched_line_index", "matched_by",
}

// recordRow flattens one record into the recordColumns order.
func recordRow(runID string, lineNo int, rec *model.TurbineRecord) []any {
	return []any{
		runID, lineNo, rec.ID, rec.Name,
		rec.Latitude, rec.Longitude,
		rec.Manufacturer, rec.Type,
		rec.Diameter, rec.HubHeight, rec.PowerRating,
		rec.Country, rec.IsOffshore, rec.Source,
		rec.ModelDesignation, rec.MatchedIndex, rec.MatchedBy,
	}
}
