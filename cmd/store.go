package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mfroelund/json2tab/internal/model"
	"github.com/mfroelund/json2tab/internal/store"
)

// openStore builds the configured store backend.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "", "sqlite":
		s, err := store.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "open sqlite store")
		}
		return s, nil
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Schema, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
		if err != nil {
			return nil, eris.Wrap(err, "open postgres store")
		}
		return s, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// saveRun persists a completed run and its records. A run id seen before is
// updated in place, record rows included.
func saveRun(ctx context.Context, run *model.MatchRun, records []*model.TurbineRecord) error {
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.Migrate(ctx); err != nil {
		return eris.Wrap(err, "migrate store")
	}
	existing, err := s.GetRun(ctx, run.ID)
	if err != nil {
		return eris.Wrap(err, "look up run")
	}
	if err := s.SaveRun(ctx, run); err != nil {
		return eris.Wrap(err, "save run")
	}

	var n int64
	if existing != nil {
		n, err = s.UpsertRecords(ctx, run.ID, records)
	} else {
		n, err = s.SaveRecords(ctx, run.ID, records)
	}
	if err != nil {
		return eris.Wrap(err, "save records")
	}

	zap.L().Info("run persisted",
		zap.String("run_id", run.ID),
		zap.Int64("records", n),
		zap.Bool("updated", existing != nil),
		zap.String("driver", cfg.Store.Driver),
	)
	return nil
}
