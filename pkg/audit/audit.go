// Package audit persists provisioning runs to Postgres so every planned
// and applied device change stays reviewable after the fact.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carverauto/netfabric/pkg/logger"
	"github.com/carverauto/netfabric/pkg/models"
)

const defaultListLimit = 50

const createRunsTableSQL = `
CREATE TABLE IF NOT EXISTS provision_runs (
	run_id         TEXT PRIMARY KEY,
	device_name    TEXT NOT NULL,
	status         TEXT NOT NULL,
	mutation_count INTEGER NOT NULL DEFAULT 0,
	script         TEXT NOT NULL DEFAULT '',
	error          TEXT NOT NULL DEFAULT '',
	started_at     TIMESTAMPTZ NOT NULL,
	completed_at   TIMESTAMPTZ
)`

const insertRunSQL = `
INSERT INTO provision_runs (
	run_id,
	device_name,
	status,
	mutation_count,
	script,
	error,
	started_at,
	completed_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8
)`

const completeRunSQL = `
UPDATE provision_runs
SET status = $2, error = $3, completed_at = $4
WHERE run_id = $1`

const selectRunSQL = `
SELECT run_id, device_name, status, mutation_count, script, error, started_at, completed_at
FROM provision_runs
WHERE run_id = $1`

const selectRunsSQL = `
SELECT run_id, device_name, status, mutation_count, script, error, started_at, completed_at
FROM provision_runs
ORDER BY started_at DESC
LIMIT $1`

const selectDeviceRunsSQL = `
SELECT run_id, device_name, status, mutation_count, script, error, started_at, completed_at
FROM provision_runs
WHERE device_name = $1
ORDER BY started_at DESC
LIMIT $2`

// querier is the pool slice the store uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store records provisioning runs. A nil Store drops writes and reports
// reads as disabled, so callers can run without Postgres.
type Store struct {
	db   querier
	pool *pgxpool.Pool
	log  logger.Logger
}

// NewStore dials Postgres and makes sure the provision_runs table
// exists. A disabled config yields a nil store.
func NewStore(ctx context.Context, cfg models.PostgresConfig, log logger.Logger) (*Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, createRunsTableSQL); err != nil {
		pool.Close()

		return nil, fmt.Errorf("creating provision_runs table: %w", err)
	}

	log.Info().Msg("Provisioning audit store ready")

	return &Store{db: pool, pool: pool, log: log}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}

	s.pool.Close()
}

// Record inserts a freshly planned run.
func (s *Store) Record(ctx context.Context, run *models.ProvisionRun) error {
	if s == nil {
		return nil
	}

	_, err := s.db.Exec(ctx, insertRunSQL,
		run.RunID,
		run.DeviceName,
		string(run.Status),
		run.MutationCount,
		run.Script,
		run.Error,
		run.StartedAt,
		nullableTime(run.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("recording provision run %s: %w", run.RunID, err)
	}

	return nil
}

// Complete settles a run as applied or failed.
func (s *Store) Complete(ctx context.Context, runID string, status models.RunStatus, message string, completedAt time.Time) error {
	if s == nil {
		return nil
	}

	tag, err := s.db.Exec(ctx, completeRunSQL, runID, string(status), message, completedAt)
	if err != nil {
		return fmt.Errorf("completing provision run %s: %w", runID, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	return nil
}

// GetRun looks up a single run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (*models.ProvisionRun, error) {
	if s == nil {
		return nil, ErrAuditDisabled
	}

	run, err := scanRun(s.db.QueryRow(ctx, selectRunSQL, runID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}

		return nil, fmt.Errorf("reading provision run %s: %w", runID, err)
	}

	return run, nil
}

// ListRuns returns the most recent runs, newest first. An empty device
// name lists runs across all devices.
func (s *Store) ListRuns(ctx context.Context, deviceName string, limit int) ([]models.ProvisionRun, error) {
	if s == nil {
		return nil, ErrAuditDisabled
	}

	if limit <= 0 {
		limit = defaultListLimit
	}

	var (
		rows pgx.Rows
		err  error
	)

	if deviceName == "" {
		rows, err = s.db.Query(ctx, selectRunsSQL, limit)
	} else {
		rows, err = s.db.Query(ctx, selectDeviceRunsSQL, deviceName, limit)
	}

	if err != nil {
		return nil, fmt.Errorf("listing provision runs: %w", err)
	}
	defer rows.Close()

	var runs []models.ProvisionRun

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning provision run row: %w", err)
		}

		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*models.ProvisionRun, error) {
	var (
		run       models.ProvisionRun
		completed *time.Time
	)

	err := row.Scan(
		&run.RunID,
		&run.DeviceName,
		&run.Status,
		&run.MutationCount,
		&run.Script,
		&run.Error,
		&run.StartedAt,
		&completed,
	)
	if err != nil {
		return nil, err
	}

	if completed != nil {
		run.CompletedAt = *completed
	}

	return &run, nil
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}

	return t
}
