package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// pipelineRunLockID guards the enrichment pipeline: the lifecycle has no
// per-article lease, so exactly one pipeline instance may run at a time.
const pipelineRunLockID = int64(83157)

// RunLock holds a session-level advisory lock for the duration of one
// pipeline run.
type RunLock struct {
	conn *pgxpool.Conn
}

// TryAcquireRunLock attempts to take the pipeline advisory lock without
// blocking. It returns (nil, false, nil) when another instance holds it.
func (db *DB) TryAcquireRunLock(ctx context.Context) (*RunLock, bool, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection for run lock: %w", err)
	}

	var acquired bool

	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", pipelineRunLockID).Scan(&acquired); err != nil {
		conn.Release()

		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}

	if !acquired {
		conn.Release()

		return nil, false, nil
	}

	return &RunLock{conn: conn}, true, nil
}

// Release frees the advisory lock and returns the connection to the pool.
func (l *RunLock) Release(ctx context.Context) {
	//nolint:errcheck // lock is released on connection close anyway
	_, _ = l.conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", pipelineRunLockID)
	l.conn.Release()
}
