// SPDX-License-Identifier: MIT

// Package store provides SQLite persistence for cryptanalysis jobs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)

	"github.com/kryptoslab/kryptos/internal/crack"
)

// JobStatus is the lifecycle state of a cryptanalysis job.
type JobStatus string

const (
	JobQueued   JobStatus = "queued"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

// String returns the string representation.
func (s JobStatus) String() string { return string(s) }

// Terminal reports whether the status is a final state.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobDone, JobFailed, JobCanceled:
		return true
	default:
		return false
	}
}

// Job is a persisted cryptanalysis job.
type Job struct {
	ID         string            `json:"id"`
	Cipher     string            `json:"cipher"`
	Status     JobStatus         `json:"status"`
	Ciphertext string            `json:"ciphertext"`
	Error      string            `json:"error,omitempty"`
	Candidates []crack.Candidate `json:"candidates,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	StartedAt  *time.Time        `json:"started_at,omitempty"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
}

// Store provides SQLite persistence for cryptanalysis jobs.
type Store struct {
	db *sql.DB
}

// NewStore initializes a new SQLite store and runs migrations.
// Sets WAL mode + busy_timeout for concurrent worker access.
func NewStore(dbPath string) (*Store, error) {
	// busy_timeout avoids "database locked" errors; modernc.org/sqlite only
	// honors pragmas passed via _pragma, not the mattn-style _busy_timeout
	// parameters.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs database schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS crack_jobs (
		id TEXT PRIMARY KEY,
		cipher TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'queued' CHECK(status IN ('queued', 'running', 'done', 'failed', 'canceled')),
		ciphertext TEXT NOT NULL,
		error TEXT,
		candidates TEXT,
		created_at TEXT NOT NULL,
		started_at TEXT,
		finished_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_crack_jobs_status ON crack_jobs(status);
	CREATE INDEX IF NOT EXISTS idx_crack_jobs_created ON crack_jobs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateJob inserts a new job in the queued state.
func (s *Store) CreateJob(ctx context.Context, job Job) error {
	query := `
	INSERT INTO crack_jobs (id, cipher, status, ciphertext, created_at)
	VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.Cipher,
		JobQueued.String(),
		job.Ciphertext,
		job.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// GetJob retrieves a single job by ID. Returns nil when not found.
func (s *Store) GetJob(ctx context.Context, id string) (*Job, error) {
	query := `
	SELECT id, cipher, status, ciphertext, error, candidates, created_at, started_at, finished_at
	FROM crack_jobs
	WHERE id = ?
	`

	var (
		job           Job
		errMsg        sql.NullString
		candidatesStr sql.NullString
		createdStr    string
		startedStr    sql.NullString
		finishedStr   sql.NullString
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.Cipher, &job.Status, &job.Ciphertext,
		&errMsg, &candidatesStr, &createdStr, &startedStr, &finishedStr,
	)
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}

	job.Error = errMsg.String
	if candidatesStr.Valid && candidatesStr.String != "" {
		if err := json.Unmarshal([]byte(candidatesStr.String), &job.Candidates); err != nil {
			return nil, fmt.Errorf("decode candidates: %w", err)
		}
	}
	job.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	job.StartedAt = parseNullTime(startedStr)
	job.FinishedAt = parseNullTime(finishedStr)

	return &job, nil
}

// MarkRunning transitions a queued job to running.
func (s *Store) MarkRunning(ctx context.Context, id string, startedAt time.Time) error {
	query := `
	UPDATE crack_jobs
	SET status = ?, started_at = ?
	WHERE id = ? AND status = ?
	`
	_, err := s.db.ExecContext(ctx, query,
		JobRunning.String(), startedAt.Format(time.RFC3339), id, JobQueued.String())
	return err
}

// MarkDone records a successful result.
func (s *Store) MarkDone(ctx context.Context, id string, candidates []crack.Candidate, finishedAt time.Time) error {
	data, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("encode candidates: %w", err)
	}

	query := `
	UPDATE crack_jobs
	SET status = ?, candidates = ?, finished_at = ?
	WHERE id = ?
	`
	_, err = s.db.ExecContext(ctx, query,
		JobDone.String(), string(data), finishedAt.Format(time.RFC3339), id)
	return err
}

// MarkFailed records a failure with its error message.
func (s *Store) MarkFailed(ctx context.Context, id, errMsg string, finishedAt time.Time) error {
	query := `
	UPDATE crack_jobs
	SET status = ?, error = ?, finished_at = ?
	WHERE id = ?
	`
	_, err := s.db.ExecContext(ctx, query,
		JobFailed.String(), errMsg, finishedAt.Format(time.RFC3339), id)
	return err
}

// MarkCanceled transitions a job to canceled unless it already finished.
func (s *Store) MarkCanceled(ctx context.Context, id string, finishedAt time.Time) error {
	query := `
	UPDATE crack_jobs
	SET status = ?, finished_at = ?
	WHERE id = ? AND status IN (?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		JobCanceled.String(), finishedAt.Format(time.RFC3339), id,
		JobQueued.String(), JobRunning.String())
	return err
}

// ListJobs retrieves paginated jobs, newest first, with the total count.
func (s *Store) ListJobs(ctx context.Context, limit, offset int) ([]Job, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM crack_jobs`
	if err := s.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
	SELECT id, cipher, status, error, created_at, started_at, finished_at
	FROM crack_jobs
	ORDER BY created_at DESC, id DESC
	LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	var jobs []Job
	for rows.Next() {
		var (
			job         Job
			errMsg      sql.NullString
			createdStr  string
			startedStr  sql.NullString
			finishedStr sql.NullString
		)

		if err := rows.Scan(
			&job.ID, &job.Cipher, &job.Status, &errMsg,
			&createdStr, &startedStr, &finishedStr,
		); err != nil {
			return nil, 0, err
		}

		job.Error = errMsg.String
		job.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		job.StartedAt = parseNullTime(startedStr)
		job.FinishedAt = parseNullTime(finishedStr)

		jobs = append(jobs, job)
	}

	return jobs, total, rows.Err()
}

// DeleteJob removes a job. Returns whether a row was deleted.
func (s *Store) DeleteJob(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM crack_jobs WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PurgeFinishedBefore deletes terminal jobs that finished before cutoff.
// Returns the number of jobs removed.
func (s *Store) PurgeFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
	DELETE FROM crack_jobs
	WHERE status IN (?, ?, ?) AND finished_at < ?
	`
	res, err := s.db.ExecContext(ctx, query,
		JobDone.String(), JobFailed.String(), JobCanceled.String(),
		cutoff.Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil
	}
	return &t
}
