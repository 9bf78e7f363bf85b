package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/josego85/pdf-content-search/internal/jobs"
)

// JobStore persists translation jobs. All writes are single-row statements
// scoped to one job's primary key.
type JobStore struct {
	db *DB
}

func NewJobStore(db *DB) *JobStore {
	return &JobStore{db: db}
}

func (s *JobStore) FindActive(ctx context.Context, documentID string, page int, targetLanguage string) (*jobs.Job, error) {
	query := `
		SELECT id, document_id, page, target_language, status,
		       created_at, started_at, completed_at, error_message, worker_id
		FROM translation_jobs
		WHERE document_id = $1 AND page = $2 AND target_language = $3
		  AND status IN ('queued', 'processing')
		ORDER BY created_at DESC
		LIMIT 1
	`

	job, err := s.scanJob(s.db.QueryRowContext(ctx, query, documentID, page, targetLanguage))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active job: %w", err)
	}
	return job, nil
}

func (s *JobStore) Save(ctx context.Context, job *jobs.Job) error {
	query := `
		INSERT INTO translation_jobs
			(id, document_id, page, target_language, status, created_at,
			 started_at, completed_at, error_message, worker_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			error_message = EXCLUDED.error_message,
			worker_id = EXCLUDED.worker_id
	`

	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.DocumentID,
		job.Page,
		job.TargetLanguage,
		job.Status,
		job.CreatedAt,
		job.StartedAt,
		job.CompletedAt,
		nullIfEmpty(job.ErrorMessage),
		nullIfEmpty(job.WorkerID),
	)
	if err != nil {
		return fmt.Errorf("failed to save job %s: %w", job.ID, err)
	}

	return nil
}

func (s *JobStore) FindStuck(ctx context.Context, olderThan time.Duration) ([]*jobs.Job, error) {
	query := `
		SELECT id, document_id, page, target_language, status,
		       created_at, started_at, completed_at, error_message, worker_id
		FROM translation_jobs
		WHERE status = 'processing' AND started_at < $1
		ORDER BY started_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return nil, fmt.Errorf("failed to find stuck jobs: %w", err)
	}
	defer rows.Close()

	var stuck []*jobs.Job
	for rows.Next() {
		job, err := s.scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		stuck = append(stuck, job)
	}
	return stuck, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *JobStore) scanJob(row rowScanner) (*jobs.Job, error) {
	job := &jobs.Job{}
	var errorMessage, workerID sql.NullString

	err := row.Scan(
		&job.ID,
		&job.DocumentID,
		&job.Page,
		&job.TargetLanguage,
		&job.Status,
		&job.CreatedAt,
		&job.StartedAt,
		&job.CompletedAt,
		&errorMessage,
		&workerID,
	)
	if err != nil {
		return nil, err
	}

	job.ErrorMessage = errorMessage.String
	job.WorkerID = workerID.String
	return job, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
