package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job tracks the lifecycle of one asynchronous translation attempt. It is
// plain data: transitions happen through the mutator methods below and take
// effect durably only when the caller saves the job through a Repository.
type Job struct {
	ID             string     `json:"id"`
	DocumentID     string     `json:"document_id"`
	Page           int        `json:"page"`
	TargetLanguage string     `json:"target_language"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	WorkerID       string     `json:"worker_id,omitempty"`
}

func New(documentID string, page int, targetLanguage string) *Job {
	return &Job{
		ID:             uuid.NewString(),
		DocumentID:     documentID,
		Page:           page,
		TargetLanguage: targetLanguage,
		Status:         StatusQueued,
		CreatedAt:      time.Now().UTC(),
	}
}

// Terminal reports whether the job reached a final state. No transition
// leaves a terminal state.
func (j *Job) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// MarkProcessing stamps StartedAt and the claiming worker. Re-marking an
// already-processing job is allowed so redelivered work items can be driven
// again by another worker.
func (j *Job) MarkProcessing(workerID string) error {
	if j.Terminal() {
		return fmt.Errorf("job %s is already %s", j.ID, j.Status)
	}
	now := time.Now().UTC()
	j.Status = StatusProcessing
	j.StartedAt = &now
	j.WorkerID = workerID
	return nil
}

func (j *Job) MarkCompleted() error {
	if j.Terminal() {
		return fmt.Errorf("job %s is already %s", j.ID, j.Status)
	}
	now := time.Now().UTC()
	j.Status = StatusCompleted
	if j.StartedAt == nil {
		j.StartedAt = &now
	}
	j.CompletedAt = &now
	return nil
}

func (j *Job) MarkFailed(message string) error {
	if j.Terminal() {
		return fmt.Errorf("job %s is already %s", j.ID, j.Status)
	}
	now := time.Now().UTC()
	j.Status = StatusFailed
	if j.StartedAt == nil {
		j.StartedAt = &now
	}
	j.CompletedAt = &now
	j.ErrorMessage = message
	return nil
}

// Repository persists jobs. Saves are single-row writes scoped to one job's
// primary key; no multi-row transactions are required.
type Repository interface {
	// FindActive returns the job in {queued, processing} for the key, or
	// nil, nil when none exists.
	FindActive(ctx context.Context, documentID string, page int, targetLanguage string) (*Job, error)
	Save(ctx context.Context, job *Job) error
	// FindStuck returns processing jobs whose StartedAt is older than the
	// given age, for the maintenance sweeper.
	FindStuck(ctx context.Context, olderThan time.Duration) ([]*Job, error)
}
