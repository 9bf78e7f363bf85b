package service

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/josego85/pdf-content-search/internal/jobs"
	"github.com/josego85/pdf-content-search/internal/queue"
	"github.com/josego85/pdf-content-search/internal/translation"
	"github.com/josego85/pdf-content-search/pkg/log"
)

// Worker drives one queued work item to a terminal job state. Deliveries are
// at-least-once, so every effect here is safe to repeat.
type Worker struct {
	id       string
	resolver Resolver
	jobs     jobs.Repository
	dedup    DedupStore
}

func NewWorker(resolver Resolver, jobRepo jobs.Repository, dedup DedupStore) *Worker {
	return &Worker{
		id:       workerID(),
		resolver: resolver,
		jobs:     jobRepo,
		dedup:    dedup,
	}
}

func workerID() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "worker"
	}
	return fmt.Sprintf("%s-%s", hostname, uuid.NewString()[:8])
}

// ID returns the identifier stamped on jobs this worker claims.
func (w *Worker) ID() string { return w.id }

// Handle processes one work item: find or create the job, mark it
// processing, run the full cascade, then finalize. The dedup marker is
// cleared on every exit path so a later request can retry after a failure.
// Resolution errors are returned to the consumer so the transport's retry
// policy still sees them.
func (w *Worker) Handle(ctx context.Context, item queue.WorkItem) error {
	key := translation.RequestKey{
		DocumentID:     item.DocumentID,
		Page:           item.Page,
		TargetLanguage: item.TargetLanguage,
	}

	defer func() {
		if err := w.dedup.MarkProcessed(ctx, key.Fingerprint()); err != nil {
			log.Error("Failed to clear dedup marker for %s: %v", key, err)
		}
	}()

	job, err := w.jobs.FindActive(ctx, item.DocumentID, item.Page, item.TargetLanguage)
	if err != nil {
		return fmt.Errorf("find active job for %s: %w", key, err)
	}
	if job == nil {
		// The request path normally creates the job; cover redeliveries
		// and items enqueued by other producers.
		job = jobs.New(item.DocumentID, item.Page, item.TargetLanguage)
		if err := w.jobs.Save(ctx, job); err != nil {
			return fmt.Errorf("create job for %s: %w", key, err)
		}
	}

	if err := job.MarkProcessing(w.id); err != nil {
		return fmt.Errorf("claim job %s: %w", job.ID, err)
	}
	if err := w.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}

	res, resolveErr := w.resolver.Resolve(ctx, item.DocumentID, item.Page, item.OriginalText, item.TargetLanguage)
	if resolveErr != nil {
		if err := job.MarkFailed(resolveErr.Error()); err != nil {
			log.Error("Cannot mark job %s failed: %v", job.ID, err)
		} else if err := w.jobs.Save(ctx, job); err != nil {
			log.Error("Failed to persist failed job %s: %v", job.ID, err)
		}
		return resolveErr
	}

	if err := job.MarkCompleted(); err != nil {
		return fmt.Errorf("complete job %s: %w", job.ID, err)
	}
	if err := w.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("save completed job %s: %w", job.ID, err)
	}

	log.Info("Completed translation for %s (origin=%s)", key, res.Origin)
	return nil
}
