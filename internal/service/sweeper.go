package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/josego85/pdf-content-search/internal/jobs"
	"github.com/josego85/pdf-content-search/internal/queue"
	"github.com/josego85/pdf-content-search/internal/translation"
	"github.com/josego85/pdf-content-search/pkg/log"
)

// DefaultStuckAfter is how long a job may sit in processing before the
// sweeper considers its worker gone.
const DefaultStuckAfter = time.Hour

// Sweeper requeues jobs whose worker died mid-processing. The dedup TTL has
// expired such markers by then, so the re-enqueue also refreshes the marker
// to keep new duplicate requests out.
type Sweeper struct {
	jobs       jobs.Repository
	extractor  TextExtractor
	queue      Enqueuer
	dedup      DedupStore
	stuckAfter time.Duration
}

func NewSweeper(jobRepo jobs.Repository, extractor TextExtractor, enqueuer Enqueuer, dedup DedupStore, stuckAfter time.Duration) *Sweeper {
	if stuckAfter <= 0 {
		stuckAfter = DefaultStuckAfter
	}
	return &Sweeper{
		jobs:       jobRepo,
		extractor:  extractor,
		queue:      enqueuer,
		dedup:      dedup,
		stuckAfter: stuckAfter,
	}
}

// Schedule registers the sweep on the given cron runner.
func (s *Sweeper) Schedule(c *cron.Cron, expr string) error {
	_, err := c.AddFunc(expr, func() {
		if err := s.Run(context.Background()); err != nil {
			log.Error("Stuck-job sweep failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule stuck-job sweep: %w", err)
	}
	return nil
}

// Run re-enqueues every stuck job once. Jobs whose page text is no longer
// extractable are failed instead of requeued.
func (s *Sweeper) Run(ctx context.Context) error {
	stuck, err := s.jobs.FindStuck(ctx, s.stuckAfter)
	if err != nil {
		return fmt.Errorf("find stuck jobs: %w", err)
	}
	if len(stuck) == 0 {
		return nil
	}

	log.Warn("Requeueing %d stuck translation job(s)", len(stuck))

	for _, job := range stuck {
		if err := s.requeue(ctx, job); err != nil {
			log.Error("Failed to requeue job %s: %v", job.ID, err)
		}
	}
	return nil
}

func (s *Sweeper) requeue(ctx context.Context, job *jobs.Job) error {
	key := translation.RequestKey{
		DocumentID:     job.DocumentID,
		Page:           job.Page,
		TargetLanguage: job.TargetLanguage,
	}

	text, err := s.extractor.ExtractPageText(ctx, job.DocumentID, job.Page)
	if err != nil || strings.TrimSpace(text) == "" {
		reason := "page text unavailable on requeue"
		if err != nil {
			reason = fmt.Sprintf("%s: %v", reason, err)
		}
		if markErr := job.MarkFailed(reason); markErr != nil {
			return markErr
		}
		return s.jobs.Save(ctx, job)
	}

	if err := s.queue.Enqueue(ctx, queue.WorkItem{
		DocumentID:     job.DocumentID,
		Page:           job.Page,
		TargetLanguage: job.TargetLanguage,
		OriginalText:   text,
	}); err != nil {
		return err
	}

	if err := s.dedup.MarkQueued(ctx, key.Fingerprint()); err != nil {
		log.Warn("Failed to refresh dedup marker for %s: %v", key, err)
	}
	return nil
}
