package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josego85/pdf-content-search/internal/jobs"
	"github.com/josego85/pdf-content-search/internal/translation"
)

// Full request/worker/poll round trip: first request queues, a duplicate
// request reports already queued, the worker completes the job, and a status
// poll then observes the persisted translation without triggering new work.
func TestTranslationPipeline_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.orchestrator.RequestTranslation(ctx, "report.pdf", 3, "es")
	require.NoError(t, err)
	require.Equal(t, StatusQueued, result.Status)

	dup, err := env.orchestrator.RequestTranslation(ctx, "report.pdf", 3, "es")
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, dup.Status)
	assert.True(t, dup.AlreadyQueued)

	status, err := env.orchestrator.CheckStatus(ctx, "report.pdf", 3, "es")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, status.Status)
	assert.False(t, status.Ready)

	items := env.queue.drain()
	require.Len(t, items, 1)
	require.NoError(t, env.worker.Handle(ctx, items[0]))

	status, err = env.orchestrator.CheckStatus(ctx, "report.pdf", 3, "es")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, status.Status)
	assert.True(t, status.Ready)
	assert.Equal(t, "hola mundo", status.Translation)
	assert.Equal(t, "en", status.SourceLanguage)

	// The key is free again: a fresh request is served from the cascade.
	again, err := env.orchestrator.RequestTranslation(ctx, "report.pdf", 3, "es")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, again.Status)
	assert.Equal(t, 1, env.translator.callCount())
	assert.Zero(t, env.queue.size())
}

func TestSweeper_RequeuesStuckJobs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	job := jobs.New("report.pdf", 3, "es")
	require.NoError(t, job.MarkProcessing("worker-gone"))
	started := time.Now().UTC().Add(-2 * time.Hour)
	job.StartedAt = &started
	require.NoError(t, env.jobs.Save(ctx, job))

	sweeper := NewSweeper(env.jobs, env.extractor, env.queue, env.dedup, time.Hour)
	require.NoError(t, sweeper.Run(ctx))

	items := env.queue.drain()
	require.Len(t, items, 1)
	assert.Equal(t, "report.pdf", items[0].DocumentID)
	assert.Equal(t, "hello world", items[0].OriginalText)

	fp := translation.RequestKey{DocumentID: "report.pdf", Page: 3, TargetLanguage: "es"}.Fingerprint()
	queued, err := env.dedup.IsQueued(ctx, fp)
	require.NoError(t, err)
	assert.True(t, queued, "requeue must refresh the dedup marker")

	// The requeued item is processed like any other delivery.
	require.NoError(t, env.worker.Handle(ctx, items[0]))
	saved := env.jobs.get(job.ID)
	require.NotNil(t, saved)
	assert.Equal(t, jobs.StatusCompleted, saved.Status)
}

func TestSweeper_FailsJobWhenTextGone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	job := jobs.New("gone.pdf", 1, "es")
	require.NoError(t, job.MarkProcessing("worker-gone"))
	started := time.Now().UTC().Add(-2 * time.Hour)
	job.StartedAt = &started
	require.NoError(t, env.jobs.Save(ctx, job))

	sweeper := NewSweeper(env.jobs, env.extractor, env.queue, env.dedup, time.Hour)
	require.NoError(t, sweeper.Run(ctx))

	assert.Zero(t, env.queue.size())
	saved := env.jobs.get(job.ID)
	require.NotNil(t, saved)
	assert.Equal(t, jobs.StatusFailed, saved.Status)
	assert.Contains(t, saved.ErrorMessage, "page text unavailable")
}
