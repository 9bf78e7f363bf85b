package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/josego85/pdf-content-search/internal/jobs"
	"github.com/josego85/pdf-content-search/internal/queue"
	"github.com/josego85/pdf-content-search/internal/translation"
)

type fakeDocuments struct {
	known map[string]bool
}

func (d *fakeDocuments) Exists(_ context.Context, documentID string) (bool, error) {
	return d.known[documentID], nil
}

type fakeExtractor struct {
	mu    sync.Mutex
	pages map[string]string
	err   error
}

func pageKey(documentID string, page int) string {
	return fmt.Sprintf("%s#%d", documentID, page)
}

func (e *fakeExtractor) ExtractPageText(_ context.Context, documentID string, page int) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return "", e.err
	}
	return e.pages[pageKey(documentID, page)], nil
}

type memQueue struct {
	mu    sync.Mutex
	items []queue.WorkItem
	err   error
}

func (q *memQueue) Enqueue(_ context.Context, item queue.WorkItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.items = append(q.items, item)
	return nil
}

func (q *memQueue) drain() []queue.WorkItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

func (q *memQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

type memJobs struct {
	mu   sync.Mutex
	byID map[string]*jobs.Job
}

func newMemJobs() *memJobs {
	return &memJobs{byID: make(map[string]*jobs.Job)}
}

func (r *memJobs) FindActive(_ context.Context, documentID string, page int, targetLanguage string) (*jobs.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, job := range r.byID {
		if job.DocumentID == documentID && job.Page == page && job.TargetLanguage == targetLanguage && !job.Terminal() {
			tmp := *job
			return &tmp, nil
		}
	}
	return nil, nil
}

func (r *memJobs) Save(_ context.Context, job *jobs.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tmp := *job
	r.byID[job.ID] = &tmp
	return nil
}

func (r *memJobs) FindStuck(_ context.Context, olderThan time.Duration) ([]*jobs.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().UTC().Add(-olderThan)
	var stuck []*jobs.Job
	for _, job := range r.byID {
		if job.Status == jobs.StatusProcessing && job.StartedAt != nil && job.StartedAt.Before(cutoff) {
			tmp := *job
			stuck = append(stuck, &tmp)
		}
	}
	return stuck, nil
}

func (r *memJobs) get(id string) *jobs.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.byID[id]; ok {
		tmp := *job
		return &tmp
	}
	return nil
}

func (r *memJobs) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type recordStore struct {
	mu      sync.Mutex
	records map[string]*translation.Record
}

func newRecordStore() *recordStore {
	return &recordStore{records: make(map[string]*translation.Record)}
}

func (s *recordStore) FindOne(_ context.Context, documentID string, page int, targetLanguage string) (*translation.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.DocumentID == documentID && rec.Page == page && rec.TargetLanguage == targetLanguage {
			tmp := *rec
			return &tmp, nil
		}
	}
	return nil, nil
}

func (s *recordStore) Upsert(_ context.Context, record *translation.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%s|%d|%s|%s", record.DocumentID, record.Page, record.SourceLanguage, record.TargetLanguage)
	tmp := *record
	s.records[key] = &tmp
	return nil
}

func (s *recordStore) rowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type stubDetector struct {
	language string
}

func (d *stubDetector) Detect(string) (string, float64) {
	return d.language, 0.95
}

type stubTranslator struct {
	mu     sync.Mutex
	result string
	err    error
	calls  int
}

func (t *stubTranslator) Translate(_ context.Context, _, _ string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if t.err != nil {
		return "", t.err
	}
	return t.result, nil
}

func (t *stubTranslator) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}
