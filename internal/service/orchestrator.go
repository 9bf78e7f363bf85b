package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/josego85/pdf-content-search/internal/jobs"
	"github.com/josego85/pdf-content-search/internal/queue"
	"github.com/josego85/pdf-content-search/internal/translation"
	"github.com/josego85/pdf-content-search/pkg/log"
)

var targetLanguagePattern = regexp.MustCompile(`^[A-Za-z]{2,3}(?:[-_][A-Za-z0-9]{2,8})*$`)

// Orchestrator is the synchronous entry point: it answers immediately from
// the lookup cascade or queues asynchronous work, at most one item in flight
// per translation key.
type Orchestrator struct {
	documents DocumentStore
	extractor TextExtractor
	resolver  Resolver
	jobs      jobs.Repository
	queue     Enqueuer
	dedup     DedupStore

	// languages is the configured set of supported target languages.
	// Empty means any well-formed code is accepted.
	languages map[string]bool
}

func NewOrchestrator(
	documents DocumentStore,
	extractor TextExtractor,
	resolver Resolver,
	jobRepo jobs.Repository,
	enqueuer Enqueuer,
	dedup DedupStore,
	targetLanguages []string,
) *Orchestrator {
	languages := make(map[string]bool, len(targetLanguages))
	for _, lang := range targetLanguages {
		languages[strings.ToLower(lang)] = true
	}
	return &Orchestrator{
		documents: documents,
		extractor: extractor,
		resolver:  resolver,
		jobs:      jobRepo,
		queue:     enqueuer,
		dedup:     dedup,
		languages: languages,
	}
}

// RequestTranslation validates the request, answers from the fast path when
// the cascade already holds a result, and otherwise queues translation work
// unless an identical item is already outstanding.
func (o *Orchestrator) RequestTranslation(ctx context.Context, documentID string, page int, targetLanguage string) (*RequestResult, error) {
	text, err := o.preparePage(ctx, documentID, page, targetLanguage)
	if err != nil {
		return nil, err
	}

	res, err := o.resolver.LookupOnly(ctx, documentID, page, text, targetLanguage)
	if err != nil {
		return nil, err
	}
	if res != nil {
		return &RequestResult{
			Status:         StatusSuccess,
			Translation:    res.Text,
			SourceLanguage: res.SourceLanguage,
			Origin:         res.Origin,
			Cached:         res.WasCached,
		}, nil
	}

	key := translation.RequestKey{DocumentID: documentID, Page: page, TargetLanguage: targetLanguage}
	fingerprint := key.Fingerprint()

	// Check-then-act: two concurrent requests can both pass this check and
	// both enqueue. Accepted as a rare, bounded duplication; the store
	// upsert collapses duplicate results.
	queued, err := o.dedup.IsQueued(ctx, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("check dedup marker for %s: %w", key, err)
	}
	if queued {
		return &RequestResult{Status: StatusQueued, AlreadyQueued: true}, nil
	}

	job := jobs.New(documentID, page, targetLanguage)
	if err := o.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("create job for %s: %w", key, err)
	}

	if err := o.queue.Enqueue(ctx, queue.WorkItem{
		DocumentID:     documentID,
		Page:           page,
		TargetLanguage: targetLanguage,
		OriginalText:   text,
	}); err != nil {
		return nil, fmt.Errorf("enqueue work for %s: %w", key, err)
	}

	if err := o.dedup.MarkQueued(ctx, fingerprint); err != nil {
		// The work is already queued; a missing marker only costs a
		// possible duplicate enqueue later.
		log.Warn("Failed to set dedup marker for %s: %v", key, err)
	}

	log.Info("Queued translation job %s for %s", job.ID, key)
	return &RequestResult{Status: StatusQueued}, nil
}

// CheckStatus re-runs the fast-path cascade as a pure observation.
func (o *Orchestrator) CheckStatus(ctx context.Context, documentID string, page int, targetLanguage string) (*StatusResult, error) {
	text, err := o.preparePage(ctx, documentID, page, targetLanguage)
	if err != nil {
		return nil, err
	}

	res, err := o.resolver.LookupOnly(ctx, documentID, page, text, targetLanguage)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return &StatusResult{Status: StatusProcessing, Ready: false}, nil
	}

	return &StatusResult{
		Status:         StatusSuccess,
		Ready:          true,
		Translation:    res.Text,
		SourceLanguage: res.SourceLanguage,
		Origin:         res.Origin,
		Cached:         res.WasCached,
	}, nil
}

// preparePage runs the shared validation and text extraction of both public
// operations.
func (o *Orchestrator) preparePage(ctx context.Context, documentID string, page int, targetLanguage string) (string, error) {
	if err := o.validate(documentID, page, targetLanguage); err != nil {
		return "", err
	}

	exists, err := o.documents.Exists(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("check document %s: %w", documentID, err)
	}
	if !exists {
		return "", translation.ErrDocumentNotFound
	}

	text, err := o.extractor.ExtractPageText(ctx, documentID, page)
	if err != nil {
		return "", fmt.Errorf("extract text from %s page %d: %w", documentID, page, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", translation.ErrEmptyPage
	}
	return text, nil
}

func (o *Orchestrator) validate(documentID string, page int, targetLanguage string) error {
	if strings.TrimSpace(documentID) == "" {
		return &translation.ValidationError{Field: "documentId", Reason: "must not be empty"}
	}
	if page < 1 {
		return &translation.ValidationError{Field: "page", Reason: "must be a positive integer"}
	}
	if !targetLanguagePattern.MatchString(targetLanguage) {
		return &translation.ValidationError{Field: "targetLanguage", Reason: "must be a language code"}
	}
	if len(o.languages) > 0 && !o.languages[strings.ToLower(targetLanguage)] {
		return &translation.ValidationError{Field: "targetLanguage", Reason: "unsupported language"}
	}
	return nil
}
