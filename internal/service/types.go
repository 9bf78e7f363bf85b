package service

import (
	"context"

	"github.com/josego85/pdf-content-search/internal/queue"
	"github.com/josego85/pdf-content-search/internal/translation"
)

// Status reported to the HTTP layer.
type Status string

const (
	StatusSuccess    Status = "success"
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
)

// RequestResult is the outcome of a synchronous translation request.
type RequestResult struct {
	Status         Status             `json:"status"`
	Translation    string             `json:"translation,omitempty"`
	SourceLanguage string             `json:"source_language,omitempty"`
	Origin         translation.Origin `json:"origin,omitempty"`
	Cached         bool               `json:"cached"`
	AlreadyQueued  bool               `json:"already_queued,omitempty"`
}

// StatusResult is the outcome of a polling check. Polling never triggers
// translation work.
type StatusResult struct {
	Status         Status             `json:"status"`
	Ready          bool               `json:"ready"`
	Translation    string             `json:"translation,omitempty"`
	SourceLanguage string             `json:"source_language,omitempty"`
	Origin         translation.Origin `json:"origin,omitempty"`
	Cached         bool               `json:"cached"`
}

// TextExtractor pulls the text of one PDF page. An empty string means the
// page has nothing extractable.
type TextExtractor interface {
	ExtractPageText(ctx context.Context, documentID string, page int) (string, error)
}

// DocumentStore answers whether a document is known to the catalogue.
type DocumentStore interface {
	Exists(ctx context.Context, documentID string) (bool, error)
}

// DedupStore tracks which translation keys already have a work item
// outstanding.
type DedupStore interface {
	IsQueued(ctx context.Context, key string) (bool, error)
	MarkQueued(ctx context.Context, key string) error
	MarkProcessed(ctx context.Context, key string) error
}

// Enqueuer hands work items to the queue transport.
type Enqueuer interface {
	Enqueue(ctx context.Context, item queue.WorkItem) error
}

// Resolver runs the tiered lookup cascade.
type Resolver interface {
	Resolve(ctx context.Context, documentID string, page int, originalText, targetLanguage string) (*translation.Resolution, error)
	LookupOnly(ctx context.Context, documentID string, page int, originalText, targetLanguage string) (*translation.Resolution, error)
}
