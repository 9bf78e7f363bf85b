package translation

import (
	"context"
	"fmt"
	"time"

	"github.com/josego85/pdf-content-search/pkg/log"
)

// DefaultCacheTTL is how long store hits and fresh translations stay in the
// ephemeral cache.
const DefaultCacheTTL = 7 * 24 * time.Hour

// Detector guesses the language of a text. Detection is best-effort and
// non-authoritative; implementations sample only a prefix of the text.
type Detector interface {
	Detect(text string) (language string, confidence float64)
}

// Translator converts text into the target language. Implementations must
// enforce a bounded timeout and surface I/O failures as TransientError.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// Cache is the ephemeral key-value tier in front of the durable store. It is
// write-through only, never the sole source of truth.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Store is the durable translation record tier.
type Store interface {
	// FindOne returns nil, nil when no record exists for the key.
	FindOne(ctx context.Context, documentID string, page int, targetLanguage string) (*Record, error)
	// Upsert persists a record, collapsing duplicates on the unique key
	// (document, page, source language, target language).
	Upsert(ctx context.Context, record *Record) error
}

// Resolver runs the tiered lookup cascade: same-language short-circuit,
// ephemeral cache, durable store, then AI generation.
type Resolver struct {
	detector   Detector
	translator Translator
	cache      Cache
	store      Store
	cacheTTL   time.Duration
}

func NewResolver(detector Detector, translator Translator, cache Cache, store Store, cacheTTL time.Duration) *Resolver {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Resolver{
		detector:   detector,
		translator: translator,
		cache:      cache,
		store:      store,
		cacheTTL:   cacheTTL,
	}
}

// Resolve runs the full cascade. On a full miss it invokes the translator,
// persists the result and populates the cache. Translator and store errors
// propagate; this method does not catch-and-degrade.
func (r *Resolver) Resolve(ctx context.Context, documentID string, page int, originalText, targetLanguage string) (*Resolution, error) {
	res, sourceLanguage, err := r.lookup(ctx, documentID, page, originalText, targetLanguage)
	if err != nil {
		return nil, err
	}
	if res != nil {
		return res, nil
	}

	translated, err := r.translator.Translate(ctx, originalText, targetLanguage)
	if err != nil {
		return nil, fmt.Errorf("translate %s page %d: %w", documentID, page, err)
	}

	record := &Record{
		DocumentID:     documentID,
		Page:           page,
		SourceLanguage: sourceLanguage,
		TargetLanguage: targetLanguage,
		OriginalText:   originalText,
		TranslatedText: translated,
	}
	if err := r.store.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("persist translation for %s page %d: %w", documentID, page, err)
	}
	r.cachePut(ctx, documentID, page, targetLanguage, translated)

	return &Resolution{
		Text:           translated,
		SourceLanguage: sourceLanguage,
		Origin:         OriginGenerated,
	}, nil
}

// LookupOnly runs the cascade without the AI tier and returns nil on a full
// miss. Used by the synchronous request and polling paths so they never
// trigger generation work.
func (r *Resolver) LookupOnly(ctx context.Context, documentID string, page int, originalText, targetLanguage string) (*Resolution, error) {
	res, _, err := r.lookup(ctx, documentID, page, originalText, targetLanguage)
	return res, err
}

func (r *Resolver) lookup(ctx context.Context, documentID string, page int, originalText, targetLanguage string) (*Resolution, string, error) {
	sourceLanguage, _ := r.detector.Detect(originalText)

	if sourceLanguage != "" && sourceLanguage == targetLanguage {
		return &Resolution{
			Text:           originalText,
			SourceLanguage: sourceLanguage,
			Origin:         OriginOriginal,
		}, sourceLanguage, nil
	}

	key := RequestKey{DocumentID: documentID, Page: page, TargetLanguage: targetLanguage}.Fingerprint()

	cached, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		// The cache is an accelerator, not a source of truth. Fall through
		// to the durable store.
		log.Warn("Cache lookup failed for %s page %d: %v", documentID, page, err)
	}
	if ok {
		return &Resolution{
			Text:           cached,
			SourceLanguage: sourceLanguage,
			Origin:         OriginCache,
			WasCached:      true,
		}, sourceLanguage, nil
	}

	record, err := r.store.FindOne(ctx, documentID, page, targetLanguage)
	if err != nil {
		return nil, sourceLanguage, fmt.Errorf("query translation store: %w", err)
	}
	if record != nil {
		r.cachePut(ctx, documentID, page, targetLanguage, record.TranslatedText)
		return &Resolution{
			Text:           record.TranslatedText,
			SourceLanguage: record.SourceLanguage,
			Origin:         OriginStore,
		}, sourceLanguage, nil
	}

	return nil, sourceLanguage, nil
}

func (r *Resolver) cachePut(ctx context.Context, documentID string, page int, targetLanguage, text string) {
	key := RequestKey{DocumentID: documentID, Page: page, TargetLanguage: targetLanguage}.Fingerprint()
	if err := r.cache.Set(ctx, key, text, r.cacheTTL); err != nil {
		log.Warn("Failed to cache translation for %s page %d: %v", documentID, page, err)
	}
}
