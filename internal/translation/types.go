package translation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Origin identifies which tier satisfied a resolution request.
type Origin string

const (
	// OriginOriginal means the page is already in the target language.
	OriginOriginal  Origin = "original"
	OriginCache     Origin = "cache"
	OriginStore     Origin = "store"
	OriginGenerated Origin = "generated"
)

// RequestKey identifies one unit of translation work. Two requests are the
// same work iff their keys are equal.
type RequestKey struct {
	DocumentID     string
	Page           int
	TargetLanguage string
}

// Fingerprint derives the hashed representation of the key used for dedup
// markers and cache lookups. Fields are length-prefixed so that distinct keys
// never alias.
func (k RequestKey) Fingerprint() string {
	h := sha256.New()
	for _, part := range []string{k.DocumentID, strconv.Itoa(k.Page), k.TargetLanguage} {
		fmt.Fprintf(h, "%d:%s;", len(part), part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (k RequestKey) String() string {
	return fmt.Sprintf("%s/p%d/%s", k.DocumentID, k.Page, k.TargetLanguage)
}

// Record is the durable result of one successful translation. Rows are unique
// per (document, page, source language, target language) and are never
// mutated after creation except updated_at bookkeeping.
type Record struct {
	DocumentID     string    `json:"document_id"`
	Page           int       `json:"page"`
	SourceLanguage string    `json:"source_language"`
	TargetLanguage string    `json:"target_language"`
	OriginalText   string    `json:"original_text"`
	TranslatedText string    `json:"translated_text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Resolution is the outcome of running the lookup cascade.
type Resolution struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	Origin         Origin `json:"origin"`
	WasCached      bool   `json:"was_cached"`
}
