package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/josego85/pdf-content-search/internal/translation"
)

// TranslationStore persists translation records. Writes are upserts on the
// unique (document, page, source language, target language) key, so duplicate
// worker runs collapse into one row.
type TranslationStore struct {
	db *DB
}

func NewTranslationStore(db *DB) *TranslationStore {
	return &TranslationStore{db: db}
}

func (s *TranslationStore) FindOne(ctx context.Context, documentID string, page int, targetLanguage string) (*translation.Record, error) {
	record := &translation.Record{}

	query := `
		SELECT document_id, page, source_language, target_language,
		       original_text, translated_text, created_at, updated_at
		FROM translations
		WHERE document_id = $1 AND page = $2 AND target_language = $3
		ORDER BY updated_at DESC
		LIMIT 1
	`

	err := s.db.QueryRowContext(ctx, query, documentID, page, targetLanguage).Scan(
		&record.DocumentID,
		&record.Page,
		&record.SourceLanguage,
		&record.TargetLanguage,
		&record.OriginalText,
		&record.TranslatedText,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get translation: %w", err)
	}

	return record, nil
}

func (s *TranslationStore) Upsert(ctx context.Context, record *translation.Record) error {
	query := `
		INSERT INTO translations
			(document_id, page, source_language, target_language, original_text, translated_text)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (document_id, page, source_language, target_language)
		DO UPDATE SET updated_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query,
		record.DocumentID,
		record.Page,
		record.SourceLanguage,
		record.TargetLanguage,
		record.OriginalText,
		record.TranslatedText,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert translation: %w", err)
	}

	return nil
}
