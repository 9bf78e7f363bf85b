package store

import (
	"context"
	"fmt"
)

// DocumentStore reads the document catalogue owned by the indexing and
// search subsystem. This package never writes to it.
type DocumentStore struct {
	db *DB
}

func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) Exists(ctx context.Context, documentID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM documents WHERE id = $1)`, documentID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check document %s: %w", documentID, err)
	}
	return exists, nil
}
