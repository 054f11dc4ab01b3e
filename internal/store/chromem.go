package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/philippgille/chromem-go"
)

// ChromemStore is a Store backed by a persistent chromem-go database.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	mu         sync.Mutex // chromem collections are not safe for concurrent writes
}

// NewChromemStore opens (or creates) a persistent chromem-go database at
// path and the named collection inside it. embed may be nil, in which case
// chromem's default embedding function is used.
func NewChromemStore(path, collectionName string, embed chromem.EmbeddingFunc) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector db at %s: %w", path, err)
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", collectionName, err)
	}

	return &ChromemStore{db: db, collection: collection}, nil
}

// Upsert adds or replaces a document in the collection.
func (s *ChromemStore) Upsert(ctx context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.collection.AddDocument(ctx, chromem.Document{
		ID:       doc.ID,
		Content:  doc.Content,
		Metadata: doc.Metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert document %s: %w", doc.ID, err)
	}
	return nil
}

// Count returns the number of documents in the collection.
func (s *ChromemStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection.Count()
}
