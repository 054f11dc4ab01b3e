// Package store persists extraction documents to a vector store. The
// interface is a minimal upsert surface so ingestion does not depend on a
// concrete database.
package store

import (
	"context"
	"sync"
)

// Document is one persisted record.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Store is the persistence surface consumed by ingestion. Upsert replaces
// any existing document with the same ID.
type Store interface {
	Upsert(ctx context.Context, doc Document) error
}

// MemStore is an in-memory Store used in tests and dry runs.
type MemStore struct {
	mu   sync.Mutex
	docs map[string]Document
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string]Document)}
}

// Upsert stores the document, replacing any previous version.
func (m *MemStore) Upsert(_ context.Context, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	return nil
}

// Get returns the stored document and whether it exists.
func (m *MemStore) Get(id string) (Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	return doc, ok
}

// Len returns the number of stored documents.
func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// IDs returns all stored document IDs in unspecified order.
func (m *MemStore) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	return ids
}
