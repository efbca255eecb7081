package memory

import (
	"sort"
	"sync"

	"orgopivy/internal/domain"
)

// Store is an in-memory index used by the interactive CLI and tests.
type Store struct {
	mu   sync.RWMutex
	docs map[string]domain.IndexedDocument
}

func NewStore() *Store {
	return &Store{docs: make(map[string]domain.IndexedDocument)}
}

func (s *Store) Put(doc domain.IndexedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.StoredName] = doc
	return nil
}

func (s *Store) All() ([]domain.IndexedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	docs := make([]domain.IndexedDocument, 0, len(names))
	for _, name := range names {
		docs = append(docs, s.docs[name])
	}
	return docs, nil
}

func (s *Store) Delete(storedName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, storedName)
	return nil
}
