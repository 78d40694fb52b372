package memory

import (
	"context"
	"sync"

	"quiz-deck-service/internal/domain"
)

// DocumentStore is an in-process implementation of community.DocumentStore.
// Edits are serialized by a mutex, so every read-modify-write is atomic.
type DocumentStore struct {
	mu  sync.Mutex
	doc domain.CommunityDeckDocument
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{doc: domain.CommunityDeckDocument{}}
}

func (s *DocumentStore) Get(_ context.Context) (domain.CommunityDeckDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyDocument(s.doc), nil
}

func (s *DocumentStore) Edit(_ context.Context, fn func(domain.CommunityDeckDocument) (domain.CommunityDeckDocument, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(copyDocument(s.doc))
	if err != nil {
		return err
	}
	s.doc = next
	return nil
}

// copyDocument hands each caller its own map so a failed edit or a mutating
// reader can never corrupt committed state.
func copyDocument(doc domain.CommunityDeckDocument) domain.CommunityDeckDocument {
	out := make(domain.CommunityDeckDocument, len(doc))
	for key, record := range doc {
		out[key] = record
	}
	return out
}
