package memory

import (
	"context"
	"sync"

	"quiz-deck-service/internal/customdeck"
)

// RecordStore is an in-memory implementation of customdeck.RecordFinder,
// useful when running without a database and in tests.
type RecordStore struct {
	mu   sync.RWMutex
	byID map[string]customdeck.Record
}

func NewRecordStore() *RecordStore {
	return &RecordStore{byID: make(map[string]customdeck.Record)}
}

// Put registers or replaces a custom deck record.
func (s *RecordStore) Put(record customdeck.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[record.UniqueID] = record
}

func (s *RecordStore) FindByUniqueID(_ context.Context, uniqueID string) (*customdeck.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.byID[uniqueID]; ok {
		return &record, nil
	}
	return nil, nil
}
