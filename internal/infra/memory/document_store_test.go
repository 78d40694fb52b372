package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"quiz-deck-service/internal/domain"
)

func TestEditCommitsNewState(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()

	err := store.Edit(ctx, func(doc domain.CommunityDeckDocument) (domain.CommunityDeckDocument, error) {
		doc["key"] = domain.CommunityDeckRecord{UniqueID: "id-1", AuthorID: "u1"}
		return doc, nil
	})
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	doc, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if doc["key"].UniqueID != "id-1" {
		t.Fatalf("edit not committed: %+v", doc)
	}
}

func TestEditErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()
	boom := errors.New("boom")

	err := store.Edit(ctx, func(doc domain.CommunityDeckDocument) (domain.CommunityDeckDocument, error) {
		doc["key"] = domain.CommunityDeckRecord{UniqueID: "id-1"}
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected closure error, got %v", err)
	}

	doc, _ := store.Get(ctx)
	if len(doc) != 0 {
		t.Fatal("failed edit must not be visible")
	}
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()
	_ = store.Edit(ctx, func(doc domain.CommunityDeckDocument) (domain.CommunityDeckDocument, error) {
		doc["key"] = domain.CommunityDeckRecord{UniqueID: "id-1"}
		return doc, nil
	})

	doc, _ := store.Get(ctx)
	delete(doc, "key")

	again, _ := store.Get(ctx)
	if _, ok := again["key"]; !ok {
		t.Fatal("mutating a Get result leaked into the store")
	}
}

func TestConcurrentEditsAllCommit(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Edit(ctx, func(doc domain.CommunityDeckDocument) (domain.CommunityDeckDocument, error) {
				doc[fmt.Sprintf("key-%d", i)] = domain.CommunityDeckRecord{UniqueID: fmt.Sprintf("id-%d", i)}
				return doc, nil
			})
		}(i)
	}
	wg.Wait()

	doc, _ := store.Get(ctx)
	if len(doc) != 50 {
		t.Fatalf("expected 50 records, got %d", len(doc))
	}
}
