package community

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"quiz-deck-service/internal/domain"
	"quiz-deck-service/internal/infra/memory"
)

const sampleSubmission = "FULL NAME: Test Deck\r\n" +
	"SHORT NAME: testdeck\r\n" +
	"INSTRUCTIONS: Do it\r\n" +
	"--QuestionsStart--\r\n" +
	"犬,dog,canine"

type fakeFetcher struct {
	pastes map[string]string
	calls  int
}

func (f *fakeFetcher) Fetch(_ context.Context, uri string) (string, error) {
	f.calls++
	if text, ok := f.pastes[uri]; ok {
		return text, nil
	}
	return "", errors.New("404")
}

func newTestStore(pastes map[string]string) (*Store, *memory.DocumentStore, *fakeFetcher) {
	docs := memory.NewDocumentStore()
	fetcher := &fakeFetcher{pastes: pastes}
	store := NewStore(docs, fetcher, zap.NewNop())
	return store, docs, fetcher
}

func TestResolveNewPasteRegistersTriplet(t *testing.T) {
	ctx := context.Background()
	uri := "https://pastebin.com/raw/abc123"
	store, docs, _ := newTestStore(map[string]string{uri: sampleSubmission})

	deck, err := store.Resolve(ctx, "pastebin.com/abc123", "user-1", "Alice")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if deck == nil {
		t.Fatal("expected a deck")
	}
	if deck.Author != "Alice" || deck.UniqueID == "" {
		t.Fatalf("unexpected deck identity: %+v", deck)
	}
	if deck.Description == "" {
		t.Fatal("expected submitted deck description")
	}

	doc, _ := docs.Get(ctx)
	if len(doc) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(doc))
	}
	for _, key := range []string{uri, deck.UniqueID, "testdeck"} {
		record, ok := doc[key]
		if !ok {
			t.Fatalf("missing key %q", key)
		}
		if record.UniqueID != deck.UniqueID || record.AuthorID != "user-1" || record.AuthorName != "Alice" {
			t.Fatalf("wrong record under %q: %+v", key, record)
		}
		if record.URI != uri {
			t.Fatalf("wrong uri under %q: %+v", key, record)
		}
	}
}

func TestResolveRawPasteReference(t *testing.T) {
	ctx := context.Background()
	uri := "https://pastebin.com/raw/xyz789"
	store, _, fetcher := newTestStore(map[string]string{uri: sampleSubmission})

	// The raw form of the URL derives the same canonical URI.
	if _, err := store.Resolve(ctx, "pastebin.com/raw/xyz789", "user-1", "Alice"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected one fetch, got %d", fetcher.calls)
	}
}

func TestResolveByShortNameUsesStoredRecord(t *testing.T) {
	ctx := context.Background()
	uri := "https://pastebin.com/raw/abc123"
	store, _, fetcher := newTestStore(map[string]string{uri: sampleSubmission})

	first, err := store.Resolve(ctx, "pastebin.com/abc123", "user-1", "Alice")
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}

	// Later resolutions by short name or unique id reuse the record, with no
	// identity required.
	second, err := store.Resolve(ctx, "testdeck", "", "")
	if err != nil {
		t.Fatalf("resolve by short name failed: %v", err)
	}
	if second.UniqueID != first.UniqueID || second.Author != "Alice" {
		t.Fatalf("record identity not reused: %+v vs %+v", second, first)
	}

	third, err := store.Resolve(ctx, first.UniqueID, "", "")
	if err != nil {
		t.Fatalf("resolve by unique id failed: %v", err)
	}
	if third.UniqueID != first.UniqueID {
		t.Fatalf("unique id lookup returned wrong deck: %+v", third)
	}
	if fetcher.calls != 3 {
		t.Fatalf("expected a fetch per resolve, got %d", fetcher.calls)
	}
}

func TestResolveUnknownNameIsAbsent(t *testing.T) {
	store, _, fetcher := newTestStore(nil)
	deck, err := store.Resolve(context.Background(), "nosuchdeck", "user-1", "Alice")
	if err != nil || deck != nil {
		t.Fatalf("expected absent, got deck=%v err=%v", deck, err)
	}
	if fetcher.calls != 0 {
		t.Fatal("absent lookups must not fetch")
	}
}

func TestResolveNewPasteWithoutIdentity(t *testing.T) {
	uri := "https://pastebin.com/raw/abc123"
	store, docs, _ := newTestStore(map[string]string{uri: sampleSubmission})

	_, err := store.Resolve(context.Background(), "pastebin.com/abc123", "", "")
	if !errors.Is(err, domain.ErrDashboardRequired) {
		t.Fatalf("expected dashboard redirect, got %v", err)
	}
	doc, _ := docs.Get(context.Background())
	if len(doc) != 0 {
		t.Fatal("no record may be written without an identity")
	}
}

func TestResolveFetchFailure(t *testing.T) {
	store, _, _ := newTestStore(nil)
	_, err := store.Resolve(context.Background(), "pastebin.com/gone", "user-1", "Alice")
	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestResolveShortNameConflict(t *testing.T) {
	ctx := context.Background()
	first := "https://pastebin.com/raw/abc123"
	second := "https://pastebin.com/raw/def456"
	store, docs, _ := newTestStore(map[string]string{first: sampleSubmission, second: sampleSubmission})

	if _, err := store.Resolve(ctx, "pastebin.com/abc123", "user-1", "Alice"); err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	_, err := store.Resolve(ctx, "pastebin.com/def456", "user-2", "Bob")
	if !errors.Is(err, domain.ErrShortNameTaken) {
		t.Fatalf("expected short name conflict, got %v", err)
	}

	doc, _ := docs.Get(ctx)
	if len(doc) != 3 {
		t.Fatalf("conflicting submission must not write records, got %d keys", len(doc))
	}
}

func TestQuotaBlocksTheNextSubmission(t *testing.T) {
	ctx := context.Background()
	uri := "https://pastebin.com/raw/onemore"
	store, docs, _ := newTestStore(map[string]string{uri: sampleSubmission})

	// Seed the author with exactly the cap of owned records.
	err := docs.Edit(ctx, func(doc domain.CommunityDeckDocument) (domain.CommunityDeckDocument, error) {
		for i := 0; i < MaxDecksPerAuthor; i++ {
			record := domain.CommunityDeckRecord{
				URI:        fmt.Sprintf("https://pastebin.com/raw/seed%d", i),
				AuthorID:   "user-1",
				AuthorName: "Alice",
				UniqueID:   fmt.Sprintf("seed-id-%d", i),
			}
			doc[record.URI] = record
			doc[record.UniqueID] = record
			doc[fmt.Sprintf("seeddeck%d", i)] = record
		}
		return doc, nil
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	_, err = store.Resolve(ctx, "pastebin.com/onemore", "user-1", "Alice")
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}

	doc, _ := docs.Get(ctx)
	if len(doc) != MaxDecksPerAuthor*3 {
		t.Fatalf("rejected submission must not write records, got %d keys", len(doc))
	}

	// A different author is unaffected.
	if _, err := store.Resolve(ctx, "pastebin.com/onemore", "user-2", "Bob"); err != nil {
		t.Fatalf("other author should not be blocked: %v", err)
	}
}

func TestQuotaCountsDistinctDecks(t *testing.T) {
	doc := domain.CommunityDeckDocument{}
	// A record that lost one of its three keys still counts once.
	record := domain.CommunityDeckRecord{URI: "u", AuthorID: "user-1", UniqueID: "id-1"}
	doc["u"] = record
	doc["id-1"] = record
	if got := countAuthorDecks(doc, "user-1"); got != 1 {
		t.Fatalf("expected 1 deck, got %d", got)
	}
}

func TestDeleteRemovesAllThreeKeys(t *testing.T) {
	ctx := context.Background()
	uri := "https://pastebin.com/raw/abc123"
	store, docs, _ := newTestStore(map[string]string{uri: sampleSubmission})

	deck, err := store.Resolve(ctx, "pastebin.com/abc123", "user-1", "Alice")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	for _, key := range []string{uri, deck.UniqueID, "testdeck"} {
		t.Run("by "+key, func(t *testing.T) {
			// Re-register for each subtest round after the first delete.
			if _, err := store.Resolve(ctx, "pastebin.com/abc123", "user-1", "Alice"); err != nil {
				t.Fatalf("re-resolve failed: %v", err)
			}
			doc, _ := docs.Get(ctx)
			searchKey := key
			if key == deck.UniqueID {
				// Unique ids are minted per registration; find the live one.
				searchKey = doc[uri].UniqueID
			}

			status, err := store.Delete(ctx, searchKey, "user-1")
			if err != nil {
				t.Fatalf("delete failed: %v", err)
			}
			if status != domain.DeletionDeleted {
				t.Fatalf("expected deleted, got %v", status)
			}

			doc, _ = docs.Get(ctx)
			if len(doc) != 0 {
				t.Fatalf("expected all keys gone, got %d", len(doc))
			}
		})
	}
}

func TestDeleteNotFound(t *testing.T) {
	store, _, _ := newTestStore(nil)
	status, err := store.Delete(context.Background(), "missing", "user-1")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if status != domain.DeletionNotFound {
		t.Fatalf("expected not found, got %v", status)
	}
}

func TestDeleteNotOwner(t *testing.T) {
	ctx := context.Background()
	uri := "https://pastebin.com/raw/abc123"
	store, docs, _ := newTestStore(map[string]string{uri: sampleSubmission})

	if _, err := store.Resolve(ctx, "pastebin.com/abc123", "user-1", "Alice"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	status, err := store.Delete(ctx, "testdeck", "user-2")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if status != domain.DeletionNotOwner {
		t.Fatalf("expected not owner, got %v", status)
	}

	doc, _ := docs.Get(ctx)
	if len(doc) != 3 {
		t.Fatal("record must survive a non-owner delete")
	}
}

func TestSetMaxPerAuthor(t *testing.T) {
	ctx := context.Background()
	first := "https://pastebin.com/raw/abc123"
	second := "https://pastebin.com/raw/def456"
	otherSubmission := "FULL NAME: Other\r\nSHORT NAME: other\r\nINSTRUCTIONS: Go\r\n--QuestionsStart--\r\n猫,cat"
	store, _, _ := newTestStore(map[string]string{first: sampleSubmission, second: otherSubmission})
	store.SetMaxPerAuthor(1)

	if _, err := store.Resolve(ctx, "pastebin.com/abc123", "user-1", "Alice"); err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	_, err := store.Resolve(ctx, "pastebin.com/def456", "user-1", "Alice")
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
}
