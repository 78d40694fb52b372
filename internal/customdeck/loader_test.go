package customdeck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"quiz-deck-service/internal/domain"
)

const testDeckJSON = `{
  "uniqueId": "cd-1234",
  "name": "My Custom Deck",
  "shortName": "mydeck",
  "ownerUser": {"username": "alice", "discriminator": "0001"},
  "cards": [
    {"question": "犬", "answers": ["dog"], "comment": "canine"},
    null,
    {"question": "一", "answers": ["いち"], "questionCreationStrategy": "IMAGE", "instructions": "Read the kanji!"}
  ]
}`

type fakeFinder struct {
	records map[string]Record
	err     error
}

func (f *fakeFinder) FindByUniqueID(_ context.Context, uniqueID string) (*Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	if record, ok := f.records[uniqueID]; ok {
		return &record, nil
	}
	return nil, nil
}

func writeDeckFile(t *testing.T, dir, shortName, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, shortName+".json"), []byte(content), 0o644); err != nil {
		t.Fatalf("write deck file: %v", err)
	}
}

func TestLoadByShortName(t *testing.T) {
	dir := t.TempDir()
	writeDeckFile(t, dir, "mydeck", testDeckJSON)
	loader := NewLoader(dir, &fakeFinder{})

	deck, err := loader.Load(context.Background(), "MyDeck")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if deck == nil {
		t.Fatal("expected a deck")
	}
	if deck.UniqueID != "cd-1234" || deck.ShortName != "mydeck" {
		t.Fatalf("unexpected identity: %+v", deck)
	}
	if !deck.IsInternetDeck {
		t.Fatal("custom decks are internet decks")
	}
	if deck.Description != "Custom quiz by alice#0001" {
		t.Fatalf("unexpected description: %q", deck.Description)
	}
	if deck.CommentFieldName != "Comment" {
		t.Fatalf("unexpected comment field name: %q", deck.CommentFieldName)
	}
	if deck.Cards.Len() != 3 {
		t.Fatalf("expected 3 card slots, got %d", deck.Cards.Len())
	}

	card, err := deck.Cards.Get(context.Background(), 2)
	if err != nil {
		t.Fatalf("get card: %v", err)
	}
	if card.Meaning != "" || card.QuestionCreation != domain.QuestionCreationImage || card.Instructions != "Read the kanji!" {
		t.Fatalf("per-card overrides lost: %+v", card)
	}
}

func TestLoadByUniqueIDFallsBackToRecords(t *testing.T) {
	dir := t.TempDir()
	writeDeckFile(t, dir, "mydeck", testDeckJSON)
	loader := NewLoader(dir, &fakeFinder{records: map[string]Record{
		"cd-1234": {UniqueID: "cd-1234", ShortName: "mydeck"},
	}})

	deck, err := loader.Load(context.Background(), "cd-1234")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if deck == nil || deck.ShortName != "mydeck" {
		t.Fatalf("expected mydeck, got %+v", deck)
	}
}

func TestLoadMissingDeck(t *testing.T) {
	loader := NewLoader(t.TempDir(), &fakeFinder{})
	deck, err := loader.Load(context.Background(), "ghost")
	if deck != nil || err != nil {
		t.Fatalf("expected a miss, got deck=%v err=%v", deck, err)
	}
}

func TestLoadMalformedDeckFile(t *testing.T) {
	dir := t.TempDir()
	writeDeckFile(t, dir, "broken", "{not json")
	loader := NewLoader(dir, &fakeFinder{})

	_, err := loader.Load(context.Background(), "broken")
	if err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLoadRecordFinderError(t *testing.T) {
	boom := errors.New("db down")
	loader := NewLoader(t.TempDir(), &fakeFinder{err: boom})

	_, err := loader.Load(context.Background(), "cd-1234")
	if !errors.Is(err, boom) {
		t.Fatalf("expected finder error, got %v", err)
	}
}
