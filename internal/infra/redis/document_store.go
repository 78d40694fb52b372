package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quiz-deck-service/internal/domain"
)

// DefaultDocumentKey is the redis key holding the community deck document.
const DefaultDocumentKey = "community:decks"

// editAttempts bounds the optimistic retry loop when edits race.
const editAttempts = 16

// DocumentStore keeps the whole community deck document as JSON under one
// redis key. Edit runs as an optimistic WATCH transaction: the document is
// re-read, transformed, and written back only if no other writer committed
// in between, then retried on conflict. The last committed writer always
// operated on the state it re-read, never on a stale snapshot.
type DocumentStore struct {
	client *redis.Client
	key    string
}

func NewDocumentStore(client *redis.Client, key string) *DocumentStore {
	if key == "" {
		key = DefaultDocumentKey
	}
	return &DocumentStore{client: client, key: key}
}

func (s *DocumentStore) Get(ctx context.Context) (domain.CommunityDeckDocument, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return domain.CommunityDeckDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get community deck document: %w", err)
	}
	return decodeDocument([]byte(raw))
}

func (s *DocumentStore) Edit(ctx context.Context, fn func(domain.CommunityDeckDocument) (domain.CommunityDeckDocument, error)) error {
	transaction := func(tx *redis.Tx) error {
		doc := domain.CommunityDeckDocument{}
		raw, err := tx.Get(ctx, s.key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("read community deck document: %w", err)
		}
		if err == nil {
			if doc, err = decodeDocument([]byte(raw)); err != nil {
				return err
			}
		}

		next, err := fn(doc)
		if err != nil {
			return err
		}
		encoded, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode community deck document: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, encoded, 0)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < editAttempts; i++ {
		err = s.client.Watch(ctx, transaction, s.key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("edit community deck document: %w", err)
}

func decodeDocument(raw []byte) (domain.CommunityDeckDocument, error) {
	var doc domain.CommunityDeckDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode community deck document: %w", err)
	}
	if doc == nil {
		doc = domain.CommunityDeckDocument{}
	}
	return doc, nil
}
