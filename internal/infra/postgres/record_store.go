package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-deck-service/internal/customdeck"
)

// RecordStore looks up custom deck metadata in Postgres.
type RecordStore struct {
	pool *pgxpool.Pool
}

func NewRecordStore(pool *pgxpool.Pool) *RecordStore {
	return &RecordStore{pool: pool}
}

func (s *RecordStore) FindByUniqueID(ctx context.Context, uniqueID string) (*customdeck.Record, error) {
	var record customdeck.Record
	err := s.pool.QueryRow(ctx,
		`SELECT unique_id, short_name FROM custom_decks WHERE unique_id=$1`,
		uniqueID,
	).Scan(&record.UniqueID, &record.ShortName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find custom deck record: %w", err)
	}
	return &record, nil
}
