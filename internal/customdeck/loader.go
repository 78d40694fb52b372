// Package customdeck loads per-user decks authored through the dashboard and
// stored as JSON files keyed by short name.
package customdeck

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"quiz-deck-service/internal/domain"
)

// Record is the persisted metadata for a custom deck, used to find the
// backing file when the caller only knows the unique id.
type Record struct {
	UniqueID  string
	ShortName string
}

// RecordFinder looks up custom deck metadata by unique id. A nil record with
// a nil error means no such deck.
type RecordFinder interface {
	FindByUniqueID(ctx context.Context, uniqueID string) (*Record, error)
}

// Loader reads custom deck files from a directory.
type Loader struct {
	dir     string
	records RecordFinder
}

// NewLoader builds a loader over dir, with records as the unique-id fallback.
func NewLoader(dir string, records RecordFinder) *Loader {
	return &Loader{dir: dir, records: records}
}

type ownerUser struct {
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
}

type fileCard struct {
	Question         string   `json:"question"`
	Answers          []string `json:"answers"`
	Comment          string   `json:"comment"`
	QuestionCreation string   `json:"questionCreationStrategy"`
	Instructions     string   `json:"instructions"`
}

type fileDeck struct {
	UniqueID  string      `json:"uniqueId"`
	Name      string      `json:"name"`
	ShortName string      `json:"shortName"`
	OwnerUser ownerUser   `json:"ownerUser"`
	Cards     []*fileCard `json:"cards"`
}

// Load resolves a short name or unique id to a custom deck. The short name
// maps directly to a file; a unique id goes through the record finder to
// discover the backing file name. Returns (nil, nil) when no deck exists.
func (l *Loader) Load(ctx context.Context, nameOrID string) (*domain.Deck, error) {
	key := strings.ToLower(nameOrID)

	raw, err := l.readDeckFile(key)
	if err != nil {
		record, findErr := l.records.FindByUniqueID(ctx, key)
		if findErr != nil {
			return nil, findErr
		}
		if record == nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
		raw, err = l.readDeckFile(record.ShortName)
		if err != nil {
			return nil, err
		}
	}

	cards := make(domain.MemoryCards, len(raw.Cards))
	for i, card := range raw.Cards {
		if card == nil {
			continue
		}
		cards[i] = domain.Card{
			Question:         card.Question,
			Answers:          card.Answers,
			Meaning:          card.Comment,
			QuestionCreation: domain.QuestionCreationStrategy(card.QuestionCreation),
			Instructions:     card.Instructions,
		}
	}

	deck := &domain.Deck{
		IsInternetDeck:       true,
		UniqueID:             raw.UniqueID,
		Name:                 raw.Name,
		ShortName:            raw.ShortName,
		Description:          describeOwner(raw.OwnerUser),
		Author:               raw.OwnerUser.Username,
		Article:              "a",
		QuestionCreation:     domain.QuestionCreationText,
		DictionaryLink:       domain.DictionaryLinkNone,
		AnswerTimeLimit:      domain.AnswerTimeLimitJapaneseSettings,
		CardPreprocessing:    domain.CardPreprocessingNone,
		ScoreAnswer:          domain.ScoreOneAnswerOnePoint,
		AdditionalAnswerWait: domain.AdditionalAnswerWaitJapaneseSettings,
		AnswerCompare:        domain.AnswerCompareConvertKana,
		CommentFieldName:     "Comment",
		Cards:                cards,
	}
	return deck, nil
}

func (l *Loader) readDeckFile(shortName string) (*fileDeck, error) {
	path := filepath.Join(l.dir, shortName+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var deck fileDeck
	if err := json.Unmarshal(data, &deck); err != nil {
		return nil, fmt.Errorf("decode custom deck %s: %w", path, err)
	}
	return &deck, nil
}

func describeOwner(owner ownerUser) string {
	if owner.Discriminator != "" {
		return fmt.Sprintf("Custom quiz by %s#%s", owner.Username, owner.Discriminator)
	}
	return fmt.Sprintf("Custom quiz by %s", owner.Username)
}
