package domain

import (
	"context"
	"math"
)

// EndOfDeck is the request sentinel meaning "through the last card"; it is
// replaced with the real card count once the deck is resolved.
const EndOfDeck = math.MaxInt

// Card is one question/answer unit within a deck.
type Card struct {
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
	Meaning  string   `json:"meaning,omitempty"`

	// Per-card overrides carried by custom decks; empty means the deck default.
	QuestionCreation QuestionCreationStrategy `json:"questionCreationStrategy,omitempty"`
	Instructions     string                   `json:"instructions,omitempty"`
}

// CardSource is the uniform get-by-index contract over a deck's cards,
// regardless of whether they live in memory or in a disk-backed paged array.
// Implementations must be safe for concurrent readers.
type CardSource interface {
	Get(ctx context.Context, index int) (Card, error)
	Len() int
}

// MemoryCards is a CardSource backed by an in-memory slice.
type MemoryCards []Card

func (m MemoryCards) Get(_ context.Context, index int) (Card, error) {
	if index < 0 || index >= len(m) {
		return Card{}, ErrCardOutOfRange
	}
	return m[index], nil
}

func (m MemoryCards) Len() int { return len(m) }

// Deck is a quiz deck descriptor. The base descriptor is immutable once
// built; request-scoped settings live on ResolvedDeck.
type Deck struct {
	UniqueID         string
	Name             string
	ShortName        string
	Article          string
	Instructions     string
	Description      string
	CommentFieldName string
	Author           string

	QuestionCreation     QuestionCreationStrategy
	DictionaryLink       DictionaryLinkStrategy
	AnswerTimeLimit      AnswerTimeLimitStrategy
	CardPreprocessing    CardPreprocessingStrategy
	ScoreAnswer          ScoreAnswerStrategy
	AdditionalAnswerWait AdditionalAnswerWaitStrategy
	AnswerCompare        AnswerCompareStrategy

	ForceMC                 bool
	ForceNoMC               bool
	RequiresAudioConnection bool
	IsInternetDeck          bool

	Cards CardSource
}

// Validate checks the full field-presence and strategy-enum contract.
func (d Deck) Validate() error {
	switch {
	case d.Name == "":
		return validationError("no name")
	case d.Article == "":
		return validationError("no article")
	case d.Instructions == "":
		return validationError("no instructions")
	case d.Cards == nil:
		return validationError("no cards")
	case d.CommentFieldName == "":
		return validationError("no comment field name")
	case !d.QuestionCreation.Valid():
		return validationError("no or invalid question creation strategy")
	case !d.DictionaryLink.Valid():
		return validationError("no or invalid dictionary link strategy")
	case !d.AnswerTimeLimit.Valid():
		return validationError("no or invalid answer time limit strategy")
	case !d.CardPreprocessing.Valid():
		return validationError("no or invalid card preprocessing strategy")
	case !d.ScoreAnswer.Valid():
		return validationError("no or invalid score answer strategy")
	case !d.AdditionalAnswerWait.Valid():
		return validationError("no or invalid additional answer wait strategy")
	case !d.AnswerCompare.Valid():
		return validationError("no or invalid answer compare strategy")
	}
	return nil
}

// DeckRequest names a deck and carries the caller's display modifiers.
// StartIndex and EndIndex are 1-based; zero means unset and EndOfDeck means
// "through the last card".
type DeckRequest struct {
	NameOrID   string
	StartIndex int
	EndIndex   int
	MC         bool
}

// ResolvedDeck combines an immutable base descriptor with the request-scoped
// overlay applied at resolution time. Overlay fields are never persisted.
type ResolvedDeck struct {
	Deck
	StartIndex int
	EndIndex   int
	MC         bool
}

// ReviewCard is a card carried out of a finished session, annotated with the
// progress and provenance flags the session layer attaches.
type ReviewCard struct {
	Card
	RequiresAudioConnection bool
	IsInternetCard          bool
	DeckProgress            float64
}

// CommunityDeckRecord associates a community submission with its deck
// identity. Each record is stored under three keys (URI, unique id, short
// name) that share one UniqueID and are always deleted together.
type CommunityDeckRecord struct {
	URI        string `json:"uri"`
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName"`
	UniqueID   string `json:"uniqueId"`
}

// CommunityDeckDocument is the single shared document of community records,
// keyed by URI, unique id, and short name.
type CommunityDeckDocument map[string]CommunityDeckRecord
