// Package community manages user-submitted decks: resolving a paste
// reference or stored record to a parsed deck, and the quota-limited
// create/delete workflow against the shared record document.
package community

import (
	"context"
	"regexp"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"quiz-deck-service/internal/deckformat"
	"quiz-deck-service/internal/domain"
)

// MaxDecksPerAuthor is the default submission cap per author.
const MaxDecksPerAuthor = 100

const submittedDeckDescription = "[User submitted deck loaded remotely from Pastebin]"

var pastePattern = regexp.MustCompile(`pastebin\.com/(?:raw/)?(.*)`)

// DocumentStore is the shared, versioned document of community records.
// Edit must apply the whole read-modify-write as one atomic transaction:
// the closure receives current state and returns the next state, and the
// last committed writer's view wins after re-reading, never a blind
// overwrite. An error from the closure aborts the edit with nothing written.
type DocumentStore interface {
	Get(ctx context.Context) (domain.CommunityDeckDocument, error)
	Edit(ctx context.Context, fn func(domain.CommunityDeckDocument) (domain.CommunityDeckDocument, error)) error
}

// Fetcher downloads raw text from a URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (string, error)
}

// Store resolves and administers community decks.
type Store struct {
	docs         DocumentStore
	fetcher      Fetcher
	logger       *zap.Logger
	maxPerAuthor int
	newID        func() string
	sf           singleflight.Group
}

// NewStore wires a community deck store over a document store and a fetcher.
func NewStore(docs DocumentStore, fetcher Fetcher, logger *zap.Logger) *Store {
	return &Store{
		docs:         docs,
		fetcher:      fetcher,
		logger:       logger,
		maxPerAuthor: MaxDecksPerAuthor,
		newID:        uuid.NewString,
	}
}

// SetMaxPerAuthor overrides the submission cap. Zero or negative keeps the
// default.
func (s *Store) SetMaxPerAuthor(max int) {
	if max > 0 {
		s.maxPerAuthor = max
	}
}

// Resolve turns a deck name, unique id, or paste reference into a parsed
// deck. It returns (nil, nil) when the input matches no record and no paste
// URI can be derived, which is the caller's signal to try no further tier.
// A first-time fetch registers a record triplet for the requesting author,
// subject to the quota and short-name uniqueness.
func (s *Store) Resolve(ctx context.Context, nameOrID, userID, userName string) (*domain.Deck, error) {
	var deckURI string
	if m := pastePattern.FindStringSubmatch(nameOrID); m != nil {
		deckURI = "https://pastebin.com/raw/" + m[1]
	}

	doc, err := s.docs.Get(ctx)
	if err != nil {
		return nil, err
	}

	record, found := doc[nameOrID]
	if !found && deckURI != "" {
		record, found = doc[deckURI]
	}

	if found {
		deckURI = record.URI
	} else if deckURI != "" && (userID == "" || userName == "") {
		// New pastes need an author identity to register against.
		return nil, domain.ErrDashboardRequired
	}

	if deckURI == "" {
		return nil, nil
	}

	// Concurrent requests for the same paste share one fetch+parse+register.
	result, err, _ := s.sf.Do(deckURI, func() (interface{}, error) {
		return s.fetchDeck(ctx, deckURI, record, found, userID, userName)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Deck), nil
}

func (s *Store) fetchDeck(ctx context.Context, deckURI string, record domain.CommunityDeckRecord, recorded bool, userID, userName string) (*domain.Deck, error) {
	text, err := s.fetcher.Fetch(ctx, deckURI)
	if err != nil {
		return nil, &domain.FetchError{URI: deckURI, Err: err}
	}

	deck, err := deckformat.Parse(text, deckURI)
	if err != nil {
		return nil, err
	}

	if recorded {
		deck.UniqueID = record.UniqueID
		deck.Author = record.AuthorName
	} else {
		registered, err := s.register(ctx, deckURI, deck.ShortName, userID, userName)
		if err != nil {
			return nil, err
		}
		deck.UniqueID = registered.UniqueID
		deck.Author = registered.AuthorName
	}

	deck.Description = submittedDeckDescription
	return &deck, nil
}

func (s *Store) register(ctx context.Context, deckURI, shortName, userID, userName string) (domain.CommunityDeckRecord, error) {
	var record domain.CommunityDeckRecord
	err := s.docs.Edit(ctx, func(doc domain.CommunityDeckDocument) (domain.CommunityDeckDocument, error) {
		if doc == nil {
			doc = domain.CommunityDeckDocument{}
		}
		if countAuthorDecks(doc, userID) >= s.maxPerAuthor {
			return nil, domain.ErrQuotaExceeded
		}
		if _, taken := doc[shortName]; taken {
			return nil, domain.ErrShortNameTaken
		}

		record = domain.CommunityDeckRecord{
			URI:        deckURI,
			AuthorID:   userID,
			AuthorName: userName,
			UniqueID:   s.newID(),
		}
		doc[deckURI] = record
		doc[record.UniqueID] = record
		doc[shortName] = record
		return doc, nil
	})
	if err != nil {
		return domain.CommunityDeckRecord{}, err
	}

	s.logger.Info("registered community deck",
		zap.String("shortName", shortName),
		zap.String("uniqueId", record.UniqueID),
		zap.String("author", userID))
	return record, nil
}

// Delete removes the record triplet identified by any one of its three keys.
// The lookup, ownership check, and removal run as one atomic edit so racing
// deletes cannot interleave.
func (s *Store) Delete(ctx context.Context, searchTerm, userID string) (domain.DeletionStatus, error) {
	status := domain.DeletionNotFound
	err := s.docs.Edit(ctx, func(doc domain.CommunityDeckDocument) (domain.CommunityDeckDocument, error) {
		record, ok := doc[searchTerm]
		if !ok {
			status = domain.DeletionNotFound
			return doc, nil
		}
		if record.AuthorID != userID {
			status = domain.DeletionNotOwner
			return doc, nil
		}
		for key, r := range doc {
			if r.UniqueID == record.UniqueID {
				delete(doc, key)
			}
		}
		status = domain.DeletionDeleted
		return doc, nil
	})
	if err != nil {
		return 0, err
	}
	return status, nil
}

// countAuthorDecks counts the distinct decks an author owns. Counting by
// unique id rather than raw key count keeps the quota honest even if a
// record ever loses one of its three keys.
func countAuthorDecks(doc domain.CommunityDeckDocument, userID string) int {
	seen := map[string]struct{}{}
	for _, record := range doc {
		if record.AuthorID == userID {
			seen[record.UniqueID] = struct{}{}
		}
	}
	return len(seen)
}
