// Package app contains the deck resolution use cases.
package app

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quiz-deck-service/internal/domain"
)

// CatalogLookup resolves preloaded decks. Must never block.
type CatalogLookup interface {
	Lookup(nameOrID string) (*domain.Deck, bool)
}

// CustomDeckLoader loads per-user decks from disk. (nil, nil) means no deck.
type CustomDeckLoader interface {
	Load(ctx context.Context, nameOrID string) (*domain.Deck, error)
}

// CommunityResolver resolves community submissions. (nil, nil) means no deck.
type CommunityResolver interface {
	Resolve(ctx context.Context, nameOrID, userID, userName string) (*domain.Deck, error)
}

// DeckResolver resolves batches of deck requests across three tiers:
// the in-memory catalog, on-disk custom decks, then community submissions.
type DeckResolver struct {
	catalog   CatalogLookup
	custom    CustomDeckLoader
	community CommunityResolver
	logger    *zap.Logger
}

func NewDeckResolver(catalog CatalogLookup, custom CustomDeckLoader, community CommunityResolver, logger *zap.Logger) *DeckResolver {
	return &DeckResolver{
		catalog:   catalog,
		custom:    custom,
		community: community,
		logger:    logger,
	}
}

// ResolveDecks resolves every request or fails the whole batch. Output order
// always matches input order. Misses cascade through the tiers; after all
// tiers complete, a still-unresolved request fails the batch with a
// NotFoundError naming the first one in input order. Unrecoverable
// per-request errors from the community tier (bad submission text, quota,
// name conflict, fetch failure) are reported in input order too, without
// cancelling sibling resolutions.
func (r *DeckResolver) ResolveDecks(ctx context.Context, requests []domain.DeckRequest, userID, userName string) ([]domain.ResolvedDeck, error) {
	resolved := make([]*domain.ResolvedDeck, len(requests))

	for i, request := range requests {
		if deck, ok := r.catalog.Lookup(request.NameOrID); ok {
			overlaid := applyModifiers(deck, request)
			resolved[i] = &overlaid
		}
	}

	var custom errgroup.Group
	for i := range requests {
		if resolved[i] != nil {
			continue
		}
		i := i
		custom.Go(func() error {
			deck, err := r.custom.Load(ctx, requests[i].NameOrID)
			if err != nil {
				// A broken custom deck file is a miss, not a batch failure.
				r.logger.Error("error loading custom deck",
					zap.String("deck", requests[i].NameOrID),
					zap.Error(err))
				return nil
			}
			if deck != nil {
				overlaid := applyModifiers(deck, requests[i])
				resolved[i] = &overlaid
			}
			return nil
		})
	}
	_ = custom.Wait()

	requestErrs := make([]error, len(requests))
	var remote errgroup.Group
	for i := range requests {
		if resolved[i] != nil {
			continue
		}
		i := i
		remote.Go(func() error {
			deck, err := r.community.Resolve(ctx, requests[i].NameOrID, userID, userName)
			if err != nil {
				if userFacing(err) {
					requestErrs[i] = err
				} else {
					r.logger.Error("error resolving community deck",
						zap.String("deck", requests[i].NameOrID),
						zap.Error(err))
				}
				return nil
			}
			if deck != nil {
				overlaid := applyModifiers(deck, requests[i])
				resolved[i] = &overlaid
			}
			return nil
		})
	}
	_ = remote.Wait()

	for _, err := range requestErrs {
		if err != nil {
			return nil, err
		}
	}
	for i := range resolved {
		if resolved[i] == nil {
			return nil, &domain.NotFoundError{DeckName: requests[i].NameOrID}
		}
	}

	decks := make([]domain.ResolvedDeck, len(resolved))
	for i, deck := range resolved {
		coerceRange(deck)
		decks[i] = *deck
	}
	return decks, nil
}

// applyModifiers combines the immutable base descriptor with the request's
// overlay. The multiple-choice flag is the deck's force setting, or the
// request's wish when the deck does not force it off.
func applyModifiers(deck *domain.Deck, request domain.DeckRequest) domain.ResolvedDeck {
	length := deck.Cards.Len()
	return domain.ResolvedDeck{
		Deck:       *deck,
		StartIndex: resolveIndex(request.StartIndex, length),
		EndIndex:   resolveIndex(request.EndIndex, length),
		MC:         deck.ForceMC || (request.MC && !deck.ForceNoMC),
	}
}

func resolveIndex(index, length int) int {
	if index == domain.EndOfDeck {
		return length
	}
	return index
}

// coerceRange clamps the request range so 1 <= start <= end <= len(cards)
// always holds; absent or out-of-range bounds become the full range.
func coerceRange(deck *domain.ResolvedDeck) {
	length := deck.Cards.Len()

	start := deck.StartIndex
	if start < 1 {
		start = 1
	}
	if start > length {
		start = length
	}
	if start < 1 {
		start = 1
	}

	end := deck.EndIndex
	if end < 1 {
		end = length
	}
	if end < start {
		end = start
	}
	if end > length {
		end = length
	}
	if end < 1 {
		end = 1
	}

	deck.StartIndex = start
	deck.EndIndex = end
}

func userFacing(err error) bool {
	var parseErr *domain.ParseError
	var fetchErr *domain.FetchError
	return errors.As(err, &parseErr) ||
		errors.As(err, &fetchErr) ||
		errors.Is(err, domain.ErrQuotaExceeded) ||
		errors.Is(err, domain.ErrShortNameTaken) ||
		errors.Is(err, domain.ErrDashboardRequired)
}
