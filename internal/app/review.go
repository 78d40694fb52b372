package app

import "quiz-deck-service/internal/domain"

// ReviewDeckID is the unique id of every synthesized review deck.
const ReviewDeckID = "REVIEW"

// BuildReviewDeck synthesizes an ephemeral, uncached deck from the cards a
// session left unanswered. Per-card progress annotations are stripped, and
// the deck-level provenance flags are the OR across the input cards.
func BuildReviewDeck(unanswered []domain.ReviewCard) domain.ResolvedDeck {
	cards := make(domain.MemoryCards, len(unanswered))
	var requiresAudio, internet bool
	for i, card := range unanswered {
		cards[i] = card.Card
		requiresAudio = requiresAudio || card.RequiresAudioConnection
		internet = internet || card.IsInternetCard
	}

	deck := domain.Deck{
		UniqueID:                ReviewDeckID,
		Name:                    "Review Quiz",
		Article:                 "a",
		RequiresAudioConnection: requiresAudio,
		IsInternetDeck:          internet,
		Cards:                   cards,
	}
	return domain.ResolvedDeck{
		Deck:       deck,
		StartIndex: 1,
		EndIndex:   len(cards),
	}
}
