package deckformat

import (
	"context"
	"strings"

	"quiz-deck-service/internal/domain"
)

// Format renders a deck back into submission text. Parsing the output of
// Format yields an equal descriptor for any deck Parse produced.
func Format(ctx context.Context, deck domain.Deck) (string, error) {
	var b strings.Builder
	b.WriteString("FULL NAME: " + deck.Name + "\r\n")
	b.WriteString("SHORT NAME: " + deck.ShortName + "\r\n")
	b.WriteString("INSTRUCTIONS: " + deck.Instructions + "\r\n")
	b.WriteString("QUESTION TYPE: " + string(deck.QuestionCreation) + "\r\n")
	b.WriteString(QuestionsStart + "\r\n")

	for i := 0; i < deck.Cards.Len(); i++ {
		card, err := deck.Cards.Get(ctx, i)
		if err != nil {
			return "", err
		}
		b.WriteString(card.Question)
		b.WriteString(",")
		b.WriteString(strings.Join(card.Answers, "/"))
		if card.Meaning != "" {
			// Parse joined the meaning list with ", "; undo that here.
			b.WriteString("," + strings.ReplaceAll(card.Meaning, ", ", "/"))
		}
		b.WriteString("\r\n")
	}
	return b.String(), nil
}
