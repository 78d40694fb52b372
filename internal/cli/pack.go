package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quiz-deck-service/internal/deckformat"
	"quiz-deck-service/internal/diskarray"
	"quiz-deck-service/internal/domain"
)

// NewPackCmd builds a catalog disk-array file from a deck submission text
// file, so hand-authored decks can be served from the static catalog.
func NewPackCmd() *cobra.Command {
	var recordsPerPage int

	cmd := &cobra.Command{
		Use:   "pack <submission.txt> <out.cards>",
		Short: "Build a paged card array from deck submission text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			deck, err := deckformat.Parse(string(raw), args[0])
			if err != nil {
				return err
			}

			cards, err := allCards(cmd, deck.Cards)
			if err != nil {
				return err
			}
			if err := diskarray.Write(args[1], cards, recordsPerPage); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "packed %d cards from %q into %s\n", len(cards), deck.Name, args[1])
			return nil
		},
	}

	cmd.Flags().IntVar(&recordsPerPage, "records-per-page", diskarray.DefaultRecordsPerPage, "records per page in the output array")
	return cmd
}

func allCards(cmd *cobra.Command, source domain.CardSource) ([]domain.Card, error) {
	cards := make([]domain.Card, source.Len())
	for i := range cards {
		card, err := source.Get(cmd.Context(), i)
		if err != nil {
			return nil, err
		}
		cards[i] = card
	}
	return cards, nil
}
