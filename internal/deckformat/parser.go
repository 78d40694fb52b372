// Package deckformat parses the line-oriented community deck submission
// format into a validated deck descriptor.
package deckformat

import (
	"fmt"
	"strings"

	"quiz-deck-service/internal/domain"
)

// QuestionsStart separates the header directives from the card lines.
const QuestionsStart = "--QuestionsStart--"

const (
	maxNameLength         = 80
	maxInstructionsLength = 100
	maxShortNameLength    = 20
	maxFieldLength        = 300
	maxImageQuestionLen   = 10
)

func parseError(reason string, lineIndex int, uri string) error {
	return &domain.ParseError{Message: reason, Line: lineIndex + 1, URI: uri}
}

// Parse builds a deck from raw submission text. It is a pure function: the
// first violated rule aborts with a ParseError carrying the 1-based line
// number and the source URI.
func Parse(raw, uri string) (domain.Deck, error) {
	lines := strings.Split(raw, "\r\n")

	var name string
	var instructions string
	var shortName string
	var questionCreation domain.QuestionCreationStrategy

	lineIndex := 0
	for ; lineIndex < len(lines) && !strings.HasPrefix(lines[lineIndex], QuestionsStart); lineIndex++ {
		line := lines[lineIndex]
		switch {
		case strings.HasPrefix(line, "FULL NAME:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "FULL NAME:"))
			if len([]rune(name)) > maxNameLength {
				return domain.Deck{}, parseError("FULL NAME must be shorter than 80 characters.", lineIndex, uri)
			}
		case strings.HasPrefix(line, "INSTRUCTIONS:"):
			instructions = strings.TrimSpace(strings.TrimPrefix(line, "INSTRUCTIONS:"))
			if len([]rune(instructions)) > maxInstructionsLength {
				return domain.Deck{}, parseError("INSTRUCTIONS must be shorter than 100 characters.", lineIndex, uri)
			}
		case strings.HasPrefix(line, "SHORT NAME:"):
			shortName = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "SHORT NAME:")))
			if len([]rune(shortName)) > maxShortNameLength {
				return domain.Deck{}, parseError("SHORT NAME must be shorter than 20 characters.", lineIndex, uri)
			} else if strings.Contains(shortName, "+") {
				return domain.Deck{}, parseError("SHORT NAME must not contain a + symbol.", lineIndex, uri)
			} else if strings.Contains(shortName, " ") {
				return domain.Deck{}, parseError("SHORT NAME must not contain any spaces.", lineIndex, uri)
			}
		case strings.HasPrefix(line, "QUESTION TYPE:"):
			parsed, ok := domain.ParseQuestionCreationStrategy(strings.TrimPrefix(line, "QUESTION TYPE:"))
			if !ok {
				return domain.Deck{}, parseError(fmt.Sprintf("QUESTION TYPE must be one of the following: %s", questionTypeList()), lineIndex, uri)
			}
			questionCreation = parsed
		}
	}

	if name == "" {
		return domain.Deck{}, parseError("Deck must have a NAME", 0, uri)
	} else if shortName == "" {
		return domain.Deck{}, parseError("Deck must have a SHORT NAME", 0, uri)
	} else if lineIndex >= len(lines) || !strings.HasPrefix(lines[lineIndex], QuestionsStart) {
		return domain.Deck{}, parseError(fmt.Sprintf("Did not find %s separator. You must put your questions below %s", QuestionsStart, QuestionsStart), 0, uri)
	} else if instructions == "" {
		return domain.Deck{}, parseError("Deck must have INSTRUCTIONS", 0, uri)
	}

	if questionCreation == "" {
		questionCreation = domain.QuestionCreationImage
	}

	var cards []domain.Card
	for lineIndex++; lineIndex < len(lines); lineIndex++ {
		line := lines[lineIndex]
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		question := parts[0]
		var answers, meaning string
		if len(parts) > 1 {
			answers = parts[1]
		}
		if len(parts) > 2 {
			meaning = parts[2]
		}

		if question == "" {
			return domain.Deck{}, parseError("No question", lineIndex, uri)
		} else if answers == "" {
			return domain.Deck{}, parseError("No answers", lineIndex, uri)
		} else if len([]rune(question)) > maxImageQuestionLen && questionCreation == domain.QuestionCreationImage {
			return domain.Deck{}, parseError("Image questions must not contain more than 10 characters. Consider shortening this question or changing the QUESTION TYPE to TEXT.", lineIndex, uri)
		} else if len([]rune(question)) > maxFieldLength {
			return domain.Deck{}, parseError("Questions must not contain more than 300 characters.", lineIndex, uri)
		} else if len([]rune(answers)) > maxFieldLength {
			return domain.Deck{}, parseError("Answers must not contain more than 300 characters", lineIndex, uri)
		} else if len([]rune(meaning)) > maxFieldLength {
			return domain.Deck{}, parseError("Meaning must not contain more than 300 characters", lineIndex, uri)
		}

		card := domain.Card{
			Question: question,
			Answers:  splitAnswers(answers),
		}
		if meaning != "" {
			card.Meaning = strings.Join(strings.Split(meaning, "/"), ", ")
		}
		cards = append(cards, card)
	}

	if len(cards) == 0 {
		return domain.Deck{}, parseError("No questions", 0, uri)
	}

	deck := domain.Deck{
		IsInternetDeck:       true,
		Name:                 name,
		ShortName:            shortName,
		Article:              "a",
		Instructions:         instructions,
		QuestionCreation:     questionCreation,
		DictionaryLink:       domain.DictionaryLinkNone,
		AnswerTimeLimit:      domain.AnswerTimeLimitJapaneseSettings,
		CardPreprocessing:    domain.CardPreprocessingNone,
		ScoreAnswer:          domain.ScoreOneAnswerOnePoint,
		AdditionalAnswerWait: domain.AdditionalAnswerWaitJapaneseSettings,
		AnswerCompare:        domain.AnswerCompareConvertKana,
		CommentFieldName:     "Meaning",
		Cards:                domain.MemoryCards(cards),
	}

	if err := deck.Validate(); err != nil {
		return domain.Deck{}, err
	}
	return deck, nil
}

func splitAnswers(raw string) []string {
	parts := strings.Split(raw, "/")
	answers := parts[:0]
	for _, part := range parts {
		if part != "" {
			answers = append(answers, part)
		}
	}
	return answers
}

func questionTypeList() string {
	names := make([]string, len(domain.QuestionCreationStrategies))
	for i, s := range domain.QuestionCreationStrategies {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
