package domain

import "strings"

// Each behavior dimension of a deck is a closed set of named strategies.
// A deck must carry exactly one valid value per dimension; membership is
// checked by Validate rather than at every use site.

// QuestionCreationStrategy selects how a card's question is presented.
type QuestionCreationStrategy string

const (
	QuestionCreationImage QuestionCreationStrategy = "IMAGE"
	QuestionCreationText  QuestionCreationStrategy = "TEXT"
)

func (s QuestionCreationStrategy) Valid() bool {
	return s == QuestionCreationImage || s == QuestionCreationText
}

// QuestionCreationStrategies lists the accepted QUESTION TYPE values in
// submission order, for user-facing error messages.
var QuestionCreationStrategies = []QuestionCreationStrategy{
	QuestionCreationImage,
	QuestionCreationText,
}

// ParseQuestionCreationStrategy maps a QUESTION TYPE directive value to a
// strategy, case-insensitively.
func ParseQuestionCreationStrategy(raw string) (QuestionCreationStrategy, bool) {
	s := QuestionCreationStrategy(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// DictionaryLinkStrategy selects the dictionary link attached to answers.
type DictionaryLinkStrategy string

const (
	DictionaryLinkNone           DictionaryLinkStrategy = "NONE"
	DictionaryLinkQuestionWord   DictionaryLinkStrategy = "JISHO_QUESTION_WORD"
	DictionaryLinkQuestionKanji  DictionaryLinkStrategy = "JISHO_QUESTION_KANJI"
	DictionaryLinkAnswerWord     DictionaryLinkStrategy = "JISHO_ANSWER_WORD"
	DictionaryLinkWebsterAnswer  DictionaryLinkStrategy = "WEBSTER_ANSWER"
)

func (s DictionaryLinkStrategy) Valid() bool {
	switch s {
	case DictionaryLinkNone, DictionaryLinkQuestionWord, DictionaryLinkQuestionKanji,
		DictionaryLinkAnswerWord, DictionaryLinkWebsterAnswer:
		return true
	}
	return false
}

// AnswerTimeLimitStrategy selects how long answers are accepted for.
type AnswerTimeLimitStrategy string

const (
	AnswerTimeLimitJapaneseSettings AnswerTimeLimitStrategy = "JAPANESE_SETTINGS"
	AnswerTimeLimitAnagrams         AnswerTimeLimitStrategy = "ANAGRAMS"
)

func (s AnswerTimeLimitStrategy) Valid() bool {
	return s == AnswerTimeLimitJapaneseSettings || s == AnswerTimeLimitAnagrams
}

// CardPreprocessingStrategy selects a transform applied to cards before play.
type CardPreprocessingStrategy string

const (
	CardPreprocessingNone             CardPreprocessingStrategy = "NONE"
	CardPreprocessingShuffleQuestion  CardPreprocessingStrategy = "RANDOMIZE_QUESTION_CHARACTERS"
	CardPreprocessingForvoAudio       CardPreprocessingStrategy = "FORVO_AUDIO"
)

func (s CardPreprocessingStrategy) Valid() bool {
	switch s {
	case CardPreprocessingNone, CardPreprocessingShuffleQuestion, CardPreprocessingForvoAudio:
		return true
	}
	return false
}

// ScoreAnswerStrategy selects how correct answers score.
type ScoreAnswerStrategy string

const (
	ScoreOneAnswerOnePoint     ScoreAnswerStrategy = "ONE_ANSWER_ONE_POINT"
	ScoreMultipleAnswerPoints  ScoreAnswerStrategy = "MULTIPLE_ANSWERS_POSITION_POINTS"
)

func (s ScoreAnswerStrategy) Valid() bool {
	return s == ScoreOneAnswerOnePoint || s == ScoreMultipleAnswerPoints
}

// AdditionalAnswerWaitStrategy selects how long to wait for further answers
// after the first correct one.
type AdditionalAnswerWaitStrategy string

const (
	AdditionalAnswerWaitJapaneseSettings AdditionalAnswerWaitStrategy = "JAPANESE_SETTINGS"
	AdditionalAnswerWaitAnagrams         AdditionalAnswerWaitStrategy = "ANAGRAMS"
)

func (s AdditionalAnswerWaitStrategy) Valid() bool {
	return s == AdditionalAnswerWaitJapaneseSettings || s == AdditionalAnswerWaitAnagrams
}

// AnswerCompareStrategy selects how submitted answers are matched.
type AnswerCompareStrategy string

const (
	AnswerCompareConvertKana AnswerCompareStrategy = "CONVERT_KANA"
	AnswerCompareStrict      AnswerCompareStrategy = "STRICT"
)

func (s AnswerCompareStrategy) Valid() bool {
	return s == AnswerCompareConvertKana || s == AnswerCompareStrict
}
