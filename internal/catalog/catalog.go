// Package catalog holds the process-wide table of preloaded decks, built once
// at startup from a static manifest of disk-array backed deck entries.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"quiz-deck-service/internal/diskarray"
	"quiz-deck-service/internal/domain"
)

// ManifestEntry describes one catalog deck: its identity, its on-disk card
// array, and its descriptor fields.
type ManifestEntry struct {
	UniqueID          string `json:"uniqueId"`
	CardDiskArrayPath string `json:"cardDiskArrayPath"`
	Name              string `json:"name"`
	Article           string `json:"article"`
	Instructions      string `json:"instructions"`
	Description       string `json:"description"`
	CommentFieldName  string `json:"commentFieldName"`

	QuestionCreation     string `json:"questionCreationStrategy"`
	DictionaryLink       string `json:"dictionaryLinkStrategy"`
	AnswerTimeLimit      string `json:"answerTimeLimitStrategy"`
	CardPreprocessing    string `json:"cardPreprocessingStrategy"`
	ScoreAnswer          string `json:"scoreAnswerStrategy"`
	AdditionalAnswerWait string `json:"additionalAnswerWaitStrategy"`
	AnswerCompare        string `json:"answerCompareStrategy"`

	ForceMC                 bool `json:"forceMC"`
	ForceNoMC               bool `json:"forceNoMC"`
	RequiresAudioConnection bool `json:"requiresAudioConnection"`
}

// Manifest maps a deck's short name to its entry.
type Manifest map[string]ManifestEntry

// LoadManifest reads a JSON manifest from path.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decode deck manifest: %w", err)
	}
	return manifest, nil
}

// Catalog is the in-memory deck table. It is read-only after Load and safe
// for concurrent lookups.
type Catalog struct {
	byName map[string]*domain.Deck
	byID   map[string]*domain.Deck
}

// Load builds a catalog from the manifest, opening each entry's card array
// through the shared page cache. Entries missing a unique id, colliding with
// an already-registered id, or failing to open are logged and skipped; a bad
// entry never aborts the rest of the catalog.
func Load(manifest Manifest, cache *diskarray.Cache, logger *zap.Logger) *Catalog {
	catalog := &Catalog{
		byName: make(map[string]*domain.Deck, len(manifest)),
		byID:   make(map[string]*domain.Deck, len(manifest)),
	}

	names := make([]string, 0, len(manifest))
	for name := range manifest {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := manifest[name]
		deck, err := buildDeck(name, entry, catalog.byID, cache)
		if err != nil {
			logger.Error("error loading catalog deck",
				zap.String("deck", name),
				zap.Error(err))
			continue
		}
		catalog.byName[name] = deck
		catalog.byID[entry.UniqueID] = deck
	}
	return catalog
}

func buildDeck(name string, entry ManifestEntry, byID map[string]*domain.Deck, cache *diskarray.Cache) (*domain.Deck, error) {
	if entry.UniqueID == "" {
		return nil, fmt.Errorf("deck %s has no unique id", name)
	}
	if _, taken := byID[entry.UniqueID]; taken {
		return nil, fmt.Errorf("deck %s reuses unique id %s", name, entry.UniqueID)
	}

	cards, err := diskarray.Load(entry.CardDiskArrayPath, cache)
	if err != nil {
		return nil, err
	}

	deck := &domain.Deck{
		UniqueID:                entry.UniqueID,
		Name:                    entry.Name,
		ShortName:               name,
		Article:                 entry.Article,
		Instructions:            entry.Instructions,
		Description:             entry.Description,
		CommentFieldName:        entry.CommentFieldName,
		QuestionCreation:        strategyOrDefault(entry.QuestionCreation, domain.QuestionCreationImage),
		DictionaryLink:          domain.DictionaryLinkStrategy(orDefault(entry.DictionaryLink, string(domain.DictionaryLinkNone))),
		AnswerTimeLimit:         domain.AnswerTimeLimitStrategy(orDefault(entry.AnswerTimeLimit, string(domain.AnswerTimeLimitJapaneseSettings))),
		CardPreprocessing:       domain.CardPreprocessingStrategy(orDefault(entry.CardPreprocessing, string(domain.CardPreprocessingNone))),
		ScoreAnswer:             domain.ScoreAnswerStrategy(orDefault(entry.ScoreAnswer, string(domain.ScoreOneAnswerOnePoint))),
		AdditionalAnswerWait:    domain.AdditionalAnswerWaitStrategy(orDefault(entry.AdditionalAnswerWait, string(domain.AdditionalAnswerWaitJapaneseSettings))),
		AnswerCompare:           domain.AnswerCompareStrategy(orDefault(entry.AnswerCompare, string(domain.AnswerCompareConvertKana))),
		ForceMC:                 entry.ForceMC,
		ForceNoMC:               entry.ForceNoMC,
		RequiresAudioConnection: entry.RequiresAudioConnection,
		IsInternetDeck:          false,
		Cards:                   cards,
	}
	if deck.Article == "" {
		deck.Article = "a"
	}
	if deck.CommentFieldName == "" {
		deck.CommentFieldName = "Meaning"
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}
	return deck, nil
}

// Lookup resolves a short name or unique id to its deck. It is a pure map
// read and never blocks.
func (c *Catalog) Lookup(nameOrID string) (*domain.Deck, bool) {
	if deck, ok := c.byName[nameOrID]; ok {
		return deck, true
	}
	if deck, ok := c.byID[nameOrID]; ok {
		return deck, true
	}
	return nil, false
}

// Size reports how many decks loaded successfully.
func (c *Catalog) Size() int { return len(c.byName) }

func strategyOrDefault(raw string, fallback domain.QuestionCreationStrategy) domain.QuestionCreationStrategy {
	if raw == "" {
		return fallback
	}
	return domain.QuestionCreationStrategy(raw)
}

func orDefault(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	return raw
}
