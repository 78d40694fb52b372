// Package diskarray provides random access to a card sequence persisted on
// disk, read through a bounded, shared LRU page cache. The file layout is a
// JSON header line, a JSON page-offset index line, then JSON-encoded pages.
package diskarray

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	"quiz-deck-service/internal/domain"
)

// DefaultCachePages matches the page budget the service has always run with.
const DefaultCachePages = 1000

type header struct {
	Version        int `json:"version"`
	Length         int `json:"length"`
	RecordsPerPage int `json:"recordsPerPage"`
}

type pageKey struct {
	path string
	page int
}

// Cache is a bounded page cache shared between any number of arrays.
// Capacity is measured in pages; eviction is least-recently-used. All methods
// are safe for concurrent use.
type Cache struct {
	pages *lru.Cache[pageKey, []domain.Card]
}

// NewCache creates a cache holding at most maxPages decoded pages.
func NewCache(maxPages int) (*Cache, error) {
	pages, err := lru.New[pageKey, []domain.Card](maxPages)
	if err != nil {
		return nil, fmt.Errorf("new page cache: %w", err)
	}
	return &Cache{pages: pages}, nil
}

// Array is a read-only, fixed-length card sequence backed by a paged file.
// Safe for concurrent readers; all mutable state lives in the shared cache,
// which serializes its own updates.
type Array struct {
	path           string
	file           *os.File
	length         int
	recordsPerPage int
	offsets        []int64
	dataStart      int64
	dataEnd        int64
	cache          *Cache
}

// Load opens a paged array file and validates its header and index.
// The returned array reads pages through the given cache.
func Load(path string, cache *Cache) (*Array, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open disk array %s: %w", path, err)
	}

	reader := bufio.NewReader(file)
	headerLine, err := reader.ReadBytes('\n')
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read disk array header %s: %w", path, err)
	}
	indexLine, err := reader.ReadBytes('\n')
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read disk array index %s: %w", path, err)
	}

	var head header
	if err := json.Unmarshal(headerLine, &head); err != nil {
		file.Close()
		return nil, fmt.Errorf("decode disk array header %s: %w", path, err)
	}
	var offsets []int64
	if err := json.Unmarshal(indexLine, &offsets); err != nil {
		file.Close()
		return nil, fmt.Errorf("decode disk array index %s: %w", path, err)
	}

	if head.Version != 1 {
		file.Close()
		return nil, fmt.Errorf("disk array %s: unsupported version %d", path, head.Version)
	}
	if head.RecordsPerPage <= 0 || head.Length < 0 {
		file.Close()
		return nil, fmt.Errorf("disk array %s: invalid header", path)
	}
	pageCount := (head.Length + head.RecordsPerPage - 1) / head.RecordsPerPage
	if len(offsets) != pageCount {
		file.Close()
		return nil, fmt.Errorf("disk array %s: index has %d pages, expected %d", path, len(offsets), pageCount)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat disk array %s: %w", path, err)
	}

	return &Array{
		path:           path,
		file:           file,
		length:         head.Length,
		recordsPerPage: head.RecordsPerPage,
		offsets:        offsets,
		dataStart:      int64(len(headerLine) + len(indexLine)),
		dataEnd:        info.Size(),
		cache:          cache,
	}, nil
}

// Len reports the record count, fixed at load time.
func (a *Array) Len() int { return a.length }

// Get returns the card at index. A miss on the containing page triggers a
// synchronous disk read and inserts the decoded page into the shared cache.
func (a *Array) Get(_ context.Context, index int) (domain.Card, error) {
	if index < 0 || index >= a.length {
		return domain.Card{}, domain.ErrCardOutOfRange
	}

	page := index / a.recordsPerPage
	key := pageKey{path: a.path, page: page}

	cards, ok := a.cache.pages.Get(key)
	if !ok {
		var err error
		cards, err = a.readPage(page)
		if err != nil {
			return domain.Card{}, err
		}
		a.cache.pages.Add(key, cards)
	}

	offset := index % a.recordsPerPage
	if offset >= len(cards) {
		return domain.Card{}, fmt.Errorf("disk array %s: page %d holds %d records, wanted %d", a.path, page, len(cards), offset)
	}
	return cards[offset], nil
}

func (a *Array) readPage(page int) ([]domain.Card, error) {
	start := a.dataStart + a.offsets[page]
	end := a.dataEnd
	if page+1 < len(a.offsets) {
		end = a.dataStart + a.offsets[page+1]
	}

	buf := make([]byte, end-start)
	if _, err := a.file.ReadAt(buf, start); err != nil {
		return nil, fmt.Errorf("read disk array page %s[%d]: %w", a.path, page, err)
	}
	var cards []domain.Card
	if err := json.Unmarshal(buf, &cards); err != nil {
		return nil, fmt.Errorf("decode disk array page %s[%d]: %w", a.path, page, err)
	}
	return cards, nil
}

// Close releases the underlying file. Cached pages remain valid.
func (a *Array) Close() error { return a.file.Close() }
