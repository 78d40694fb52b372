package diskarray

import (
	"encoding/json"
	"fmt"
	"os"

	"quiz-deck-service/internal/domain"
)

// DefaultRecordsPerPage is the page size used by the pack command and tests.
const DefaultRecordsPerPage = 100

// Write persists cards as a paged array file readable by Load. The file is
// written to a temp path and renamed into place so readers never observe a
// partial array.
func Write(path string, cards []domain.Card, recordsPerPage int) error {
	if recordsPerPage <= 0 {
		return fmt.Errorf("write disk array %s: records per page must be positive", path)
	}

	pageCount := (len(cards) + recordsPerPage - 1) / recordsPerPage
	pages := make([][]byte, 0, pageCount)
	offsets := make([]int64, 0, pageCount)

	var offset int64
	for start := 0; start < len(cards); start += recordsPerPage {
		end := start + recordsPerPage
		if end > len(cards) {
			end = len(cards)
		}
		encoded, err := json.Marshal(cards[start:end])
		if err != nil {
			return fmt.Errorf("encode disk array page: %w", err)
		}
		encoded = append(encoded, '\n')
		pages = append(pages, encoded)
		offsets = append(offsets, offset)
		offset += int64(len(encoded))
	}

	headerLine, err := json.Marshal(header{Version: 1, Length: len(cards), RecordsPerPage: recordsPerPage})
	if err != nil {
		return fmt.Errorf("encode disk array header: %w", err)
	}
	indexLine, err := json.Marshal(offsets)
	if err != nil {
		return fmt.Errorf("encode disk array index: %w", err)
	}

	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create disk array %s: %w", path, err)
	}

	write := func(b []byte) {
		if err == nil {
			_, err = file.Write(b)
		}
	}
	write(headerLine)
	write([]byte{'\n'})
	write(indexLine)
	write([]byte{'\n'})
	for _, page := range pages {
		write(page)
	}
	if err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("write disk array %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close disk array %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}
