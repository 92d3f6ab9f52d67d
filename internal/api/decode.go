package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/expatpedia/directory/internal/models"
)

// pageEnvelope is the paginated response shape.
type pageEnvelope struct {
	Results *[]json.RawMessage `json:"results"`
	Count   *int               `json:"count"`
	Next    *string            `json:"next"`
}

// DecodePage parses a list response. It accepts {results, count, next}, a
// bare array, or null (treated as empty). Any other shape is an error.
func DecodePage(body []byte) (*models.RawPage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &models.RawPage{}, nil
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		records, err := decodeRecords(items)
		if err != nil {
			return nil, err
		}
		return &models.RawPage{Results: records, Count: len(records), HasCount: true}, nil
	case '{':
		var env pageEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, err
		}
		if env.Results == nil {
			return nil, errors.New("object response has no results field")
		}
		records, err := decodeRecords(*env.Results)
		if err != nil {
			return nil, err
		}
		page := &models.RawPage{Results: records, Count: len(records)}
		if env.Count != nil {
			page.Count = *env.Count
			page.HasCount = true
		}
		if env.Next != nil {
			page.Next = *env.Next
		}
		return page, nil
	}
	return nil, fmt.Errorf("unexpected response starting with %q", trimmed[0])
}

// DecodeRecord parses a single-object response.
func DecodeRecord(body []byte) (models.RawRecord, error) {
	return decodeRecord(bytes.TrimSpace(body))
}

func decodeRecords(items []json.RawMessage) ([]models.RawRecord, error) {
	records := make([]models.RawRecord, 0, len(items))
	for i, item := range items {
		record, err := decodeRecord(item)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func decodeRecord(raw []byte) (models.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var record models.RawRecord
	if err := dec.Decode(&record); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.New("record is not an object")
	}
	return record, nil
}
