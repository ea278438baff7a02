package cacheentry

import (
	"encoding/json"
	"fmt"
)

// JSON encodes entries as {"policy": {...}, "body": "..."}.
type JSON struct{}

func (JSON) Name() string {
	return "json"
}

func (JSON) Encode(entry Entry) (string, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("unable to serialize cache entry: %w", err)
	}
	return string(data), nil
}

func (JSON) Decode(value string) (Entry, error) {
	var entry Entry
	if err := json.Unmarshal([]byte(value), &entry); err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrMalformedEntry, err)
	}
	return entry, nil
}
