package cacheentry

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

// MessagePack encodes entries as MessagePack maps, using the same field names
// as the JSON codec. Unknown fields are skipped when decoding.
type MessagePack struct{}

var (
	_ msgp.Marshaler   = (*Entry)(nil)
	_ msgp.Unmarshaler = (*Entry)(nil)
	_ msgp.Sizer       = (*Entry)(nil)
)

func (MessagePack) Name() string {
	return "msgpack"
}

func (MessagePack) Encode(entry Entry) (string, error) {
	data, err := entry.MarshalMsg(nil)
	if err != nil {
		return "", fmt.Errorf("unable to serialize cache entry: %w", err)
	}
	return string(data), nil
}

func (MessagePack) Decode(value string) (Entry, error) {
	var entry Entry
	if _, err := entry.UnmarshalMsg([]byte(value)); err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrMalformedEntry, err)
	}
	return entry, nil
}
