package cache

import (
	"github.com/vmihailenco/msgpack/v5"
)

// The store holds two kinds of entries: item bodies (the serialized
// representation of one resource, a field -> value map) and page-index
// entries (the ordered id list one collection request returned at population
// time). Both are encoded with msgpack before they hit the Store.

// EncodeBody encodes a serialized resource representation for storage.
func EncodeBody(body map[string]any) ([]byte, error) {
	return msgpack.Marshal(body)
}

// DecodeBody decodes a stored item body.
func DecodeBody(data []byte) (map[string]any, error) {
	var body map[string]any
	if err := msgpack.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// EncodeIDList encodes a page-index id sequence, preserving order.
func EncodeIDList(ids []string) ([]byte, error) {
	return msgpack.Marshal(ids)
}

// DecodeIDList decodes a stored page-index entry.
func DecodeIDList(data []byte) ([]string, error) {
	var ids []string
	if err := msgpack.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
