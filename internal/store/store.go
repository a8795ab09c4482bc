package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nhle/order-incidents/internal/model"
)

// Storage keys of the three persisted collections.
const (
	KeyOrderLines   = "order_lines"
	KeyRawIncidents = "incident_rows_raw"
	KeyIncidents    = "incidents"
)

// Store is the persistence boundary: a key-value store whose values are
// whole JSON documents, plus a log of import batches.
//
// Writes replace the stored value of a key entirely. There is no merge and
// no optimistic-concurrency check, so when two processes write the same key
// the last writer wins. Callers are expected to be the single active writer.
type Store interface {
	// Get returns the value stored under key. ok is false if the key has
	// never been written.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set overwrites the value stored under key and bumps its revision.
	Set(ctx context.Context, key string, value []byte) error
	// Revision returns how many times key has been written (0 if never).
	Revision(ctx context.Context, key string) (int64, error)
	// Subscribe registers fn to be called with the new value after every
	// successful Set of key in this process.
	Subscribe(key string, fn func(value []byte)) (unsubscribe func())

	RecordBatch(ctx context.Context, batch model.ImportBatch) error
	GetBatches(ctx context.Context, limit int) ([]model.ImportBatch, error)

	Close() error
}

// LoadCollection decodes the JSON array stored under key. A missing key
// yields an empty collection.
func LoadCollection[T any](ctx context.Context, s Store, key string) ([]T, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// SaveCollection encodes items as a JSON array and overwrites key.
func SaveCollection[T any](ctx context.Context, s Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
