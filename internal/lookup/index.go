// Package lookup builds read-only key to value indexes from a dataset, such
// as movie id to title, so other analyses can resolve foreign keys.
package lookup

import (
	"errors"
	"io"

	"movielens/internal/dataset"
)

// RecordReader is the part of dataset.Reader an index needs.
type RecordReader interface {
	Next() (dataset.Record, error)
}

// Index maps a primary key to one derived value. It is immutable once Build
// returns.
type Index[K comparable, V any] struct {
	m map[K]V
}

// Build drains r, storing value(rec) under key(rec) for every record. A
// duplicate key keeps the last value seen. The first read error aborts the
// build and no index is returned.
func Build[K comparable, V any](r RecordReader, key func(dataset.Record) K, value func(dataset.Record) V) (*Index[K, V], error) {
	m := make(map[K]V)
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return &Index[K, V]{m: m}, nil
		}
		if err != nil {
			return nil, err
		}
		m[key(rec)] = value(rec)
	}
}

// Lookup returns the value for k. Unknown keys report false and the zero
// value; they are never an error.
func (ix *Index[K, V]) Lookup(k K) (V, bool) {
	v, ok := ix.m[k]
	return v, ok
}

// Get returns the value for k, or the zero value when k is unknown. For a
// title index that renders missing movies as "".
func (ix *Index[K, V]) Get(k K) V { return ix.m[k] }

// Len reports the number of distinct keys.
func (ix *Index[K, V]) Len() int { return len(ix.m) }
