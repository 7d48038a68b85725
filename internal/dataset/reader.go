package dataset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"movielens/internal/datasource"
)

// ctxCheckEvery bounds how many lines are read between context checks.
const ctxCheckEvery = 4096

// Reader yields Records from a stream, one line at a time. It is not safe for
// concurrent use and cannot be rewound; open the source again to re-read.
type Reader struct {
	ctx    context.Context
	br     *bufio.Reader
	schema Schema
	closer io.Closer

	line   int
	header bool
	done   bool
}

// NewReader wraps r. The first line is treated as a header and discarded.
func NewReader(r io.Reader, schema Schema) *Reader {
	return &Reader{
		ctx:    context.Background(),
		br:     bufio.NewReaderSize(r, 64*1024),
		schema: schema,
	}
}

// Open opens src and returns a Reader over it. The caller must Close it.
func Open(ctx context.Context, src datasource.Source, schema Schema) (*Reader, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", schema.Name, err)
	}
	r := NewReader(rc, schema)
	r.ctx = ctx
	r.closer = rc
	return r, nil
}

// Each opens src, calls fn for every record and closes the source. The first
// error from parsing, I/O or fn stops the walk and is returned.
func Each(ctx context.Context, src datasource.Source, schema Schema, fn func(Record) error) error {
	r, err := Open(ctx, src, schema)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// Line reports the 1-based line number of the last line read.
func (r *Reader) Line() int { return r.line }

// Next returns the next record, or io.EOF once the stream is exhausted.
// Blank lines never produce a record, so a trailing newline is harmless.
func (r *Reader) Next() (Record, error) {
	for !r.done {
		raw, err := r.br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset %s: read line %d: %w", r.schema.Name, r.line+1, err)
		}
		if errors.Is(err, io.EOF) {
			r.done = true
			if raw == "" {
				break
			}
		}
		r.line++

		if r.line%ctxCheckEvery == 0 {
			if cerr := r.ctx.Err(); cerr != nil {
				return nil, cerr
			}
		}

		text := strings.TrimRight(raw, "\r\n")
		if !r.header {
			r.header = true
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		return r.schema.ParseLine(text, r.line)
	}
	return nil, io.EOF
}

// All adapts the reader to a range-over-func sequence. Iteration stops after
// the first error is yielded.
func (r *Reader) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			rec, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// Close releases the underlying source when the Reader was built by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}
