package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
)

// CopyFn inserts rows aligned to columns and reports how many were written.
// Repository.CopyFrom satisfies it.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadResult summarizes a LoadBatches run.
type LoadResult struct {
	Rows    int64
	Batches int64
}

// LoadBatches drains in, groups rows into batches of batchSize and calls
// copyFn once per non-empty batch. It returns what was written before the
// first error. Cancellation returns ctx.Err().
func LoadBatches(
	ctx context.Context,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (LoadResult, error) {
	var res LoadResult
	if batchSize <= 0 {
		return res, fmt.Errorf("storage: batchSize must be > 0")
	}
	if copyFn == nil {
		return res, fmt.Errorf("storage: copyFn must not be nil")
	}

	batch := make([][]any, 0, batchSize)
	start := time.Now()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		res.Rows += n
		batch = batch[:0]
		if err != nil {
			log.Printf("loader: copy failed written=%d total=%d err=%v", n, res.Rows, err)
			return err
		}
		res.Batches++
		log.Printf("loader: batch #%d rows=%d total=%s elapsed=%s",
			res.Batches, n, humanize.Comma(res.Rows), time.Since(start).Truncate(time.Millisecond))
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return res, ctx.Err()

		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return res, err
				}
				return res, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return res, err
				}
			}
		}
	}
}
