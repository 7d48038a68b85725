package report

import (
	"context"
	"fmt"
	"math"

	"movielens/internal/metrics"
	"movielens/internal/storage"
)

// rowValues lays a row out in storage.ResultColumns order. NaN metrics and
// empty detail are NULL.
func rowValues(doc Document, s Section, r Row) []any {
	var metric, detail any
	if s.Numeric && !math.IsNaN(r.Value) {
		metric = r.Value
	}
	if r.Text != "" {
		detail = r.Text
	}
	return []any{doc.RunID, doc.Report, s.Name, int64(r.Rank), r.Key, metric, detail, doc.GeneratedAt.UTC()}
}

// Persist streams every row of doc into repo in batches of batchSize. kind
// labels the metrics.
func Persist(ctx context.Context, repo storage.Repository, kind string, doc Document, batchSize int) (storage.LoadResult, error) {
	if batchSize <= 0 {
		return storage.LoadResult{}, fmt.Errorf("report: persist: batch size must be > 0")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rows := make(chan []any, batchSize)
	go func() {
		defer close(rows)
		for _, s := range doc.Sections {
			for _, r := range s.Rows {
				select {
				case rows <- rowValues(doc, s, r):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	res, err := storage.LoadBatches(ctx, storage.ResultColumns, rows, batchSize, repo.CopyFrom)
	metrics.RecordPersisted(kind, res.Rows, res.Batches)
	if err != nil {
		return res, fmt.Errorf("report: persist: %w", err)
	}
	return res, nil
}
