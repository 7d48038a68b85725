// Package enrich fetches supplementary per-movie attributes from a remote
// source and memoizes them for the life of the Adapter.
//
// The Adapter owns its cache. Every distinct id causes exactly one call to
// the Source, even when several goroutines ask for it at the same time.
// Failed fetches are not cached, so a later call may try again.
package enrich

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"movielens/internal/metrics"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Source returns every label/value pair the remote side knows for id.
type Source interface {
	Fetch(ctx context.Context, id string) (map[string]string, error)
}

// Named is implemented by sources that want a label in fetch metrics.
type Named interface {
	Name() string
}

// Adapter memoizes a Source per id. The zero value is not usable; call New.
type Adapter struct {
	src   Source
	label string

	mu    sync.RWMutex
	cache map[string]map[string]string

	group    singleflight.Group
	requests atomic.Int64
}

// New returns an Adapter with an empty cache in front of src.
func New(src Source) *Adapter {
	label := "remote"
	if n, ok := src.(Named); ok {
		label = n.Name()
	}
	return &Adapter{
		src:   src,
		label: label,
		cache: make(map[string]map[string]string),
	}
}

// FetchFields returns the requested names for id. Names the source does not
// expose map to Absent; names not requested are dropped.
func (a *Adapter) FetchFields(ctx context.Context, id string, names ...string) (Fields, error) {
	all, err := a.all(ctx, id)
	if err != nil {
		return nil, err
	}
	return project(all, names), nil
}

// Requests reports how many times the Source has been called.
func (a *Adapter) Requests() int64 { return a.requests.Load() }

// Len reports how many ids are cached.
func (a *Adapter) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.cache)
}

// Cached reports whether id is already in the cache.
func (a *Adapter) Cached(id string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.cache[id]
	return ok
}

// Warm fetches ids into the cache with at most workers concurrent requests.
// onDone, when non-nil, is called once per distinct id and may be called
// from several goroutines. The first error cancels the remaining fetches and
// is returned.
func (a *Adapter) Warm(ctx context.Context, ids []string, workers int, onDone func(id string, err error)) error {
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		g.Go(func() error {
			_, err := a.all(gctx, id)
			if onDone != nil {
				onDone(id, err)
			}
			return err
		})
	}
	return g.Wait()
}

func (a *Adapter) all(ctx context.Context, id string) (map[string]string, error) {
	a.mu.RLock()
	hit, ok := a.cache[id]
	a.mu.RUnlock()
	if ok {
		return hit, nil
	}

	v, err, _ := a.group.Do(id, func() (any, error) {
		a.mu.RLock()
		hit, ok := a.cache[id]
		a.mu.RUnlock()
		if ok {
			return hit, nil
		}

		start := time.Now()
		fields, err := a.src.Fetch(ctx, id)
		a.requests.Add(1)
		metrics.RecordFetch(a.label, err, time.Since(start))
		if err != nil {
			return nil, err
		}
		if fields == nil {
			fields = map[string]string{}
		}

		a.mu.Lock()
		a.cache[id] = fields
		a.mu.Unlock()
		return fields, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}
