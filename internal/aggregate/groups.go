package aggregate

import (
	"fmt"

	"movielens/internal/stats"
)

// Groups collects values per key, in first-seen key order.
type Groups[K comparable] struct {
	index  map[K]int
	keys   []K
	values [][]float64
}

// NewGroups returns an empty Groups.
func NewGroups[K comparable]() *Groups[K] {
	return &Groups[K]{index: make(map[K]int)}
}

// Add appends v to k's group.
func (g *Groups[K]) Add(k K, v float64) {
	i, ok := g.index[k]
	if !ok {
		i = len(g.keys)
		g.index[k] = i
		g.keys = append(g.keys, k)
		g.values = append(g.values, nil)
	}
	g.values[i] = append(g.values[i], v)
}

// Len reports the number of groups.
func (g *Groups[K]) Len() int { return len(g.keys) }

// Reduce applies metric to every group and rounds the result to places
// decimals. The ranking is in first-seen key order.
func (g *Groups[K]) Reduce(metric stats.Metric, places int) (Ranking[K, float64], error) {
	out := make(Ranking[K, float64], 0, len(g.keys))
	for i, k := range g.keys {
		v, err := metric(g.values[i])
		if err != nil {
			return nil, fmt.Errorf("aggregate: group %v: %w", k, err)
		}
		out = append(out, Entry[K, float64]{Key: k, Value: stats.Round(v, places)})
	}
	return out, nil
}

// TopByMetric reduces every group, sorts by the metric largest first and
// keeps the first n.
func (g *Groups[K]) TopByMetric(metric stats.Metric, places, n int) (Ranking[K, float64], error) {
	r, err := g.Reduce(metric, places)
	if err != nil {
		return nil, err
	}
	SortDesc(r)
	return r.Top(n), nil
}
