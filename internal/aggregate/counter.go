package aggregate

// Counter counts occurrences per key and remembers the order in which keys
// first appeared.
type Counter[K comparable] struct {
	index   map[K]int
	entries Ranking[K, int]
}

// NewCounter returns an empty Counter.
func NewCounter[K comparable]() *Counter[K] {
	return &Counter[K]{index: make(map[K]int)}
}

// Add increments k by one.
func (c *Counter[K]) Add(k K) { c.AddN(k, 1) }

// AddN increments k by n.
func (c *Counter[K]) AddN(k K, n int) {
	if i, ok := c.index[k]; ok {
		c.entries[i].Value += n
		return
	}
	c.index[k] = len(c.entries)
	c.entries = append(c.entries, Entry[K, int]{Key: k, Value: n})
}

// Set stores v for k, replacing any earlier count. A new key takes the next
// first-seen position; an existing key keeps its position.
func (c *Counter[K]) Set(k K, v int) {
	if i, ok := c.index[k]; ok {
		c.entries[i].Value = v
		return
	}
	c.index[k] = len(c.entries)
	c.entries = append(c.entries, Entry[K, int]{Key: k, Value: v})
}

// SetOnce records v for k unless k was already seen. It reports whether the
// value was stored.
func (c *Counter[K]) SetOnce(k K, v int) bool {
	if _, ok := c.index[k]; ok {
		return false
	}
	c.index[k] = len(c.entries)
	c.entries = append(c.entries, Entry[K, int]{Key: k, Value: v})
	return true
}

// Len reports the number of distinct keys.
func (c *Counter[K]) Len() int { return len(c.entries) }

// Entries returns a copy of the counts in first-seen order.
func (c *Counter[K]) Entries() Ranking[K, int] {
	out := make(Ranking[K, int], len(c.entries))
	copy(out, c.entries)
	return out
}

// Distribution returns every key sorted by count, largest first. Ties keep
// first-seen order.
func (c *Counter[K]) Distribution() Ranking[K, int] {
	out := c.Entries()
	SortDesc(out)
	return out
}

// Top returns the n most frequent keys.
func (c *Counter[K]) Top(n int) Ranking[K, int] {
	return c.Distribution().Top(n)
}

// Scores holds one value per key. Setting a key again replaces its value but
// keeps the position where the key was first seen.
type Scores[K comparable, V Number] struct {
	index   map[K]int
	entries Ranking[K, V]
}

// NewScores returns an empty Scores.
func NewScores[K comparable, V Number]() *Scores[K, V] {
	return &Scores[K, V]{index: make(map[K]int)}
}

// Set stores v for k. The last value set for a key wins.
func (s *Scores[K, V]) Set(k K, v V) {
	if i, ok := s.index[k]; ok {
		s.entries[i].Value = v
		return
	}
	s.index[k] = len(s.entries)
	s.entries = append(s.entries, Entry[K, V]{Key: k, Value: v})
}

// Len reports the number of distinct keys.
func (s *Scores[K, V]) Len() int { return len(s.entries) }

// Desc returns every key sorted by value, highest first. NaN sorts last and
// ties keep first-seen order.
func (s *Scores[K, V]) Desc() Ranking[K, V] {
	out := make(Ranking[K, V], len(s.entries))
	copy(out, s.entries)
	SortDesc(out)
	return out
}
