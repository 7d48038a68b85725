// Package bitmap is a dense set of non-negative integer ids, used for
// allowlist membership checks over MovieLens movie ids.
package bitmap

import "math/bits"

// Bitmap is a bitset backed by 64-bit words. The zero value is an empty set
// that grows on Add.
type Bitmap struct {
	words []uint64
	n     int
}

// Of returns a bitmap holding ids. Negative ids are ignored.
func Of(ids ...int) *Bitmap {
	b := &Bitmap{}
	for _, id := range ids {
		b.Add(id)
	}
	return b
}

// Add inserts id, growing the backing words as needed. Negative ids are
// ignored.
func (b *Bitmap) Add(id int) {
	if id < 0 {
		return
	}
	w := id / 64
	if w >= len(b.words) {
		b.words = append(b.words, make([]uint64, w+1-len(b.words))...)
	}
	mask := uint64(1) << uint(id%64)
	if b.words[w]&mask == 0 {
		b.words[w] |= mask
		b.n++
	}
}

// Has reports whether id is in the set.
func (b *Bitmap) Has(id int) bool {
	if id < 0 {
		return false
	}
	w := id / 64
	if w >= len(b.words) {
		return false
	}
	return b.words[w]&(uint64(1)<<uint(id%64)) != 0
}

// Len returns the number of distinct ids.
func (b *Bitmap) Len() int { return b.n }

// IDs returns the members in ascending order.
func (b *Bitmap) IDs() []int {
	out := make([]int, 0, b.n)
	for i, w := range b.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			out = append(out, i*64+tz)
			w &= w - 1
		}
	}
	return out
}
