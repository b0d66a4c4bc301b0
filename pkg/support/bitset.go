// Package support provides the storage primitives the IR and its
// analyses are built on: arena maps keyed by opaque handles, and a
// fixed-universe bit set.
package support

import "math/bits"

const wordBits = 64

// BitSet is a mutable set of small integers with a universe size fixed
// at construction (rounded up to word granularity). Binary operations
// require equal-size operands.
type BitSet struct {
	words []uint64
}

// NewBitSet returns an empty set able to hold values in [0, size).
func NewBitSet(size int) BitSet {
	if size < 0 {
		panic("support: negative bitset size")
	}
	return BitSet{words: make([]uint64, (size+wordBits-1)/wordBits)}
}

// Len reports the universe size in bits.
func (s BitSet) Len() int {
	return len(s.words) * wordBits
}

// Add sets bit i. Out-of-range indices panic.
func (s BitSet) Add(i int) {
	if i < 0 || i >= s.Len() {
		panic("support: bitset index out of range")
	}
	s.words[i/wordBits] |= 1 << (i % wordBits)
}

// Del clears bit i. Out-of-range indices panic.
func (s BitSet) Del(i int) {
	if i < 0 || i >= s.Len() {
		panic("support: bitset index out of range")
	}
	s.words[i/wordBits] &^= 1 << (i % wordBits)
}

// Has reports whether bit i is set. Out-of-range queries return false.
func (s BitSet) Has(i int) bool {
	if i < 0 || i >= s.Len() {
		return false
	}
	return s.words[i/wordBits]&(1<<(i%wordBits)) != 0
}

// Count returns the number of set bits.
func (s BitSet) Count() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Union adds every bit of other to s.
func (s BitSet) Union(other BitSet) {
	s.check(other)
	for i := range s.words {
		s.words[i] |= other.words[i]
	}
}

// Intersect removes every bit of s not present in other.
func (s BitSet) Intersect(other BitSet) {
	s.check(other)
	for i := range s.words {
		s.words[i] &= other.words[i]
	}
}

// Difference removes every bit of other from s.
func (s BitSet) Difference(other BitSet) {
	s.check(other)
	for i := range s.words {
		s.words[i] &^= other.words[i]
	}
}

func (s BitSet) check(other BitSet) {
	if len(s.words) != len(other.words) {
		panic("support: bitset size mismatch")
	}
}

// Equals reports whether both sets have the same size and contents.
func (s BitSet) Equals(other BitSet) bool {
	if len(s.words) != len(other.words) {
		return false
	}
	for i, w := range s.words {
		if w != other.words[i] {
			return false
		}
	}
	return true
}

// Clear removes all bits.
func (s BitSet) Clear() {
	for i := range s.words {
		s.words[i] = 0
	}
}

// Clone returns an independent copy of s.
func (s BitSet) Clone() BitSet {
	words := make([]uint64, len(s.words))
	copy(words, s.words)
	return BitSet{words: words}
}

// ForEachSet calls f with every set bit position in ascending order.
func (s BitSet) ForEachSet(f func(i int)) {
	for wi, w := range s.words {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			f(wi*wordBits + bit)
			w &^= 1 << bit
		}
	}
}

// ForEachClear calls f with every unset bit position in ascending order.
func (s BitSet) ForEachClear(f func(i int)) {
	for wi, w := range s.words {
		for inv := ^w; inv != 0; {
			bit := bits.TrailingZeros64(inv)
			f(wi*wordBits + bit)
			inv &^= 1 << bit
		}
	}
}
