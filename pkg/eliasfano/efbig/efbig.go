// Package efbig provides BigMonotone, the two-level variant of
// eliasfano.Monotone for universes too large for a single contiguous
// []uint64 allocation (spec.md §4.9): both the upper- and lower-bit
// storage are backed by bitvector.BigBitVector instead of BitVector.
package efbig

import (
	"math/bits"

	"github.com/xflash-panda/eliasfano/pkg/bitpack"
	"github.com/xflash-panda/eliasfano/pkg/bitvector"
	"github.com/xflash-panda/eliasfano/pkg/eliasfano"
	"github.com/xflash-panda/eliasfano/pkg/rankselect"
)

// BigMonotone is eliasfano.Monotone's query surface over chunked storage.
type BigMonotone struct {
	n, u      uint64
	l         uint
	lowerBits *bitvector.BigBitVector
	upperBits *bitvector.BigBitVector
	sel       *rankselect.Select
}

func lowerWidth(n, u uint64) uint {
	if n == 0 || u <= n {
		return 0
	}
	q := u / n
	if q == 0 {
		return 0
	}
	return uint(bits.Len64(q)) - 1
}

// New builds a BigMonotone from n values below the strict bound u, with
// the same source contract as eliasfano.NewMonotone.
func New(n, u uint64, next eliasfano.Source) (*BigMonotone, error) {
	l := lowerWidth(n, u)

	lower := bitvector.NewBig(n * uint64(l))
	upperLen := n + (u >> l) + 2
	upper := bitvector.NewBig(upperLen)

	var prev uint64
	for i := uint64(0); i < n; i++ {
		v, ok := next()
		if !ok {
			return nil, &eliasfano.ConstructionError{Kind: eliasfano.ErrTruncated, Index: i}
		}
		if i > 0 && v < prev {
			return nil, &eliasfano.ConstructionError{Kind: eliasfano.ErrOutOfOrder, Index: i, Value: v}
		}
		if v >= u {
			return nil, &eliasfano.ConstructionError{Kind: eliasfano.ErrOutOfRange, Index: i, Value: v}
		}
		if l > 0 {
			lower.SetLong(i*uint64(l), l, v&bitpack.Mask(l))
		}
		upper.Set((v >> l) + i)
		prev = v
	}
	if _, ok := next(); ok {
		return nil, &eliasfano.ConstructionError{Kind: eliasfano.ErrOverrun, Index: n}
	}

	return &BigMonotone{
		n: n, u: u, l: l,
		lowerBits: lower,
		upperBits: upper,
		sel:       rankselect.NewSelect(upper, n),
	}, nil
}

// Len returns the number of elements.
func (m *BigMonotone) Len() uint64 { return m.n }

// IsEmpty reports whether the sequence has no elements.
func (m *BigMonotone) IsEmpty() bool { return m.n == 0 }

// NumBits reports the approximate total size of the structure in bits.
func (m *BigMonotone) NumBits() uint64 {
	return m.lowerBits.Len() + m.upperBits.Len() + m.sel.NumBits()
}

// GetUnchecked returns x[i]. Behavior is undefined if i >= Len().
func (m *BigMonotone) GetUnchecked(i uint64) uint64 {
	upper := m.sel.Select(i) - i
	if m.l == 0 {
		return upper
	}
	return upper<<m.l | m.lowerBits.GetLong(i*uint64(m.l), m.l)
}

// Get returns x[i], or eliasfano.ErrOutOfBounds if i >= Len().
func (m *BigMonotone) Get(i uint64) (uint64, error) {
	if i >= m.n {
		return 0, eliasfano.ErrOutOfBounds
	}
	return m.GetUnchecked(i), nil
}

// DeltaUnchecked returns x[i+1] - x[i]. Behavior is undefined if i+1 >= Len().
func (m *BigMonotone) DeltaUnchecked(i uint64) uint64 {
	var ranks [2]uint64
	m.sel.BulkSelect(i, ranks[:])

	var lo0, lo1 uint64
	if m.l > 0 {
		lo0 = m.lowerBits.GetLong(i*uint64(m.l), m.l)
		lo1 = m.lowerBits.GetLong((i+1)*uint64(m.l), m.l)
	}
	v0 := (ranks[0]-i)<<m.l | lo0
	v1 := (ranks[1]-(i+1))<<m.l | lo1
	return v1 - v0
}

// Delta returns x[i+1] - x[i], or eliasfano.ErrOutOfBounds if i+1 >= Len().
func (m *BigMonotone) Delta(i uint64) (uint64, error) {
	if m.n < 2 || i >= m.n-1 {
		return 0, eliasfano.ErrOutOfBounds
	}
	return m.DeltaUnchecked(i), nil
}

// GetManyUnchecked fills dest with x[i..i+len(dest)) using a single bulk
// select. Behavior is undefined if i+len(dest) > Len().
func (m *BigMonotone) GetManyUnchecked(i uint64, dest []uint64) {
	if len(dest) == 0 {
		return
	}
	ranks := make([]uint64, len(dest))
	m.sel.BulkSelect(i, ranks)
	for j := range dest {
		idx := i + uint64(j)
		var lo uint64
		if m.l > 0 {
			lo = m.lowerBits.GetLong(idx*uint64(m.l), m.l)
		}
		dest[j] = (ranks[j]-idx)<<m.l | lo
	}
}

// GetMany fills dest with x[i..i+len(dest)), or eliasfano.ErrOutOfBounds if
// that range runs past Len().
func (m *BigMonotone) GetMany(i uint64, dest []uint64) error {
	if i > m.n || uint64(len(dest)) > m.n-i {
		return eliasfano.ErrOutOfBounds
	}
	m.GetManyUnchecked(i, dest)
	return nil
}

// Iterator walks a BigMonotone forward, the BigBitVector analog of
// eliasfano.Iterator.
type Iterator struct {
	m       *BigMonotone
	index   uint64
	wordIdx int
	window  uint64
}

// Iter returns an iterator positioned before index 0.
func (m *BigMonotone) Iter() *Iterator { return m.IterFrom(0) }

// IterFrom returns an iterator positioned so Next returns x[i] first.
func (m *BigMonotone) IterFrom(i uint64) *Iterator {
	it := &Iterator{m: m, index: i}
	it.seed()
	return it
}

func (it *Iterator) seed() {
	if it.index >= it.m.n {
		return
	}
	pos := it.m.sel.Select(it.index)
	it.wordIdx = bitpack.Word(pos)
	it.window = it.m.upperBits.GetLong(uint64(it.wordIdx)*64, 64) &^ bitpack.Mask(bitpack.Bit(pos))
}

func (it *Iterator) fill() {
	for it.window == 0 {
		it.wordIdx++
		it.window = it.m.upperBits.GetLong(uint64(it.wordIdx)*64, 64)
	}
}

// Next returns the next value, or false if the iterator is exhausted.
func (it *Iterator) Next() (uint64, bool) {
	if it.index >= it.m.n {
		return 0, false
	}
	it.fill()
	upper := uint64(it.wordIdx)*64 + uint64(bits.TrailingZeros64(it.window)) - it.index
	var lo uint64
	if it.m.l > 0 {
		lo = it.m.lowerBits.GetLong(it.index*uint64(it.m.l), it.m.l)
	}
	it.window &= it.window - 1
	it.index++
	return upper<<it.m.l | lo, true
}
