// Package eliasfano implements the Elias–Fano encoding of a monotone
// sequence of naturals: each value's upper bits live in a unary-gap bit
// vector with select support, its lower bits are packed contiguously,
// together using space close to the information-theoretic lower bound
// while supporting O(1) amortized random access.
package eliasfano

import (
	"math/bits"

	"github.com/xflash-panda/eliasfano/pkg/bitpack"
	"github.com/xflash-panda/eliasfano/pkg/bitvector"
	"github.com/xflash-panda/eliasfano/pkg/rankselect"
)

// Source yields the next value of the sequence being encoded, and false
// once exhausted. Construction calls it exactly n times and then once
// more to detect an overrun.
type Source func() (value uint64, ok bool)

// Monotone is the canonical Elias–Fano encoding of a nondecreasing
// sequence of n naturals x[0] <= x[1] <= ... < u.
type Monotone struct {
	n, u      uint64
	l         uint
	lowerBits *bitvector.BitVector
	upperBits *bitvector.BitVector
	sel       *rankselect.Select
}

// lowerWidth computes l = max(0, floor(log2(u/n))), the per-element
// lower-bit field width, matching spec.md §4.4's literal worked examples
// (integer division of u/n before taking the bit length).
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

// NewMonotone builds a Monotone from n values below the strict bound u,
// drawn from next. Every call to next must return a value in [0, u) no
// smaller than the previous one; next must return ok=false exactly after
// its n-th successful call.
func NewMonotone(n, u uint64, next Source) (*Monotone, error) {
	l := lowerWidth(n, u)

	lower := bitvector.New(n * uint64(l))
	upperLen := n + (u >> l) + 2
	upper := bitvector.New(upperLen)

	var prev uint64
	for i := uint64(0); i < n; i++ {
		v, ok := next()
		if !ok {
			return nil, newConstructionError(ErrTruncated, i, 0)
		}
		if i > 0 && v < prev {
			return nil, newConstructionError(ErrOutOfOrder, i, v)
		}
		if v >= u {
			return nil, newConstructionError(ErrOutOfRange, i, v)
		}
		if l > 0 {
			lower.SetLong(i*uint64(l), l, v&bitpack.Mask(l))
		}
		upper.Set((v >> l) + i)
		prev = v
	}
	if _, ok := next(); ok {
		return nil, newConstructionError(ErrOverrun, n, 0)
	}

	m := &Monotone{
		n: n, u: u, l: l,
		lowerBits: lower,
		upperBits: upper,
		sel:       rankselect.NewSelect(upper, n),
	}
	assertInvariants(m)
	return m, nil
}

// FromParts rebuilds a Monotone from its raw pieces: n, u, and l as
// recorded at construction time, and the word slices backing the upper-
// and lower-bit vectors. It exists for efmmap, which loads lowerWords
// from a memory-mapped file instead of a heap allocation; the resulting
// Monotone behaves identically to one built fresh via NewMonotone.
func FromParts(n, u uint64, l uint, upperWords, lowerWords []uint64) *Monotone {
	upperLen := n + (u >> l) + 2
	upper := bitvector.FromWords(upperWords, upperLen)
	lower := bitvector.FromWords(lowerWords, n*uint64(l))
	m := &Monotone{
		n: n, u: u, l: l,
		lowerBits: lower,
		upperBits: upper,
		sel:       rankselect.NewSelect(upper, n),
	}
	assertInvariants(m)
	return m
}

// N returns the declared element count, as passed to NewMonotone.
func (m *Monotone) N() uint64 { return m.n }

// U returns the declared strict universe bound, as passed to NewMonotone.
func (m *Monotone) U() uint64 { return m.u }

// L returns the per-element lower-bit field width chosen at construction.
func (m *Monotone) L() uint { return m.l }

// UpperWords exposes the upper-bits vector's backing words, e.g. for
// serialization.
func (m *Monotone) UpperWords() []uint64 { return m.upperBits.Words() }

// LowerWords exposes the lower-bits vector's backing words, e.g. for
// serialization.
func (m *Monotone) LowerWords() []uint64 { return m.lowerBits.Words() }

// Len returns the number of elements.
func (m *Monotone) Len() uint64 { return m.n }

// IsEmpty reports whether the sequence has no elements.
func (m *Monotone) IsEmpty() bool { return m.n == 0 }

// NumBits reports the approximate total size of the structure in bits:
// the lower-bit payload, the upper-bits vector, and the select index.
func (m *Monotone) NumBits() uint64 {
	return m.lowerBits.Len() + m.upperBits.Len() + m.sel.NumBits()
}

// GetUnchecked returns x[i]. Behavior is undefined if i >= Len().
func (m *Monotone) GetUnchecked(i uint64) uint64 {
	upper := m.sel.Select(i) - i
	if m.l == 0 {
		return upper
	}
	return upper<<m.l | m.lowerBits.GetLong(i*uint64(m.l), m.l)
}

// Get returns x[i], or ErrOutOfBounds if i >= Len().
func (m *Monotone) Get(i uint64) (uint64, error) {
	if i >= m.n {
		return 0, ErrOutOfBounds
	}
	return m.GetUnchecked(i), nil
}

// DeltaUnchecked returns x[i+1] - x[i] using a single bulk select of two
// ranks plus two lower-field reads. Behavior is undefined if i+1 >= Len().
func (m *Monotone) DeltaUnchecked(i uint64) uint64 {
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

// Delta returns x[i+1] - x[i], or ErrOutOfBounds if i+1 >= Len().
func (m *Monotone) Delta(i uint64) (uint64, error) {
	if m.n < 2 || i >= m.n-1 {
		return 0, ErrOutOfBounds
	}
	return m.DeltaUnchecked(i), nil
}

// GetManyUnchecked fills dest with x[i], x[i+1], ..., x[i+len(dest)-1]
// using a single bulk select. Behavior is undefined if i+len(dest) > Len().
func (m *Monotone) GetManyUnchecked(i uint64, dest []uint64) {
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

// GetMany fills dest with x[i..i+len(dest)), or returns ErrOutOfBounds if
// that range runs past Len().
func (m *Monotone) GetMany(i uint64, dest []uint64) error {
	if i > m.n || uint64(len(dest)) > m.n-i {
		return ErrOutOfBounds
	}
	m.GetManyUnchecked(i, dest)
	return nil
}
