package eliasfano

import (
	"math/bits"

	"github.com/xflash-panda/eliasfano/pkg/bitpack"
	"github.com/xflash-panda/eliasfano/pkg/bitvector"
)

// NonDecreasing encodes an arbitrary sequence of naturals, each no smaller
// than lowerBound (lowerBound may be negative). Each element v is biased by
// offset = -lowerBound + 1 so that v' = v + offset is always >= 1, then
// stored as its bit length minus one (msb_i = floor(log2(v'))) plus the low
// msb_i bits of v'; the high, implicit bit is reconstructed on read. The
// msb widths are laid out end to end in a flat bit array, and an
// EF-Monotone over their prefix sums gives each element's start boundary in
// that array.
type NonDecreasing struct {
	boundaries *Monotone
	bits       *bitvector.BitVector
	offset     int64
}

// NewNonDecreasing builds a NonDecreasing view over n values, each required
// to be >= lowerBound. Returns ErrLowerBoundExceeded if an input value falls
// below it.
func NewNonDecreasing(n uint64, lowerBound int64, next Source) (*NonDecreasing, error) {
	offset := -lowerBound + 1

	shifted := make([]uint64, n)
	widths := make([]uint64, n)
	var totalBits uint64

	for i := uint64(0); i < n; i++ {
		v, ok := next()
		if !ok {
			return nil, newConstructionError(ErrTruncated, i, 0)
		}
		if int64(v) < lowerBound {
			return nil, newConstructionError(ErrLowerBoundExceeded, i, v)
		}
		vp := uint64(int64(v) + offset)
		w := uint64(bits.Len64(vp)) - 1 // vp >= 1, so Len64(vp) >= 1
		shifted[i] = vp
		widths[i] = w
		totalBits += w
	}
	if _, ok := next(); ok {
		return nil, newConstructionError(ErrOverrun, n, 0)
	}

	i := uint64(0)
	running := uint64(0)
	boundarySource := func() (uint64, bool) {
		if i > n {
			return 0, false
		}
		v := running
		if i < n {
			running += widths[i]
		}
		i++
		return v, true
	}
	boundaries, err := NewMonotone(n+1, totalBits+1, boundarySource)
	if err != nil {
		return nil, err
	}

	packed := bitvector.New(totalBits)
	var pos uint64
	for idx, vp := range shifted {
		w := widths[idx]
		if w > 0 {
			packed.SetLong(pos, uint(w), vp&bitpack.Mask(uint(w)))
		}
		pos += w
	}

	return &NonDecreasing{boundaries: boundaries, bits: packed, offset: offset}, nil
}

// Len returns the number of elements.
func (d *NonDecreasing) Len() uint64 { return d.boundaries.Len() - 1 }

// NumBits reports the approximate total size in bits.
func (d *NonDecreasing) NumBits() uint64 { return d.boundaries.NumBits() + d.bits.Len() }

func (d *NonDecreasing) decode(from, to uint64) uint64 {
	width := to - from
	var bitsVal uint64
	if width > 0 {
		bitsVal = d.bits.GetLong(from, uint(width))
	}
	vp := uint64(1)<<width | bitsVal
	return uint64(int64(vp) - d.offset)
}

// GetUnchecked returns x[i]. Behavior is undefined if i >= Len().
func (d *NonDecreasing) GetUnchecked(i uint64) uint64 {
	var b [2]uint64
	d.boundaries.GetManyUnchecked(i, b[:])
	return d.decode(b[0], b[1])
}

// Get returns x[i], or ErrOutOfBounds if i >= Len().
func (d *NonDecreasing) Get(i uint64) (uint64, error) {
	if i >= d.Len() {
		return 0, ErrOutOfBounds
	}
	return d.GetUnchecked(i), nil
}

// GetManyUnchecked fills dest with x[i..i+len(dest)). Behavior is undefined
// if i+len(dest) > Len().
func (d *NonDecreasing) GetManyUnchecked(i uint64, dest []uint64) {
	if len(dest) == 0 {
		return
	}
	boundarySlice := make([]uint64, len(dest)+1)
	d.boundaries.GetManyUnchecked(i, boundarySlice)
	for j := range dest {
		dest[j] = d.decode(boundarySlice[j], boundarySlice[j+1])
	}
}

// GetMany fills dest with x[i..i+len(dest)), or ErrOutOfBounds if that range
// runs past Len().
func (d *NonDecreasing) GetMany(i uint64, dest []uint64) error {
	n := d.Len()
	if i > n || uint64(len(dest)) > n-i {
		return ErrOutOfBounds
	}
	d.GetManyUnchecked(i, dest)
	return nil
}

// NonDecreasingIterator walks elements forward, decoding each one from the
// boundary it shares with the next.
type NonDecreasingIterator struct {
	d    *NonDecreasing
	it   *Iterator
	from uint64
}

// Iter returns an iterator positioned before the first element.
func (d *NonDecreasing) Iter() *NonDecreasingIterator { return d.IterFrom(0) }

// IterFrom returns an iterator positioned so Next returns x[i] first. i may
// equal Len().
func (d *NonDecreasing) IterFrom(i uint64) *NonDecreasingIterator {
	from, _ := d.boundaries.Get(i)
	return &NonDecreasingIterator{d: d, it: d.boundaries.IterFrom(i + 1), from: from}
}

// Next returns the next element, or false once exhausted.
func (it *NonDecreasingIterator) Next() (uint64, bool) {
	to, ok := it.it.Next()
	if !ok {
		return 0, false
	}
	v := it.d.decode(it.from, to)
	it.from = to
	return v, true
}
