package eliasfano

import (
	"math/bits"

	"github.com/xflash-panda/eliasfano/pkg/bitpack"
	"github.com/xflash-panda/eliasfano/pkg/rankselect"
)

// Indexed augments Monotone with predecessor/successor/contains/indexOf,
// built on a SelectZero over the same upper-bits vector. Per spec.md §9's
// redesign note, the successor/predecessor family returns (value, index)
// pairs rather than mutating a shared cursor, so every method here is
// safe for concurrent read.
type Indexed struct {
	*Monotone
	selZero     *rankselect.SelectZero
	first, last uint64
	hasElements bool
}

// NewIndexed builds an Indexed sequence the same way NewMonotone does.
func NewIndexed(n, u uint64, next Source) (*Indexed, error) {
	m, err := NewMonotone(n, u, next)
	if err != nil {
		return nil, err
	}
	return newIndexed(m), nil
}

func newIndexed(m *Monotone) *Indexed {
	zeros := m.upperBits.Len() - m.sel.NumOnes()
	x := &Indexed{
		Monotone: m,
		selZero:  rankselect.NewSelectZero(m.upperBits, zeros),
	}
	if m.n > 0 {
		x.hasElements = true
		x.first = m.GetUnchecked(0)
		x.last = m.GetUnchecked(m.n - 1)
	}
	return x
}

// First returns the smallest element, if any.
func (x *Indexed) First() (uint64, bool) { return x.first, x.hasElements }

// Last returns the largest element, if any.
func (x *Indexed) Last() (uint64, bool) { return x.last, x.hasElements }

// NumBits reports the approximate total size in bits, including the
// SelectZero index on top of the underlying Monotone.
func (x *Indexed) NumBits() uint64 { return x.Monotone.NumBits() + x.selZero.NumBits() }

// bucketWindowForward seeds a forward-scanning window of upper-bit positions
// starting at the first one-bit at or after pos (pos itself included).
func (x *Indexed) bucketWindowForward(pos uint64) (wordIdx int, window uint64) {
	wordIdx = bitpack.Word(pos)
	window = x.upperBits.GetLong(uint64(wordIdx)*64, 64) &^ bitpack.Mask(bitpack.Bit(pos))
	return
}

func (x *Indexed) fillForward(wordIdx int, window uint64) (int, uint64) {
	for window == 0 {
		wordIdx++
		window = x.upperBits.GetLong(uint64(wordIdx)*64, 64)
	}
	return wordIdx, window
}

func (x *Indexed) fillBackward(wordIdx int, window uint64) (int, uint64) {
	for window == 0 {
		wordIdx--
		window = x.upperBits.GetLong(uint64(wordIdx)*64, 64)
	}
	return wordIdx, window
}

// decodeAt combines an upper-bits position with a rank into the value it
// encodes: ((position - rank) << l) | lowerBits[rank].
func (x *Indexed) decodeAt(bitPos, rank uint64) uint64 {
	upper := bitPos - rank
	var lo uint64
	if x.l > 0 {
		lo = x.lowerBits.GetLong(rank*uint64(x.l), x.l)
	}
	return upper<<x.l | lo
}

// successorCore implements both Successor (cmp = >=) and StrictSuccessor
// (cmp = >), per spec.md §4.5.1–§4.5.2.
func (x *Indexed) successorCore(lb uint64, cmp func(v uint64) bool) (value, index uint64, found bool) {
	if !x.hasElements {
		return 0, 0, false
	}
	if cmp(x.first) {
		return x.first, 0, true
	}
	if !cmp(x.last) {
		return 0, 0, false
	}

	zerosToSkip := lb >> x.l
	var position uint64
	if zerosToSkip > 0 {
		position = x.selZero.Select(zerosToSkip-1) + 1
	}
	rank := position - zerosToSkip

	wordIdx, window := x.bucketWindowForward(position)
	for {
		wordIdx, window = x.fillForward(wordIdx, window)
		bitPos := uint64(wordIdx)*64 + uint64(bits.TrailingZeros64(window))
		v := x.decodeAt(bitPos, rank)
		if cmp(v) {
			return v, rank, true
		}
		window &= window - 1
		rank++
	}
}

// predecessorCore implements both Predecessor (cmp = <) and
// WeakPredecessor (cmp = <=).
func (x *Indexed) predecessorCore(ub uint64, cmp func(v uint64) bool) (value, index uint64, found bool) {
	if !x.hasElements {
		return 0, 0, false
	}
	if cmp(x.last) {
		return x.last, x.n - 1, true
	}
	if !cmp(x.first) {
		return 0, 0, false
	}

	zerosToSkip := ub >> x.l
	zeroPos := x.selZero.Select(zerosToSkip)
	start := zeroPos - 1
	rank := zeroPos - zerosToSkip - 1

	wordIdx := bitpack.Word(start)
	window := x.upperBits.GetLong(uint64(wordIdx)*64, 64) & bitpack.Mask(bitpack.Bit(start)+1)
	for {
		wordIdx, window = x.fillBackward(wordIdx, window)
		top := uint(63 - bits.LeadingZeros64(window))
		bitPos := uint64(wordIdx)*64 + uint64(top)
		v := x.decodeAt(bitPos, rank)
		if cmp(v) {
			return v, rank, true
		}
		window &^= uint64(1) << top
		rank--
	}
}

// Successor returns the smallest element >= lb, or found=false if none.
func (x *Indexed) Successor(lb uint64) (value, index uint64, found bool) {
	return x.successorCore(lb, func(v uint64) bool { return v >= lb })
}

// StrictSuccessor returns the smallest element > lb, or found=false if none.
func (x *Indexed) StrictSuccessor(lb uint64) (value, index uint64, found bool) {
	if lb == ^uint64(0) {
		return 0, 0, false
	}
	return x.successorCore(lb, func(v uint64) bool { return v > lb })
}

// Predecessor returns the largest element < ub, or found=false if none.
func (x *Indexed) Predecessor(ub uint64) (value, index uint64, found bool) {
	return x.predecessorCore(ub, func(v uint64) bool { return v < ub })
}

// WeakPredecessor returns the largest element <= ub, or found=false if none.
func (x *Indexed) WeakPredecessor(ub uint64) (value, index uint64, found bool) {
	return x.predecessorCore(ub, func(v uint64) bool { return v <= ub })
}

// SuccessorIndex is like Successor but skips decoding lower bits once the
// scan has moved past lb's own bucket, where any element already compares
// >= lb regardless of its lower bits.
func (x *Indexed) SuccessorIndex(lb uint64) (index uint64, found bool) {
	if !x.hasElements || lb > x.last {
		if x.hasElements && lb <= x.first {
			return 0, true
		}
		return 0, false
	}
	if lb <= x.first {
		return 0, true
	}

	zerosToSkip := lb >> x.l
	var position uint64
	if zerosToSkip > 0 {
		position = x.selZero.Select(zerosToSkip-1) + 1
	}
	rank := position - zerosToSkip

	wordIdx, window := x.bucketWindowForward(position)
	for {
		wordIdx, window = x.fillForward(wordIdx, window)
		bitPos := uint64(wordIdx)*64 + uint64(bits.TrailingZeros64(window))
		if bitPos-rank > zerosToSkip {
			return rank, true
		}
		v := x.decodeAt(bitPos, rank)
		if v >= lb {
			return rank, true
		}
		window &= window - 1
		rank++
	}
}

// Contains reports whether v occurs in the sequence.
func (x *Indexed) Contains(v uint64) bool {
	_, found := x.IndexOf(v)
	return found
}

// IndexOf returns the smallest index i with x[i] == v, if any.
func (x *Indexed) IndexOf(v uint64) (index uint64, found bool) {
	if !x.hasElements || v < x.first || v > x.last {
		return 0, false
	}
	idx, ok := x.SuccessorIndex(v)
	if !ok {
		return 0, false
	}
	got, err := x.Get(idx)
	if err != nil || got != v {
		return 0, false
	}
	return idx, true
}
