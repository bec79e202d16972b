package eliasfano

import (
	"math/bits"

	"github.com/xflash-panda/eliasfano/pkg/bitpack"
)

// Iterator walks a Monotone forward or backward without paying select's
// cost per step: it keeps a 64-bit window of upcoming set bits in
// upperBits and advances through it with TrailingZeros64, falling back to
// select only when seeded or rewound.
type Iterator struct {
	m       *Monotone
	index   uint64
	wordIdx int
	window  uint64
}

// Iter returns an iterator positioned before index 0.
func (m *Monotone) Iter() *Iterator { return m.IterFrom(0) }

// IterFrom returns an iterator positioned so that Next returns x[i] first.
// i may equal Len(), yielding an exhausted iterator.
func (m *Monotone) IterFrom(i uint64) *Iterator {
	it := &Iterator{m: m, index: i}
	it.seed()
	return it
}

// seed re-centers wordIdx/window on the set bit for the current index,
// the same cost as a single Get.
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

// NextUnchecked returns the next value and advances. Behavior is
// undefined once the iterator is exhausted.
func (it *Iterator) NextUnchecked() uint64 {
	it.fill()
	upper := uint64(it.wordIdx)*64 + uint64(bits.TrailingZeros64(it.window)) - it.index
	var lo uint64
	if it.m.l > 0 {
		lo = it.m.lowerBits.GetLong(it.index*uint64(it.m.l), it.m.l)
	}
	it.window &= it.window - 1
	it.index++
	return upper<<it.m.l | lo
}

// Next returns the next value, or false if the iterator is exhausted.
func (it *Iterator) Next() (uint64, bool) {
	if it.index >= it.m.n {
		return 0, false
	}
	return it.NextUnchecked(), true
}

// PreviousUnchecked rewinds by one element and returns it, re-seeding via
// select (equal cost to Get, per spec.md §4.4). Behavior is undefined if
// the iterator is at index 0.
func (it *Iterator) PreviousUnchecked() uint64 {
	it.index--
	it.seed()
	return it.m.GetUnchecked(it.index)
}

// Previous rewinds by one element and returns it, or false at index 0.
func (it *Iterator) Previous() (uint64, bool) {
	if it.index == 0 {
		return 0, false
	}
	return it.PreviousUnchecked(), true
}

// NextIndex advances and returns the index just consumed, without paying
// to decode its value.
func (it *Iterator) NextIndex() (uint64, bool) {
	if it.index >= it.m.n {
		return 0, false
	}
	it.fill()
	idx := it.index
	it.window &= it.window - 1
	it.index++
	return idx, true
}

// PreviousIndex rewinds and returns the new current index.
func (it *Iterator) PreviousIndex() (uint64, bool) {
	if it.index == 0 {
		return 0, false
	}
	it.index--
	it.seed()
	return it.index, true
}

// Index returns the index the next call to Next would return.
func (it *Iterator) Index() uint64 { return it.index }
