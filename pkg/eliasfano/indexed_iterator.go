package eliasfano

import "math/bits"

// skippingThreshold is SKIPPING_THRESHOLD from spec.md §4.5.5: below this
// many upper-bits buckets of gap, scanning forward is cheaper than a
// SelectZero jump.
const skippingThreshold = 8

// IndexedIterator walks an Indexed sequence forward, adding SkipTo to the
// plain Iterator it wraps: a jump to the first remaining element >= lb that
// can skip whole buckets via SelectZero instead of scanning element by
// element, per spec.md §4.5.5 (the "single most performance-sensitive
// path").
type IndexedIterator struct {
	x            *Indexed
	it           *Iterator
	lastReturned uint64
	hasLast      bool
}

// Iter returns an iterator positioned before index 0.
func (x *Indexed) Iter() *IndexedIterator { return x.IterFrom(0) }

// IterFrom returns an iterator positioned so Next returns x[i] first. i may
// equal Len(), yielding an exhausted iterator.
func (x *Indexed) IterFrom(i uint64) *IndexedIterator {
	return &IndexedIterator{x: x, it: x.Monotone.IterFrom(i)}
}

// Next returns the next value, or false if the iterator is exhausted.
func (it *IndexedIterator) Next() (uint64, bool) {
	v, ok := it.it.Next()
	if ok {
		it.lastReturned, it.hasLast = v, true
	}
	return v, ok
}

// NextIndex advances and returns the index just consumed. Unlike
// Iterator.NextIndex it also decodes that element's value (via
// GetUnchecked) to keep SkipTo's cached last_returned accurate.
func (it *IndexedIterator) NextIndex() (uint64, bool) {
	idx, ok := it.it.NextIndex()
	if ok {
		it.lastReturned, it.hasLast = it.x.Monotone.GetUnchecked(idx), true
	}
	return idx, ok
}

// Previous rewinds by one element and returns it, or false at index 0.
func (it *IndexedIterator) Previous() (uint64, bool) { return it.it.Previous() }

// PreviousIndex rewinds and returns the new current index.
func (it *IndexedIterator) PreviousIndex() (uint64, bool) { return it.it.PreviousIndex() }

// Index returns the index the next call to Next would return.
func (it *IndexedIterator) Index() uint64 { return it.it.Index() }

// skipToCore finds the first element >= lb at or after the iterator's
// current position and repositions the iterator exactly there (not past
// it), so the next Next/NextIndex call emits that element.
func (it *IndexedIterator) skipToCore(lb uint64) uint64 {
	if it.hasLast && lb <= it.lastReturned {
		return it.lastReturned
	}

	zerosToSkip := lb >> it.x.l
	lastBucket := uint64(0)
	if it.hasLast {
		lastBucket = it.lastReturned >> it.x.l
	}

	wordIdx, window, rank := it.it.wordIdx, it.it.window, it.it.index
	if zerosToSkip >= lastBucket+skippingThreshold {
		var position uint64
		if zerosToSkip > 0 {
			position = it.x.selZero.Select(zerosToSkip-1) + 1
		}
		rank = position - zerosToSkip
		wordIdx, window = it.x.bucketWindowForward(position)
	}

	for {
		wordIdx, window = it.x.fillForward(wordIdx, window)
		bitPos := uint64(wordIdx)*64 + uint64(bits.TrailingZeros64(window))
		v := it.x.decodeAt(bitPos, rank)
		if v >= lb {
			it.it.wordIdx, it.it.window, it.it.index = wordIdx, window, rank
			it.lastReturned, it.hasLast = v, true
			return v
		}
		window &= window - 1
		rank++
	}
}

// SkipToUnchecked is SkipTo without the exhausted/out-of-range guard.
// Behavior is undefined if no element >= lb remains in the sequence.
func (it *IndexedIterator) SkipToUnchecked(lb uint64) uint64 {
	return it.skipToCore(lb)
}

// SkipTo advances the iterator to the first remaining element >= lb,
// without emitting the elements it skips over. Calling SkipTo with lb at
// or below the last emitted value is a no-op that returns the cached
// value; once the iterator is exhausted or lb exceeds the sequence's last
// element, it returns found=false.
func (it *IndexedIterator) SkipTo(lb uint64) (uint64, bool) {
	if it.hasLast && lb <= it.lastReturned {
		return it.lastReturned, true
	}
	if it.it.index >= it.x.n || lb > it.x.last {
		return 0, false
	}
	return it.skipToCore(lb), true
}
