package eliasfano

// PrefixSum stores n non-negative deltas as an EF-Monotone of their n+1
// prefix sums (the n+1-th being the total), per spec.md §4.7. Len reports
// n, not n+1: the trailing sentinel sum is an implementation detail, not
// an element of the sequence.
type PrefixSum struct {
	sums *Monotone
}

// PrefixSumSource yields the next delta, mirroring Source.
type PrefixSumSource func() (delta uint64, ok bool)

// NewPrefixSum builds a PrefixSum from n non-negative deltas whose sum is
// at most total (total+1 is the strict universe bound passed to the
// underlying Monotone of prefix sums).
func NewPrefixSum(n, total uint64, next PrefixSumSource) (*PrefixSum, error) {
	var running uint64
	i := uint64(0)
	source := func() (uint64, bool) {
		if i > n {
			return 0, false
		}
		v := running
		if i < n {
			d, ok := next()
			if !ok {
				return 0, false
			}
			running += d
		}
		i++
		return v, true
	}
	m, err := NewMonotone(n+1, total+1, source)
	if err != nil {
		return nil, err
	}
	return &PrefixSum{sums: m}, nil
}

// Len returns the number of deltas (not the number of prefix sums).
func (p *PrefixSum) Len() uint64 { return p.sums.Len() - 1 }

// NumBits reports the approximate total size in bits.
func (p *PrefixSum) NumBits() uint64 { return p.sums.NumBits() }

// Total returns the sum of all deltas.
func (p *PrefixSum) Total() uint64 {
	v, _ := p.sums.Get(p.sums.Len() - 1)
	return v
}

// PrefixSumAt returns the sum of the first i deltas (i may equal Len()).
func (p *PrefixSum) PrefixSumAt(i uint64) (uint64, error) {
	return p.sums.Get(i)
}

// GetUnchecked returns the i-th delta. Behavior is undefined if i >= Len().
func (p *PrefixSum) GetUnchecked(i uint64) uint64 {
	return p.sums.DeltaUnchecked(i)
}

// Get returns the i-th delta, or ErrOutOfBounds if i >= Len().
func (p *PrefixSum) Get(i uint64) (uint64, error) {
	if i >= p.Len() {
		return 0, ErrOutOfBounds
	}
	return p.GetUnchecked(i), nil
}

// PrefixSumIterator walks consecutive deltas by differencing consecutive
// prefix sums from the underlying Monotone iterator.
type PrefixSumIterator struct {
	it   *Iterator
	prev uint64
}

// Iter returns an iterator positioned before the first delta.
func (p *PrefixSum) Iter() *PrefixSumIterator { return p.IterFrom(0) }

// IterFrom returns an iterator positioned so Next returns the i-th delta
// first. i may equal Len().
func (p *PrefixSum) IterFrom(i uint64) *PrefixSumIterator {
	it := p.sums.IterFrom(i)
	// Consume S_i to seed prev; the iterator is then positioned so its
	// next value is S_{i+1}, making the first delta S_{i+1} - S_i = a_i.
	prev, _ := it.Next()
	return &PrefixSumIterator{it: it, prev: prev}
}

// Next returns the next delta, or false once exhausted.
func (pit *PrefixSumIterator) Next() (uint64, bool) {
	next, ok := pit.it.Next()
	if !ok {
		return 0, false
	}
	d := next - pit.prev
	pit.prev = next
	return d, true
}
