package rankselect

import "github.com/xflash-panda/eliasfano/pkg/bitvector"

// Select answers select(r): the position of the r-th (0-indexed) set bit
// in a bit vector, in O(1) amortized time after an O(m) build pass.
type Select struct {
	core *core
}

// NewSelect builds a Select structure over bits, which must have exactly
// ones set bits. The caller is responsible for that count matching; it is
// not re-verified here (construction is O(m), a second full scan to
// re-derive it would double that cost for no benefit to a trusted caller
// like eliasfano.Monotone).
func NewSelect(bits bitvector.Bits, ones uint64) *Select {
	word := func(i int) uint64 { return bits.GetLong(uint64(i)*64, 64) }
	return &Select{core: buildCore(bits.Len(), ones, word)}
}

// NumOnes returns the number of set bits Select was built over.
func (s *Select) NumOnes() uint64 { return s.core.count }

// NumBits estimates the structure's own size in bits (inventory plus any
// dense sub-inventories), not counting the bit vector it indexes.
func (s *Select) NumBits() uint64 { return s.core.approxBits() }

// Select returns the position of the r-th set bit. r must be < NumOnes().
func (s *Select) Select(r uint64) uint64 { return s.core.selectAt(r) }

// BulkSelect fills dest with select(r0), select(r0+1), ..., select(r0+len(dest)-1).
func (s *Select) BulkSelect(r0 uint64, dest []uint64) { s.core.bulkSelect(r0, dest) }
