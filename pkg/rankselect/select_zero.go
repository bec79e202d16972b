package rankselect

import (
	"github.com/xflash-panda/eliasfano/pkg/bitpack"
	"github.com/xflash-panda/eliasfano/pkg/bitvector"
)

// SelectZero is Select's symmetric counterpart over the complement of a
// bit vector: selectZero(r) is the position of the r-th clear bit.
type SelectZero struct {
	core *core
}

// NewSelectZero builds a SelectZero structure over bits, which must have
// exactly zeros clear bits.
func NewSelectZero(bits bitvector.Bits, zeros uint64) *SelectZero {
	length := bits.Len()
	word := func(i int) uint64 {
		w := ^bits.GetLong(uint64(i)*64, 64)
		base := uint64(i) * 64
		switch {
		case base >= length:
			return 0
		case base+64 > length:
			w &= bitpack.Mask(uint(length - base))
		}
		return w
	}
	return &SelectZero{core: buildCore(length, zeros, word)}
}

// NumZeros returns the number of clear bits SelectZero was built over.
func (s *SelectZero) NumZeros() uint64 { return s.core.count }

// NumBits estimates the structure's own size in bits.
func (s *SelectZero) NumBits() uint64 { return s.core.approxBits() }

// Select returns the position of the r-th clear bit. r must be < NumZeros().
func (s *SelectZero) Select(r uint64) uint64 { return s.core.selectAt(r) }

// BulkSelect fills dest with selectZero(r0), ..., selectZero(r0+len(dest)-1).
func (s *SelectZero) BulkSelect(r0 uint64, dest []uint64) { s.core.bulkSelect(r0, dest) }
