// Package rankselect implements the sparse-sampled select structures the
// Elias–Fano layout uses to translate between element rank and bit
// position: Select answers "position of the r-th set bit", SelectZero the
// symmetric query over the complement. Both are built once, read-only
// afterward, over a bitvector.Bits.
//
// The scanning technique (popcount-narrow a word, then
// bits.TrailingZeros64 to land on the exact bit) is the same one the
// teacher's domain-trie rank/select uses, generalized from a fixed
// 32-bit-ones sampling stride to the sparsity-driven block size below.
package rankselect

import (
	"math"
	"math/bits"

	"github.com/xflash-panda/eliasfano/pkg/bitpack"
)

// core is the shared sparse-inventory structure behind Select and
// SelectZero. word(i) returns the i-th 64-bit word of the thing being
// selected over — the bit vector's own words for Select, the complemented
// (and length-masked) words for SelectZero.
type core struct {
	length uint64
	count  uint64
	c      uint64
	// inventory[k] is the position of the (k*c)-th set bit, for every k.
	inventory []uint64
	// dense[k] marks a block whose span covers more words than the
	// threshold below; such blocks store their one-bit positions
	// explicitly instead of paying for a linear word scan at query time.
	dense     []bool
	denseData [][]uint64
	word      func(i int) uint64
}

func blockSize(n uint64) uint64 {
	if n < 2 {
		return 1
	}
	c := n / uint64(math.Log2(float64(n)))
	if c < 1 {
		c = 1
	}
	return c
}

// denseThreshold is the span width, in words, past which a block's one-bit
// positions are stored explicitly rather than scanned linearly at query
// time. The exact formula isn't contract-material (spec.md §4.3): this
// keeps per-query word scans bounded by roughly the block's own one-count.
func denseThreshold(c uint64) uint64 {
	if c < 4 {
		return c + 1
	}
	return c
}

func buildCore(length, count uint64, word func(i int) uint64) *core {
	c := blockSize(count)
	var nBlocks int
	if count > 0 {
		nBlocks = int((count + c - 1) / c)
	}

	s := &core{
		length:    length,
		count:     count,
		c:         c,
		inventory: make([]uint64, nBlocks),
		dense:     make([]bool, nBlocks),
		denseData: make([][]uint64, nBlocks),
		word:      word,
	}
	if count == 0 {
		return s
	}

	positions := make([]uint64, 0, count)
	nWords := bitpack.WordsFor(length)
	for wi := 0; wi < nWords; wi++ {
		w := word(wi)
		base := uint64(wi) * 64
		for w != 0 {
			positions = append(positions, base+uint64(bits.TrailingZeros64(w)))
			w &= w - 1
		}
	}

	threshold := denseThreshold(c)
	for k := 0; k < nBlocks; k++ {
		start := uint64(k) * c
		end := start + c
		if end > count {
			end = count
		}
		s.inventory[k] = positions[start]

		spanWords := uint64(bitpack.Word(positions[end-1])-bitpack.Word(positions[start])) + 1
		if spanWords > threshold {
			s.dense[k] = true
			seg := make([]uint64, end-start)
			copy(seg, positions[start:end])
			s.denseData[k] = seg
		}
	}
	return s
}

// findNth scans forward from word wordIdx (whose already-masked content is
// w) for the target-th (1-indexed) set bit, fetching further words via
// s.word as needed. It returns the found position along with the scan
// state immediately after that bit (found bit cleared), so a caller
// extracting several consecutive ranks can continue the same scan instead
// of restarting from the inventory each time.
func (s *core) findNth(wordIdx int, w uint64, target uint64) (pos uint64, nextWordIdx int, rest uint64) {
	for {
		cnt := uint64(bits.OnesCount64(w))
		if cnt >= target {
			for i := uint64(1); i < target; i++ {
				w &= w - 1
			}
			pos = uint64(wordIdx)*64 + uint64(bits.TrailingZeros64(w))
			w &= w - 1
			return pos, wordIdx, w
		}
		target -= cnt
		wordIdx++
		w = s.word(wordIdx)
	}
}

func (s *core) selectAt(r uint64) uint64 {
	k := r / s.c
	if s.dense[k] {
		return s.denseData[k][r-k*s.c]
	}
	pos := s.inventory[k]
	wordIdx := bitpack.Word(pos)
	w := s.word(wordIdx) &^ bitpack.Mask(bitpack.Bit(pos))
	target := r - k*s.c + 1
	val, _, _ := s.findNth(wordIdx, w, target)
	return val
}

// approxBits estimates the structure's own footprint: the sparse
// inventory plus any dense sub-inventories, not counting the bit vector
// it was built over.
func (s *core) approxBits() uint64 {
	total := uint64(len(s.inventory)) * 64
	total += uint64(len(s.dense)) // one bit each
	for _, d := range s.denseData {
		total += uint64(len(d)) * 64
	}
	return total
}

func (s *core) bulkSelect(r0 uint64, dest []uint64) {
	if len(dest) == 0 {
		return
	}

	k := r0 / s.c
	var wordIdx int
	var w uint64
	if s.dense[k] {
		dest[0] = s.denseData[k][r0-k*s.c]
		wordIdx = bitpack.Word(dest[0])
		w = s.word(wordIdx) &^ bitpack.Mask(bitpack.Bit(dest[0])+1)
	} else {
		pos := s.inventory[k]
		startWord := bitpack.Word(pos)
		startW := s.word(startWord) &^ bitpack.Mask(bitpack.Bit(pos))
		target := r0 - k*s.c + 1
		dest[0], wordIdx, w = s.findNth(startWord, startW, target)
	}

	for i := 1; i < len(dest); i++ {
		for w == 0 {
			wordIdx++
			w = s.word(wordIdx)
		}
		dest[i] = uint64(wordIdx)*64 + uint64(bits.TrailingZeros64(w))
		w &= w - 1
	}
}
