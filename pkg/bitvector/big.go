package bitvector

import "github.com/xflash-panda/eliasfano/pkg/bitpack"

// chunkWords sizes each inner slice of a BigBitVector. Splitting storage
// into fixed-size chunks keeps any single allocation well under a
// platform's array-size ceiling regardless of how large the bit vector as
// a whole grows.
const (
	chunkWordBits = 20
	wordsPerChunk = 1 << chunkWordBits
)

// BigBitVector is a two-level bit buffer: an outer slice of fixed-size
// inner word chunks. It offers the same Bits surface as BitVector but is
// not limited to what a single contiguous allocation can address.
type BigBitVector struct {
	chunks [][]uint64
	len    uint64
}

// NewBig allocates a BigBitVector of the given length, all bits clear.
func NewBig(length uint64) *BigBitVector {
	n := bitpack.WordsFor(length)
	nChunks := (n + wordsPerChunk - 1) / wordsPerChunk
	if nChunks == 0 {
		nChunks = 1
	}
	chunks := make([][]uint64, nChunks)
	for i := range chunks {
		sz := wordsPerChunk
		if i == nChunks-1 {
			if rem := n - i*wordsPerChunk; rem > 0 {
				sz = rem
			} else {
				sz = 0
			}
		}
		chunks[i] = make([]uint64, sz)
	}
	return &BigBitVector{chunks: chunks, len: length}
}

// Len returns the number of addressable bits.
func (b *BigBitVector) Len() uint64 { return b.len }

func (b *BigBitVector) wordAt(i int) uint64 {
	c, w := i/wordsPerChunk, i%wordsPerChunk
	if c >= len(b.chunks) || w >= len(b.chunks[c]) {
		return 0
	}
	return b.chunks[c][w]
}

func (b *BigBitVector) orWordAt(i int, v uint64) {
	c, w := i/wordsPerChunk, i%wordsPerChunk
	b.chunks[c][w] |= v
}

func (b *BigBitVector) andNotWordAt(i int, v uint64) {
	c, w := i/wordsPerChunk, i%wordsPerChunk
	b.chunks[c][w] &^= v
}

// Get reports whether bit p is set.
func (b *BigBitVector) Get(p uint64) bool {
	return b.wordAt(bitpack.Word(p))&(uint64(1)<<bitpack.Bit(p)) != 0
}

// Set sets bit p.
func (b *BigBitVector) Set(p uint64) {
	b.orWordAt(bitpack.Word(p), uint64(1)<<bitpack.Bit(p))
}

// Clear clears bit p.
func (b *BigBitVector) Clear(p uint64) {
	b.andNotWordAt(bitpack.Word(p), uint64(1)<<bitpack.Bit(p))
}

// GetLong reads an l-bit (l <= 64) field starting at bit position p,
// transparently crossing a chunk boundary if the field's two words
// happen to straddle one.
func (b *BigBitVector) GetLong(p uint64, l uint) uint64 {
	if l == 0 {
		return 0
	}
	s := bitpack.Word(p)
	bit := bitpack.Bit(p)
	lo := b.wordAt(s) >> bit
	if bit+l > 64 {
		lo |= b.wordAt(s+1) << (64 - bit)
	}
	return lo & bitpack.Mask(l)
}

// SetLong writes the low l bits of v into an l-bit field starting at p.
func (b *BigBitVector) SetLong(p uint64, l uint, v uint64) {
	if l == 0 {
		return
	}
	v &= bitpack.Mask(l)
	s := bitpack.Word(p)
	bit := bitpack.Bit(p)

	b.andNotWordAt(s, bitpack.Mask(l)<<bit)
	b.orWordAt(s, v<<bit)

	if bit+l > 64 {
		hi := 64 - bit
		b.andNotWordAt(s+1, bitpack.Mask(l-hi))
		b.orWordAt(s+1, v>>hi)
	}
}
