// Package bitvector provides owned bit-buffer storage for the structures in
// this module: a flat, single-allocation BitVector and a two-level
// BigBitVector for lengths beyond what one contiguous allocation can
// address.
package bitvector

import "github.com/xflash-panda/eliasfano/pkg/bitpack"

// Bits is the read/write surface both BitVector and BigBitVector satisfy.
// rankselect is written against this interface so it works unmodified over
// either backing; eliasfano.Monotone stores concrete BitVectors, and
// efbig.BigMonotone concrete BigBitVectors.
type Bits interface {
	Len() uint64
	Get(p uint64) bool
	Set(p uint64)
	GetLong(p uint64, l uint) uint64
	SetLong(p uint64, l uint, v uint64)
}

// BitVector is a flat, contiguously allocated bit buffer.
type BitVector struct {
	words []uint64
	len   uint64
}

// New allocates a BitVector of the given length, all bits clear.
func New(length uint64) *BitVector {
	return &BitVector{
		words: make([]uint64, bitpack.WordsFor(length)),
		len:   length,
	}
}

// FromWords wraps an existing word slice as a BitVector of the given bit
// length. Used when loading a serialized upper-bits vector.
func FromWords(words []uint64, length uint64) *BitVector {
	return &BitVector{words: words, len: length}
}

// Len returns the number of addressable bits.
func (b *BitVector) Len() uint64 { return b.len }

// Words exposes the underlying word slice, e.g. for serialization.
func (b *BitVector) Words() []uint64 { return b.words }

// Get reports whether bit p is set.
func (b *BitVector) Get(p uint64) bool {
	return b.words[bitpack.Word(p)]&(uint64(1)<<bitpack.Bit(p)) != 0
}

// Set sets bit p.
func (b *BitVector) Set(p uint64) {
	b.words[bitpack.Word(p)] |= uint64(1) << bitpack.Bit(p)
}

// Clear clears bit p.
func (b *BitVector) Clear(p uint64) {
	b.words[bitpack.Word(p)] &^= uint64(1) << bitpack.Bit(p)
}

// GetLong reads an l-bit (l <= 64) field starting at bit position p.
func (b *BitVector) GetLong(p uint64, l uint) uint64 {
	return bitpack.GetBits(b.words, p, l)
}

// SetLong writes the low l bits of v into an l-bit field starting at p.
func (b *BitVector) SetLong(p uint64, l uint, v uint64) {
	bitpack.SetBits(b.words, p, l, v)
}
