package bitvector

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBacking(name string, length uint64) Bits {
	switch name {
	case "flat":
		return New(length)
	case "big":
		return NewBig(length)
	default:
		panic("unknown backing " + name)
	}
}

func TestBits_GetSet(t *testing.T) {
	for _, backing := range []string{"flat", "big"} {
		t.Run(backing, func(t *testing.T) {
			b := newBacking(backing, 200)
			assert.Equal(t, uint64(200), b.Len())

			for _, p := range []uint64{0, 1, 63, 64, 65, 127, 128, 199} {
				assert.False(t, b.Get(p))
				b.Set(p)
				assert.True(t, b.Get(p))
			}
		})
	}
}

func TestBits_LongFields(t *testing.T) {
	for _, backing := range []string{"flat", "big"} {
		t.Run(backing, func(t *testing.T) {
			b := newBacking(backing, 1<<22+200)
			rng := rand.New(rand.NewSource(42))

			type field struct {
				pos   uint64
				width uint
				value uint64
			}
			var fields []field
			pos := uint64(0)
			for i := 0; i < 2000; i++ {
				width := uint(1 + rng.Intn(64))
				if pos+uint64(width) > b.Len() {
					break
				}
				value := rng.Uint64() & ((uint64(1) << width) - 1)
				if width == 64 {
					value = rng.Uint64()
				}
				fields = append(fields, field{pos, width, value})
				pos += uint64(width)
			}

			for _, f := range fields {
				b.SetLong(f.pos, f.width, f.value)
			}
			for _, f := range fields {
				assert.Equal(t, f.value, b.GetLong(f.pos, f.width), "pos=%d width=%d", f.pos, f.width)
			}
		})
	}
}

func TestBigBitVector_CrossesChunkBoundary(t *testing.T) {
	// Force a field write that straddles the chunk boundary at
	// wordsPerChunk*64 bits.
	boundary := uint64(wordsPerChunk) * 64
	b := NewBig(boundary + 128)

	b.SetLong(boundary-32, 64, 0xDEADBEEFCAFEBABE)
	assert.Equal(t, uint64(0xDEADBEEFCAFEBABE), b.GetLong(boundary-32, 64))
}
