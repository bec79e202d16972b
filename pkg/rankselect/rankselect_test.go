package rankselect

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xflash-panda/eliasfano/pkg/bitvector"
)

func setPositions(b *bitvector.BitVector, positions []uint64) {
	for _, p := range positions {
		b.Set(p)
	}
}

func TestSelect_BasicSparse(t *testing.T) {
	length := uint64(200)
	positions := []uint64{1, 5, 7, 63, 64, 100, 150, 199}
	b := bitvector.New(length)
	setPositions(b, positions)

	sel := NewSelect(b, uint64(len(positions)))
	require.Equal(t, uint64(len(positions)), sel.NumOnes())
	for i, want := range positions {
		assert.Equal(t, want, sel.Select(uint64(i)), "select(%d)", i)
	}
}

func TestSelect_DenseRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	length := uint64(20000)
	b := bitvector.New(length)

	var positions []uint64
	for p := uint64(0); p < length; p++ {
		if rng.Intn(37) == 0 {
			b.Set(p)
			positions = append(positions, p)
		}
	}
	if len(positions) == 0 {
		t.Fatal("expected at least one set bit")
	}

	sel := NewSelect(b, uint64(len(positions)))
	for i, want := range positions {
		assert.Equalf(t, want, sel.Select(uint64(i)), "select(%d)", i)
	}
}

func TestSelect_BulkSelect(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	length := uint64(5000)
	b := bitvector.New(length)

	var positions []uint64
	for p := uint64(0); p < length; p++ {
		if rng.Intn(13) == 0 {
			b.Set(p)
			positions = append(positions, p)
		}
	}

	sel := NewSelect(b, uint64(len(positions)))
	dest := make([]uint64, len(positions))
	sel.BulkSelect(0, dest)
	assert.Equal(t, positions, dest)

	if len(positions) > 5 {
		sub := make([]uint64, 5)
		sel.BulkSelect(3, sub)
		assert.Equal(t, positions[3:8], sub)
	}
}

func TestSelectZero_Basic(t *testing.T) {
	length := uint64(128)
	b := bitvector.New(length)
	ones := []uint64{0, 1, 2, 64, 65, 127}
	setPositions(b, ones)

	zeros := length - uint64(len(ones))
	oneSet := map[uint64]bool{}
	for _, o := range ones {
		oneSet[o] = true
	}
	var wantZeros []uint64
	for p := uint64(0); p < length; p++ {
		if !oneSet[p] {
			wantZeros = append(wantZeros, p)
		}
	}
	require.Equal(t, zeros, uint64(len(wantZeros)))

	sz := NewSelectZero(b, zeros)
	for i, want := range wantZeros {
		assert.Equal(t, want, sz.Select(uint64(i)), "selectZero(%d)", i)
	}
}

func TestSelectZero_BulkMatchesSingle(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	length := uint64(4096)
	b := bitvector.New(length)
	ones := uint64(0)
	for p := uint64(0); p < length; p++ {
		if rng.Intn(3) == 0 {
			b.Set(p)
			ones++
		}
	}
	zeros := length - ones

	sz := NewSelectZero(b, zeros)
	dest := make([]uint64, zeros)
	sz.BulkSelect(0, dest)
	for i, got := range dest {
		assert.Equal(t, sz.Select(uint64(i)), got)
	}
}
