package eliasfano

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
)

func buildIndexed(t *testing.T, values []uint64, u uint64) *Indexed {
	t.Helper()
	x, err := NewIndexed(uint64(len(values)), u, sourceFrom(values))
	require.NoError(t, err)
	return x
}

func TestIndexed_Scenario1(t *testing.T) {
	values := []uint64{3, 5, 5, 9, 11}
	x := buildIndexed(t, values, 12)

	t.Run("successor", func(t *testing.T) {
		v, i, ok := x.Successor(6)
		require.True(t, ok)
		assert.Equal(t, uint64(9), v)
		assert.Equal(t, uint64(3), i)
	})

	t.Run("predecessor", func(t *testing.T) {
		v, i, ok := x.Predecessor(5)
		require.True(t, ok)
		assert.Equal(t, uint64(3), v)
		assert.Equal(t, uint64(0), i)
	})

	t.Run("weak predecessor", func(t *testing.T) {
		v, i, ok := x.WeakPredecessor(5)
		require.True(t, ok)
		assert.Equal(t, uint64(5), v)
		assert.Equal(t, uint64(2), i)
	})

	t.Run("contains", func(t *testing.T) {
		assert.False(t, x.Contains(7))
		assert.True(t, x.Contains(9))
	})

	t.Run("index of", func(t *testing.T) {
		i, ok := x.IndexOf(5)
		require.True(t, ok)
		assert.Equal(t, uint64(1), i)
	})
}

func TestIndexed_BoundaryQueries(t *testing.T) {
	values := []uint64{3, 5, 5, 9, 11}
	x := buildIndexed(t, values, 12)

	t.Run("successor below first returns first", func(t *testing.T) {
		v, i, ok := x.Successor(0)
		require.True(t, ok)
		assert.Equal(t, uint64(3), v)
		assert.Equal(t, uint64(0), i)
	})

	t.Run("successor above last not found", func(t *testing.T) {
		_, _, ok := x.Successor(12)
		assert.False(t, ok)
	})

	t.Run("strict successor of an existing value skips past duplicates", func(t *testing.T) {
		v, i, ok := x.StrictSuccessor(5)
		require.True(t, ok)
		assert.Equal(t, uint64(9), v)
		assert.Equal(t, uint64(3), i)
	})

	t.Run("predecessor at or below first not found", func(t *testing.T) {
		_, _, ok := x.Predecessor(3)
		assert.False(t, ok)
	})

	t.Run("predecessor above last returns last", func(t *testing.T) {
		v, i, ok := x.Predecessor(100)
		require.True(t, ok)
		assert.Equal(t, uint64(11), v)
		assert.Equal(t, uint64(4), i)
	})

	t.Run("weak predecessor below first not found", func(t *testing.T) {
		_, _, ok := x.WeakPredecessor(2)
		assert.False(t, ok)
	})
}

func TestIndexed_Empty(t *testing.T) {
	x := buildIndexed(t, nil, 10)
	_, _, ok := x.Successor(1)
	assert.False(t, ok)
	_, _, ok = x.Predecessor(1)
	assert.False(t, ok)
	assert.False(t, x.Contains(1))
	_, ok = x.First()
	assert.False(t, ok)
}

func TestIndexed_ExhaustiveAgainstBruteForce(t *testing.T) {
	values := []uint64{1, 1, 4, 4, 4, 7, 10, 10, 15, 20}
	u := uint64(25)
	x := buildIndexed(t, values, u)

	for q := uint64(0); q < u+2; q++ {
		t.Run("successor", func(t *testing.T) {
			wantVal, wantIdx, wantOk := bruteSuccessor(values, q, false)
			v, i, ok := x.Successor(q)
			require.Equal(t, wantOk, ok)
			if ok {
				assert.Equal(t, wantVal, v)
				assert.Equal(t, wantIdx, i)
			}
		})
		t.Run("strict successor", func(t *testing.T) {
			wantVal, wantIdx, wantOk := bruteSuccessor(values, q, true)
			v, i, ok := x.StrictSuccessor(q)
			require.Equal(t, wantOk, ok)
			if ok {
				assert.Equal(t, wantVal, v)
				assert.Equal(t, wantIdx, i)
			}
		})
		t.Run("predecessor", func(t *testing.T) {
			wantVal, wantIdx, wantOk := brutePredecessor(values, q, false)
			v, i, ok := x.Predecessor(q)
			require.Equal(t, wantOk, ok)
			if ok {
				assert.Equal(t, wantVal, v)
				assert.Equal(t, wantIdx, i)
			}
		})
		t.Run("weak predecessor", func(t *testing.T) {
			wantVal, wantIdx, wantOk := brutePredecessor(values, q, true)
			v, i, ok := x.WeakPredecessor(q)
			require.Equal(t, wantOk, ok)
			if ok {
				assert.Equal(t, wantVal, v)
				assert.Equal(t, wantIdx, i)
			}
		})
		t.Run("contains", func(t *testing.T) {
			want := false
			for _, v := range values {
				if v == q {
					want = true
					break
				}
			}
			assert.Equal(t, want, x.Contains(q))
		})
	}
}

// TestIndexed_RandomFixtureAgainstBruteForce builds a fixture the way a
// real caller would from unordered readings: draw random values, sort
// them into the nondecreasing order an Indexed sequence requires, then
// check every query type against a brute-force oracle.
func TestIndexed_RandomFixtureAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const n = 200
	const u = uint64(2000)

	values := make([]uint64, n)
	for i := range values {
		values[i] = uint64(rng.Intn(int(u)))
	}
	slices.Sort(values)

	x := buildIndexed(t, values, u)

	for _, q := range []uint64{0, 1, u / 2, u - 1, u, u + 10} {
		wantVal, wantIdx, wantOk := bruteSuccessor(values, q, false)
		v, i, ok := x.Successor(q)
		require.Equal(t, wantOk, ok)
		if ok {
			assert.Equal(t, wantVal, v)
			assert.Equal(t, wantIdx, i)
		}

		pWantVal, pWantIdx, pWantOk := brutePredecessor(values, q, true)
		pv, pi, pok := x.WeakPredecessor(q)
		require.Equal(t, pWantOk, pok)
		if pok {
			assert.Equal(t, pWantVal, pv)
			assert.Equal(t, pWantIdx, pi)
		}
	}
}

// TestIndexed_IteratorSkipTo reproduces the skip-to iterator scenario
// literally: skip_to lands on the first element >= the target, next_index
// then consumes that same element, and a repeated skip_to at or below the
// last emitted value is a no-op.
func TestIndexed_IteratorSkipTo(t *testing.T) {
	values := []uint64{10, 20, 30, 40, 50}
	x := buildIndexed(t, values, 51)

	it := x.Iter()

	v, ok := it.SkipTo(25)
	require.True(t, ok)
	assert.Equal(t, uint64(30), v)

	idx, ok := it.NextIndex()
	require.True(t, ok)
	assert.Equal(t, uint64(2), idx)

	v, ok = it.SkipTo(25)
	require.True(t, ok)
	assert.Equal(t, uint64(30), v)

	v, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(40), v)
}

func TestIndexed_IteratorSkipToPastEnd(t *testing.T) {
	values := []uint64{10, 20, 30}
	x := buildIndexed(t, values, 31)

	it := x.Iter()
	_, ok := it.SkipTo(31)
	assert.False(t, ok)
}

// TestIndexed_IteratorSkipToExactMatch checks that landing exactly on an
// existing element parks the cursor there: the found element is still the
// next one Next would emit, just as scenario 5 shows for skip_to(25)=30
// followed immediately by next_index()=2.
func TestIndexed_IteratorSkipToExactMatch(t *testing.T) {
	values := []uint64{10, 20, 30, 40, 50}
	x := buildIndexed(t, values, 51)

	it := x.Iter()
	v, ok := it.SkipTo(20)
	require.True(t, ok)
	assert.Equal(t, uint64(20), v)

	v, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(20), v)

	v, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(30), v)
}

// TestIndexed_IteratorSkipToAcrossManyBuckets exercises the SelectZero jump
// path by forcing a gap of far more than skippingThreshold upper-bits
// buckets between the first element and the skip target.
func TestIndexed_IteratorSkipToAcrossManyBuckets(t *testing.T) {
	const n = 200
	const u = uint64(20000)
	values := make([]uint64, n)
	for i := range values {
		values[i] = uint64(i) * (u / n)
	}
	x := buildIndexed(t, values, u)

	it := x.Iter()
	target := values[150] - 1
	v, ok := it.SkipTo(target)
	require.True(t, ok)

	wantVal, wantIdx, wantOk := bruteSuccessor(values, target, false)
	require.True(t, wantOk)
	assert.Equal(t, wantVal, v)

	idx, ok := it.NextIndex()
	require.True(t, ok)
	assert.Equal(t, wantIdx, idx)
}

// TestIndexed_IteratorSkipToAgainstBruteForce checks SkipTo against a
// brute-force successor search across every target in the universe, with
// the iterator restarted before each probe.
func TestIndexed_IteratorSkipToAgainstBruteForce(t *testing.T) {
	values := []uint64{1, 1, 4, 4, 4, 7, 10, 10, 15, 20}
	u := uint64(25)
	x := buildIndexed(t, values, u)

	for q := uint64(0); q < u+2; q++ {
		it := x.Iter()
		wantVal, _, wantOk := bruteSuccessor(values, q, false)
		v, ok := it.SkipTo(q)
		require.Equal(t, wantOk, ok)
		if ok {
			assert.Equal(t, wantVal, v)
		}
	}
}

func bruteSuccessor(values []uint64, q uint64, strict bool) (value, index uint64, ok bool) {
	for i, v := range values {
		if (strict && v > q) || (!strict && v >= q) {
			return v, uint64(i), true
		}
	}
	return 0, 0, false
}

func brutePredecessor(values []uint64, q uint64, weak bool) (value, index uint64, ok bool) {
	for i := len(values) - 1; i >= 0; i-- {
		v := values[i]
		if (weak && v <= q) || (!weak && v < q) {
			return v, uint64(i), true
		}
	}
	return 0, 0, false
}
