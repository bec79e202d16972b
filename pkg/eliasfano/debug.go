//go:build debug

package eliasfano

// assertInvariants checks spec.md §3's invariants after construction. It
// only compiles into debug builds (`go build -tags debug`); release
// builds skip straight to the no-op in debug_off.go so the unchecked
// accessors stay on their fast path.
func assertInvariants(m *Monotone) {
	if m.sel.NumOnes() != m.n {
		panic("eliasfano: upper-bits popcount does not match n")
	}
	for i := uint64(0); i < m.n; i++ {
		v := m.GetUnchecked(i)
		if i > 0 {
			prev := m.GetUnchecked(i - 1)
			if v < prev {
				panic("eliasfano: decoded sequence is not nondecreasing")
			}
		}
		if v >= m.u {
			panic("eliasfano: decoded value at or above universe bound")
		}
	}
}
