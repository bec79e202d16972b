//go:build !debug

package eliasfano

// assertInvariants is a no-op outside debug builds; see debug.go.
func assertInvariants(*Monotone) {}
