package emulator

import "golang.org/x/exp/constraints"

// Align rounds a up to a multiple of b, which must be a power of two.
func Align[I constraints.Integer](a, b I) I {
	return (a + b - 1) &^ (b - 1)
}

func AlignDown[I constraints.Integer](a, b I) I {
	return a &^ (b - 1)
}

func IsAligned[I constraints.Integer](a, b I) bool {
	return a&(b-1) == 0
}
