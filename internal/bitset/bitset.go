// Package bitset holds the small fixed-width bitmask helpers shared by
// sql/privilege (packing a granted mask and its grant-option twin into
// one cache-bits word) and sql/grantgraph (masking a caller's held bits
// against a requested grant). The pattern mirrors auth.Permission in the
// teacher's auth package: a small integer type, one bit per named kind,
// combined with plain bitwise operators — generalized here to a generic
// helper set so both uint32-based types reuse the same seven operations
// instead of repeating the shift/mask arithmetic twice.
package bitset

// Bits is any fixed-width unsigned integer used as a bitmask.
type Bits interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Has reports whether every bit of want is present in set.
func Has[T Bits](set, want T) bool {
	return set&want == want
}

// Clear returns set with every bit of mask removed.
func Clear[T Bits](set, mask T) T {
	return set &^ mask
}

// Added returns the bits of want not already present in set — the
// portion of a requested mask that would actually change set if added.
func Added[T Bits](set, want T) T {
	return want &^ set
}

// Intersect returns the bits present in both a and b.
func Intersect[T Bits](a, b T) T {
	return a & b
}

// Intersects reports whether a and b share any set bit.
func Intersects[T Bits](a, b T) bool {
	return a&b != 0
}

// Pack places low in the bottom shift bits and high in the bits above.
// Neither operand is masked: bits of low at or above shift overlap the
// shifted high, and bits of high shifted past the width are lost. Used
// to combine a granted-privilege
// mask with a grant-option mask shifted GrantShift bits higher.
func Pack[T Bits](low, high T, shift uint) T {
	return low | (high << shift)
}

// Unpack extracts the portion of packed that was placed shift bits up
// by Pack, shifting it back down.
func Unpack[T Bits](packed T, shift uint) T {
	return packed >> shift
}
