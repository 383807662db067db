package bitset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHas(t *testing.T) {
	require.True(t, Has[uint32](0b111, 0b101))
	require.False(t, Has[uint32](0b100, 0b101))
}

func TestClear(t *testing.T) {
	require.Equal(t, uint32(0b010), Clear[uint32](0b111, 0b101))
}

func TestAdded(t *testing.T) {
	require.Equal(t, uint32(0b100), Added[uint32](0b011, 0b111))
	require.Equal(t, uint32(0), Added[uint32](0b111, 0b011))
}

func TestIntersectAndIntersects(t *testing.T) {
	require.Equal(t, uint32(0b010), Intersect[uint32](0b011, 0b110))
	require.True(t, Intersects[uint32](0b011, 0b110))
	require.False(t, Intersects[uint32](0b001, 0b110))
}

func TestPackUnpack(t *testing.T) {
	packed := Pack[uint32](0b101, 0b011, 4)
	require.Equal(t, uint32(0b011_0101), packed)
	require.Equal(t, uint32(0b011), Unpack(packed, 4))
}
