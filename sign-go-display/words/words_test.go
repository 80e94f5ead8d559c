package words

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSigned16(t *testing.T) {
	cases := []struct {
		raw  uint16
		want int16
	}{
		{0, 0},
		{1, 1},
		{32767, 32767},
		{32768, -32768},
		{65535, -1},
		{65436, -100},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ToSigned16(c.raw))
	}
}

func TestToSigned16FullRange(t *testing.T) {
	for raw := 0; raw <= 65535; raw++ {
		got := ToSigned16(uint16(raw))
		if raw < 32768 {
			assert.Equal(t, int16(raw), got)
		} else {
			assert.Equal(t, int16(raw-65536), got)
		}
	}
}

func TestFloat32RoundTrip(t *testing.T) {
	values := []float32{0, 1, -1, 3.14159, -273.15, 1e-20, 6.5e12, math.MaxFloat32, math.SmallestNonzeroFloat32}
	for _, v := range values {
		hi, lo := Float32ToWords(v)
		assert.Equal(t, v, ToFloat32(hi, lo))
	}
}

func TestToFloat32HiLoConvention(t *testing.T) {
	// 1.0 is 0x3F800000: hi word 0x3F80, lo word 0x0000.
	assert.Equal(t, float32(1.0), ToFloat32(0x3F80, 0x0000))
	assert.True(t, math.IsNaN(float64(ToFloat32(0x7FC0, 0x0000))))
	assert.True(t, math.IsInf(float64(ToFloat32(0x7F80, 0x0000)), 1))
}

func TestExtractBit(t *testing.T) {
	assert.True(t, ExtractBit(0x0001, 0))
	assert.False(t, ExtractBit(0x0001, 1))
	assert.True(t, ExtractBit(0x8000, 15))
	assert.False(t, ExtractBit(0x7FFF, 15))
	for pos := uint(0); pos < 16; pos++ {
		assert.True(t, ExtractBit(0xFFFF, pos))
		assert.False(t, ExtractBit(0x0000, pos))
	}
}

func TestSnapshotLookups(t *testing.T) {
	snap := Snapshot{5: 0x0008}

	v, ok := snap.Word(5)
	assert.True(t, ok)
	assert.Equal(t, uint16(8), v)

	_, ok = snap.Word(6)
	assert.False(t, ok)

	assert.True(t, snap.Bit(5, 3))
	assert.False(t, snap.Bit(5, 2))
	assert.False(t, snap.Bit(99, 0), "missing register reads as 0")

	clone := snap.Clone()
	clone[5] = 0
	assert.Equal(t, uint16(8), snap[5])
}
