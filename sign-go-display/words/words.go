package words

import "math"

// Snapshot is the set of raw 16-bit register values captured at one poll
// instant, keyed by register index. Snapshots are replaced wholesale by the
// feed; nothing mutates one after it has been published.
type Snapshot map[int]uint16

// Word returns the raw value of register i and whether it is present.
func (s Snapshot) Word(i int) (uint16, bool) {
	v, ok := s[i]
	return v, ok
}

// Bit reports the state of one bit of register word. A register missing
// from the snapshot reads as 0.
func (s Snapshot) Bit(word int, bit uint) bool {
	raw, ok := s[word]
	if !ok {
		return false
	}
	return ExtractBit(raw, bit)
}

func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// ToSigned16 reinterprets a raw register value as two's-complement.
func ToSigned16(raw uint16) int16 {
	return int16(raw)
}

// ToFloat32 assembles an IEEE-754 float from two registers, hi carrying the
// upper 16 bits and lo the lower 16. The simulator encodes with the same
// convention, so round-trips are bit-exact.
func ToFloat32(hi, lo uint16) float32 {
	return math.Float32frombits(uint32(hi)<<16 | uint32(lo))
}

// Float32ToWords splits a float into the (hi, lo) register pair.
func Float32ToWords(f float32) (hi, lo uint16) {
	bits := math.Float32bits(f)
	return uint16(bits >> 16), uint16(bits & 0xFFFF)
}

// ExtractBit reports whether bit pos of raw is set. pos must be 0..15;
// callers validate the range.
func ExtractBit(raw uint16, pos uint) bool {
	return (raw>>pos)&1 == 1
}
