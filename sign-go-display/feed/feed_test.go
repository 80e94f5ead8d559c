package feed

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sign-tools/sign-go-display/config"
)

func buildPacket(values map[int]uint16) []byte {
	data := make([]byte, PacketSize)
	for i, v := range values {
		binary.BigEndian.PutUint16(data[i*2:], v)
	}
	return data
}

func TestParsePacketDecodesBigEndianWords(t *testing.T) {
	data := buildPacket(map[int]uint16{
		0:   0x1234,
		5:   0x0008, // bit 3 set
		255: 0xFFFF,
	})

	snap, err := ParsePacket(data)
	require.NoError(t, err)
	require.Len(t, snap, config.RegisterCount)
	assert.Equal(t, uint16(0x1234), snap[0])
	assert.Equal(t, uint16(0x0008), snap[5])
	assert.Equal(t, uint16(0xFFFF), snap[255])
	assert.Equal(t, uint16(0), snap[100])
	assert.True(t, snap.Bit(5, 3))
}

func TestParsePacketRejectsWrongSize(t *testing.T) {
	_, err := ParsePacket(make([]byte, PacketSize-1))
	assert.Error(t, err)

	_, err = ParsePacket(make([]byte, PacketSize+2))
	assert.Error(t, err)

	_, err = ParsePacket(nil)
	assert.Error(t, err)
}

func TestPacketSizeMatchesRegisterSpace(t *testing.T) {
	assert.Equal(t, config.RegisterCount*2, PacketSize)
}
