package alps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The decoder-level tests can only observe coordinates and finger counts, so
// the per-layout mask packing is checked here against hand-packed packets.

func TestDecodeRushmoreBitmapMasks(t *testing.T) {
	var f Fields
	// Byte 5 carries the bitmap marker, both finger-count fields and the
	// extra high bit of each mask.
	decodeRushmore(&f, []byte{0x30, 0x00, 0x03, 0x00, 0x00, 0x74})

	assert.True(t, f.IsMulti)
	assert.Equal(t, 2, f.Fingers)
	assert.Equal(t, uint32(0x8003), f.XMap)
	assert.Equal(t, uint32(0x806), f.YMap)
}

func TestDecodeDolphinBitmapMasks(t *testing.T) {
	cases := []struct {
		name       string
		pkt        []byte
		xMap, yMap uint32
		fingers    int
	}{
		{
			name:    "low x runs and y run",
			pkt:     []byte{0x24, 0x03, 0x60, 0x00, 0x00, 0x01},
			xMap:    0x203,
			yMap:    0x3,
			fingers: 2,
		},
		{
			// Bits 16..21 come from byte 3, bit 22 from byte 0.
			name:    "high x bits",
			pkt:     []byte{0x25, 0x00, 0x00, 0x77, 0x00, 0x00},
			xMap:    0x7f0000,
			fingers: 2,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var f Fields
			decodeDolphin(&f, c.pkt)
			assert.True(t, f.IsMulti)
			assert.Equal(t, c.fingers, f.Fingers)
			assert.Equal(t, c.xMap, f.XMap)
			assert.Equal(t, c.yMap, f.YMap)
		})
	}
}
