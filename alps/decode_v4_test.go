package alps_test

import (
	"testing"

	"github.com/openpointing/glidepoint/alps"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// positionPacketV4 encodes position fields into an 8-byte V4 packet; bitmap
// fragment bytes 6 and 7 are left for the caller.
func positionPacketV4(x, y, z int, btn byte) []byte {
	return []byte{
		byte(x&0x03) << 4,
		byte(x >> 4 & 0x7f),
		byte(y >> 4 & 0x7f),
		byte(x&0x0c)<<2 | byte(y&0x0f),
		btn,
		byte(z & 0x7f),
		0x00,
		0x00,
	}
}

func TestDecodeV4SingleTouch(t *testing.T) {
	d := alps.NewDecoder(alps.NewModel(alps.ProtoV4), nil)

	pkt := positionPacketV4(600, 500, 50, 0x01)
	pkt[6] = 0x40 // first bitmap fragment, empty mask
	events := d.Decode(pkt)
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, alps.EventTouch, ev.Kind)
	assert.Equal(t, 600, ev.X)
	assert.Equal(t, 500, ev.Y)
	assert.Equal(t, 50, ev.Z)
	assert.Equal(t, 1, ev.Fingers)
	assert.Equal(t, alps.ButtonLeft, ev.Buttons)
}

func TestDecodeV4BitmapReassembly(t *testing.T) {
	d := alps.NewDecoder(alps.NewModel(alps.ProtoV4), nil)

	// Bitmap spread over three packets: x runs at bits 2..3 and 10..11,
	// one y run at bits 0..2.
	pkts := [][]byte{
		positionPacketV4(600, 500, 50, 0),
		positionPacketV4(600, 500, 50, 0),
		positionPacketV4(600, 500, 50, 0),
	}
	pkts[0][6] = 0x40 | 0x03
	pkts[0][7] = 0x07
	pkts[1][6] = 0x03

	events := d.Decode(pkts[0])
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].Fingers)

	events = d.Decode(pkts[1])
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].Fingers)

	// The third fragment completes the bitmap; two contacts are resolved
	// and the first anchors on the position coordinates.
	events = d.Decode(pkts[2])
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, 2, ev.Fingers)
	assert.Equal(t, 600, ev.X)
	assert.Equal(t, 500, ev.Y)
	assert.Equal(t, 50, ev.Z)
}

func TestDecodeV4SyncBitRestartsReassembly(t *testing.T) {
	d := alps.NewDecoder(alps.NewModel(alps.ProtoV4), nil)

	// Two fragments, then a packet with the sync bit: the partial sequence
	// is abandoned and a fresh one starts.
	p := positionPacketV4(600, 500, 50, 0)
	p[6] = 0x40
	d.Decode(p)
	d.Decode(positionPacketV4(600, 500, 50, 0))

	restart := positionPacketV4(600, 500, 50, 0)
	restart[6] = 0x40
	events := d.Decode(restart)
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].Fingers)

	// Two more fragments complete the restarted sequence without tripping
	// the overrun guard.
	d.Decode(positionPacketV4(600, 500, 50, 0))
	events = d.Decode(positionPacketV4(600, 500, 50, 0))
	require.Len(t, events, 1)
}
