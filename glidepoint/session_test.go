package glidepoint_test

import (
	"testing"
	"time"

	"github.com/openpointing/glidepoint/alps"
	"github.com/openpointing/glidepoint/gesture"
	"github.com/openpointing/glidepoint/glidepoint"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moveCall struct {
	dx, dy  int
	buttons uint32
}

type recordingSink struct {
	moves   []moveCall
	scrolls [][2]int
	swipes  []gesture.SwipeDirection
}

func (s *recordingSink) PointerMove(dx, dy int, buttons uint32, _ time.Time) {
	s.moves = append(s.moves, moveCall{dx, dy, buttons})
}

func (s *recordingSink) Scroll(dv, dh int, _ time.Time) {
	s.scrolls = append(s.scrolls, [2]int{dv, dh})
}

func (s *recordingSink) Swipe(_ int, dir gesture.SwipeDirection, _ time.Time) {
	s.swipes = append(s.swipes, dir)
}

// fakeClock hands out strictly increasing timestamps one step apart.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) tick() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

func newTestSession(sink gesture.Sink) *glidepoint.Session {
	clk := &fakeClock{now: time.Unix(100, 0), step: 10 * time.Millisecond}
	cfg := gesture.DefaultTunables()
	cfg.UnsmoothInput = false
	cfg.SmoothInput = false
	return glidepoint.New(alps.Presets["pinnacle"], cfg, sink,
		glidepoint.WithClock(clk.tick))
}

func TestSessionTrackstickBypassesGestureEngine(t *testing.T) {
	sink := &recordingSink{}
	sess := newTestSession(sink)

	// One trackstick packet: x=10, y=5 on the wire.
	sess.Feed([]byte{0xcf, 10, 5, 0x00, 0x00, 0x3f})
	assert.Equal(t, 1, sess.Drain())

	require.Len(t, sink.moves, 1)
	assert.Equal(t, moveCall{dx: 15, dy: -8}, sink.moves[0])
}

func TestSessionTouchDrivesGestureEngine(t *testing.T) {
	sink := &recordingSink{}
	sess := newTestSession(sink)

	// Touch, then a quick release: a single left-button tap comes out the
	// other end.
	sess.Feed(positionPacket(500, 400, 60))
	sess.Feed(positionPacket(500, 400, 0))
	assert.Equal(t, 2, sess.Drain())

	require.Len(t, sink.moves, 2)
	assert.Equal(t, uint32(0), sink.moves[0].buttons)
	assert.Equal(t, uint32(gesture.ButtonLeft), sink.moves[1].buttons)
	assert.Equal(t, gesture.ModePreDrag, sess.Engine().Mode())
}

func TestSessionGeometryDerivedFromModel(t *testing.T) {
	sess := newTestSession(&recordingSink{})

	cfg := sess.Engine().Tunables()
	model := sess.Model()
	assert.Equal(t, model.XMax-250, cfg.REdge)
	assert.Equal(t, model.YMax, cfg.BEdge)
}

func TestSessionPacketTap(t *testing.T) {
	var tapped [][]byte
	clk := &fakeClock{now: time.Unix(100, 0), step: 10 * time.Millisecond}
	sess := glidepoint.New(alps.Presets["pinnacle"], gesture.DefaultTunables(), &recordingSink{},
		glidepoint.WithClock(clk.tick),
		glidepoint.WithPacketTap(func(pkt []byte) {
			cp := make([]byte, len(pkt))
			copy(cp, pkt)
			tapped = append(tapped, cp)
		}))

	pkt := positionPacket(500, 400, 60)
	sess.Feed(pkt)
	sess.Drain()

	require.Len(t, tapped, 1)
	assert.Equal(t, pkt, tapped[0])
}

func TestSessionReset(t *testing.T) {
	sink := &recordingSink{}
	sess := newTestSession(sink)

	sess.Feed(positionPacket(500, 400, 60))
	sess.Drain()
	require.NotEqual(t, gesture.ModeNoTouch, sess.Engine().Mode())

	sess.Reset()
	assert.Equal(t, gesture.ModeNoTouch, sess.Engine().Mode())
	assert.Equal(t, 0, sess.Drain())
}

// positionPacket encodes a V3 position packet with no buttons pressed.
func positionPacket(x, y, z int) []byte {
	return []byte{
		0x8f | byte(x&0x03)<<4,
		byte(x >> 4 & 0x7f),
		byte(y >> 4 & 0x7f),
		0x00,
		byte(x&0x0c)<<2 | byte(y&0x0f),
		byte(z & 0x7f),
	}
}
