package gesture_test

import (
	"testing"
	"time"

	"github.com/openpointing/glidepoint/gesture"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moveCall struct {
	dx, dy  int
	buttons uint32
}

type scrollCall struct {
	dv, dh int
}

type swipeCall struct {
	fingers int
	dir     gesture.SwipeDirection
}

type recordingSink struct {
	moves   []moveCall
	scrolls []scrollCall
	swipes  []swipeCall
}

func (s *recordingSink) PointerMove(dx, dy int, buttons uint32, _ time.Time) {
	s.moves = append(s.moves, moveCall{dx, dy, buttons})
}

func (s *recordingSink) Scroll(dv, dh int, _ time.Time) {
	s.scrolls = append(s.scrolls, scrollCall{dv, dh})
}

func (s *recordingSink) Swipe(fingers int, dir gesture.SwipeDirection, _ time.Time) {
	s.swipes = append(s.swipes, swipeCall{fingers, dir})
}

func (s *recordingSink) buttonSeq() []uint32 {
	seq := make([]uint32, len(s.moves))
	for i, m := range s.moves {
		seq[i] = m.buttons
	}
	return seq
}

type manualTimer struct {
	fn        func()
	cancelled bool
}

func (t *manualTimer) Cancel() { t.cancelled = true }

// manualTimers is a TimerService whose timers only fire when the test says
// so.
type manualTimers struct {
	pending []*manualTimer
}

func (m *manualTimers) AfterFunc(_ time.Duration, fn func()) gesture.Timer {
	t := &manualTimer{fn: fn}
	m.pending = append(m.pending, t)
	return t
}

// fire runs the oldest live timer and reports whether one ran.
func (m *manualTimers) fire() bool {
	for len(m.pending) > 0 {
		t := m.pending[0]
		m.pending = m.pending[1:]
		if t.cancelled {
			continue
		}
		t.fn()
		return true
	}
	return false
}

func (m *manualTimers) live() int {
	n := 0
	for _, t := range m.pending {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func testConfig() gesture.Tunables {
	cfg := gesture.DefaultTunables()
	cfg.SetGeometry(2000, 1400)
	cfg.UnsmoothInput = false
	cfg.SmoothInput = false
	return cfg
}

func TestSingleTapClicksOnce(t *testing.T) {
	sink := &recordingSink{}
	timers := &manualTimers{}
	e := gesture.NewEngine(testConfig(), sink, timers, nil)
	t0 := time.Unix(100, 0)

	e.Touch(gesture.Sample{X: 500, Y: 500, Z: 60, Fingers: 1, Time: t0})
	assert.Equal(t, gesture.ModeMove, e.Mode())

	// Quick release: the tap dispatches a press and arms a potential drag.
	e.Touch(gesture.Sample{X: 500, Y: 500, Time: t0.Add(50 * time.Millisecond)})
	assert.Equal(t, gesture.ModePreDrag, e.Mode())

	// Hardware keeps reporting empty packets; the button stays down only
	// while a drag might still start.
	e.Touch(gesture.Sample{Time: t0.Add(100 * time.Millisecond)})
	e.Touch(gesture.Sample{Time: t0.Add(400 * time.Millisecond)})
	assert.Equal(t, gesture.ModeNoTouch, e.Mode())

	want := []uint32{0, gesture.ButtonLeft, gesture.ButtonLeft, 0}
	assert.Equal(t, want, sink.buttonSeq())
}

func TestTapMovedTooFarIsNotATap(t *testing.T) {
	sink := &recordingSink{}
	e := gesture.NewEngine(testConfig(), sink, &manualTimers{}, nil)
	t0 := time.Unix(100, 0)

	e.Touch(gesture.Sample{X: 500, Y: 500, Z: 60, Fingers: 1, Time: t0})
	e.Touch(gesture.Sample{X: 600, Y: 500, Z: 60, Fingers: 1, Time: t0.Add(30 * time.Millisecond)})
	e.Touch(gesture.Sample{X: 600, Y: 500, Time: t0.Add(60 * time.Millisecond)})

	for _, b := range sink.buttonSeq() {
		assert.Equal(t, uint32(0), b)
	}
	assert.Equal(t, gesture.ModeNoTouch, e.Mode())
}

func TestTwoFingerTapClicksRight(t *testing.T) {
	sink := &recordingSink{}
	e := gesture.NewEngine(testConfig(), sink, &manualTimers{}, nil)
	t0 := time.Unix(100, 0)

	e.Touch(gesture.Sample{X: 800, Y: 700, Z: 60, Fingers: 2, Time: t0})
	e.Touch(gesture.Sample{X: 800, Y: 700, Time: t0.Add(60 * time.Millisecond)})
	e.Touch(gesture.Sample{Time: t0.Add(120 * time.Millisecond)})

	want := []uint32{0, gesture.ButtonRight, 0}
	assert.Equal(t, want, sink.buttonSeq())
}

func TestTapThenHoldDrags(t *testing.T) {
	sink := &recordingSink{}
	timers := &manualTimers{}
	e := gesture.NewEngine(testConfig(), sink, timers, nil)
	t0 := time.Unix(100, 0)

	// Tap.
	e.Touch(gesture.Sample{X: 500, Y: 500, Z: 60, Fingers: 1, Time: t0})
	e.Touch(gesture.Sample{X: 500, Y: 500, Time: t0.Add(50 * time.Millisecond)})
	require.Equal(t, gesture.ModePreDrag, e.Mode())

	// Re-touch within the drag window and move: the button stays held.
	e.Touch(gesture.Sample{X: 500, Y: 500, Z: 60, Fingers: 1, Time: t0.Add(150 * time.Millisecond)})
	assert.Equal(t, gesture.ModeDrag, e.Mode())
	e.Touch(gesture.Sample{X: 540, Y: 520, Z: 60, Fingers: 1, Time: t0.Add(300 * time.Millisecond)})

	last := sink.moves[len(sink.moves)-1]
	assert.Equal(t, uint32(gesture.ButtonLeft), last.buttons)
	assert.Equal(t, 20, last.dx)
	assert.Equal(t, 10, last.dy)

	// Release after the tap window: the drag survives until the exit timer
	// fires.
	e.Touch(gesture.Sample{Time: t0.Add(600 * time.Millisecond)})
	assert.Equal(t, gesture.ModeDragNoTouch, e.Mode())
	require.Equal(t, 1, timers.live())

	require.True(t, timers.fire())
	assert.Equal(t, gesture.ModeNoTouch, e.Mode())
	last = sink.moves[len(sink.moves)-1]
	assert.Equal(t, uint32(0), last.buttons&gesture.ButtonLeft)
}

func TestPointerMoveDeltas(t *testing.T) {
	sink := &recordingSink{}
	e := gesture.NewEngine(testConfig(), sink, &manualTimers{}, nil)
	t0 := time.Unix(100, 0)

	e.Touch(gesture.Sample{X: 500, Y: 500, Z: 60, Fingers: 1, Time: t0})
	e.Touch(gesture.Sample{X: 530, Y: 520, Z: 60, Fingers: 1, Time: t0.Add(150 * time.Millisecond)})

	last := sink.moves[len(sink.moves)-1]
	assert.Equal(t, 15, last.dx)
	assert.Equal(t, 10, last.dy)
}

func TestBogusDeltaIsDropped(t *testing.T) {
	sink := &recordingSink{}
	e := gesture.NewEngine(testConfig(), sink, &manualTimers{}, nil)
	t0 := time.Unix(100, 0)

	e.Touch(gesture.Sample{X: 500, Y: 500, Z: 60, Fingers: 1, Time: t0})
	// A 1000-unit jump in one sample is a glitch, not motion.
	e.Touch(gesture.Sample{X: 1500, Y: 500, Z: 60, Fingers: 1, Time: t0.Add(150 * time.Millisecond)})

	last := sink.moves[len(sink.moves)-1]
	assert.Equal(t, 0, last.dx)
	assert.Equal(t, 0, last.dy)
}

func TestFingerCountChangeSwallowsDeltas(t *testing.T) {
	sink := &recordingSink{}
	cfg := testConfig()
	cfg.IgnoreDeltasStart = 2
	e := gesture.NewEngine(cfg, sink, &manualTimers{}, nil)
	t0 := time.Unix(100, 0)

	e.Touch(gesture.Sample{X: 500, Y: 500, Z: 60, Fingers: 1, Time: t0})
	e.Touch(gesture.Sample{X: 510, Y: 500, Z: 60, Fingers: 1, Time: t0.Add(150 * time.Millisecond)})

	// The reported contact switches fingers: coordinates jump, but no
	// motion may leak through while deltas are swallowed.
	e.Touch(gesture.Sample{X: 700, Y: 800, Z: 60, Fingers: 2, Time: t0.Add(160 * time.Millisecond)})
	e.Touch(gesture.Sample{X: 705, Y: 805, Z: 60, Fingers: 2, Time: t0.Add(170 * time.Millisecond)})

	for _, m := range sink.moves[2:] {
		assert.Equal(t, 0, m.dx)
		assert.Equal(t, 0, m.dy)
	}
}

func TestTwoFingerScroll(t *testing.T) {
	sink := &recordingSink{}
	timers := &manualTimers{}
	e := gesture.NewEngine(testConfig(), sink, timers, nil)
	t0 := time.Unix(100, 0)

	e.Touch(gesture.Sample{X: 1000, Y: 800, Z: 60, Fingers: 2, Time: t0})
	require.Equal(t, gesture.ModeMTouch, e.Mode())

	for i := 1; i <= 4; i++ {
		e.Touch(gesture.Sample{
			X: 1000, Y: 800 - 40*i, Z: 60, Fingers: 2,
			Time: t0.Add(time.Duration(i) * 10 * time.Millisecond),
		})
	}

	require.Len(t, sink.scrolls, 4)
	for _, s := range sink.scrolls {
		assert.Equal(t, scrollCall{dv: 10, dh: 0}, s)
	}

	// A zero-delta sample stops the motion and invalidates the velocity
	// history, so releasing afterwards must not arm momentum.
	e.Touch(gesture.Sample{X: 1000, Y: 640, Z: 60, Fingers: 2, Time: t0.Add(50 * time.Millisecond)})
	require.Len(t, sink.scrolls, 4)

	e.Touch(gesture.Sample{Time: t0.Add(60 * time.Millisecond)})
	assert.Equal(t, 0, timers.live())
}

func TestMomentumScrollDecaysToRest(t *testing.T) {
	sink := &recordingSink{}
	timers := &manualTimers{}
	e := gesture.NewEngine(testConfig(), sink, timers, nil)
	t0 := time.Unix(100, 0)

	e.Touch(gesture.Sample{X: 1000, Y: 800, Z: 60, Fingers: 2, Time: t0})
	for i := 1; i <= 4; i++ {
		e.Touch(gesture.Sample{
			X: 1000, Y: 800 - 40*i, Z: 60, Fingers: 2,
			Time: t0.Add(time.Duration(i) * 10 * time.Millisecond),
		})
	}
	touchScrolls := len(sink.scrolls)

	// Release arms the momentum timer.
	e.Touch(gesture.Sample{Time: t0.Add(50 * time.Millisecond)})
	require.Equal(t, 1, timers.live())

	// Drive the timer to exhaustion: every tick scrolls the same direction
	// with non-increasing magnitude, then the chain stops re-arming.
	fired := 0
	for timers.fire() {
		fired++
		require.Less(t, fired, 2000, "momentum never decayed to rest")
	}

	momentum := sink.scrolls[touchScrolls:]
	require.NotEmpty(t, momentum)
	first := momentum[0].dv
	assert.Positive(t, first)
	for _, s := range momentum[1:] {
		assert.Positive(t, s.dv)
		assert.LessOrEqual(t, s.dv, first)
	}
	assert.Less(t, momentum[len(momentum)-1].dv, first)
	assert.Equal(t, 0, timers.live())
}

func TestNewTouchCancelsMomentum(t *testing.T) {
	sink := &recordingSink{}
	timers := &manualTimers{}
	e := gesture.NewEngine(testConfig(), sink, timers, nil)
	t0 := time.Unix(100, 0)

	e.Touch(gesture.Sample{X: 1000, Y: 800, Z: 60, Fingers: 2, Time: t0})
	for i := 1; i <= 4; i++ {
		e.Touch(gesture.Sample{
			X: 1000, Y: 800 - 40*i, Z: 60, Fingers: 2,
			Time: t0.Add(time.Duration(i) * 10 * time.Millisecond),
		})
	}
	e.Touch(gesture.Sample{Time: t0.Add(50 * time.Millisecond)})
	require.Equal(t, 1, timers.live())

	// Touching again kills the coast.
	e.Touch(gesture.Sample{X: 900, Y: 700, Z: 60, Fingers: 1, Time: t0.Add(80 * time.Millisecond)})
	assert.Equal(t, 0, timers.live())

	n := len(sink.scrolls)
	assert.False(t, timers.fire())
	assert.Len(t, sink.scrolls, n)
}

func TestThreeFingerSwipeFiresOncePerDirection(t *testing.T) {
	sink := &recordingSink{}
	e := gesture.NewEngine(testConfig(), sink, &manualTimers{}, nil)
	t0 := time.Unix(100, 0)

	e.Touch(gesture.Sample{X: 500, Y: 700, Z: 60, Fingers: 3, Time: t0})
	require.Equal(t, gesture.ModeMTouch, e.Mode())

	for i := 1; i <= 4; i++ {
		e.Touch(gesture.Sample{
			X: 500 + 150*i, Y: 700, Z: 60, Fingers: 3,
			Time: t0.Add(time.Duration(i) * 10 * time.Millisecond),
		})
	}

	// Travel crossed the threshold twice, but the direction stays latched
	// until release.
	require.Len(t, sink.swipes, 1)
	assert.Equal(t, swipeCall{fingers: 3, dir: gesture.SwipeRight}, sink.swipes[0])
}

func TestEdgeScrollArmsOnRightEdge(t *testing.T) {
	sink := &recordingSink{}
	e := gesture.NewEngine(testConfig(), sink, &manualTimers{}, nil)
	t0 := time.Unix(100, 0)

	// REdge sits 250 units in from the right for a 2000-wide pad.
	e.Touch(gesture.Sample{X: 1900, Y: 800, Z: 60, Fingers: 1, Time: t0})
	assert.Equal(t, gesture.ModeVScroll, e.Mode())

	e.Touch(gesture.Sample{X: 1900, Y: 760, Z: 60, Fingers: 1, Time: t0.Add(10 * time.Millisecond)})
	require.Len(t, sink.scrolls, 1)
	assert.Equal(t, scrollCall{dv: 10, dh: 0}, sink.scrolls[0])
}

func TestSuppressedTouchesAreIgnored(t *testing.T) {
	sink := &recordingSink{}
	e := gesture.NewEngine(testConfig(), sink, &manualTimers{}, nil)
	t0 := time.Unix(100, 0)

	e.SetSuppressed(true)
	e.Touch(gesture.Sample{X: 500, Y: 500, Z: 60, Fingers: 1, Time: t0})
	assert.Empty(t, sink.moves)
	assert.Equal(t, gesture.ModeNoTouch, e.Mode())

	e.SetSuppressed(false)
	e.Touch(gesture.Sample{X: 500, Y: 500, Z: 60, Fingers: 1, Time: t0.Add(10 * time.Millisecond)})
	assert.Len(t, sink.moves, 1)
}

func TestPalmAfterTypingSuppressesTapRecording(t *testing.T) {
	sink := &recordingSink{}
	e := gesture.NewEngine(testConfig(), sink, &manualTimers{}, nil)
	t0 := time.Unix(100, 0)

	e.KeyPressed(t0)

	// A touch right after a key press never becomes a tap candidate.
	e.Touch(gesture.Sample{X: 500, Y: 500, Z: 60, Fingers: 1, Time: t0.Add(50 * time.Millisecond)})
	e.Touch(gesture.Sample{X: 500, Y: 500, Time: t0.Add(100 * time.Millisecond)})

	for _, b := range sink.buttonSeq() {
		assert.Equal(t, uint32(0), b)
	}
}

func TestMiddleButtonChord(t *testing.T) {
	sink := &recordingSink{}
	e := gesture.NewEngine(testConfig(), sink, &manualTimers{}, nil)
	t0 := time.Unix(100, 0)

	e.Touch(gesture.Sample{
		X: 500, Y: 500, Z: 60, Fingers: 1,
		Buttons: gesture.ButtonLeft | gesture.ButtonRight,
		Time:    t0,
	})

	last := sink.moves[len(sink.moves)-1]
	assert.Equal(t, uint32(gesture.ButtonMiddle), last.buttons)
}

func TestHardwareDragEntersDragMode(t *testing.T) {
	sink := &recordingSink{}
	e := gesture.NewEngine(testConfig(), sink, &manualTimers{}, nil)
	t0 := time.Unix(100, 0)

	e.Touch(gesture.Sample{X: 500, Y: 500, Z: 60, Fingers: 1, HWDrag: true, Time: t0})
	assert.Equal(t, gesture.ModeDrag, e.Mode())
}

func TestReset(t *testing.T) {
	sink := &recordingSink{}
	timers := &manualTimers{}
	e := gesture.NewEngine(testConfig(), sink, timers, nil)
	t0 := time.Unix(100, 0)

	e.Touch(gesture.Sample{X: 500, Y: 500, Z: 60, Fingers: 1, Time: t0})
	require.Equal(t, gesture.ModeMove, e.Mode())

	e.Reset()
	assert.Equal(t, gesture.ModeNoTouch, e.Mode())
	assert.Equal(t, 0, timers.live())
}
