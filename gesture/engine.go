package gesture

import (
	"log/slog"
	"sync"
	"time"
)

const avgWindow = 3
const historyWindow = 8

// Engine is the touch-mode state machine. It consumes one Sample per decoded
// contact report and drives a Sink with pointer, scroll, and swipe events.
// Timer callbacks re-enter the engine through the same mutex that guards
// Touch, so the sink only ever sees one call at a time.
type Engine struct {
	mu   sync.Mutex
	cfg  Tunables
	sink Sink
	tsvc TimerService
	log  *slog.Logger

	mode Mode

	lastX, lastY int
	lastZ        int
	lastFingers  int
	lastButtons  uint32
	xRest, yRest int
	scrollRest   int
	ignoreDeltas int
	suppressed   bool

	touchTime   time.Time
	touchX      int
	touchY      int
	untouchTime time.Time
	keyTime     time.Time

	wasDouble bool
	wasTriple bool

	xMoved, yMoved int
	inSwipe        [4]bool
	inSwipe4       [4]bool

	xUndo, yUndo unDecayFilter
	xAvg, yAvg   *movingAverage

	dyHistory   *deltaHistory
	timeHistory *timeHistory

	momentumTimer    Timer
	momentumInterval time.Duration
	momentumCurrent  int64
	momentumRest1    int64
	momentumRest2    int

	dragTimer Timer
}

// NewEngine builds an engine in ModeNoTouch. A nil logger falls back to
// slog.Default; a nil timer service falls back to real clock timers.
func NewEngine(cfg Tunables, sink Sink, tsvc TimerService, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if tsvc == nil {
		tsvc = ClockTimers()
	}
	return &Engine{
		cfg:         cfg,
		sink:        sink,
		tsvc:        tsvc,
		log:         logger.With("component", "gesture"),
		xAvg:        newMovingAverage(avgWindow),
		yAvg:        newMovingAverage(avgWindow),
		dyHistory:   newDeltaHistory(historyWindow),
		timeHistory: newTimeHistory(historyWindow),
	}
}

// Mode reports the current touch-mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// SetTunables swaps the configuration. Takes effect from the next sample.
func (e *Engine) SetTunables(cfg Tunables) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
}

// Tunables returns a copy of the active configuration.
func (e *Engine) Tunables() Tunables {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// SetSuppressed turns touchpad input off and on, used while a companion
// trackstick is in motion.
func (e *Engine) SetSuppressed(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.suppressed = on
}

// KeyPressed notes keyboard activity so touches right after typing can be
// debounced.
func (e *Engine) KeyPressed(t time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keyTime = t
}

// Reset drops all gesture state and returns to ModeNoTouch. Armed timers are
// cancelled.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelMomentumLocked()
	if e.dragTimer != nil {
		e.dragTimer.Cancel()
		e.dragTimer = nil
	}
	e.mode = ModeNoTouch
	e.lastFingers = 0
	e.lastZ = 0
	e.lastButtons = 0
	e.xRest, e.yRest, e.scrollRest = 0, 0, 0
	e.ignoreDeltas = 0
	e.wasDouble, e.wasTriple = false, false
	e.xMoved, e.yMoved = 0, 0
	e.inSwipe = [4]bool{}
	e.inSwipe4 = [4]bool{}
	e.resetFiltersLocked()
	e.dyHistory.reset()
	e.timeHistory.reset()
	e.touchTime = time.Time{}
	e.untouchTime = time.Time{}
}

func (e *Engine) isTouchModeLocked() bool {
	switch e.mode {
	case ModeNoTouch, ModePreDrag, ModeDragNoTouch:
		return false
	}
	return true
}

func (e *Engine) isFingerTouch(z int) bool { return z > e.cfg.ZFinger }

func (e *Engine) resetFiltersLocked() {
	e.xUndo.reset()
	e.yUndo.reset()
	e.xAvg.reset()
	e.yAvg.reset()
}

// Touch processes one contact sample. All event dispatch happens before it
// returns.
func (e *Engine) Touch(s Sample) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := s.Time
	prevMode := e.mode
	xraw, yraw := s.X, s.Y
	z, fingers := s.Z, s.Fingers

	// Scale the weaker axis up so both move at the same physical rate.
	if e.cfg.XUnitsPerMM < e.cfg.YUnitsPerMM {
		xraw = xraw * e.cfg.YUnitsPerMM / e.cfg.XUnitsPerMM
	} else if e.cfg.XUnitsPerMM > e.cfg.YUnitsPerMM {
		yraw = yraw * e.cfg.XUnitsPerMM / e.cfg.YUnitsPerMM
	}
	x, y := xraw, yraw

	buttons := s.Buttons
	if e.cfg.MiddleButton && buttons&(ButtonLeft|ButtonRight) == ButtonLeft|ButtonRight {
		buttons = buttons&^uint32(ButtonLeft|ButtonRight) | ButtonMiddle
	}
	e.lastButtons = buttons

	if e.lastFingers > 0 && fingers > 0 && e.lastFingers != fingers {
		// Coordinates jump when the reported contact switches fingers.
		e.ignoreDeltas = e.cfg.IgnoreDeltasStart
	}
	if e.lastFingers != fingers {
		e.resetFiltersLocked()
	}

	if e.cfg.UnsmoothInput {
		x = e.xUndo.filter(x)
		y = e.yUndo.filter(y)
	}
	if e.cfg.SmoothInput {
		x = e.xAvg.filter(x)
		y = e.yAvg.filter(y)
	}

	if e.ignoreDeltas > 0 {
		e.lastX, e.lastY = x, y
		e.ignoreDeltas--
		if e.ignoreDeltas == 0 {
			e.resetFiltersLocked()
		}
	}

	if e.cfg.OutzoneAfterTyping && z > e.cfg.ZFinger &&
		now.Sub(e.keyTime) < e.cfg.MaxAfterTyping &&
		(x < e.cfg.LEdge || x > e.cfg.REdge || y < e.cfg.TEdge || y > e.cfg.BEdge) {
		return
	}

	if e.suppressed {
		return
	}

	if z < e.cfg.ZFinger && e.isTouchModeLocked() {
		buttons = e.onReleaseLocked(buttons, fingers, now)
	}

	if e.mode == ModePreDrag && now.Sub(e.untouchTime) >= e.cfg.MaxDragTime {
		e.mode = ModeNoTouch
	}

	// A touch that wanders too far stops being a tap candidate.
	if e.isTouchModeLocked() && e.isFingerTouch(z) {
		dx := absInt(xraw - e.touchX)
		dy := absInt(yraw - e.touchY)
		if !e.wasDouble && !e.wasTriple && (dx > e.cfg.TapThreshX || dy > e.cfg.TapThreshY) {
			e.touchTime = time.Time{}
		} else if dx > e.cfg.DoubleTapThreshX || dy > e.cfg.DoubleTapThreshY {
			e.touchTime = time.Time{}
		}
	}

	dx, dy := 0, 0

	switch e.mode {
	case ModeDrag, ModeDragLock:
		if e.mode == ModeDragLock || !e.cfg.ImmediateClick || now.Sub(e.touchTime) > e.cfg.MaxDoubleTapTime {
			buttons |= ButtonLeft
		}
		fallthrough

	case ModeMove:
		if e.lastFingers == fingers && now.Sub(e.touchTime) > 100*time.Millisecond {
			dx = x - e.lastX + e.xRest
			dy = y - e.lastY + e.yRest
			e.xRest = dx % e.cfg.DivisorX
			e.yRest = dy % e.cfg.DivisorY
			if absInt(dx) > e.cfg.BogusDeltaThreshX || absInt(dy) > e.cfg.BogusDeltaThreshY {
				dx, dy, e.xRest, e.yRest = 0, 0, 0, 0
			}
		}

	case ModeMTouch:
		e.multiTouchLocked(x, y, z, fingers, now)

	case ModeVScroll:
		if !e.cfg.VSticky && (x < e.cfg.REdge || fingers > 1 || z > e.cfg.ZLimit) {
			e.mode = ModeNoTouch
			break
		}
		if e.cfg.PalmAfterTyping && now.Sub(e.keyTime) < e.cfg.MaxAfterTyping {
			break
		}
		d := y - e.lastY + e.scrollRest
		e.scrollRest = d % e.cfg.VScrollDivisor
		if absInt(d) < e.cfg.ScrollDYThresh {
			e.scrollRest = d
			d = 0
		}
		if d != 0 {
			e.sink.Scroll(-d/e.cfg.VScrollDivisor, 0, now)
		}

	case ModeHScroll:
		if !e.cfg.HSticky && (y < e.cfg.BEdge || fingers > 1 || z > e.cfg.ZLimit) {
			e.mode = ModeNoTouch
			break
		}
		if e.cfg.PalmAfterTyping && now.Sub(e.keyTime) < e.cfg.MaxAfterTyping {
			break
		}
		d := x - e.lastX + e.scrollRest
		e.scrollRest = d % e.cfg.HScrollDivisor
		if absInt(d) < e.cfg.ScrollDXThresh {
			e.scrollRest = d
			d = 0
		}
		if d != 0 {
			e.sink.Scroll(0, d/e.cfg.HScrollDivisor, now)
		}

	case ModeCScroll:
		if e.cfg.PalmAfterTyping && now.Sub(e.keyTime) < e.cfg.MaxAfterTyping {
			break
		}
		var d int
		if y < e.cfg.CenterY {
			d = x - e.lastX
		} else {
			d = e.lastX - x
		}
		if x < e.cfg.CenterX {
			d += e.lastY - y
		} else {
			d += y - e.lastY
			d += e.scrollRest
			e.scrollRest = d % e.cfg.CScrollDivisor
		}
		if absInt(d) < e.cfg.ScrollDXThresh {
			e.scrollRest = d
			d = 0
		}
		if d != 0 {
			e.sink.Scroll(d/e.cfg.CScrollDivisor, 0, now)
		}

	case ModeDragNoTouch:
		buttons |= ButtonLeft
		fallthrough

	case ModePreDrag:
		if !e.cfg.ImmediateClick && (!e.cfg.PalmAfterTyping || now.Sub(e.keyTime) >= e.cfg.MaxAfterTyping) {
			buttons |= ButtonLeft
		}
	}

	// Record tap candidates and watch for multi-finger taps.
	if e.isFingerTouch(z) {
		if (!e.cfg.PalmAfterTyping || now.Sub(e.keyTime) >= e.cfg.MaxAfterTyping) && e.momentumCurrent == 0 {
			if !e.isTouchModeLocked() {
				e.touchTime = now
				e.touchX, e.touchY = xraw, yraw
			}
			if fingers == 2 {
				e.wasDouble = true
			} else if fingers == 3 {
				e.wasTriple = true
			}
		}
		e.cancelMomentumLocked()
	}

	// Mode transitions driven by the current contact.
	if s.HWDrag && e.cfg.Dragging && e.mode != ModeDrag && e.mode != ModeDragLock {
		e.mode = ModeDrag
	}
	if e.mode == ModePreDrag && e.isFingerTouch(z) {
		e.mode = ModeDrag
	}
	if e.mode == ModeDragNoTouch && e.isFingerTouch(z) {
		if e.dragTimer != nil {
			e.dragTimer.Cancel()
			e.dragTimer = nil
		}
		e.mode = ModeDragLock
	}
	if e.mode != ModeMTouch && fingers > 1 && e.isFingerTouch(z) {
		e.mode = ModeMTouch
	}

	if e.cfg.Scroll && e.cfg.CScrollDivisor != 0 && e.mode == ModeNoTouch && z > e.cfg.ZFinger {
		if e.cornerScrollArmed(x, y) {
			e.mode = ModeCScroll
		}
	}
	if (e.mode == ModeNoTouch || (e.mode == ModeHScroll && y >= e.cfg.BEdge)) &&
		z > e.cfg.ZFinger && x > e.cfg.REdge && e.cfg.VScrollDivisor != 0 && e.cfg.Scroll {
		e.mode = ModeVScroll
		e.scrollRest = 0
	}
	if (e.mode == ModeNoTouch || (e.mode == ModeVScroll && x <= e.cfg.REdge)) &&
		z > e.cfg.ZFinger && y > e.cfg.BEdge && e.cfg.HScrollDivisor != 0 && e.cfg.HScroll && e.cfg.Scroll {
		e.mode = ModeHScroll
		e.scrollRest = 0
	}
	if e.mode == ModeNoTouch && z > e.cfg.ZFinger {
		e.mode = ModeMove
	}

	e.sink.PointerMove(dx/e.cfg.DivisorX, dy/e.cfg.DivisorY, buttons, now)

	e.lastX, e.lastY = x, y
	e.lastZ = z
	e.lastFingers = fingers

	if e.mode != prevMode {
		e.log.Debug("touch mode changed", "from", prevMode.String(), "to", e.mode.String())
	}
}

// cornerScrollArmed reports whether the touch location matches the
// configured circular scroll trigger region. Regions 1..8 walk clockwise
// from the top edge; 9 arms on any edge.
func (e *Engine) cornerScrollArmed(x, y int) bool {
	t := e.cfg.CScrollTrigger
	top := y > e.cfg.TEdge
	right := x > e.cfg.REdge
	bottom := y < e.cfg.BEdge
	left := x < e.cfg.LEdge
	switch t {
	case 1:
		return top
	case 2:
		return top && right
	case 3:
		return right
	case 4:
		return right && bottom
	case 5:
		return bottom
	case 6:
		return bottom && left
	case 7:
		return left
	case 8:
		return left && top
	case 9:
		return top || right || bottom || left
	}
	return false
}

// onReleaseLocked handles the finger leaving the pad: tap dispatch, drag
// hand-off, and momentum arming. Returns the possibly-updated button mask.
func (e *Engine) onReleaseLocked(buttons uint32, fingers int, now time.Time) uint32 {
	e.xRest, e.yRest, e.scrollRest = 0, 0, 0
	e.inSwipe = [4]bool{}
	e.inSwipe4 = [4]bool{}
	e.xMoved, e.yMoved = 0, 0
	e.untouchTime = now

	if e.mode == ModeMTouch && e.cfg.MomentumScroll && e.cfg.MomentumScrollInterval > 0 {
		if e.dyHistory.len() > e.cfg.MomentumScrollSamplesMin {
			if ival := e.timeHistory.newest().Sub(e.timeHistory.oldest()); ival > 0 {
				sum := e.dyHistory.sum()
				e.momentumInterval = ival
				e.momentumCurrent = int64(e.cfg.MomentumScrollInterval) * int64(-sum)
				e.momentumRest1 = 0
				e.momentumRest2 = 0
				e.momentumTimer = e.tsvc.AfterFunc(e.cfg.MomentumScrollInterval, e.momentumFire)
				e.log.Debug("momentum scroll armed", "sum", sum, "span", ival)
			}
		}
	}
	e.timeHistory.reset()
	e.dyHistory.reset()

	if !e.touchTime.IsZero() && now.Sub(e.touchTime) < e.cfg.MaxTapTime && e.cfg.Tapping {
		switch e.mode {
		case ModeDrag:
			if !e.cfg.ImmediateClick {
				buttons &^= 0x7
				e.sink.PointerMove(0, 0, buttons|ButtonLeft, now)
				e.sink.PointerMove(0, 0, buttons, now)
			}
			switch {
			case e.wasTriple && e.cfg.RightTap:
				buttons |= e.tripleTapButton()
			case e.wasDouble && e.cfg.RightTap:
				buttons |= e.doubleTapButton()
			default:
				buttons |= ButtonLeft
			}
			e.mode = ModeNoTouch

		case ModeDragLock:
			e.mode = ModeNoTouch

		default:
			switch {
			case e.wasTriple && e.cfg.RightTap:
				buttons |= e.tripleTapButton()
				e.mode = ModeNoTouch
			case e.wasDouble && e.cfg.RightTap:
				if e.lastFingers == 2 && fingers == 0 {
					buttons |= e.doubleTapButton()
					e.mode = ModeNoTouch
				}
			default:
				if e.lastFingers == 1 && fingers == 0 {
					buttons |= ButtonLeft
					if e.cfg.Dragging {
						e.mode = ModePreDrag
					} else {
						e.mode = ModeNoTouch
					}
				}
			}
		}
	} else {
		if (e.mode == ModeDrag || e.mode == ModeDragLock) &&
			(e.cfg.DragLock || e.cfg.DragExitDelay > 0) {
			e.mode = ModeDragNoTouch
			if !e.cfg.DragLock {
				if e.dragTimer != nil {
					e.dragTimer.Cancel()
				}
				e.dragTimer = e.tsvc.AfterFunc(e.cfg.DragExitDelay, e.dragExpire)
			}
		} else {
			e.mode = ModeNoTouch
		}
	}
	e.wasDouble = false
	e.wasTriple = false
	return buttons
}

func (e *Engine) doubleTapButton() uint32 {
	if e.cfg.SwapDoubleTriple {
		return ButtonMiddle
	}
	return ButtonRight
}

func (e *Engine) tripleTapButton() uint32 {
	if e.cfg.SwapDoubleTriple {
		return ButtonRight
	}
	return ButtonMiddle
}

// multiTouchLocked handles samples while in ModeMTouch: two-finger scroll,
// three and four finger swipes, and the demotion back to ModeMove when a
// finger lifts.
func (e *Engine) multiTouchLocked(x, y, z, fingers int, now time.Time) {
	switch fingers {
	case 1:
		// One finger left; keep moving with it unless sticky scroll
		// wants the scroll gesture to survive.
		if e.lastFingers == fingers && !e.cfg.WSticky {
			e.dyHistory.reset()
			e.timeHistory.reset()
			e.mode = ModeMove
			return
		}
		fallthrough

	case 2:
		if e.lastFingers != fingers {
			return
		}
		if e.cfg.Palm && z > e.cfg.ZLimit {
			return
		}
		if e.cfg.PalmAfterTyping && now.Sub(e.keyTime) < e.cfg.MaxAfterTyping {
			return
		}
		var dy, dx int
		if e.cfg.WVDivisor != 0 {
			dy = y - e.lastY + e.yRest
			e.yRest = dy % e.cfg.WVDivisor
		}
		if e.cfg.WHDivisor != 0 && e.cfg.HScroll {
			dx = x - e.lastX + e.xRest
			e.xRest = dx % e.cfg.WHDivisor
		}
		// Direction change or stop invalidates the velocity history.
		if (dy < 0) != (e.dyHistory.newest() < 0) || dy == 0 {
			e.dyHistory.reset()
			e.timeHistory.reset()
		}
		e.dyHistory.push(dy)
		e.timeHistory.push(now)
		if absInt(dx) < e.cfg.ScrollDXThresh {
			e.xRest = dx
			dx = 0
		}
		if absInt(dy) < e.cfg.ScrollDYThresh {
			e.yRest = dy
			dy = 0
		}
		if dx != 0 || dy != 0 {
			var dv, dh int
			if e.cfg.WVDivisor != 0 {
				dv = -dy / e.cfg.WVDivisor
			}
			if e.cfg.WHDivisor != 0 && e.cfg.HScroll {
				dh = -dx / e.cfg.WHDivisor
			}
			e.sink.Scroll(dv, dh, now)
		}

	case 3:
		e.xMoved += x - e.lastX
		e.yMoved += y - e.lastY
		e.swipe3Locked(now)

	case 4:
		e.xMoved += x - e.lastX
		e.yMoved += y - e.lastY
		e.swipe4Locked(now)
	}
}

func (e *Engine) swipe3Locked(now time.Time) {
	switch {
	case e.yMoved < -e.cfg.SwipeDY && !e.inSwipe[SwipeUp] && !e.inSwipe4[SwipeUp]:
		e.inSwipe[SwipeUp], e.inSwipe[SwipeDown] = true, false
		e.yMoved = 0
		e.sink.Swipe(3, SwipeUp, now)
	case e.yMoved > e.cfg.SwipeDY && !e.inSwipe[SwipeDown] && !e.inSwipe4[SwipeDown]:
		e.inSwipe[SwipeDown], e.inSwipe[SwipeUp] = true, false
		e.yMoved = 0
		e.sink.Swipe(3, SwipeDown, now)
	case e.xMoved > e.cfg.SwipeDX && !e.inSwipe[SwipeRight] && !e.inSwipe4[SwipeRight]:
		e.inSwipe[SwipeRight], e.inSwipe[SwipeLeft] = true, false
		e.xMoved = 0
		e.sink.Swipe(3, SwipeRight, now)
	case e.xMoved < -e.cfg.SwipeDX && !e.inSwipe[SwipeLeft] && !e.inSwipe4[SwipeLeft]:
		e.inSwipe[SwipeLeft], e.inSwipe[SwipeRight] = true, false
		e.xMoved = 0
		e.sink.Swipe(3, SwipeLeft, now)
	}
}

func (e *Engine) swipe4Locked(now time.Time) {
	switch {
	case e.yMoved < -e.cfg.SwipeDY && !e.inSwipe4[SwipeUp]:
		e.inSwipe4[SwipeUp], e.inSwipe4[SwipeDown] = true, false
		e.inSwipe[SwipeUp] = false
		e.yMoved = 0
		e.sink.Swipe(4, SwipeUp, now)
	case e.yMoved > e.cfg.SwipeDY && !e.inSwipe4[SwipeDown]:
		e.inSwipe4[SwipeDown], e.inSwipe4[SwipeUp] = true, false
		e.inSwipe[SwipeDown] = false
		e.yMoved = 0
		e.sink.Swipe(4, SwipeDown, now)
	case e.xMoved > e.cfg.SwipeDX && !e.inSwipe4[SwipeRight]:
		e.inSwipe4[SwipeRight], e.inSwipe4[SwipeLeft] = true, false
		e.inSwipe[SwipeRight] = false
		e.xMoved = 0
		e.sink.Swipe(4, SwipeRight, now)
	case e.xMoved < -e.cfg.SwipeDX && !e.inSwipe4[SwipeLeft]:
		e.inSwipe4[SwipeLeft], e.inSwipe4[SwipeRight] = true, false
		e.inSwipe[SwipeLeft] = false
		e.xMoved = 0
		e.sink.Swipe(4, SwipeLeft, now)
	}
}

func (e *Engine) cancelMomentumLocked() {
	e.momentumCurrent = 0
	e.momentumRest1 = 0
	e.momentumRest2 = 0
	if e.momentumTimer != nil {
		e.momentumTimer.Cancel()
		e.momentumTimer = nil
	}
}

// momentumFire is the momentum scroll timer callback. Each firing dispatches
// one decayed scroll tick and re-arms until the per-tick delta drops below
// the exhaustion threshold.
func (e *Engine) momentumFire() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.momentumCurrent == 0 {
		return
	}
	now := time.Now()

	dy := int(e.momentumCurrent / int64(e.momentumInterval))
	if absInt(dy) > e.cfg.MomentumScrollThreshY {
		if e.cfg.WVDivisor != 0 {
			e.sink.Scroll((dy+e.momentumRest2)/e.cfg.WVDivisor, 0, now)
			e.momentumRest2 = (dy + e.momentumRest2) % e.cfg.WVDivisor
		}
		e.momentumCurrent = e.momentumCurrent*int64(e.cfg.MomentumScrollMultiplier) + e.momentumRest1
		e.momentumRest1 = e.momentumCurrent % int64(e.cfg.MomentumScrollDivisor)
		e.momentumCurrent /= int64(e.cfg.MomentumScrollDivisor)
		e.momentumTimer = e.tsvc.AfterFunc(e.cfg.MomentumScrollInterval, e.momentumFire)
	} else {
		e.momentumCurrent = 0
		e.momentumRest1 = 0
		e.momentumRest2 = 0
		e.timeHistory.reset()
		e.dyHistory.reset()
	}
}

// dragExpire is the drag-exit timer callback: a drag left untouched too long
// releases the held button.
func (e *Engine) dragExpire() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != ModeDragNoTouch {
		return
	}
	e.mode = ModeNoTouch
	e.dragTimer = nil
	e.sink.PointerMove(0, 0, e.lastButtons&^uint32(ButtonLeft), time.Now())
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
