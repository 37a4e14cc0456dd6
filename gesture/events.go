// Package gesture turns decoded touch samples into pointer, scroll, click,
// drag, and swipe events. One Engine instance carries the touch-mode state
// machine for a single device; all entry points are safe for concurrent use
// but samples are expected to arrive from one goroutine.
package gesture

import "time"

// Button bits as reported in event masks.
const (
	ButtonLeft   = 0x01
	ButtonRight  = 0x02
	ButtonMiddle = 0x04
)

// SwipeDirection identifies a multi-finger swipe.
type SwipeDirection int

const (
	SwipeUp SwipeDirection = iota
	SwipeDown
	SwipeLeft
	SwipeRight
)

func (d SwipeDirection) String() string {
	switch d {
	case SwipeUp:
		return "up"
	case SwipeDown:
		return "down"
	case SwipeLeft:
		return "left"
	case SwipeRight:
		return "right"
	default:
		return "unknown"
	}
}

// Sink receives the events an Engine produces. Calls are made synchronously
// from inside the sample-processing path and from timer callbacks; sinks must
// not call back into the Engine.
type Sink interface {
	// PointerMove reports relative motion together with the current button
	// mask. It fires once per processed sample, including samples with
	// zero motion, so button state is always current.
	PointerMove(dx, dy int, buttons uint32, t time.Time)

	// Scroll reports vertical and horizontal scroll ticks.
	Scroll(dv, dh int, t time.Time)

	// Swipe reports a completed three- or four-finger swipe.
	Swipe(fingers int, dir SwipeDirection, t time.Time)
}

// Sample is one decoded contact observation.
type Sample struct {
	X, Y    int
	Z       int
	Fingers int
	Buttons uint32

	// HWDrag is set when the hardware itself reports a tap-and-drag
	// gesture, as older pads do instead of leaving tap detection to the
	// host.
	HWDrag bool

	Time time.Time
}

// Mode is the current touch-mode of the state machine.
type Mode int

const (
	ModeNoTouch Mode = iota
	ModeMove
	ModeVScroll
	ModeHScroll
	ModeCScroll
	ModeMTouch
	ModeDrag
	ModeDragLock
	ModeDragNoTouch
	ModePreDrag
)

func (m Mode) String() string {
	switch m {
	case ModeNoTouch:
		return "notouch"
	case ModeMove:
		return "move"
	case ModeVScroll:
		return "vscroll"
	case ModeHScroll:
		return "hscroll"
	case ModeCScroll:
		return "cscroll"
	case ModeMTouch:
		return "mtouch"
	case ModeDrag:
		return "drag"
	case ModeDragLock:
		return "draglock"
	case ModeDragNoTouch:
		return "dragnotouch"
	case ModePreDrag:
		return "predrag"
	default:
		return "invalid"
	}
}
