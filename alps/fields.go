package alps

// Button bits shared across the wire protocol and emitted events.
const (
	ButtonLeft   uint32 = 0x01
	ButtonRight  uint32 = 0x02
	ButtonMiddle uint32 = 0x04
	// Front/back buttons present on some V1/V2 models.
	ButtonForward uint32 = 0x08
	ButtonBack    uint32 = 0x10
)

// Fields is the normalized per-packet record produced by the variant
// decoders. It lives for one packet cycle; multi-packet variants accumulate
// raw bytes in the Decoder instead of retaining Fields across packets.
type Fields struct {
	// Absolute single-touch position and pressure.
	X, Y, Z int

	// Finger count as reported by the hardware (bitmap variants) or derived
	// from bitmap run counts.
	Fingers int

	// Touchpad buttons.
	Left, Right, Middle bool

	// Trackstick buttons, reported in touchpad packets on some models.
	TSLeft, TSRight, TSMiddle bool

	// Two-finger bounding box (populated from bitmap resolution).
	X1, Y1, X2, Y2 int

	// Raw per-axis occupancy masks for bitmap sub-packets.
	XMap, YMap uint32

	// IsMulti marks a bitmap (multi-packet) sub-packet; FirstMulti marks a
	// position packet announcing that a bitmap packet follows.
	IsMulti    bool
	FirstMulti bool
}

// Buttons packs the touchpad button booleans into an event button mask.
func (f *Fields) Buttons() uint32 {
	var b uint32
	if f.Left {
		b |= ButtonLeft
	}
	if f.Right {
		b |= ButtonRight
	}
	if f.Middle {
		b |= ButtonMiddle
	}
	return b
}

// EventKind discriminates decoder outputs.
type EventKind int

const (
	// EventTouch is an absolute touch sample for the gesture state machine.
	EventTouch EventKind = iota
	// EventRelative is relative pointer motion dispatched directly,
	// bypassing the touch pipeline (trackstick packets).
	EventRelative
	// EventScroll is a scroll tick dispatched directly (hardware wheel,
	// trackstick scroll mode).
	EventScroll
)

// Event is one decoded output. A single packet may produce zero events (it
// was absorbed as a partial or auxiliary packet), one, or occasionally two
// (a touch sample plus a hardware wheel tick).
type Event struct {
	Kind EventKind

	// EventTouch fields.
	X, Y, Z int
	Fingers int
	// HWDrag reports a hardware tap-and-drag transition (V1/V2 gesture
	// bits); the state machine switches to drag mode when set.
	HWDrag bool

	// EventRelative fields.
	DX, DY int
	// SuppressTouch is set on trackstick motion; while latched, the gesture
	// stream from the touchpad is to be ignored.
	SuppressTouch bool

	// EventScroll fields.
	ScrollV, ScrollH int

	// Valid for all kinds.
	Buttons uint32
}
