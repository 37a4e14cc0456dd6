package gesture

import "time"

// Tunables is the flat runtime configuration of the state machine. Every
// field can be set from the command line or a config file; zero values are
// meaningful, so library users should start from DefaultTunables.
type Tunables struct {
	ZFinger int  `help:"Minimum pressure for a contact to count as a finger touch." default:"30"`
	ZLimit  int  `help:"Pressure above this is treated as a resting palm." default:"255"`
	Palm    bool `help:"Ignore palm-pressure contacts during scrolling." default:"true" negatable:""`

	PalmAfterTyping    bool          `help:"Ignore taps and scrolls shortly after a key press." default:"true" negatable:""`
	OutzoneAfterTyping bool          `help:"Ignore touches outside the active zone shortly after a key press." default:"false"`
	MaxAfterTyping     time.Duration `help:"How long after a key press touches stay suppressed." default:"500ms"`

	Tapping          bool          `help:"Tap to click." default:"true" negatable:""`
	RightTap         bool          `help:"Two and three finger taps click secondary buttons." default:"true" negatable:""`
	SwapDoubleTriple bool          `help:"Swap the buttons produced by two and three finger taps." default:"false"`
	ImmediateClick   bool          `help:"Dispatch tap clicks immediately instead of waiting out a potential drag." default:"false"`
	Dragging         bool          `help:"Tap twice and hold to drag." default:"true" negatable:""`
	DragLock         bool          `help:"Keep drags latched across touch releases until tapped again." default:"false"`

	MaxTapTime       time.Duration `help:"Longest touch that still counts as a tap." default:"130ms"`
	MaxDragTime      time.Duration `help:"Longest gap between tap and re-touch that starts a drag." default:"230ms"`
	MaxDoubleTapTime time.Duration `help:"Double tap detection window." default:"230ms"`
	DragExitDelay    time.Duration `help:"How long a released drag stays resumable." default:"1s"`

	TapThreshX       int `help:"Tap cancel distance, x axis." default:"50"`
	TapThreshY       int `help:"Tap cancel distance, y axis." default:"50"`
	DoubleTapThreshX int `help:"Multi-finger tap cancel distance, x axis." default:"100"`
	DoubleTapThreshY int `help:"Multi-finger tap cancel distance, y axis." default:"100"`

	DivisorX int `help:"Pointer motion divisor, x axis." default:"2"`
	DivisorY int `help:"Pointer motion divisor, y axis." default:"2"`

	BogusDeltaThreshX int `help:"Single-sample x jumps above this are dropped as glitches." default:"350"`
	BogusDeltaThreshY int `help:"Single-sample y jumps above this are dropped as glitches." default:"350"`
	IgnoreDeltasStart int `help:"Samples to swallow after a finger-count change." default:"4"`

	Scroll         bool `help:"Edge and multi-finger scrolling." default:"true" negatable:""`
	HScroll        bool `help:"Horizontal scrolling." default:"true" negatable:""`
	VScrollDivisor int  `help:"Edge vertical scroll divisor, 0 disables." default:"4"`
	HScrollDivisor int  `help:"Edge horizontal scroll divisor, 0 disables." default:"0"`
	CScrollDivisor int  `help:"Circular scroll divisor, 0 disables." default:"0"`
	CScrollTrigger int  `help:"Edge region arming circular scroll, 1..8 clockwise from top, 9 for any, 0 disables." default:"0"`
	WVDivisor      int  `help:"Two-finger vertical scroll divisor, 0 disables." default:"4"`
	WHDivisor      int  `help:"Two-finger horizontal scroll divisor, 0 disables." default:"4"`

	ScrollDXThresh int `help:"Horizontal scroll deltas below this accumulate instead of dispatching." default:"0"`
	ScrollDYThresh int `help:"Vertical scroll deltas below this accumulate instead of dispatching." default:"0"`

	VSticky bool `help:"Vertical edge scroll persists until release." default:"false"`
	HSticky bool `help:"Horizontal edge scroll persists until release." default:"false"`
	WSticky bool `help:"Two-finger scroll persists while one finger lifts." default:"false"`

	SwipeDX int `help:"Horizontal travel that completes a swipe." default:"266"`
	SwipeDY int `help:"Vertical travel that completes a swipe." default:"266"`

	MomentumScroll           bool          `help:"Continue scrolling after release, decaying over time." default:"true" negatable:""`
	MomentumScrollInterval   time.Duration `help:"Momentum scroll tick interval." default:"10ms"`
	MomentumScrollThreshY    int           `help:"Momentum stops when the per-tick delta falls below this." default:"6"`
	MomentumScrollMultiplier int           `help:"Momentum decay ratio numerator." default:"98"`
	MomentumScrollDivisor    int           `help:"Momentum decay ratio denominator." default:"100"`
	MomentumScrollSamplesMin int           `help:"Velocity history samples required to arm momentum." default:"3"`

	UnsmoothInput bool `help:"Undo the firmware's decaying average before processing." default:"true" negatable:""`
	SmoothInput   bool `help:"Apply an unweighted moving average to coordinates." default:"true" negatable:""`

	XUnitsPerMM int `help:"Device units per millimetre, x axis." default:"1"`
	YUnitsPerMM int `help:"Device units per millimetre, y axis." default:"1"`

	// Zone geometry in device units, derived from the model with
	// SetGeometry and overridable afterwards.
	LEdge   int `help:"Left edge of the active zone." default:"0"`
	REdge   int `help:"Start of the vertical scroll strip." default:"0"`
	TEdge   int `help:"Top edge of the active zone." default:"0"`
	BEdge   int `help:"Start of the horizontal scroll strip." default:"0"`
	CenterX int `help:"Circular scroll pivot, x axis." default:"0"`
	CenterY int `help:"Circular scroll pivot, y axis." default:"0"`

	MiddleButton bool `help:"Chord left and right buttons into a middle click." default:"true" negatable:""`
}

// DefaultTunables returns the stock configuration. The zone geometry is left
// zeroed until SetGeometry is called with the model's axis maxima.
func DefaultTunables() Tunables {
	return Tunables{
		ZFinger:         30,
		ZLimit:          255,
		Palm:            true,
		PalmAfterTyping: true,
		MaxAfterTyping:  500 * time.Millisecond,

		Tapping:          true,
		RightTap:         true,
		Dragging:         true,
		MaxTapTime:       130 * time.Millisecond,
		MaxDragTime:      230 * time.Millisecond,
		MaxDoubleTapTime: 230 * time.Millisecond,
		DragExitDelay:    time.Second,

		TapThreshX:       50,
		TapThreshY:       50,
		DoubleTapThreshX: 100,
		DoubleTapThreshY: 100,

		DivisorX: 2,
		DivisorY: 2,

		BogusDeltaThreshX: 350,
		BogusDeltaThreshY: 350,
		IgnoreDeltasStart: 4,

		Scroll:         true,
		HScroll:        true,
		VScrollDivisor: 4,
		WVDivisor:      4,
		WHDivisor:      4,

		SwipeDX: 266,
		SwipeDY: 266,

		MomentumScroll:           true,
		MomentumScrollInterval:   10 * time.Millisecond,
		MomentumScrollThreshY:    6,
		MomentumScrollMultiplier: 98,
		MomentumScrollDivisor:    100,
		MomentumScrollSamplesMin: 3,

		UnsmoothInput: true,
		SmoothInput:   true,

		XUnitsPerMM: 1,
		YUnitsPerMM: 1,

		MiddleButton: true,
	}
}

// SetGeometry derives the edge-zone boundaries from the device's axis
// maxima. The vertical scroll strip is a 250-unit band along the right edge.
func (t *Tunables) SetGeometry(xMax, yMax int) {
	t.REdge = xMax - 250
	t.BEdge = yMax
	t.CenterX = xMax / 2
	t.CenterY = yMax / 2
}
