package alps

import "log/slog"

// Decoder converts framed packets into events for one attached device.
//
// Decoding is pure per packet except for the small amount of session state
// the protocols require: the multi-packet reassembly buffer, the sticky
// second-touch corner, latched quirks, and the previous hardware gesture
// bits. All of it is owned here and touched only by Decode/Reset.
type Decoder struct {
	model Model
	log   *slog.Logger

	// Multi-packet bitmap reassembly. For V3/V5 multiData holds a copy of
	// the announcing position packet; for V4 it accumulates three 2-byte
	// fragments. multiPacket is the cursor into the sequence.
	multiPacket int
	multiData   [6]byte

	// V4 multi-touch state persisted between bitmap reassemblies.
	mtFingers              int
	mtX1, mtY1, mtX2, mtY2 int

	// Second-touch corner committed for the current 2-finger gesture;
	// -1 means not yet chosen.
	secondTouch int

	// Quirk latched the first time a trackstick packet reports a pressed
	// button: from then on trackstick button bits in touchpad packets are
	// ignored.
	tsButtons bool

	// V1/V2 hardware gesture tracking.
	prevFin bool

	// Last buttons observed on the trackstick, persisted because button
	// state can arrive in packets without motion.
	lastTSButtons uint32

	events []Event
}

// NewDecoder returns a decoder for the given model. A nil logger falls back
// to slog.Default.
func NewDecoder(m Model, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{model: m, log: logger, secondTouch: -1}
}

// Model returns the descriptor the decoder was built with.
func (d *Decoder) Model() Model { return d.model }

// Decode consumes one complete packet and returns zero or more events. The
// returned slice is reused across calls; callers must not retain it.
func (d *Decoder) Decode(pkt []byte) []Event {
	d.events = d.events[:0]
	switch d.model.Version {
	case ProtoV1, ProtoV2:
		d.decodeV1V2(pkt)
	case ProtoV3, ProtoV5:
		// V5 shares the V3 packet flow with the Dolphin field layout.
		if pkt[5] == trackstickMarker {
			d.decodeTrackstickV3(pkt)
		} else {
			d.decodeTouchpadV3(pkt)
		}
	case ProtoV4:
		d.decodeV4(pkt)
	}
	return d.events
}

// Reset clears all reassembly and gesture-tracking state, as after a device
// restart. Latched quirks survive; they describe the hardware, not the
// session.
func (d *Decoder) Reset() {
	d.multiPacket = 0
	d.mtFingers = 0
	d.secondTouch = -1
	d.prevFin = false
	d.lastTSButtons = 0
}

// decodeFields dispatches to the per-layout field extraction for V3/V4/V5
// position and bitmap packets.
func (d *Decoder) decodeFields(f *Fields, pkt []byte) {
	switch d.model.Layout {
	case LayoutPinnacle:
		decodePinnacle(f, pkt)
	case LayoutRushmore:
		decodeRushmore(f, pkt)
	case LayoutDolphin:
		decodeDolphin(f, pkt)
	}
}

func (d *Decoder) emit(ev Event) {
	d.events = append(d.events, ev)
}
