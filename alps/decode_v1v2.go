package alps

// zHardwareTap is the synthetic pressure reported when the hardware gesture
// bit signals a tap without finger pressure. It must clear the default
// finger-contact threshold of the gesture engine.
const zHardwareTap = 31

// zTrackstick marks a V1/V2 packet as relative trackstick motion on
// dual-point models.
const zTrackstick = 127

// decodeV1V2 handles the two 6-byte first-generation layouts. The layouts
// differ in where x/y high bits and buttons live.
func (d *Decoder) decodeV1V2(pkt []byte) {
	var x, y, z int
	var left, right, middle bool

	if d.model.Version == ProtoV1 {
		left = pkt[2]&0x10 != 0
		right = pkt[2]&0x08 != 0
		x = int(pkt[1]) | int(pkt[0]&0x07)<<7
		y = int(pkt[4]) | int(pkt[3]&0x07)<<7
		z = int(pkt[5])
	} else {
		left = pkt[3]&0x01 != 0
		right = pkt[3]&0x02 != 0
		middle = pkt[3]&0x04 != 0
		x = int(pkt[1]) | int(pkt[2]&0x78)<<4
		y = int(pkt[4]) | int(pkt[3]&0x70)<<3
		z = int(pkt[5])
	}

	var back, forward bool
	if d.model.Flags&FlagFwBk1 != 0 {
		back = pkt[0]&0x10 != 0
		forward = pkt[2]&0x04 != 0
	}
	if d.model.Flags&FlagFwBk2 != 0 {
		back = pkt[3]&0x04 != 0
		forward = pkt[2]&0x04 != 0
		// Both pressed under the second layout means middle button.
		if back && forward {
			middle = true
			back = false
			forward = false
		}
	}
	var buttons uint32
	if left {
		buttons |= ButtonLeft
	}
	if right {
		buttons |= ButtonRight
	}
	if middle {
		buttons |= ButtonMiddle
	}
	if forward {
		buttons |= ButtonForward
	}
	if back {
		buttons |= ButtonBack
	}

	ges := pkt[2]&0x01 != 0
	fin := pkt[2]&0x02 != 0

	// Dual-point models reuse the packet format for trackstick motion,
	// marked by z == 127. Signed 9-bit deltas, dispatched directly.
	if d.model.Flags&FlagDualPoint != 0 && z == zTrackstick {
		dx, dy := x, y
		if dx > 383 {
			dx -= 768
		}
		if dy > 255 {
			dy -= 512
		}
		d.emit(Event{
			Kind:    EventRelative,
			DX:      dx,
			DY:      -dy,
			Buttons: buttons,
		})
		return
	}

	// A hardware tap reports ges without fin; convert it to a pressure the
	// gesture engine recognizes as contact.
	if ges && !fin {
		z = zHardwareTap
	}

	// Tap-and-drag arrives as a (!fin && ges) -> (fin && ges) transition.
	hwDrag := ges && fin && !d.prevFin
	d.prevFin = fin

	fingers := 0
	if z > 0 {
		fingers = 1
		// Pressure grows with contact area; high z means a second finger.
		if z >= 98 {
			fingers = 2
		}
	}

	d.emit(Event{
		Kind:    EventTouch,
		X:       x,
		Y:       y,
		Z:       z,
		Fingers: fingers,
		Buttons: buttons,
		HWDrag:  hwDrag,
	})

	if d.model.Flags&FlagWheel != 0 {
		if wheel := int(pkt[2]<<1&0x08) - int(pkt[0]>>4&0x07); wheel != 0 {
			d.emit(Event{Kind: EventScroll, ScrollV: wheel})
		}
	}
}
