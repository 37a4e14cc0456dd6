package alps

// trackstickMarker is the value of byte 5 in every V3 trackstick packet; it
// never appears there in touchpad position or bitmap packets.
const trackstickMarker = 0x3f

func decodeButtonsV3(f *Fields, pkt []byte) {
	f.Left = pkt[3]&0x01 != 0
	f.Right = pkt[3]&0x02 != 0
	f.Middle = pkt[3]&0x04 != 0

	f.TSLeft = pkt[3]&0x10 != 0
	f.TSRight = pkt[3]&0x20 != 0
	f.TSMiddle = pkt[3]&0x40 != 0
}

// decodePinnacle extracts fields from the original V3 layout. Bit 6 of byte 0
// marks a bitmap sub-packet; bit 6 of byte 4 marks the position packet that
// announces one.
func decodePinnacle(f *Fields, p []byte) {
	f.FirstMulti = p[4]&0x40 != 0
	f.IsMulti = p[0]&0x40 != 0

	if f.IsMulti {
		f.Fingers = int(p[5]&0x03) + 1
		f.XMap = uint32(p[4]&0x7e)<<8 |
			uint32(p[1]&0x7f)<<2 |
			uint32(p[0]&0x30)>>4
		f.YMap = uint32(p[3]&0x70)<<4 |
			uint32(p[2]&0x7f)<<1 |
			uint32(p[4]&0x01)
		return
	}

	f.X = int(p[1]&0x7f)<<4 | int(p[4]&0x30)>>2 | int(p[0]&0x30)>>4
	f.Y = int(p[2]&0x7f)<<4 | int(p[4]&0x0f)
	f.Z = int(p[5] & 0x7f)
	decodeButtonsV3(f, p)
}

// decodeRushmore extracts fields from the Rushmore V3 variant: the bitmap
// marker moves to byte 5 and the masks gain one high bit per axis.
func decodeRushmore(f *Fields, p []byte) {
	f.FirstMulti = p[4]&0x40 != 0
	f.IsMulti = p[5]&0x40 != 0

	if f.IsMulti {
		f.Fingers = max(int(p[5]&0x03), int(p[5]>>2&0x03)) + 1
		f.XMap = uint32(p[5]&0x10)<<11 |
			uint32(p[4]&0x7e)<<8 |
			uint32(p[1]&0x7f)<<2 |
			uint32(p[0]&0x30)>>4
		f.YMap = uint32(p[5]&0x20)<<6 |
			uint32(p[3]&0x70)<<4 |
			uint32(p[2]&0x7f)<<1 |
			uint32(p[4]&0x01)
		return
	}

	f.X = int(p[1]&0x7f)<<4 | int(p[4]&0x30)>>2 | int(p[0]&0x30)>>4
	f.Y = int(p[2]&0x7f)<<4 | int(p[4]&0x0f)
	f.Z = int(p[5] & 0x7f)
	decodeButtonsV3(f, p)
}

// decodeDolphin extracts fields from the V5 layout: a 23-bit x mask packed
// across five bytes, a 12-bit y mask across two, and the finger count read
// from three scattered bits instead of bitmap runs.
func decodeDolphin(f *Fields, p []byte) {
	f.FirstMulti = p[0]&0x02 != 0
	f.IsMulti = p[0]&0x20 != 0

	f.Fingers = int(p[0]&0x06)>>1 | int(p[0]&0x10)>>2
	f.XMap = uint32(p[2]&0x60)>>5 |
		uint32(p[4]&0x7f)<<2 |
		uint32(p[5]&0x7f)<<9 |
		uint32(p[3]&0x07)<<16 |
		uint32(p[3]&0x70)<<15 |
		uint32(p[0]&0x01)<<22
	f.YMap = uint32(p[1]&0x7f) |
		uint32(p[2]&0x1f)<<7

	f.X = int(p[1]&0x7f) | int(p[4]&0x0f)<<7
	f.Y = int(p[2]&0x7f) | int(p[4]&0xf0)<<3
	if p[0]&0x04 != 0 {
		f.Z = 0
	} else {
		f.Z = int(p[5] & 0x7f)
	}
	decodeButtonsV3(f, p)
}

// decodeTrackstickV3 handles trackstick packets on dual-point V3 models.
func (d *Decoder) decodeTrackstickV3(pkt []byte) {
	if pkt[0]&0x40 == 0 {
		d.log.Debug("malformed trackstick packet, discarding")
		return
	}

	// Three 0x7f bytes mark the end of a trackstick stream; nothing to
	// report.
	if pkt[1] == 0x7f && pkt[2] == 0x7f && pkt[3] == 0x7f {
		return
	}

	x := int(int8((pkt[0]&0x20)<<2 | pkt[1]&0x7f))
	y := int(int8((pkt[0]&0x10)<<3 | pkt[2]&0x7f))

	left := pkt[3]&0x01 != 0
	right := pkt[3]&0x02 != 0
	middle := pkt[3]&0x04 != 0

	// The first pressed trackstick button tells us this hardware reports
	// buttons on the stick itself; touchpad packets stop merging their
	// trackstick button bits from then on.
	if !d.tsButtons && (left || right || middle) {
		d.tsButtons = true
	}

	var raw uint32
	if left {
		raw |= ButtonLeft
	}
	if right {
		raw |= ButtonRight
	}
	if middle {
		raw |= ButtonMiddle
	}

	y = -y

	// Occasional full-scale spikes on both axes are sensor glitches.
	if absInt(x) >= 0x7f && absInt(y) >= 0x7f {
		x, y = 0, 0
	}

	// Button state can arrive in packets without motion; carry the last
	// observed state forward.
	buttons := raw
	if raw == 0 {
		buttons = d.lastTSButtons
	} else {
		d.lastTSButtons = raw
	}

	suppress := x != 0 || y != 0

	if (x == 0 && y == 0) || buttons&ButtonMiddle == 0 {
		// Normal pointer mode, with mild acceleration.
		d.emit(Event{
			Kind:          EventRelative,
			DX:            x + x>>1,
			DY:            y + y>>1,
			Buttons:       buttons,
			SuppressTouch: suppress,
		})
		return
	}

	// Middle button held while moving: scroll mode.
	d.emit(Event{
		Kind:          EventScroll,
		ScrollV:       -y,
		ScrollH:       -x,
		SuppressTouch: suppress,
	})
}

// decodeTouchpadV3 handles V3/V5 touchpad packets, including the two-packet
// bitmap sequence: a position packet with the first-multi bit announces a
// bitmap packet, which carries the occupancy masks but no coordinates.
func (d *Decoder) decodeTouchpadV3(pkt []byte) {
	var f Fields
	d.decodeFields(&f, pkt)

	if d.multiPacket > 2 {
		d.log.Warn("bitmap sequence overrun, discarding fragment")
		d.multiPacket = 0
		return
	}

	fingers := 0
	if d.multiPacket > 0 {
		if f.IsMulti {
			fingers = f.Fingers
			xMap, yMap := f.XMap, f.YMap

			// Bitmap resolution anchors on the announcing position
			// packet's coordinates.
			d.decodeFields(&f, d.multiData[:])
			f.XMap, f.YMap = xMap, yMap
			ResolveBitmap(d.model, &f, &d.secondTouch)
			if fingers == 1 {
				f.Z = 0
			}
		} else {
			// The announced bitmap packet never arrived; treat this as
			// an ordinary position packet.
			d.multiPacket = 0
		}
	}

	// Position packets never set the bitmap marker; anything that still
	// does here is suspect data (a flat palm, or a misframed bitmap).
	if f.IsMulti {
		return
	}

	if d.multiPacket == 0 && f.FirstMulti {
		d.multiPacket = 1
		copy(d.multiData[:], pkt)
		return
	}
	d.multiPacket = 0

	if fingers < 2 {
		if f.Z > 0 {
			fingers = 1
		} else {
			fingers = 0
		}
		f.X1 = f.X
		f.Y1 = f.Y
		d.secondTouch = -1
	}

	buttons := f.Buttons()
	if !d.tsButtons {
		if f.TSLeft {
			buttons |= ButtonLeft
		}
		if f.TSRight {
			buttons |= ButtonRight
		}
		if f.TSMiddle {
			buttons |= ButtonMiddle
		}
	}

	// Upscale device units so deltas survive the pointer divisors.
	d.emit(Event{
		Kind:    EventTouch,
		X:       f.X1 * 3,
		Y:       f.Y1 * 3,
		Z:       f.Z,
		Fingers: fingers,
		Buttons: buttons,
	})
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
