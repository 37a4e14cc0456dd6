package alps

// decodeV4 handles 8-byte V4 packets. Bitmap data rides along two bytes per
// packet in bytes 6 and 7, spread over three consecutive packets; byte 6 bit
// 6 marks the first fragment and resynchronizes the cursor.
func (d *Decoder) decodeV4(pkt []byte) {
	if pkt[6]&0x40 != 0 {
		d.multiPacket = 0
	}

	if d.multiPacket > 2 {
		d.log.Warn("bitmap sequence overrun, discarding fragment")
		d.multiPacket = 0
		return
	}

	offset := 2 * d.multiPacket
	d.multiData[offset] = pkt[6]
	d.multiData[offset+1] = pkt[7]
	d.multiPacket++

	left := pkt[4]&0x01 != 0
	right := pkt[4]&0x02 != 0

	x := int(pkt[1]&0x7f)<<4 | int(pkt[3]&0x30)>>2 | int(pkt[0]&0x30)>>4
	y := int(pkt[2]&0x7f)<<4 | int(pkt[3]&0x0f)
	z := int(pkt[5] & 0x7f)

	if d.multiPacket > 2 {
		d.multiPacket = 0

		md := &d.multiData
		xMap := uint32(md[2]&0x1f)<<10 |
			uint32(md[3]&0x60)<<3 |
			uint32(md[0]&0x3f)<<2 |
			uint32(md[1]&0x60)>>5
		yMap := uint32(md[5]&0x01)<<10 |
			uint32(md[3]&0x1f)<<5 |
			uint32(md[1]&0x1f)

		f := Fields{X: x, Y: y, Z: z, XMap: xMap, YMap: yMap}
		d.mtFingers = ResolveBitmap(d.model, &f, &d.secondTouch)
		d.mtX1, d.mtY1 = f.X1, f.Y1
		d.mtX2, d.mtY2 = f.X2, f.Y2
	}

	// With fewer than two bitmap contacts the single-touch coordinates
	// are authoritative; otherwise report the resolved first contact.
	var fingers int
	x1, y1 := x, y
	if d.mtFingers < 2 {
		if z > 0 {
			fingers = 1
		}
		d.secondTouch = -1
	} else {
		fingers = d.mtFingers
		x1, y1 = d.mtX1, d.mtY1
	}

	var buttons uint32
	if left {
		buttons |= ButtonLeft
	}
	if right {
		buttons |= ButtonRight
	}

	d.emit(Event{
		Kind:    EventTouch,
		X:       x1,
		Y:       y1,
		Z:       z,
		Fingers: fingers,
		Buttons: buttons,
	})
}
