package alps

// BitmapPoint is a contiguous run of set bits in an axis occupancy mask.
type BitmapPoint struct {
	StartBit int
	NumBits  int
}

// bitmapPoints scans an occupancy mask and records the first two runs of set
// bits, returning the total run count. Runs beyond the second collapse into
// the high point.
func bitmapPoints(mask uint32) (low, high BitmapPoint, fingers int) {
	point := &low
	prev := false
	for i := 0; mask != 0; i, mask = i+1, mask>>1 {
		if mask&1 != 0 {
			if !prev {
				point.StartBit = i
				point.NumBits = 0
				fingers++
			}
			point.NumBits++
			prev = true
		} else {
			if prev {
				point = &high
			}
			prev = false
		}
	}
	return low, high, fingers
}

// ResolveBitmap converts the occupancy masks in f into a two-point bounding
// box for semi-multitouch reporting and returns the detected finger count. A
// return of 0 means at least one mask was empty and f is left untouched.
//
// The masks cannot track individual fingers, so the first point is the
// single-touch coordinate and the second is the bounding-box corner opposite
// it. The chosen corner is held in *secondTouch for the rest of the touch
// sequence so the reported second point does not jump between corners while
// the first finger moves; callers reset it to -1 on release.
func ResolveBitmap(m Model, f *Fields, secondTouch *int) int {
	if f.XMap == 0 || f.YMap == 0 {
		return 0
	}

	xLow, xHigh, fingersX := bitmapPoints(f.XMap)
	yLow, yHigh, fingersY := bitmapPoints(f.YMap)

	// Fingers can overlap, so the larger per-axis count wins.
	fingers := max(fingersX, fingersY)

	// A single run on one axis means adjacent or overlapping fingers;
	// split the run between the two points.
	if fingersX == 1 {
		i := xLow.NumBits / 2
		xLow.NumBits -= i
		xHigh.StartBit = xLow.StartBit + i
		xHigh.NumBits = max(i, 1)
	}
	if fingersY == 1 {
		i := yLow.NumBits / 2
		yLow.NumBits -= i
		yHigh.StartBit = yLow.StartBit + i
		yHigh.NumBits = max(i, 1)
	}

	scaleX := func(p BitmapPoint) int {
		return m.XMax * (2*p.StartBit + p.NumBits - 1) / (2 * (m.XBits - 1))
	}
	scaleY := func(p BitmapPoint) int {
		return m.YMax * (2*p.StartBit + p.NumBits - 1) / (2 * (m.YBits - 1))
	}

	// Corners in order: top-left, top-right, bottom-right, bottom-left.
	corners := [4]struct{ x, y int }{
		{scaleX(xLow), scaleY(yLow)},
		{scaleX(xHigh), scaleY(yLow)},
		{scaleX(xHigh), scaleY(yHigh)},
		{scaleX(xLow), scaleY(yHigh)},
	}

	// The x bitmap runs right to left on V5 hardware.
	if m.Version == ProtoV5 {
		for i := range corners {
			corners[i].x = m.XMax - corners[i].x
		}
	}

	// The y bitmap runs bottom to top on V3 and V4 hardware.
	if m.Version == ProtoV3 || m.Version == ProtoV4 {
		for i := range corners {
			corners[i].y = m.YMax - corners[i].y
		}
	}

	if *secondTouch == -1 {
		closest := 0
		best := int(^uint(0) >> 1)
		for i, c := range corners {
			dx := f.X - c.x
			dy := f.Y - c.y
			if d := dx*dx + dy*dy; d < best {
				closest = i
				best = d
			}
		}
		// The second touch sits opposite the corner nearest the first.
		*secondTouch = (closest + 2) % 4
	}

	f.X1 = f.X
	f.Y1 = f.Y
	f.X2 = corners[*secondTouch].x
	f.Y2 = corners[*secondTouch].y

	return fingers
}
