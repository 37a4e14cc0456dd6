package gesture

import "time"

// unDecayFilter reverses the decaying average some pads apply in firmware.
// The hardware reports y_n = (x_n + x_n-1) / 2; feeding the reported values
// through 2*y_n - y_n-1 recovers an approximation of the raw input.
type unDecayFilter struct {
	prev   int
	primed bool
}

func (f *unDecayFilter) filter(v int) int {
	if !f.primed {
		f.prev = v
		f.primed = true
		return v
	}
	out := 2*v - f.prev
	f.prev = v
	return out
}

func (f *unDecayFilter) reset() {
	f.primed = false
}

// movingAverage is an unweighted moving average over a fixed window.
type movingAverage struct {
	buf   []int
	sum   int
	count int
	next  int
}

func newMovingAverage(window int) *movingAverage {
	return &movingAverage{buf: make([]int, window)}
}

func (f *movingAverage) filter(v int) int {
	if f.count < len(f.buf) {
		f.count++
	} else {
		f.sum -= f.buf[f.next]
	}
	f.buf[f.next] = v
	f.sum += v
	f.next = (f.next + 1) % len(f.buf)
	return f.sum / f.count
}

func (f *movingAverage) reset() {
	f.sum = 0
	f.count = 0
	f.next = 0
}

// deltaHistory is a bounded ring of recent scroll deltas used to seed
// momentum scrolling.
type deltaHistory struct {
	buf   []int
	count int
	next  int
}

func newDeltaHistory(window int) *deltaHistory {
	return &deltaHistory{buf: make([]int, window)}
}

func (h *deltaHistory) push(v int) {
	h.buf[h.next] = v
	h.next = (h.next + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}
}

func (h *deltaHistory) len() int { return h.count }

func (h *deltaHistory) sum() int {
	s := 0
	for i := 0; i < h.count; i++ {
		s += h.buf[i]
	}
	return s
}

// newest returns the most recently pushed delta, or 0 when empty.
func (h *deltaHistory) newest() int {
	if h.count == 0 {
		return 0
	}
	return h.buf[(h.next-1+len(h.buf))%len(h.buf)]
}

func (h *deltaHistory) reset() {
	h.count = 0
	h.next = 0
}

// timeHistory mirrors deltaHistory for sample timestamps.
type timeHistory struct {
	buf   []time.Time
	count int
	next  int
}

func newTimeHistory(window int) *timeHistory {
	return &timeHistory{buf: make([]time.Time, window)}
}

func (h *timeHistory) push(t time.Time) {
	h.buf[h.next] = t
	h.next = (h.next + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}
}

func (h *timeHistory) newest() time.Time {
	if h.count == 0 {
		return time.Time{}
	}
	return h.buf[(h.next-1+len(h.buf))%len(h.buf)]
}

func (h *timeHistory) oldest() time.Time {
	if h.count == 0 {
		return time.Time{}
	}
	if h.count < len(h.buf) {
		return h.buf[0]
	}
	return h.buf[h.next]
}

func (h *timeHistory) reset() {
	h.count = 0
	h.next = 0
}
