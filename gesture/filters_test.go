package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUnDecayFilter(t *testing.T) {
	var f unDecayFilter

	// First sample passes through and primes the filter.
	assert.Equal(t, 100, f.filter(100))
	// y = (x + prev) / 2 inverted: 2*y - prev.
	assert.Equal(t, 120, f.filter(110))
	assert.Equal(t, 130, f.filter(120))

	f.reset()
	assert.Equal(t, 50, f.filter(50))
}

func TestMovingAverage(t *testing.T) {
	f := newMovingAverage(3)

	assert.Equal(t, 10, f.filter(10))
	assert.Equal(t, 15, f.filter(20))
	assert.Equal(t, 20, f.filter(30))
	// Window full: the oldest sample drops out.
	assert.Equal(t, 30, f.filter(40))

	f.reset()
	assert.Equal(t, 7, f.filter(7))
}

func TestDeltaHistory(t *testing.T) {
	h := newDeltaHistory(3)

	assert.Equal(t, 0, h.len())
	assert.Equal(t, 0, h.newest())

	h.push(5)
	h.push(-3)
	assert.Equal(t, 2, h.len())
	assert.Equal(t, -3, h.newest())
	assert.Equal(t, 2, h.sum())

	// Overflowing the window keeps the count capped.
	h.push(1)
	h.push(2)
	assert.Equal(t, 3, h.len())
	assert.Equal(t, 2, h.newest())

	h.reset()
	assert.Equal(t, 0, h.len())
}

func TestTimeHistoryOldestAfterWrap(t *testing.T) {
	h := newTimeHistory(3)
	base := time.Unix(0, 0)

	for i := 0; i < 5; i++ {
		h.push(base.Add(time.Duration(i) * time.Millisecond))
	}

	assert.Equal(t, base.Add(4*time.Millisecond), h.newest())
	assert.Equal(t, base.Add(2*time.Millisecond), h.oldest())
}
