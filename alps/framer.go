package alps

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// FeedResult is the outcome of feeding one byte to the Framer.
type FeedResult int

const (
	// Buffering means the byte was absorbed (or rejected) and no complete
	// packet is available yet.
	Buffering FeedResult = iota
	// PacketReady means a complete packet was committed to the ring and the
	// processing context should drain.
	PacketReady
)

const (
	// companionSize is the length of a bare PS/2 packet interleaved with the
	// ALPS stream on pass-through and interleaved models.
	companionSize = 3
	maxPacketSize = 8
	// ringSize must be a power of two and hold at least two full packets.
	ringSize = 128
)

// Framer resynchronizes a raw byte stream to packet boundaries and buffers
// complete packets in a fixed-capacity ring.
//
// Feed is safe to call from a byte-delivery context concurrently with Drain
// running in a processing context: the two communicate only through the ring
// cursors. Neither Feed nor Drain may be called concurrently with itself.
type Framer struct {
	model Model
	log   *slog.Logger

	pending    [maxPacketSize]byte
	pendingLen int

	ring [ringSize]byte
	w    atomic.Uint64 // bytes committed
	r    atomic.Uint64 // bytes consumed
}

// NewFramer returns a Framer for the given model. A nil logger falls back to
// slog.Default.
func NewFramer(m Model, logger *slog.Logger) *Framer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Framer{model: m, log: logger}
}

// Feed consumes one byte from the link. It never blocks and performs no I/O;
// it is safe to call from an interrupt-like delivery context.
func (f *Framer) Feed(b byte) FeedResult {
	// The stream may carry either an ALPS packet or a bare 3-byte PS/2
	// packet. Reject leading bytes that open neither.
	if f.pendingLen == 0 && (b&0xc8) != 0x08 && (b&f.model.Mask0) != f.model.Byte0 {
		if f.log.Enabled(context.Background(), slog.LevelDebug) {
			f.log.Debug("unexpected leading byte, resyncing", "byte", b)
		}
		return Buffering
	}

	// Interior bytes of a position packet never have bit 7 set alone; 0x80
	// mid-packet means the link lost framing.
	if f.pendingLen >= 1 && b == 0x80 {
		if f.log.Enabled(context.Background(), slog.LevelDebug) {
			f.log.Debug("corrupt interior byte, resyncing", "offset", f.pendingLen)
		}
		f.pendingLen = 0
		return Buffering
	}

	f.pending[f.pendingLen] = b
	f.pendingLen++

	if f.pendingLen == f.model.PacketSize ||
		(f.pendingLen == companionSize && (f.pending[0]&0xc8) == 0x08) {
		n := f.pendingLen
		f.pendingLen = 0
		if !f.commit(f.pending[:n]) {
			return Buffering
		}
		return PacketReady
	}
	return Buffering
}

func (f *Framer) commit(pkt []byte) bool {
	w := f.w.Load()
	r := f.r.Load()
	if int(w-r)+len(pkt) > ringSize {
		f.log.Warn("packet ring overrun, dropping packet", "len", len(pkt))
		return false
	}
	for i, b := range pkt {
		f.ring[(w+uint64(i))&(ringSize-1)] = b
	}
	f.w.Store(w + uint64(len(pkt)))
	return true
}

// Drain processes buffered packets in arrival order. Packets whose leading
// byte carries the model signature are handed to fn; bare companion-protocol
// packets are discarded. fn must not retain the slice.
func (f *Framer) Drain(fn func(pkt []byte)) {
	var scratch [maxPacketSize]byte
	for {
		r := f.r.Load()
		avail := int(f.w.Load() - r)
		if avail < companionSize {
			return
		}
		first := f.ring[r&(ringSize-1)]
		if (first & f.model.Mask0) != f.model.Byte0 {
			if f.log.Enabled(context.Background(), slog.LevelDebug) {
				f.log.Debug("discarding companion-protocol packet")
			}
			f.r.Store(r + companionSize)
			continue
		}
		if avail < f.model.PacketSize {
			return
		}
		for i := 0; i < f.model.PacketSize; i++ {
			scratch[i] = f.ring[(r+uint64(i))&(ringSize-1)]
		}
		fn(scratch[:f.model.PacketSize])
		f.r.Store(r + uint64(f.model.PacketSize))
	}
}

// Buffered reports the number of bytes committed but not yet drained.
func (f *Framer) Buffered() int {
	return int(f.w.Load() - f.r.Load())
}

// Reset drops the in-progress packet and all buffered packets.
func (f *Framer) Reset() {
	f.pendingLen = 0
	f.r.Store(f.w.Load())
}
