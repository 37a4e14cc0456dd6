// Package glidepoint wires the wire-protocol layer and the gesture engine
// into a per-device session: bytes in, pointer/scroll/swipe events out.
package glidepoint

import (
	"log/slog"
	"time"

	"github.com/openpointing/glidepoint/alps"
	"github.com/openpointing/glidepoint/gesture"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithTimers sets the timer service used by the gesture engine.
func WithTimers(t gesture.TimerService) Option {
	return func(s *Session) { s.timers = t }
}

// WithClock sets the timestamp source for decoded samples. Tests use this to
// drive gesture timing deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithPacketTap registers a callback invoked with every framed packet before
// decoding, used for raw traffic logging.
func WithPacketTap(tap func([]byte)) Option {
	return func(s *Session) { s.tap = tap }
}

// Session owns the full pipeline for one device: a Framer accumulating raw
// bytes, a Decoder for the device's protocol variant, and a gesture Engine.
// Feed may be called from an interrupt-like producer goroutine while Drain
// runs elsewhere; everything downstream of Drain is single-threaded.
type Session struct {
	model  alps.Model
	framer *alps.Framer
	dec    *alps.Decoder
	eng    *gesture.Engine
	sink   gesture.Sink
	log    *slog.Logger
	timers gesture.TimerService
	now    func() time.Time
	tap    func([]byte)
}

// New builds a session for the given device model. Gesture zone geometry is
// derived from the model unless cfg already carries explicit edges.
func New(model alps.Model, cfg gesture.Tunables, sink gesture.Sink, opts ...Option) *Session {
	s := &Session{
		model: model,
		sink:  sink,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if cfg.REdge == 0 && cfg.BEdge == 0 {
		cfg.SetGeometry(model.XMax, model.YMax)
	}
	s.framer = alps.NewFramer(model, s.log)
	s.dec = alps.NewDecoder(model, s.log)
	s.eng = gesture.NewEngine(cfg, sink, s.timers, s.log)
	return s
}

// Model returns the device model the session was built for.
func (s *Session) Model() alps.Model { return s.model }

// Engine exposes the gesture engine, mainly for runtime reconfiguration.
func (s *Session) Engine() *gesture.Engine { return s.eng }

// Feed pushes raw bytes from the wire into the framer. It never blocks.
func (s *Session) Feed(data []byte) {
	for _, b := range data {
		s.framer.Feed(b)
	}
}

// Drain decodes every buffered packet and runs the resulting events through
// the gesture engine and sink. It returns the number of packets processed.
func (s *Session) Drain() int {
	n := 0
	s.framer.Drain(func(pkt []byte) {
		n++
		if s.tap != nil {
			s.tap(pkt)
		}
		for _, ev := range s.dec.Decode(pkt) {
			s.route(ev)
		}
	})
	return n
}

func (s *Session) route(ev alps.Event) {
	now := s.now()
	switch ev.Kind {
	case alps.EventTouch:
		s.eng.Touch(gesture.Sample{
			X:       ev.X,
			Y:       ev.Y,
			Z:       ev.Z,
			Fingers: ev.Fingers,
			Buttons: ev.Buttons,
			HWDrag:  ev.HWDrag,
			Time:    now,
		})

	case alps.EventRelative:
		// Trackstick motion bypasses the touch state machine and mutes
		// the pad while the stick is in use.
		s.eng.SetSuppressed(ev.SuppressTouch)
		s.sink.PointerMove(ev.DX, ev.DY, ev.Buttons, now)

	case alps.EventScroll:
		if ev.SuppressTouch {
			s.eng.SetSuppressed(true)
		}
		s.sink.Scroll(ev.ScrollV, ev.ScrollH, now)
	}
}

// NotifyKey records keyboard activity for touch-after-typing debounce.
func (s *Session) NotifyKey() {
	s.eng.KeyPressed(s.now())
}

// Reset drops framing, decoder, and gesture state, as after a device reset.
func (s *Session) Reset() {
	s.framer.Reset()
	s.dec.Reset()
	s.eng.Reset()
}
