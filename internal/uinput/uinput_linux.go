//go:build linux

// Package uinput creates a virtual relative pointer through the Linux uinput
// interface and feeds it from gesture events. This is the output side of the
// run command.
package uinput

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/openpointing/glidepoint/gesture"
)

// uinput.h constants not exported by x/sys/unix.
const (
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiSetRelBit  = 0x40045566

	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02

	synReport = 0

	relX      = 0x00
	relY      = 0x01
	relHWheel = 0x06
	relWheel  = 0x08

	btnLeft   = 0x110
	btnRight  = 0x111
	btnMiddle = 0x112

	busVirtual  = 0x06
	maxNameSize = 80
	absSize     = 64
)

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type userDev struct {
	Name       [maxNameSize]byte
	ID         inputID
	EffectsMax uint32
	AbsMax     [absSize]int32
	AbsMin     [absSize]int32
	AbsFuzz    [absSize]int32
	AbsFlat    [absSize]int32
}

type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// Pointer is a virtual mouse device backed by /dev/uinput. It implements
// gesture.Sink.
type Pointer struct {
	mu      sync.Mutex
	f       *os.File
	log     *slog.Logger
	buttons uint32
}

// NewPointer registers a virtual pointer device. The caller needs write
// access to /dev/uinput.
func NewPointer(name string, logger *slog.Logger) (*Pointer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/uinput: %w", err)
	}

	setup := func(req, val uintptr) error {
		return ioctl(f, req, val)
	}
	for _, s := range []struct{ req, val uintptr }{
		{uiSetEvBit, evKey},
		{uiSetKeyBit, btnLeft},
		{uiSetKeyBit, btnRight},
		{uiSetKeyBit, btnMiddle},
		{uiSetEvBit, evRel},
		{uiSetRelBit, relX},
		{uiSetRelBit, relY},
		{uiSetRelBit, relWheel},
		{uiSetRelBit, relHWheel},
	} {
		if err := setup(s.req, s.val); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("configure uinput device: %w", err)
		}
	}

	var dev userDev
	copy(dev.Name[:], name)
	dev.ID = inputID{Bustype: busVirtual, Vendor: 0x044e, Product: 0x0120, Version: 1}

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, dev); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write uinput device descriptor: %w", err)
	}
	if err := ioctl(f, uiDevCreate, 0); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create uinput device: %w", err)
	}

	logger.Info("virtual pointer created", "name", name)
	return &Pointer{f: f, log: logger.With("component", "uinput")}, nil
}

// Close destroys the virtual device.
func (p *Pointer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = ioctl(p.f, uiDevDestroy, 0)
	return p.f.Close()
}

func (p *Pointer) emit(typ, code uint16, value int32) error {
	ev := inputEvent{Type: typ, Code: code, Value: value}
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, ev); err != nil {
		return err
	}
	_, err := p.f.Write(buf.Bytes())
	return err
}

func (p *Pointer) sync() {
	if err := p.emit(evSyn, synReport, 0); err != nil {
		p.log.Warn("event sync failed", "error", err)
	}
}

// PointerMove implements gesture.Sink.
func (p *Pointer) PointerMove(dx, dy int, buttons uint32, _ time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if dx != 0 {
		_ = p.emit(evRel, relX, int32(dx))
	}
	if dy != 0 {
		// Device y grows upward, evdev y grows downward.
		_ = p.emit(evRel, relY, int32(-dy))
	}
	if changed := buttons ^ p.buttons; changed != 0 {
		if changed&gesture.ButtonLeft != 0 {
			_ = p.emit(evKey, btnLeft, btnValue(buttons&gesture.ButtonLeft))
		}
		if changed&gesture.ButtonRight != 0 {
			_ = p.emit(evKey, btnRight, btnValue(buttons&gesture.ButtonRight))
		}
		if changed&gesture.ButtonMiddle != 0 {
			_ = p.emit(evKey, btnMiddle, btnValue(buttons&gesture.ButtonMiddle))
		}
		p.buttons = buttons
	}
	p.sync()
}

// Scroll implements gesture.Sink.
func (p *Pointer) Scroll(dv, dh int, _ time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if dv != 0 {
		_ = p.emit(evRel, relWheel, int32(dv))
	}
	if dh != 0 {
		_ = p.emit(evRel, relHWheel, int32(dh))
	}
	p.sync()
}

// Swipe implements gesture.Sink. Plain evdev pointers have no swipe event,
// so swipes are only logged.
func (p *Pointer) Swipe(fingers int, dir gesture.SwipeDirection, _ time.Time) {
	p.log.Info("swipe", "fingers", fingers, "dir", dir.String())
}

func btnValue(masked uint32) int32 {
	if masked != 0 {
		return 1
	}
	return 0
}

func ioctl(f *os.File, req, val uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), req, val)
	if errno != 0 {
		return errno
	}
	return nil
}
