//go:build !linux

package uinput

import (
	"errors"
	"log/slog"
	"time"

	"github.com/openpointing/glidepoint/gesture"
)

// Pointer is only functional on Linux.
type Pointer struct{}

var errUnsupported = errors.New("uinput output requires linux")

func NewPointer(name string, logger *slog.Logger) (*Pointer, error) {
	return nil, errUnsupported
}

func (p *Pointer) Close() error { return errUnsupported }

func (p *Pointer) PointerMove(dx, dy int, buttons uint32, _ time.Time) {}

func (p *Pointer) Scroll(dv, dh int, _ time.Time) {}

func (p *Pointer) Swipe(fingers int, dir gesture.SwipeDirection, _ time.Time) {}
