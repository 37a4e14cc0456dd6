package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/openpointing/glidepoint/alps"
	"github.com/openpointing/glidepoint/glidepoint"
)

// DeviceConfig selects the protocol model a byte stream is decoded with.
type DeviceConfig struct {
	Model string `help:"Device model preset" default:"rushmore" env:"GLIDEPOINT_MODEL"`
	Path  string `help:"Device or FIFO to read raw bytes from" default:"/dev/ttyS0" env:"GLIDEPOINT_DEVICE"`
}

func (d DeviceConfig) model() (alps.Model, error) {
	m, ok := alps.Presets[strings.ToLower(d.Model)]
	if !ok {
		names := make([]string, 0, len(alps.Presets))
		for n := range alps.Presets {
			names = append(names, n)
		}
		sort.Strings(names)
		return alps.Model{}, fmt.Errorf("unknown model %q, expected one of %s", d.Model, strings.Join(names, ", "))
	}
	return m, nil
}

// pump copies raw bytes from r into the session until EOF, read error, or
// context cancellation. Drain runs after every read so events keep flowing
// with low latency.
func pump(ctx context.Context, r io.Reader, sess *glidepoint.Session, logger *slog.Logger) error {
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		n, err := r.Read(buf)
		if n > 0 {
			sess.Feed(buf[:n])
			sess.Drain()
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				sess.Drain()
				return nil
			}
			if errors.Is(err, os.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read device: %w", err)
		}
	}
}
