package cmd

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/openpointing/glidepoint/gesture"
	"github.com/openpointing/glidepoint/glidepoint"
	"github.com/openpointing/glidepoint/internal/log"
)

// Replay decodes a recorded byte stream and prints the resulting events.
type Replay struct {
	Input    string           `arg:"" help:"Recording to replay, - for stdin" default:"-"`
	Format   string           `help:"Input format" enum:"hex,bin" default:"hex"`
	Model    string           `help:"Device model preset" default:"rushmore" env:"GLIDEPOINT_MODEL"`
	Tunables gesture.Tunables `embed:"" prefix:"tune."`
}

// Run is called by Kong when the replay command is executed.
func (r *Replay) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	model, err := DeviceConfig{Model: r.Model}.model()
	if err != nil {
		return err
	}

	var in io.ReadCloser = os.Stdin
	if r.Input != "-" {
		f, err := os.Open(r.Input)
		if err != nil {
			return fmt.Errorf("open recording: %w", err)
		}
		defer f.Close()
		in = f
	}

	sink := &printSink{
		w:     os.Stdout,
		color: term.IsTerminal(int(os.Stdout.Fd())),
	}
	sess := glidepoint.New(model, r.Tunables, sink,
		glidepoint.WithLogger(logger),
		glidepoint.WithPacketTap(rawLogger.Packet),
	)

	data, err := r.readAll(in)
	if err != nil {
		return err
	}
	sess.Feed(data)
	packets := sess.Drain()

	logger.Info("replay finished", "bytes", len(data), "packets", packets, "events", sink.count)
	return nil
}

// readAll loads the recording; hex input may contain whitespace, newlines,
// and comment lines starting with '#'.
func (r *Replay) readAll(in io.Reader) ([]byte, error) {
	if r.Format == "bin" {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read recording: %w", err)
		}
		return data, nil
	}

	var sb strings.Builder
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sb.WriteString(strings.Map(func(c rune) rune {
			if c == ' ' || c == '\t' {
				return -1
			}
			return c
		}, line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	data, err := hex.DecodeString(sb.String())
	if err != nil {
		return nil, fmt.Errorf("decode hex recording: %w", err)
	}
	return data, nil
}

const (
	ansiReset  = "\x1b[0m"
	ansiCyan   = "\x1b[36m"
	ansiYellow = "\x1b[33m"
	ansiGreen  = "\x1b[32m"
)

// printSink writes one line per event, colorized on a terminal.
type printSink struct {
	w     io.Writer
	color bool
	count int
}

func (p *printSink) line(color, format string, args ...any) {
	p.count++
	if p.color {
		fmt.Fprintf(p.w, color+format+ansiReset+"\n", args...)
		return
	}
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printSink) PointerMove(dx, dy int, buttons uint32, t time.Time) {
	p.line(ansiCyan, "pointer dx=%d dy=%d buttons=%03b", dx, dy, buttons)
}

func (p *printSink) Scroll(dv, dh int, t time.Time) {
	p.line(ansiYellow, "scroll dv=%d dh=%d", dv, dh)
}

func (p *printSink) Swipe(fingers int, dir gesture.SwipeDirection, t time.Time) {
	p.line(ansiGreen, "swipe fingers=%d dir=%s", fingers, dir)
}
