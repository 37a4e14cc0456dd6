package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openpointing/glidepoint/gesture"
	"github.com/openpointing/glidepoint/glidepoint"
	"github.com/openpointing/glidepoint/internal/log"
	"github.com/openpointing/glidepoint/internal/stream"
)

// Monitor decodes a live byte stream and broadcasts the events to websocket
// clients instead of a local pointer.
type Monitor struct {
	Device   DeviceConfig     `embed:""`
	Tunables gesture.Tunables `embed:"" prefix:"tune."`

	Addr         string `help:"Websocket listen address" default:":8733" env:"GLIDEPOINT_MONITOR_ADDR"`
	TunablesFile string `help:"Tunables file reloaded on change" env:"GLIDEPOINT_TUNABLES_FILE"`
}

// Run is called by Kong when the monitor command is executed.
func (m *Monitor) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model, err := m.Device.model()
	if err != nil {
		return err
	}

	cfg := m.Tunables
	if m.TunablesFile != "" {
		if cfg, err = loadTunables(m.TunablesFile, cfg); err != nil {
			return err
		}
	}

	broadcaster := stream.New(logger)
	defer broadcaster.Close()

	sess := glidepoint.New(model, cfg, broadcaster,
		glidepoint.WithLogger(logger),
		glidepoint.WithPacketTap(rawLogger.Packet),
	)

	if m.TunablesFile != "" {
		stopWatch, err := watchTunables(m.TunablesFile, m.Tunables, sess.Engine().SetTunables, logger)
		if err != nil {
			return fmt.Errorf("watch tunables: %w", err)
		}
		defer func() { _ = stopWatch() }()
	}

	mux := http.NewServeMux()
	mux.Handle("/events", broadcaster)
	srv := &http.Server{Addr: m.Addr, Handler: mux}

	logger.Info("starting event monitor", "addr", m.Addr, "device", m.Device.Path)

	httpErrCh := make(chan error, 1)
	go func() {
		httpErrCh <- srv.ListenAndServe()
	}()

	dev, err := os.Open(m.Device.Path)
	if err != nil {
		_ = srv.Close()
		return fmt.Errorf("open device: %w", err)
	}
	defer dev.Close()

	pumpErrCh := make(chan error, 1)
	go func() {
		pumpErrCh <- pump(ctx, dev, sess, logger)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down monitor")
	case err = <-pumpErrCh:
	case err = <-httpErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = dev.Close()
	return err
}
