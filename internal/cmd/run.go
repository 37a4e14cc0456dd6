package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/openpointing/glidepoint/gesture"
	"github.com/openpointing/glidepoint/glidepoint"
	"github.com/openpointing/glidepoint/internal/log"
	"github.com/openpointing/glidepoint/internal/uinput"
)

// Run drives a virtual pointer from a live touchpad byte stream.
type Run struct {
	Device   DeviceConfig     `embed:""`
	Tunables gesture.Tunables `embed:"" prefix:"tune."`

	PointerName  string `help:"Name of the virtual pointer device" default:"glidepoint pointer" env:"GLIDEPOINT_POINTER_NAME"`
	TunablesFile string `help:"Tunables file reloaded on change" env:"GLIDEPOINT_TUNABLES_FILE"`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model, err := r.Device.model()
	if err != nil {
		return err
	}

	cfg := r.Tunables
	if r.TunablesFile != "" {
		if cfg, err = loadTunables(r.TunablesFile, cfg); err != nil {
			return err
		}
	}

	pointer, err := uinput.NewPointer(r.PointerName, logger)
	if err != nil {
		return fmt.Errorf("create virtual pointer: %w", err)
	}
	defer pointer.Close()

	sess := glidepoint.New(model, cfg, pointer,
		glidepoint.WithLogger(logger),
		glidepoint.WithPacketTap(rawLogger.Packet),
	)

	if r.TunablesFile != "" {
		stopWatch, err := watchTunables(r.TunablesFile, r.Tunables, sess.Engine().SetTunables, logger)
		if err != nil {
			return fmt.Errorf("watch tunables: %w", err)
		}
		defer func() { _ = stopWatch() }()
	}

	dev, err := os.Open(r.Device.Path)
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	defer dev.Close()

	logger.Info("decoding touchpad stream",
		"device", r.Device.Path, "model", model.Version.String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- pump(ctx, dev, sess, logger)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		_ = dev.Close()
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}
