//go:build !linux

package cmd

import (
	"errors"
	"log/slog"
)

var errNoSystemd = errors.New("service management requires systemd on linux")

func install(_ *slog.Logger) error {
	return errNoSystemd
}

func uninstall(_ *slog.Logger) error {
	return errNoSystemd
}
