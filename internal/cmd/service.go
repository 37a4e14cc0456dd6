package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Service installs or removes the systemd unit for the daemon.
type Service struct {
	Action string `arg:"" name:"action" help:"Service action" enum:"install,uninstall"`
}

func (s *Service) Run(logger *slog.Logger) error {
	switch s.Action {
	case "install":
		return install(logger)
	default:
		return uninstall(logger)
	}
}

func currentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(exe)
}
