// Package config defines the top-level CLI structure parsed by kong.
package config

import "github.com/openpointing/glidepoint/internal/cmd"

// LogConfig groups the logging flags shared by every command.
type LogConfig struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"GLIDEPOINT_LOG_LEVEL"`
	File    string `help:"Write logs to this file instead of the console" env:"GLIDEPOINT_LOG_FILE"`
	RawFile string `help:"Write hex dumps of framed packets to this file" env:"GLIDEPOINT_LOG_RAW_FILE"`
}

// CLI is the root command structure.
type CLI struct {
	Log    LogConfig `embed:"" prefix:"log."`
	Config string    `help:"Path to a config file" env:"GLIDEPOINT_CONFIG"`

	Run       cmd.Run           `cmd:"" help:"Drive a virtual pointer from a touchpad byte stream"`
	Replay    cmd.Replay        `cmd:"" help:"Decode a recorded byte stream and print the resulting events"`
	Monitor   cmd.Monitor       `cmd:"" help:"Broadcast decoded events to websocket clients"`
	Service   cmd.Service       `cmd:"" help:"Install or remove the systemd service"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration file helpers"`
}
