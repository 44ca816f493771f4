// Package config defines the dzprint command line.
package config

import (
	"github.com/sb-child/dz-print/internal/cmd"
	"github.com/sb-child/dz-print/internal/log"
)

type CLI struct {
	ConfigFile string     `name:"config" help:"Config file (JSON, YAML or TOML); flags and env vars override it" env:"DZPRINT_CONFIG"`
	Log        log.Config `embed:"" prefix:"log."`

	Print  cmd.Print         `cmd:"" help:"Print an image"`
	QR     cmd.QR            `cmd:"" name:"qr" help:"Print a QR code"`
	Status cmd.Status        `cmd:"" help:"Show the printer status"`
	Info   cmd.Info          `cmd:"" help:"Show the printer identity and settings"`
	Set    cmd.Set           `cmd:"" help:"Change printer settings"`
	List   cmd.List          `cmd:"" help:"List attached USB devices"`
	Config cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
}
