package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/gousb"

	"github.com/sb-child/dz-print/usb"
)

type List struct {
	All bool `help:"Include devices without an interrupt endpoint pair"`
}

// Run is called by Kong when the list command is executed.
func (l *List) Run(logger *slog.Logger) error {
	ctx := gousb.NewContext()
	defer func() { _ = ctx.Close() }()

	infos, err := usb.List(ctx)
	if err != nil {
		return err
	}
	shown := 0
	for _, info := range infos {
		if !l.All && !info.HasEndpoints {
			continue
		}
		fmt.Fprintln(os.Stdout, info)
		shown++
	}
	logger.Debug("usb scan finished", "devices", len(infos), "shown", shown)
	return nil
}
