package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/gousb"

	"github.com/sb-child/dz-print/internal/log"
	"github.com/sb-child/dz-print/internal/metrics"
	"github.com/sb-child/dz-print/printer"
	"github.com/sb-child/dz-print/transport"
	"github.com/sb-child/dz-print/usb"
)

// Connection holds the flag groups every command that talks to a printer
// needs.
type Connection struct {
	Device    usb.Config       `embed:"" prefix:"device."`
	Transport transport.Config `embed:"" prefix:"transport."`
	Printer   printer.Config   `embed:"" prefix:"printer."`
	Metrics   metrics.Config   `embed:"" prefix:"metrics."`
}

// withPrinter opens the printer, runs fn and tears everything down again.
// SIGINT and SIGTERM cancel the context passed to fn.
func (c *Connection) withPrinter(logger *slog.Logger, rawLogger log.RawLogger, fn func(ctx context.Context, p *printer.Printer) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sel, err := c.Device.Selector()
	if err != nil {
		return err
	}

	usbCtx := gousb.NewContext()
	defer func() { _ = usbCtx.Close() }()

	dev, err := usb.Open(usbCtx, sel, c.Device.Claim, logger)
	if err != nil {
		return err
	}

	tcfg := c.Transport
	if tcfg.PacketSize == 0 {
		tcfg.PacketSize = dev.PacketSize()
	}
	metrics.RegisterMetrics()
	tr, err := transport.New(tcfg, dev.In(), dev.Out(), dev, logger, rawLogger)
	if err != nil {
		_ = dev.Close()
		return err
	}
	logger.Info("connected", "device", dev.Name(), "packetSize", tcfg.PacketSize)

	runErr := fn(ctx, printer.New(tr, c.Printer, logger))

	if err := tr.Close(); err != nil {
		logger.Warn("failed to close device", "error", err)
	}
	if err := metrics.WriteTextfile(c.Metrics.File); err != nil {
		logger.Warn("failed to write metrics", "file", c.Metrics.File, "error", err)
	}
	if runErr != nil {
		return fmt.Errorf("%s: %w", dev.Name(), runErr)
	}
	return nil
}
