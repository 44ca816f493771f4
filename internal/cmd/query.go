package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sb-child/dz-print/internal/log"
	"github.com/sb-child/dz-print/printer"
	"github.com/sb-child/dz-print/protocol"
)

type Status struct {
	Connection `embed:""`

	Sensors bool `help:"Also read the paper sensors"`
}

// Run is called by Kong when the status command is executed.
func (s *Status) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	return s.withPrinter(logger, rawLogger, func(ctx context.Context, p *printer.Printer) error {
		st, err := p.Status(ctx)
		if err != nil {
			return err
		}
		if err := st.Err(); err != nil {
			fmt.Fprintf(os.Stdout, "status: %v\n", err)
		} else {
			fmt.Fprintf(os.Stdout, "status: ready (%d)\n", uint8(st.Code))
		}
		if !s.Sensors {
			return nil
		}
		r, err := p.SensorStatus(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "sensors: %d %d %d %d\n", r[0], r[1], r[2], r[3])
		return nil
	})
}

type Info struct {
	Connection `embed:""`
}

// Run is called by Kong when the info command is executed.
func (i *Info) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	return i.withPrinter(logger, rawLogger, func(ctx context.Context, p *printer.Printer) error {
		fields := []struct {
			name string
			get  func(context.Context) (string, error)
		}{
			{"manufacturer", p.Manufacturer},
			{"name", p.DeviceName},
			{"version", p.SoftwareVersion},
		}
		for _, f := range fields {
			v, err := f.get(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s: %s\n", f.name, v)
		}
		s, err := p.Settings(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "darkness: %d\nspeed: %d\npaper: %d\n", s.Darkness, s.Speed, s.PaperType)
		return nil
	})
}

// Set writes printer settings. Negative values and an empty paper type
// leave the setting untouched.
type Set struct {
	Connection `embed:""`

	Darkness int    `help:"Print darkness (0-14)" default:"-1"`
	Speed    int    `help:"Print speed (0-4)" default:"-1"`
	Paper    string `help:"Paper type: ticket, locator-hole, adhesive or card"`
	Gap      int    `help:"Label gap in 0.01 mm" default:"-1"`
}

// Run is called by Kong when the set command is executed.
func (s *Set) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	if s.Darkness < 0 && s.Speed < 0 && s.Paper == "" && s.Gap < 0 {
		return fmt.Errorf("nothing to set; pass --darkness, --speed, --paper or --gap")
	}
	if s.Gap > 0xffff {
		return fmt.Errorf("gap %d out of range", s.Gap)
	}
	return s.withPrinter(logger, rawLogger, func(ctx context.Context, p *printer.Printer) error {
		if s.Darkness >= 0 {
			if err := p.SetDarkness(ctx, protocol.PrintDarkness(min(s.Darkness, 0xff))); err != nil {
				return err
			}
		}
		if s.Speed >= 0 {
			if err := p.SetSpeed(ctx, protocol.PrintSpeed(min(s.Speed, 0xff))); err != nil {
				return err
			}
		}
		if s.Paper != "" {
			t, err := protocol.ParsePaperType(s.Paper)
			if err != nil {
				return err
			}
			if err := p.SetPaperType(ctx, t); err != nil {
				return err
			}
		}
		if s.Gap >= 0 {
			if err := p.SetPaperGap(ctx, uint16(s.Gap)); err != nil {
				return err
			}
		}
		logger.Info("settings written")
		return nil
	})
}
