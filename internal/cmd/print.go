package cmd

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/term"

	"github.com/sb-child/dz-print/bitmap"
	"github.com/sb-child/dz-print/internal/log"
	"github.com/sb-child/dz-print/printer"
	"github.com/sb-child/dz-print/protocol"
)

// Job holds the print settings shared by print and qr.
type Job struct {
	Darkness     int    `help:"Print darkness (0-14)" default:"5" env:"DZPRINT_DARKNESS"`
	Speed        int    `help:"Print speed (0-4)" default:"2" env:"DZPRINT_SPEED"`
	Paper        string `help:"Paper type" enum:"ticket,locator-hole,adhesive,card" default:"adhesive" env:"DZPRINT_PAPER"`
	SkipSettings bool   `help:"Keep the darkness, speed and paper type stored on the printer"`
	Breakpoint   int    `help:"Rows between status polls; lower it for slow or dense prints" default:"100" env:"DZPRINT_BREAKPOINT"`
	Feed         int    `help:"Blank lines to feed after the image" default:"0"`
	NextPaper    bool   `help:"Advance to the next label when done" default:"true" negatable:""`
}

func (j Job) options() (printer.PrintOptions, error) {
	paper, err := protocol.ParsePaperType(j.Paper)
	if err != nil {
		return printer.PrintOptions{}, err
	}
	if j.Darkness < 0 || j.Darkness > int(protocol.DarknessMax) {
		return printer.PrintOptions{}, fmt.Errorf("darkness %d out of range 0-%d", j.Darkness, protocol.DarknessMax)
	}
	if j.Speed < 0 || j.Speed > int(protocol.SpeedMax) {
		return printer.PrintOptions{}, fmt.Errorf("speed %d out of range 0-%d", j.Speed, protocol.SpeedMax)
	}
	return printer.PrintOptions{
		Darkness:     protocol.PrintDarkness(j.Darkness),
		Speed:        protocol.PrintSpeed(j.Speed),
		PaperType:    paper,
		SkipSettings: j.SkipSettings,
		Breakpoint:   max(j.Breakpoint, 0),
		TrailingFeed: max(j.Feed, 0),
		NextPaper:    j.NextPaper,
		Progress:     progress(),
	}, nil
}

// progress draws a row counter on stderr when it is a terminal.
func progress() func(row, height int) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	return func(row, height int) {
		fmt.Fprintf(os.Stderr, "\rprinting row %d/%d", row, height)
		if row >= height {
			fmt.Fprintln(os.Stderr)
		}
	}
}

func (j Job) run(c *Connection, logger *slog.Logger, rawLogger log.RawLogger, bm *bitmap.Bitmap) error {
	opts, err := j.options()
	if err != nil {
		return err
	}
	logger.Info("print job", "width", bm.Width(), "height", bm.Height())
	return c.withPrinter(logger, rawLogger, func(ctx context.Context, p *printer.Printer) error {
		return p.Print(ctx, bm, opts)
	})
}

type Print struct {
	Connection `embed:""`
	Job        `embed:""`

	Image     string `arg:"" type:"existingfile" help:"PNG, JPEG or GIF image; one pixel per dot"`
	Threshold uint8  `help:"Pixels darker than this become ink" default:"128"`
	Alpha     bool   `help:"Treat any opaque non-black pixel as ink, for images drawn on a transparent canvas"`
}

// Run is called by Kong when the print command is executed.
func (p *Print) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	bm, err := loadImage(p.Image, p.Threshold, p.Alpha)
	if err != nil {
		return err
	}
	return p.Job.run(&p.Connection, logger, rawLogger, bm)
}

func loadImage(path string, threshold uint8, alpha bool) (*bitmap.Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	im, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if alpha {
		return bitmap.FromImage(im), nil
	}
	return bitmap.FromLuma(im, threshold), nil
}

type QR struct {
	Connection `embed:""`
	Job        `embed:""`

	Text     string `arg:"" help:"Text to encode"`
	Size     int    `help:"Image size in dots" default:"256"`
	Recovery string `help:"Error recovery level" enum:"low,medium,high,highest" default:"medium"`
	Border   bool   `help:"Keep the quiet zone around the code" default:"true" negatable:""`
}

// Run is called by Kong when the qr command is executed.
func (q *QR) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	bm, err := renderQR(q.Text, q.Size, q.Recovery, q.Border)
	if err != nil {
		return err
	}
	return q.Job.run(&q.Connection, logger, rawLogger, bm)
}

var recoveryLevels = map[string]qrcode.RecoveryLevel{
	"low":     qrcode.Low,
	"medium":  qrcode.Medium,
	"high":    qrcode.High,
	"highest": qrcode.Highest,
}

func renderQR(text string, size int, recovery string, border bool) (*bitmap.Bitmap, error) {
	level, ok := recoveryLevels[recovery]
	if !ok {
		return nil, fmt.Errorf("unknown recovery level %q", recovery)
	}
	code, err := qrcode.New(text, level)
	if err != nil {
		return nil, fmt.Errorf("qr: %w", err)
	}
	code.DisableBorder = !border
	return bitmap.FromLuma(code.Image(size), 128), nil
}
