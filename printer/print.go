package printer

import (
	"context"
	"fmt"

	"github.com/sb-child/dz-print/bitmap"
	"github.com/sb-child/dz-print/internal/metrics"
	"github.com/sb-child/dz-print/printop"
	"github.com/sb-child/dz-print/protocol"
	"github.com/sb-child/dz-print/transport"
)

// PrintOptions control a print job.
type PrintOptions struct {
	Darkness  protocol.PrintDarkness
	Speed     protocol.PrintSpeed
	PaperType protocol.PaperType
	// SkipSettings leaves darkness, speed and paper type untouched.
	SkipSettings bool
	// Breakpoint is the number of rows between status polls; 0 disables
	// polling during the job.
	Breakpoint int
	// TrailingFeed blank lines are fed after the image.
	TrailingFeed int
	// NextPaper advances to the next label after the image.
	NextPaper bool
	// Progress, if set, is called at every breakpoint and once at the end.
	Progress func(row, height int)
}

// DefaultPrintOptions uses the device defaults and the normal breakpoint.
func DefaultPrintOptions() PrintOptions {
	return PrintOptions{
		Darkness:   protocol.DarknessDefault,
		Speed:      protocol.SpeedDefault,
		PaperType:  protocol.PaperAdhesive,
		Breakpoint: printop.BreakpointNormal,
		NextPaper:  true,
	}
}

// Reset sends ResetPrinter and waits until it has been written.
func (p *Printer) Reset(ctx context.Context) error {
	return p.tr.Do(ctx, printop.Flatten(printop.ResetPrinter{}))
}

// Print compiles bm and streams it to the printer. The printer status is
// polled before the job and at every breakpoint; a fault or a missing
// reply resets the printer and aborts the job.
func (p *Printer) Print(ctx context.Context, bm *bitmap.Bitmap, opts PrintOptions) error {
	log := p.logger.With("width", bm.Width(), "height", bm.Height())

	if !opts.SkipSettings {
		if err := p.SetPaperType(ctx, opts.PaperType); err != nil {
			return err
		}
		if err := p.SetDarkness(ctx, opts.Darkness); err != nil {
			return err
		}
		if err := p.SetSpeed(ctx, opts.Speed); err != nil {
			return err
		}
	}
	if err := p.poll(ctx); err != nil {
		return err
	}
	if err := p.EnableHighCommand(ctx); err != nil {
		return err
	}
	if err := p.Reset(ctx); err != nil {
		return err
	}

	log.Info("printing", "breakpoint", opts.Breakpoint)
	c := printop.NewCompiler(bm, opts.Breakpoint)
	var inflight []*transport.Pending
	for {
		op, ok := c.Next()
		if !ok {
			break
		}
		if _, isBreak := op.(printop.Breakpoint); isBreak {
			if opts.Progress != nil {
				opts.Progress(c.Cursor(), bm.Height())
			}
			if err := p.checkpoint(ctx, inflight); err != nil {
				log.Error("print aborted", "row", c.Cursor(), "error", err)
				return p.abort(ctx, err)
			}
			inflight = inflight[:0]
			continue
		}
		pend, err := p.tr.Send(ctx, printop.Flatten(op))
		if err != nil {
			return p.abort(ctx, err)
		}
		inflight = append(inflight, pend)
	}

	var tail []printop.Op
	if opts.TrailingFeed > 0 {
		tail = append(tail, printop.FeedLines{Count: opts.TrailingFeed})
	}
	if opts.NextPaper {
		tail = append(tail, printop.NextPaper{})
	}
	if len(tail) > 0 {
		pend, err := p.tr.Send(ctx, printop.Flatten(tail...))
		if err != nil {
			return p.abort(ctx, err)
		}
		inflight = append(inflight, pend)
	}
	if err := wait(ctx, inflight); err != nil {
		return p.abort(ctx, err)
	}
	if opts.Progress != nil {
		opts.Progress(bm.Height(), bm.Height())
	}
	log.Info("print finished")
	return nil
}

// checkpoint confirms everything sent since the last breakpoint was
// written, then polls the status.
func (p *Printer) checkpoint(ctx context.Context, inflight []*transport.Pending) error {
	if err := wait(ctx, inflight); err != nil {
		return err
	}
	return p.poll(ctx)
}

func (p *Printer) poll(ctx context.Context) error {
	st, err := p.Status(ctx)
	if err != nil {
		metrics.RecordStatusPoll("no_reply")
		return err
	}
	if err := st.Err(); err != nil {
		metrics.RecordStatusPoll("fault")
		return err
	}
	metrics.RecordStatusPoll("ok")
	return nil
}

// abort resets the printer after a failed job and returns cause.
func (p *Printer) abort(ctx context.Context, cause error) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.ReplyTimeout)
	defer cancel()
	if err := p.Reset(ctx); err != nil {
		p.logger.Warn("reset after failure failed", "error", err)
		return cause
	}
	if st, err := p.Status(ctx); err == nil {
		p.logger.Info("status after reset", "code", uint8(st.Code), "status", st.Code)
	}
	return cause
}

func wait(ctx context.Context, pending []*transport.Pending) error {
	for _, pend := range pending {
		o, err := pend.Wait(ctx)
		if err != nil {
			return err
		}
		if o.State == transport.StateFailed {
			return fmt.Errorf("write failed: %w", o.Err)
		}
	}
	return nil
}
