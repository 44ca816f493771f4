// Package printer drives a label printer through a transport: settings,
// status and identity queries, and bitmap print jobs with status polling.
package printer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sb-child/dz-print/protocol"
	"github.com/sb-child/dz-print/transport"
)

var (
	// ErrNoStatus means the printer did not answer a status request in time.
	ErrNoStatus = errors.New("printer: no status reply")
	// ErrUnexpectedReply means a reply frame did not match its request.
	ErrUnexpectedReply = errors.New("printer: unexpected reply")
)

// DeviceError is a fault reported by the printer.
type DeviceError struct {
	Code protocol.ErrorCode
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("printer fault %d: %s", uint8(e.Code), e.Code)
}

// Transport is the subset of *transport.Transport the printer needs.
type Transport interface {
	Send(ctx context.Context, payload []byte) (*transport.Pending, error)
	Do(ctx context.Context, payload []byte) error
	Call(ctx context.Context, payload []byte) (protocol.DeviceFrame, error)
}

// Config is the printer.* flag group.
type Config struct {
	ReplyTimeout   time.Duration `help:"How long to wait for a reply from the printer" default:"2s" env:"DZPRINT_PRINTER_REPLY_TIMEOUT"`
	ChecksumBypass bool          `help:"Send the fixed bypass checksum instead of computing one" env:"DZPRINT_PRINTER_CHECKSUM_BYPASS"`
}

type Printer struct {
	tr     Transport
	cfg    Config
	logger *slog.Logger
}

func New(tr Transport, cfg Config, logger *slog.Logger) *Printer {
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = 2 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Printer{tr: tr, cfg: cfg, logger: logger.With("component", "printer")}
}

func (p *Printer) frame(cmd protocol.HostCommand, payload []byte) []byte {
	return protocol.EncodeHostFrame(cmd, payload, p.cfg.ChecksumBypass)
}

// Query sends cmd and returns the reply, which must carry want.
func (p *Printer) Query(ctx context.Context, cmd protocol.HostCommand, payload []byte, want protocol.DeviceCommand) (protocol.DeviceFrame, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ReplyTimeout)
	defer cancel()
	f, err := p.tr.Call(ctx, p.frame(cmd, payload))
	if err != nil {
		return protocol.DeviceFrame{}, fmt.Errorf("%s: %w", cmd, err)
	}
	if f.Command != want {
		return f, fmt.Errorf("%w: %s answered with %s", ErrUnexpectedReply, cmd, f.Command)
	}
	p.logger.Debug("reply", "command", cmd, "reply", f.Command, "payload", f.Payload)
	return f, nil
}

// set sends a setting and waits until it has been written.
func (p *Printer) set(ctx context.Context, cmd protocol.HostCommand, payload []byte) error {
	if err := p.tr.Do(ctx, p.frame(cmd, payload)); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	p.logger.Debug("setting written", "command", cmd, "value", payload)
	return nil
}

func (p *Printer) SetDarkness(ctx context.Context, d protocol.PrintDarkness) error {
	if d > protocol.DarknessMax {
		return fmt.Errorf("darkness %d out of range 0-%d", d, protocol.DarknessMax)
	}
	return p.set(ctx, protocol.HostGetSetPrintDarkness, []byte{byte(d)})
}

func (p *Printer) SetSpeed(ctx context.Context, s protocol.PrintSpeed) error {
	if s > protocol.SpeedMax {
		return fmt.Errorf("speed %d out of range 0-%d", s, protocol.SpeedMax)
	}
	return p.set(ctx, protocol.HostGetSetPrintSpeed, []byte{byte(s)})
}

func (p *Printer) SetPaperType(ctx context.Context, t protocol.PaperType) error {
	if t > protocol.PaperCardPaper {
		return fmt.Errorf("unknown paper type %d", t)
	}
	return p.set(ctx, protocol.HostGetSetPrintPaperType, []byte{byte(t)})
}

// SetPaperGap sets the label gap in 0.01 mm, sent as a big-endian uint16.
func (p *Printer) SetPaperGap(ctx context.Context, gap uint16) error {
	return p.set(ctx, protocol.HostGetSetPrintPaperGap, []byte{byte(gap >> 8), byte(gap)})
}

// Status is a PrinterStatus reply.
type Status struct {
	Code protocol.ErrorCode
	Raw  []byte
}

// Err returns a *DeviceError for documented fault codes.
func (s Status) Err() error {
	if s.Code.Known() {
		return &DeviceError{Code: s.Code}
	}
	return nil
}

func (p *Printer) Status(ctx context.Context) (Status, error) {
	f, err := p.Query(ctx, protocol.HostGetPrinterStatus, nil, protocol.DevicePrinterStatus)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, transport.ErrClosed) {
			return Status{}, fmt.Errorf("%w: %w", ErrNoStatus, err)
		}
		return Status{}, err
	}
	if len(f.Payload) == 0 {
		return Status{}, fmt.Errorf("%w: empty status payload", ErrUnexpectedReply)
	}
	return Status{Code: protocol.ErrorCode(f.Payload[0]), Raw: f.Payload}, nil
}

// SensorStatus returns the four sensor readings.
func (p *Printer) SensorStatus(ctx context.Context) ([4]uint16, error) {
	f, err := p.Query(ctx, protocol.HostGetSensorStatus, protocol.SensorPayload, protocol.DeviceSensorStatus)
	if err != nil {
		return [4]uint16{}, err
	}
	return protocol.SensorReadings(f.Payload)
}

// EnableHighCommand unlocks the extended command set.
func (p *Printer) EnableHighCommand(ctx context.Context) error {
	_, err := p.Query(ctx, protocol.HostEnableHighCommand, protocol.HighCommandPayload, protocol.DeviceHighCommand)
	return err
}

func (p *Printer) SoftwareVersion(ctx context.Context) (string, error) {
	return p.text(ctx, protocol.HostReadSoftwareVersion, protocol.DeviceSoftwareVersion)
}

func (p *Printer) DeviceName(ctx context.Context) (string, error) {
	return p.text(ctx, protocol.HostReadDeviceName, protocol.DeviceDeviceName)
}

func (p *Printer) Manufacturer(ctx context.Context) (string, error) {
	return p.text(ctx, protocol.HostReadManufacturer, protocol.DeviceManufacturer)
}

func (p *Printer) text(ctx context.Context, cmd protocol.HostCommand, want protocol.DeviceCommand) (string, error) {
	f, err := p.Query(ctx, cmd, nil, want)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(f.Payload, "\x00")), nil
}

// Settings are the values reported by the GetSet commands.
type Settings struct {
	Darkness  protocol.PrintDarkness
	Speed     protocol.PrintSpeed
	PaperType protocol.PaperType
}

// Settings reads the current darkness, speed and paper type.
func (p *Printer) Settings(ctx context.Context) (Settings, error) {
	var s Settings
	queries := []struct {
		cmd  protocol.HostCommand
		want protocol.DeviceCommand
		dst  *uint8
	}{
		{protocol.HostGetSetPrintDarkness, protocol.DevicePrintDarkness, (*uint8)(&s.Darkness)},
		{protocol.HostGetSetPrintSpeed, protocol.DevicePrintSpeed, (*uint8)(&s.Speed)},
		{protocol.HostGetSetPrintPaperType, protocol.DevicePaperType, (*uint8)(&s.PaperType)},
	}
	for _, q := range queries {
		f, err := p.Query(ctx, q.cmd, nil, q.want)
		if err != nil {
			return s, err
		}
		if len(f.Payload) == 0 {
			return s, fmt.Errorf("%w: empty %s payload", ErrUnexpectedReply, q.want)
		}
		*q.dst = f.Payload[0]
	}
	return s, nil
}
