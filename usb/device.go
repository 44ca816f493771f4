package usb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/gousb"

	"github.com/sb-child/dz-print/transport"
)

// Device is an opened printer with its interrupt endpoints claimed.
type Device struct {
	dev    *gousb.Device
	cfg    *gousb.Config
	intfs  []*gousb.Interface
	in     *InEndpoint
	out    *OutEndpoint
	name   string
	logger *slog.Logger
}

// Open finds the first device matching sel, claims the interfaces holding
// its interrupt endpoints and returns it ready for a transport.
func Open(ctx *gousb.Context, sel Selector, detach bool, logger *slog.Logger) (*Device, error) {
	devs, err := ctx.OpenDevices(sel.MatchesDesc)
	if err != nil && len(devs) == 0 {
		return nil, fmt.Errorf("usb: open devices: %w", err)
	}
	if err != nil {
		logger.Debug("some devices could not be opened", "error", err)
	}

	var dev *gousb.Device
	var name string
	for _, d := range devs {
		if dev != nil {
			_ = d.Close()
			continue
		}
		n := interfaceName(d)
		if !sel.MatchesInterface(n) {
			_ = d.Close()
			continue
		}
		dev, name = d, n
	}
	if dev == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, sel)
	}

	d, err := claim(dev, detach)
	if err != nil {
		_ = dev.Close()
		return nil, err
	}
	d.name = name
	d.logger = logger.With("device", name)
	d.logger.Info("printer opened",
		"vid", dev.Desc.Vendor, "pid", dev.Desc.Product,
		"in", d.in.ep.Desc.Address, "out", d.out.ep.Desc.Address,
		"packetSize", d.PacketSize())
	return d, nil
}

func claim(dev *gousb.Device, detach bool) (*Device, error) {
	inRef, outRef, err := FindEndpoints(dev.Desc)
	if err != nil {
		return nil, err
	}
	if inRef.Config != outRef.Config {
		return nil, fmt.Errorf("%w: endpoints in configs %d and %d", ErrNoEndpoint, inRef.Config, outRef.Config)
	}
	if err := dev.SetAutoDetach(detach); err != nil {
		return nil, fmt.Errorf("usb: auto detach: %w", err)
	}
	cfg, err := dev.Config(inRef.Config)
	if err != nil {
		return nil, fmt.Errorf("usb: set config %d: %w", inRef.Config, err)
	}
	d := &Device{dev: dev, cfg: cfg}

	inIntf, err := cfg.Interface(inRef.Interface, inRef.Alternate)
	if err != nil {
		d.release()
		return nil, fmt.Errorf("usb: claim interface %d: %w", inRef.Interface, err)
	}
	d.intfs = append(d.intfs, inIntf)
	outIntf := inIntf
	if outRef.Interface != inRef.Interface || outRef.Alternate != inRef.Alternate {
		if outIntf, err = cfg.Interface(outRef.Interface, outRef.Alternate); err != nil {
			d.release()
			return nil, fmt.Errorf("usb: claim interface %d: %w", outRef.Interface, err)
		}
		d.intfs = append(d.intfs, outIntf)
	}

	inEp, err := inIntf.InEndpoint(inRef.Number)
	if err != nil {
		d.release()
		return nil, fmt.Errorf("usb: in endpoint %s: %w", inRef.Address, err)
	}
	outEp, err := outIntf.OutEndpoint(outRef.Number)
	if err != nil {
		d.release()
		return nil, fmt.Errorf("usb: out endpoint %s: %w", outRef.Address, err)
	}
	d.in = &InEndpoint{ep: inEp}
	d.out = &OutEndpoint{ep: outEp}
	return d, nil
}

// interfaceName returns the string of the first interface of the lowest
// numbered config, or "" if it cannot be read.
func interfaceName(d *gousb.Device) string {
	cfgNums := make([]int, 0, len(d.Desc.Configs))
	for n := range d.Desc.Configs {
		cfgNums = append(cfgNums, n)
	}
	if len(cfgNums) == 0 {
		return ""
	}
	slices.Sort(cfgNums)
	cfg := d.Desc.Configs[cfgNums[0]]
	if len(cfg.Interfaces) == 0 || len(cfg.Interfaces[0].AltSettings) == 0 {
		return ""
	}
	alt := cfg.Interfaces[0].AltSettings[0]
	s, err := d.InterfaceDescription(cfg.Number, alt.Number, alt.Alternate)
	if err != nil {
		return ""
	}
	return s
}

// Name is the interface string the device was selected by.
func (d *Device) Name() string { return d.name }

func (d *Device) In() transport.InEndpoint   { return d.in }
func (d *Device) Out() transport.OutEndpoint { return d.out }

// PacketSize is the OUT endpoint's max packet size.
func (d *Device) PacketSize() int { return d.out.ep.Desc.MaxPacketSize }

func (d *Device) release() {
	for i := len(d.intfs) - 1; i >= 0; i-- {
		d.intfs[i].Close()
	}
	d.intfs = nil
	if d.cfg != nil {
		_ = d.cfg.Close()
		d.cfg = nil
	}
}

// Close releases the interfaces and the device.
func (d *Device) Close() error {
	d.release()
	err := d.dev.Close()
	if d.logger != nil {
		d.logger.Debug("printer closed")
	}
	return err
}

// InEndpoint adapts a gousb interrupt IN endpoint.
type InEndpoint struct{ ep *gousb.InEndpoint }

func (e *InEndpoint) Read(ctx context.Context, p []byte) (int, error) {
	n, err := e.ep.ReadContext(ctx, p)
	return n, classify(ctx, err)
}

// OutEndpoint adapts a gousb interrupt OUT endpoint.
type OutEndpoint struct{ ep *gousb.OutEndpoint }

func (e *OutEndpoint) Write(ctx context.Context, p []byte) (int, error) {
	n, err := e.ep.WriteContext(ctx, p)
	return n, classify(ctx, err)
}

// classify marks expired or cancelled transfers as transport timeouts.
func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gousb.TransferTimedOut) || errors.Is(err, gousb.ErrorTimeout) ||
		(errors.Is(err, gousb.TransferCancelled) && ctx.Err() != nil) {
		return fmt.Errorf("%w: %w", transport.ErrTimeout, err)
	}
	return err
}
