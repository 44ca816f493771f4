package usb

import (
	"fmt"

	"github.com/google/gousb"
)

// Info describes an attached device for listing.
type Info struct {
	Bus          int
	Address      int
	VID          gousb.ID
	PID          gousb.ID
	Manufacturer string
	Product      string
	Interface    string
	HasEndpoints bool
}

func (i Info) String() string {
	return fmt.Sprintf("bus %03d addr %03d %s:%s %q %q interface=%q printer=%t",
		i.Bus, i.Address, i.VID, i.PID, i.Manufacturer, i.Product, i.Interface, i.HasEndpoints)
}

// List opens every accessible device and describes it. Devices that cannot
// be opened are skipped.
func List(ctx *gousb.Context) ([]Info, error) {
	devs, err := ctx.OpenDevices(func(*gousb.DeviceDesc) bool { return true })
	defer func() {
		for _, d := range devs {
			_ = d.Close()
		}
	}()
	if err != nil && len(devs) == 0 {
		return nil, fmt.Errorf("usb: open devices: %w", err)
	}

	out := make([]Info, 0, len(devs))
	for _, d := range devs {
		info := Info{
			Bus:       d.Desc.Bus,
			Address:   d.Desc.Address,
			VID:       d.Desc.Vendor,
			PID:       d.Desc.Product,
			Interface: interfaceName(d),
		}
		info.Manufacturer, _ = d.Manufacturer()
		info.Product, _ = d.Product()
		_, _, epErr := FindEndpoints(d.Desc)
		info.HasEndpoints = epErr == nil
		out = append(out, info)
	}
	return out, nil
}
