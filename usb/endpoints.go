package usb

import (
	"slices"

	"github.com/google/gousb"
)

// EndpointRef locates an endpoint within a device's descriptors.
type EndpointRef struct {
	Config        int
	Interface     int
	Alternate     int
	Number        int
	Address       gousb.EndpointAddress
	MaxPacketSize int
}

// FindEndpoints returns the first interrupt IN and the first interrupt OUT
// endpoint, scanning configs, interfaces, alternate settings and endpoint
// addresses in ascending order.
func FindEndpoints(desc *gousb.DeviceDesc) (in, out EndpointRef, err error) {
	var haveIn, haveOut bool
	cfgNums := make([]int, 0, len(desc.Configs))
	for n := range desc.Configs {
		cfgNums = append(cfgNums, n)
	}
	slices.Sort(cfgNums)

	for _, cn := range cfgNums {
		cfg := desc.Configs[cn]
		for _, intf := range cfg.Interfaces {
			for _, alt := range intf.AltSettings {
				addrs := make([]gousb.EndpointAddress, 0, len(alt.Endpoints))
				for a := range alt.Endpoints {
					addrs = append(addrs, a)
				}
				slices.Sort(addrs)
				for _, a := range addrs {
					ep := alt.Endpoints[a]
					if ep.TransferType != gousb.TransferTypeInterrupt {
						continue
					}
					ref := EndpointRef{
						Config:        cfg.Number,
						Interface:     intf.Number,
						Alternate:     alt.Alternate,
						Number:        ep.Number,
						Address:       ep.Address,
						MaxPacketSize: ep.MaxPacketSize,
					}
					if ep.Direction == gousb.EndpointDirectionIn && !haveIn {
						in, haveIn = ref, true
					} else if ep.Direction == gousb.EndpointDirectionOut && !haveOut {
						out, haveOut = ref, true
					}
					if haveIn && haveOut {
						return in, out, nil
					}
				}
			}
		}
	}
	return EndpointRef{}, EndpointRef{}, ErrNoEndpoint
}
