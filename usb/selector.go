// Package usb finds the printer on the USB bus and adapts its interrupt
// endpoints to the transport.
package usb

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/gousb"
)

var (
	// ErrNoMatch means no attached device matched the selector.
	ErrNoMatch = errors.New("usb: no device matches selector")
	// ErrNoEndpoint means the device lacks an interrupt IN or OUT endpoint.
	ErrNoEndpoint = errors.New("usb: no interrupt endpoint pair")
)

// Config is the device.* flag group.
type Config struct {
	Serial string `help:"Select the printer by serial, matched against the \"<model>@ <serial>\" interface string" env:"DZPRINT_DEVICE_SERIAL"`
	VID    string `help:"Select the printer by vendor ID (hex)" env:"DZPRINT_DEVICE_VID"`
	PID    string `help:"Select the printer by product ID (hex)" env:"DZPRINT_DEVICE_PID"`
	Claim  bool   `help:"Detach kernel drivers from the claimed interfaces" default:"true" env:"DZPRINT_DEVICE_CLAIM"`
}

// Selector picks the first attached device that matches either a VID/PID
// pair or a serial.
type Selector struct {
	VID    gousb.ID
	PID    gousb.ID
	Serial string
}

// Selector converts the flags into a Selector. Serial takes precedence.
func (c Config) Selector() (Selector, error) {
	if c.Serial != "" {
		return Selector{Serial: c.Serial}, nil
	}
	if c.VID == "" || c.PID == "" {
		return Selector{}, errors.New("usb: set --device.serial or both --device.vid and --device.pid")
	}
	vid, err := ParseID(c.VID)
	if err != nil {
		return Selector{}, fmt.Errorf("vendor id: %w", err)
	}
	pid, err := ParseID(c.PID)
	if err != nil {
		return Selector{}, fmt.Errorf("product id: %w", err)
	}
	return Selector{VID: vid, PID: pid}, nil
}

// ParseID parses a hex ID with or without a 0x prefix.
func ParseID(s string) (gousb.ID, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, err
	}
	return gousb.ID(v), nil
}

func (s Selector) String() string {
	if s.Serial != "" {
		return "serial " + s.Serial
	}
	return fmt.Sprintf("%s:%s", s.VID, s.PID)
}

// MatchesDesc reports whether a VID/PID selector matches desc. Serial
// selectors need the interface string and always pass here.
func (s Selector) MatchesDesc(desc *gousb.DeviceDesc) bool {
	if s.Serial != "" {
		return true
	}
	return desc.Vendor == s.VID && desc.Product == s.PID
}

// MatchesInterface reports whether an interface string such as
// "DP27P@ DP27P-Y4094C023" carries the selector's serial. A serial that
// already includes the model must match the whole string.
func (s Selector) MatchesInterface(name string) bool {
	if s.Serial == "" {
		return true
	}
	if strings.Contains(s.Serial, "@ ") {
		return name == s.Serial
	}
	return strings.HasSuffix(name, "@ "+s.Serial)
}
