package protocol

import "fmt"

// HostCommand is an opcode sent from the host to the printer.
// The high byte is the command group, the low byte the command type.
type HostCommand uint16

const (
	HostInit                 HostCommand = 0x1f78
	HostReadSoftwareVersion  HostCommand = 0x1f7c
	HostReadDeviceName       HostCommand = 0x1f79
	HostGetSetPrintPaperType HostCommand = 0x1f42
	HostGetSetPrintSpeed     HostCommand = 0x1f44
	HostGetSetPrintPaperGap  HostCommand = 0x1f45
	HostGetSetPrintDarkness  HostCommand = 0x1f43
	HostReadManufacturer     HostCommand = 0x1f75
	HostGetPrinterStatus     HostCommand = 0x1f70
	HostEnableHighCommand    HostCommand = 0x1f80
	HostGetSensorStatus      HostCommand = 0x1f88
)

// DeviceCommand is an opcode the printer uses when answering the host.
type DeviceCommand uint16

const (
	DeviceInitResult      DeviceCommand = 0x1f78
	DeviceSoftwareVersion DeviceCommand = 0x1f7c
	DeviceDeviceName      DeviceCommand = 0x1f79
	DeviceManufacturer    DeviceCommand = 0x1f75
	DevicePrintSpeed      DeviceCommand = 0x1f44
	DevicePaperType       DeviceCommand = 0x1f42
	DevicePaperGap        DeviceCommand = 0x1f45
	DevicePrintDarkness   DeviceCommand = 0x1f43
	DevicePrinterStatus   DeviceCommand = 0x1f70
	DeviceHighCommand     DeviceCommand = 0x1f80
	DeviceSensorStatus    DeviceCommand = 0x1f88
)

var hostCommandNames = map[HostCommand]string{
	HostInit:                 "Init",
	HostReadSoftwareVersion:  "ReadSoftwareVersion",
	HostReadDeviceName:       "ReadDeviceName",
	HostGetSetPrintPaperType: "GetSetPrintPaperType",
	HostGetSetPrintSpeed:     "GetSetPrintSpeed",
	HostGetSetPrintPaperGap:  "GetSetPrintPaperGap",
	HostGetSetPrintDarkness:  "GetSetPrintDarkness",
	HostReadManufacturer:     "ReadManufacturer",
	HostGetPrinterStatus:     "GetPrinterStatus",
	HostEnableHighCommand:    "EnableHighCommand",
	HostGetSensorStatus:      "GetSensorStatus",
}

var deviceCommandNames = map[DeviceCommand]string{
	DeviceInitResult:      "InitResult",
	DeviceSoftwareVersion: "SoftwareVersion",
	DeviceDeviceName:      "DeviceName",
	DeviceManufacturer:    "Manufacturer",
	DevicePrintSpeed:      "PrintSpeed",
	DevicePaperType:       "PaperType",
	DevicePaperGap:        "PaperGap",
	DevicePrintDarkness:   "PrintDarkness",
	DevicePrinterStatus:   "PrinterStatus",
	DeviceHighCommand:     "HighCommand",
	DeviceSensorStatus:    "SensorStatus",
}

// Header returns the command group and command type bytes.
func (c HostCommand) Header() (byte, byte) { return byte(c >> 8), byte(c) }

func (c HostCommand) String() string {
	if n, ok := hostCommandNames[c]; ok {
		return n
	}
	return fmt.Sprintf("HostCommand(0x%04x)", uint16(c))
}

// Header returns the command group and command type bytes.
func (c DeviceCommand) Header() (byte, byte) { return byte(c >> 8), byte(c) }

func (c DeviceCommand) String() string {
	if n, ok := deviceCommandNames[c]; ok {
		return n
	}
	return fmt.Sprintf("DeviceCommand(0x%04x)", uint16(c))
}

// LookupDeviceCommand resolves a raw opcode against the known device commands.
func LookupDeviceCommand(op uint16) (DeviceCommand, bool) {
	c := DeviceCommand(op)
	_, ok := deviceCommandNames[c]
	return c, ok
}

// LookupHostCommand resolves a raw opcode against the known host commands.
func LookupHostCommand(op uint16) (HostCommand, bool) {
	c := HostCommand(op)
	_, ok := hostCommandNames[c]
	return c, ok
}

// Reply returns the device command that answers c. Both directions share
// opcodes.
func (c HostCommand) Reply() DeviceCommand { return DeviceCommand(c) }
