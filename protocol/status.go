package protocol

import (
	"encoding/binary"
	"fmt"
)

// ErrorCode is a fault reported in the first byte of a PrinterStatus reply.
type ErrorCode uint8

const (
	ErrorCancelled       ErrorCode = 12
	ErrorVoltageTooLow   ErrorCode = 30
	ErrorVoltageTooHigh  ErrorCode = 31
	ErrorHeadNotFound    ErrorCode = 32
	ErrorHeadTooHot      ErrorCode = 33
	ErrorCoverOpened     ErrorCode = 34
	ErrorNoPaper         ErrorCode = 35
	ErrorHeadOpened      ErrorCode = 36
	ErrorNoRibbon        ErrorCode = 37
	ErrorUnmatchedRibbon ErrorCode = 38
	ErrorHeadTooCold     ErrorCode = 39
	ErrorRibbonUsedUp    ErrorCode = 40
	ErrorRibbonUsedUp2   ErrorCode = 41
	ErrorLabelCanOpened  ErrorCode = 50
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCancelled:       "cancelled",
	ErrorVoltageTooLow:   "voltage too low",
	ErrorVoltageTooHigh:  "voltage too high",
	ErrorHeadNotFound:    "print head not found",
	ErrorHeadTooHot:      "print head too hot",
	ErrorCoverOpened:     "cover opened",
	ErrorNoPaper:         "no paper",
	ErrorHeadOpened:      "print head opened",
	ErrorNoRibbon:        "no ribbon",
	ErrorUnmatchedRibbon: "unmatched ribbon",
	ErrorHeadTooCold:     "print head too cold",
	ErrorRibbonUsedUp:    "ribbon used up",
	ErrorRibbonUsedUp2:   "ribbon used up",
	ErrorLabelCanOpened:  "label can opened",
}

// Known reports whether c is one of the documented fault codes.
func (c ErrorCode) Known() bool {
	_, ok := errorCodeNames[c]
	return ok
}

func (c ErrorCode) String() string {
	if n, ok := errorCodeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("status %d", uint8(c))
}

// PrintSpeed is the GetSetPrintSpeed argument.
type PrintSpeed uint8

const (
	SpeedMin PrintSpeed = iota
	Speed1
	SpeedDefault
	Speed3
	SpeedMax
)

// PrintDarkness is the GetSetPrintDarkness argument.
type PrintDarkness uint8

const (
	DarknessMin     PrintDarkness = 0
	DarknessDefault PrintDarkness = 5
	DarknessMax     PrintDarkness = 14
)

// PaperType is the GetSetPrintPaperType argument.
type PaperType uint8

const (
	// PaperTicket is continuous receipt paper.
	PaperTicket PaperType = iota
	// PaperLocatorHole is paper positioned by punched holes.
	PaperLocatorHole
	// PaperAdhesive is gapped label stock.
	PaperAdhesive
	// PaperCardPaper is black-mark paper.
	PaperCardPaper
)

var paperTypeNames = map[string]PaperType{
	"ticket":       PaperTicket,
	"locator-hole": PaperLocatorHole,
	"adhesive":     PaperAdhesive,
	"card":         PaperCardPaper,
}

// ParsePaperType maps a CLI name to a PaperType.
func ParsePaperType(s string) (PaperType, error) {
	if p, ok := paperTypeNames[s]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("unknown paper type %q", s)
}

// SensorPayload is the GetSensorStatus argument selecting the sensor block.
var SensorPayload = []byte{0x01}

// HighCommandPayload is the EnableHighCommand argument.
var HighCommandPayload = []byte{0x7f}

// SensorReadings decodes the four big-endian readings of a SensorStatus reply.
func SensorReadings(payload []byte) ([4]uint16, error) {
	var out [4]uint16
	if len(payload) < 9 {
		return out, fmt.Errorf("sensor status payload too short: %d bytes", len(payload))
	}
	for i := range out {
		out[i] = binary.BigEndian.Uint16(payload[1+2*i:])
	}
	return out, nil
}
