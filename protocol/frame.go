// Package protocol implements the printer's wire format: the opcode frame
// with its varint payload length and one byte checksum, and the outer USB
// envelope the frames travel in.
//
// A frame is laid out as
//
//	group | type | varint(len(payload)) | payload... | checksum
//
// where checksum is either ChecksumBypass or the one's complement of the
// byte sum of everything after the group byte.
package protocol

import (
	"encoding/binary"
	"errors"
)

// ChecksumBypass is accepted by the device in place of a computed checksum.
const ChecksumBypass = 0x88

// minFrameLen covers opcode, a one byte length and the checksum.
const minFrameLen = 4

var (
	ErrIncomplete     = errors.New("protocol: incomplete frame")
	ErrUnknownCommand = errors.New("protocol: unknown device command")
	ErrChecksum       = errors.New("protocol: checksum mismatch")
)

// Checksum returns the one's complement of the byte sum of b[start:end].
func Checksum(b []byte, start, end int) byte {
	var sum byte
	for _, v := range b[start:end] {
		sum += v
	}
	return sum ^ 0xff
}

// EncodeHostFrame builds a host to device frame. With bypass set the
// checksum byte is ChecksumBypass instead of the computed value.
func EncodeHostFrame(cmd HostCommand, payload []byte, bypass bool) []byte {
	g, t := cmd.Header()
	return encodeFrame(g, t, payload, bypass)
}

// EncodeDeviceFrame builds a device to host frame, as a printer would.
func EncodeDeviceFrame(cmd DeviceCommand, payload []byte) []byte {
	g, t := cmd.Header()
	return encodeFrame(g, t, payload, false)
}

func encodeFrame(g, t byte, payload []byte, bypass bool) []byte {
	buf := make([]byte, 0, 2+VarintLen(len(payload))+len(payload)+1)
	buf = append(buf, g, t)
	buf = AppendVarint(buf, len(payload))
	buf = append(buf, payload...)
	if bypass {
		return append(buf, ChecksumBypass)
	}
	return append(buf, Checksum(buf, 1, len(buf)))
}

// DeviceFrame is a parsed device to host frame.
type DeviceFrame struct {
	Command  DeviceCommand
	Payload  []byte
	Checksum byte
}

// ParseDeviceFrame parses one frame from the front of b. On success it
// returns the frame and the number of bytes it occupied.
//
// ErrIncomplete means more bytes are needed. ErrUnknownCommand and
// ErrChecksum mean the bytes at the front of b do not start a valid frame.
func ParseDeviceFrame(b []byte) (DeviceFrame, int, error) {
	if len(b) < minFrameLen {
		return DeviceFrame{}, 0, ErrIncomplete
	}
	cmd, ok := LookupDeviceCommand(binary.BigEndian.Uint16(b[0:2]))
	if !ok {
		return DeviceFrame{}, 0, ErrUnknownCommand
	}
	n, width, err := DecodeVarint(b[2:])
	if err != nil {
		return DeviceFrame{}, 0, ErrIncomplete
	}
	total := 2 + width + n + 1
	if len(b) < total {
		return DeviceFrame{}, 0, ErrIncomplete
	}
	payload := make([]byte, n)
	copy(payload, b[2+width:2+width+n])

	// The checksum covers the canonical re-encoding of the frame.
	canon := encodeFrame(b[0], b[1], payload, false)
	want := canon[len(canon)-1]
	sum := b[total-1]
	if sum != ChecksumBypass && sum != want {
		return DeviceFrame{}, 0, ErrChecksum
	}
	return DeviceFrame{Command: cmd, Payload: payload, Checksum: sum}, total, nil
}
