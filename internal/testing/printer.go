package testing

import (
	"encoding/binary"
	"sync"

	"github.com/sb-child/dz-print/protocol"
)

// FakePrinter emulates a printer behind a FakeIn/FakeOut pair. It decodes
// the outbound stream into print operations and host commands, and answers
// queries the way the device does.
type FakePrinter struct {
	In  *FakeIn
	Out *FakeOut

	mu       sync.Mutex
	acc      []byte
	silent   bool
	status   func(poll int) byte
	polls    int
	rows     int
	resets   int
	pages    int
	commands []protocol.HostCommand
	settings map[protocol.HostCommand][]byte
	bad      int
}

func NewFakePrinter() *FakePrinter {
	fp := &FakePrinter{
		In:       NewFakeIn(),
		Out:      NewFakeOut(),
		settings: map[protocol.HostCommand][]byte{},
	}
	fp.Out.OnWrite = fp.receive
	return fp
}

// SetStatus makes the n-th GetPrinterStatus (from 1) answer fn(n).
func (fp *FakePrinter) SetStatus(fn func(poll int) byte) {
	fp.mu.Lock()
	fp.status = fn
	fp.mu.Unlock()
}

// SetSilent stops all replies.
func (fp *FakePrinter) SetSilent(silent bool) {
	fp.mu.Lock()
	fp.silent = silent
	fp.mu.Unlock()
}

// Rows is the number of printed or fed lines.
func (fp *FakePrinter) Rows() int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.rows
}

func (fp *FakePrinter) Resets() int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.resets
}

func (fp *FakePrinter) Pages() int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.pages
}

func (fp *FakePrinter) Polls() int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.polls
}

// Commands lists the host commands received, in order.
func (fp *FakePrinter) Commands() []protocol.HostCommand {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return append([]protocol.HostCommand(nil), fp.commands...)
}

// Setting returns the last value written with a GetSet command.
func (fp *FakePrinter) Setting(cmd protocol.HostCommand) []byte {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.settings[cmd]
}

// Garbage counts stream bytes that decoded to nothing.
func (fp *FakePrinter) Garbage() int {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.bad
}

func (fp *FakePrinter) receive(packet []byte) {
	payload, err := protocol.Unwrap(packet)
	if err != nil {
		return
	}
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.acc = append(fp.acc, payload...)
	for len(fp.acc) > 0 {
		n := fp.step(fp.acc)
		if n == 0 {
			return
		}
		fp.acc = fp.acc[n:]
	}
}

// step consumes one item from the front of b, or returns 0 if b is
// incomplete.
func (fp *FakePrinter) step(b []byte) int {
	switch b[0] {
	case 0x00:
		return 1
	case 0x0c:
		fp.pages++
		return 1
	case 0x1b:
		if len(b) < 2 {
			return 0
		}
		switch b[1] {
		case 0x40:
			fp.resets++
			return 2
		case 0x4a:
			if len(b) < 3 {
				return 0
			}
			fp.rows += int(b[2])
			return 3
		}
	case 0x1f:
		if len(b) < 2 {
			return 0
		}
		switch b[1] {
		case 0x2a:
			if len(b) < 4 {
				return 0
			}
			n := 4 + (int(binary.LittleEndian.Uint16(b[2:4]))+7)/8
			if len(b) < n {
				return 0
			}
			fp.rows++
			return n
		case 0x2b:
			if len(b) < 4 {
				return 0
			}
			n := 4 + int(b[3])
			if len(b) < n {
				return 0
			}
			fp.rows++
			return n
		case 0x2e:
			if len(b) < 3 {
				return 0
			}
			fp.rows += int(b[2]) + 1
			return 3
		}
		if cmd, ok := protocol.LookupHostCommand(binary.BigEndian.Uint16(b)); ok {
			return fp.command(cmd, b)
		}
	}
	fp.bad++
	return 1
}

func (fp *FakePrinter) command(cmd protocol.HostCommand, b []byte) int {
	if len(b) < 3 {
		return 0
	}
	n, width, err := protocol.DecodeVarint(b[2:])
	if err != nil {
		return 0
	}
	total := 2 + width + n + 1
	if len(b) < total {
		return 0
	}
	sum := b[total-1]
	if sum != protocol.ChecksumBypass && sum != protocol.Checksum(b, 1, total-1) {
		fp.bad++
		return total
	}
	payload := append([]byte(nil), b[2+width:2+width+n]...)
	fp.commands = append(fp.commands, cmd)
	fp.answer(cmd, payload)
	return total
}

func (fp *FakePrinter) answer(cmd protocol.HostCommand, payload []byte) {
	var reply []byte
	switch cmd {
	case protocol.HostGetPrinterStatus:
		fp.polls++
		reply = []byte{0}
		if fp.status != nil {
			reply[0] = fp.status(fp.polls)
		}
	case protocol.HostGetSensorStatus:
		reply = []byte{0x01, 0x00, 0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04}
	case protocol.HostEnableHighCommand:
		reply = []byte{0x7f}
	case protocol.HostReadSoftwareVersion:
		reply = []byte("3.1.20230620\x00")
	case protocol.HostReadDeviceName:
		reply = []byte("DP27P\x00")
	case protocol.HostReadManufacturer:
		reply = []byte("DothanTech\x00")
	case protocol.HostGetSetPrintDarkness, protocol.HostGetSetPrintSpeed,
		protocol.HostGetSetPrintPaperType, protocol.HostGetSetPrintPaperGap:
		if len(payload) > 0 {
			fp.settings[cmd] = payload
			return
		}
		reply = fp.settings[cmd]
		if reply == nil {
			reply = []byte{0}
		}
	default:
		return
	}
	if fp.silent {
		return
	}
	fp.In.PushFrame(cmd.Reply(), reply)
}
