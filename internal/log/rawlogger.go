package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// RawLogger records every USB packet exchanged with the printer.
type RawLogger interface {
	// Log records data; in is true for packets read from the device.
	Log(in bool, data []byte)
}

type rawLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRaw returns a RawLogger writing to w. A nil w discards everything.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

func (r *rawLogger) Log(in bool, data []byte) {
	if len(data) == 0 || r.w == nil {
		return
	}

	dir := "H->D"
	if in {
		dir = "D->H"
	}
	line := fmt.Sprintf("%s %s %d bytes: % x\n",
		time.Now().Format("2006/01/02 15:04:05.000"), dir, len(data), data)

	r.mu.Lock()
	_, _ = io.WriteString(r.w, line)
	r.mu.Unlock()
}
