// Package testing provides fake USB endpoints for exercising the transport
// and printer without hardware.
package testing

import (
	"context"
	"sync"

	"github.com/sb-child/dz-print/protocol"
)

// FakeOut records written packets. Errors queued with FailNext are returned
// by subsequent writes in order.
type FakeOut struct {
	mu      sync.Mutex
	packets [][]byte
	fail    []error

	// Written receives a copy of every packet, successful or not.
	Written chan []byte
	// OnWrite, if set, runs for every successful write.
	OnWrite func(packet []byte)
}

func NewFakeOut() *FakeOut {
	return &FakeOut{Written: make(chan []byte, 1024)}
}

func (f *FakeOut) Write(ctx context.Context, p []byte) (int, error) {
	cp := append([]byte(nil), p...)
	f.mu.Lock()
	var err error
	if len(f.fail) > 0 {
		err, f.fail = f.fail[0], f.fail[1:]
	} else {
		f.packets = append(f.packets, cp)
	}
	hook := f.OnWrite
	f.mu.Unlock()

	select {
	case f.Written <- cp:
	default:
	}
	if err != nil {
		return 0, err
	}
	if hook != nil {
		hook(cp)
	}
	return len(p), nil
}

// FailNext makes the next write return err.
func (f *FakeOut) FailNext(err error) {
	f.mu.Lock()
	f.fail = append(f.fail, err)
	f.mu.Unlock()
}

// Packets returns the successfully written packets.
func (f *FakeOut) Packets() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.packets))
	copy(out, f.packets)
	return out
}

// Stream returns the concatenated envelope payloads of all written packets,
// padding included.
func (f *FakeOut) Stream() []byte {
	var out []byte
	for _, p := range f.Packets() {
		payload, err := protocol.Unwrap(p)
		if err != nil {
			continue
		}
		out = append(out, payload...)
	}
	return out
}

// FakeIn serves queued packets to readers. Reads block until a packet, an
// error or the context deadline.
type FakeIn struct {
	packets chan []byte
	errs    chan error
}

func NewFakeIn() *FakeIn {
	return &FakeIn{packets: make(chan []byte, 1024), errs: make(chan error, 16)}
}

func (f *FakeIn) Read(ctx context.Context, p []byte) (int, error) {
	select {
	case b := <-f.packets:
		return copy(p, b), nil
	case err := <-f.errs:
		return 0, err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Push queues a raw packet.
func (f *FakeIn) Push(packet []byte) {
	f.packets <- append([]byte(nil), packet...)
}

// PushFrame queues a device frame wrapped in its own envelope.
func (f *FakeIn) PushFrame(cmd protocol.DeviceCommand, payload []byte) {
	f.Push(protocol.Wrap(protocol.EncodeDeviceFrame(cmd, payload)))
}

// Fail makes a pending or future read return err.
func (f *FakeIn) Fail(err error) {
	f.errs <- err
}

// Closer counts Close calls.
type Closer struct {
	mu    sync.Mutex
	count int
}

func (c *Closer) Close() error {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
	return nil
}

func (c *Closer) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
