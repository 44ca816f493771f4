// Package transport moves payloads to the printer over a pair of USB
// interrupt endpoints and matches device frames to the requests that asked
// for them.
//
// Two pumps share the device. The outbound pump batches submitted payloads
// into fixed size packets and writes them; the inbound pump reads packets,
// reassembles device frames and hands them to waiting requests in
// submission order.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/sb-child/dz-print/internal/log"
	"github.com/sb-child/dz-print/internal/metrics"
	"github.com/sb-child/dz-print/protocol"
)

var (
	// ErrClosed is returned for submissions made or pending at shutdown.
	ErrClosed = errors.New("transport: closed")
	// ErrNoReply is returned by Outcome.Reply when no reply was queued.
	ErrNoReply = errors.New("transport: no reply channel")
	// ErrTimeout marks an endpoint transfer that timed out.
	ErrTimeout = errors.New("transport: timeout")
)

// OutEndpoint writes one packet.
type OutEndpoint interface {
	Write(ctx context.Context, p []byte) (int, error)
}

// InEndpoint reads one packet.
type InEndpoint interface {
	Read(ctx context.Context, p []byte) (int, error)
}

type request struct {
	payload []byte
	reply   bool
	result  chan Outcome
}

// Transport owns the two pumps. It is safe for concurrent use.
type Transport struct {
	cfg       Config
	capacity  int
	in        InEndpoint
	out       OutEndpoint
	closer    io.Closer
	logger    *slog.Logger
	rawLogger log.RawLogger

	submitCh chan *request
	waiters  chan chan protocol.DeviceFrame

	done      chan struct{}
	closeOnce sync.Once
	outDone   chan struct{}
	inDone    chan struct{}
	wg        sync.WaitGroup
}

// New starts both pumps. closer, if not nil, is closed once both pumps have
// stopped.
func New(cfg Config, in InEndpoint, out OutEndpoint, closer io.Closer, logger *slog.Logger, rawLogger log.RawLogger) (*Transport, error) {
	cfg = cfg.withDefaults()
	capacity := PacketCapacity(cfg.PacketSize)
	if capacity <= 0 {
		return nil, fmt.Errorf("transport: packet size %d leaves no room for payload", cfg.PacketSize)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if rawLogger == nil {
		rawLogger = log.NewRaw(nil)
	}
	t := &Transport{
		cfg:       cfg,
		capacity:  capacity,
		in:        in,
		out:       out,
		closer:    closer,
		logger:    logger.With("component", "transport"),
		rawLogger: rawLogger,
		submitCh:  make(chan *request, cfg.QueueSize),
		waiters:   make(chan chan protocol.DeviceFrame, cfg.QueueSize),
		done:      make(chan struct{}),
		outDone:   make(chan struct{}),
		inDone:    make(chan struct{}),
	}
	t.wg.Add(2)
	go t.outbound()
	go t.inbound()
	t.logger.Debug("transport started", "packetSize", cfg.PacketSize, "capacity", capacity, "flushInterval", cfg.FlushInterval)
	return t, nil
}

// PacketCapacity returns the largest payload whose envelope fits in a packet
// of size bytes.
func PacketCapacity(size int) int {
	n := size - 2
	for n > 0 && protocol.EnvelopeOverhead(n)+n > size {
		n--
	}
	return n
}

// Send submits a payload that expects no reply.
func (t *Transport) Send(ctx context.Context, payload []byte) (*Pending, error) {
	return t.submit(ctx, payload, false)
}

// Request submits a payload whose reply is the next unclaimed device frame.
func (t *Transport) Request(ctx context.Context, payload []byte) (*Pending, error) {
	return t.submit(ctx, payload, true)
}

func (t *Transport) submit(ctx context.Context, payload []byte, reply bool) (*Pending, error) {
	select {
	case <-t.done:
		return nil, ErrClosed
	default:
	}
	req := &request{
		payload: append([]byte(nil), payload...),
		reply:   reply,
		result:  make(chan Outcome, 1),
	}
	select {
	case t.submitCh <- req:
		metrics.RecordSubmission(reply)
		return &Pending{ch: req.result, stopped: t.outDone}, nil
	case <-t.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Do sends payload and waits until it has been written.
func (t *Transport) Do(ctx context.Context, payload []byte) error {
	p, err := t.Send(ctx, payload)
	if err != nil {
		return err
	}
	o, err := p.Wait(ctx)
	if err != nil {
		return err
	}
	return o.Err
}

// Call sends payload and waits for its reply frame.
func (t *Transport) Call(ctx context.Context, payload []byte) (protocol.DeviceFrame, error) {
	p, err := t.Request(ctx, payload)
	if err != nil {
		return protocol.DeviceFrame{}, err
	}
	o, err := p.Wait(ctx)
	if err != nil {
		return protocol.DeviceFrame{}, err
	}
	if o.State == StateFailed {
		return protocol.DeviceFrame{}, o.Err
	}
	return o.Reply(ctx)
}

// Done is closed once Close has been called.
func (t *Transport) Done() <-chan struct{} { return t.done }

// Close stops both pumps, waits for them and closes the device. It is
// idempotent.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)
		t.wg.Wait()
		if t.closer != nil {
			err = t.closer.Close()
		}
		t.logger.Debug("transport closed")
	})
	return err
}

func isTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
