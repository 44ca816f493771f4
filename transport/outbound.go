package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/sb-child/dz-print/internal/metrics"
	"github.com/sb-child/dz-print/protocol"
)

// chunk is the unsent part of a request. A request split across packets
// stays at the front of the queue until its last byte is committed.
type chunk struct {
	req  *request
	data []byte
}

type outQueue struct {
	chunks []*chunk
	size   int
}

func (q *outQueue) push(req *request) {
	q.chunks = append(q.chunks, &chunk{req: req, data: req.payload})
	q.size += len(req.payload)
}

func (t *Transport) outbound() {
	defer t.wg.Done()
	defer close(t.outDone)

	ticker := time.NewTicker(t.cfg.FlushInterval)
	defer ticker.Stop()

	var q outQueue
	for {
		select {
		case <-t.done:
			t.abandon(&q)
			return
		case req := <-t.submitCh:
			q.push(req)
			for q.size >= t.capacity {
				t.flush(&q)
			}
		case <-ticker.C:
			for len(q.chunks) > 0 {
				select {
				case <-t.done:
					t.abandon(&q)
					return
				default:
				}
				t.flush(&q)
			}
		}
	}
}

// flush writes one packet from the front of q.
func (t *Transport) flush(q *outQueue) {
	buf := make([]byte, 0, t.capacity)
	var committed []*request
	split := false
	for len(q.chunks) > 0 && len(buf) < t.capacity {
		c := q.chunks[0]
		room := t.capacity - len(buf)
		if len(c.data) > room {
			buf = append(buf, c.data[:room]...)
			c.data = c.data[room:]
			split = true
			break
		}
		buf = append(buf, c.data...)
		committed = append(committed, c.req)
		q.chunks = q.chunks[1:]
	}
	q.size -= len(buf)
	used := len(buf)

	// buf was allocated zeroed, so extending it to capacity pads the packet.
	err := t.write(protocol.Wrap(buf[:t.capacity]))
	metrics.RecordPacketWritten(used, err)
	if err != nil {
		t.logger.Warn("packet write failed", "bytes", used, "requests", len(committed), "error", err)
		for _, req := range committed {
			req.result <- Outcome{State: StateFailed, Err: err}
		}
		// The head request already lost part of its payload.
		if split {
			head := q.chunks[0]
			q.chunks = q.chunks[1:]
			q.size -= len(head.data)
			head.req.result <- Outcome{State: StateFailed, Err: err}
		}
		return
	}
	for _, req := range committed {
		t.resolve(req)
	}
}

func (t *Transport) write(packet []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.WriteTimeout)
	defer cancel()
	t.rawLogger.Log(false, packet)
	n, err := t.out.Write(ctx, packet)
	if err != nil {
		return err
	}
	if n != len(packet) {
		return fmt.Errorf("short write: %d/%d bytes", n, len(packet))
	}
	return nil
}

// resolve completes a written request, queueing its reply slot with the
// inbound pump first so replies keep submission order.
func (t *Transport) resolve(req *request) {
	if !req.reply {
		req.result <- Outcome{State: StateWritten}
		return
	}
	ch := make(chan protocol.DeviceFrame, 1)
	select {
	case t.waiters <- ch:
	case <-t.inDone:
	case <-t.done:
	}
	req.result <- Outcome{State: StateAwaitingReply, reply: ch, dead: t.inDone}
}

// abandon fails everything still queued or buffered at shutdown.
func (t *Transport) abandon(q *outQueue) {
	for _, c := range q.chunks {
		c.req.result <- Outcome{State: StateFailed, Err: ErrClosed}
	}
	q.chunks = nil
	q.size = 0
	for {
		select {
		case req := <-t.submitCh:
			req.result <- Outcome{State: StateFailed, Err: ErrClosed}
		default:
			return
		}
	}
}
