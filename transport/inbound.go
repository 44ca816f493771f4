package transport

import (
	"context"
	"errors"

	"github.com/sb-child/dz-print/internal/log"
	"github.com/sb-child/dz-print/internal/metrics"
	"github.com/sb-child/dz-print/protocol"
)

type inState struct {
	acc     []byte
	frames  []protocol.DeviceFrame
	waiters []chan protocol.DeviceFrame
}

func (t *Transport) inbound() {
	defer t.wg.Done()
	defer close(t.inDone)

	var st inState
	buf := make([]byte, max(t.cfg.PacketSize, 64))
	for {
		select {
		case <-t.done:
			return
		default:
		}
		t.collectWaiters(&st)
		st.deliver()

		n, err := t.read(buf)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			select {
			case <-t.done:
				return
			default:
			}
			t.logger.Error("read from printer failed, inbound pump stopped", "error", err)
			return
		}
		if n == 0 {
			continue
		}
		t.rawLogger.Log(true, buf[:n])

		payload, err := protocol.Unwrap(buf[:n])
		if err != nil {
			t.logger.Debug("discarding packet", "bytes", n, "error", err)
			metrics.RecordDiscard("envelope")
			continue
		}
		st.acc = append(st.acc, payload...)
		t.parse(&st)
		t.collectWaiters(&st)
		st.deliver()
	}
}

func (t *Transport) read(buf []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.ReadTimeout)
	defer cancel()
	return t.in.Read(ctx, buf)
}

// collectWaiters moves reply slots handed over by the outbound pump into
// st without blocking.
func (t *Transport) collectWaiters(st *inState) {
	for {
		select {
		case ch := <-t.waiters:
			st.waiters = append(st.waiters, ch)
		default:
			return
		}
	}
}

// parse extracts every complete frame from the front of st.acc. Bytes that
// cannot start a frame are dropped one at a time until the stream lines up
// again.
func (t *Transport) parse(st *inState) {
	for len(st.acc) > 0 {
		f, n, err := protocol.ParseDeviceFrame(st.acc)
		switch {
		case err == nil:
			st.acc = st.acc[n:]
			st.frames = append(st.frames, f)
			metrics.RecordFrame(f.Command.String())
			t.logger.Log(context.Background(), log.LevelTrace, "frame received", "command", f.Command, "payload", len(f.Payload))
		case errors.Is(err, protocol.ErrIncomplete):
			return
		default:
			t.logger.Debug("resynchronising input", "byte", st.acc[0], "error", err)
			metrics.RecordDiscard(reasonFor(err))
			st.acc = st.acc[1:]
		}
	}
	if len(st.acc) == 0 {
		st.acc = nil
	}
}

// deliver pairs the oldest waiter with the oldest frame.
func (st *inState) deliver() {
	for len(st.waiters) > 0 && len(st.frames) > 0 {
		st.waiters[0] <- st.frames[0]
		st.waiters = st.waiters[1:]
		st.frames = st.frames[1:]
	}
}

func reasonFor(err error) string {
	if errors.Is(err, protocol.ErrChecksum) {
		return "checksum"
	}
	return "unknown_command"
}
