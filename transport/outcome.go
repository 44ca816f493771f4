package transport

import (
	"context"

	"github.com/sb-child/dz-print/protocol"
)

// State is the first stage result of a submission.
type State int

const (
	// StateFailed means the packet carrying the payload was not written.
	StateFailed State = iota
	// StateWritten means the payload was written and no reply was requested.
	StateWritten
	// StateAwaitingReply means the payload was written and a reply slot
	// has been queued for the next device frame.
	StateAwaitingReply
)

func (s State) String() string {
	switch s {
	case StateFailed:
		return "failed"
	case StateWritten:
		return "written"
	case StateAwaitingReply:
		return "awaiting reply"
	default:
		return "unknown"
	}
}

// Outcome is the resolved first stage of a submission.
type Outcome struct {
	State State
	// Err is set when State is StateFailed.
	Err error

	reply <-chan protocol.DeviceFrame
	dead  <-chan struct{}
}

// Reply waits for the device frame matched to this submission. It returns
// ErrNoReply unless State is StateAwaitingReply, and ErrClosed if the
// inbound pump stops first. The device may never answer; bound ctx.
func (o Outcome) Reply(ctx context.Context) (protocol.DeviceFrame, error) {
	if o.State != StateAwaitingReply {
		return protocol.DeviceFrame{}, ErrNoReply
	}
	select {
	case f := <-o.reply:
		return f, nil
	case <-ctx.Done():
		return protocol.DeviceFrame{}, ctx.Err()
	case <-o.dead:
		select {
		case f := <-o.reply:
			return f, nil
		default:
			return protocol.DeviceFrame{}, ErrClosed
		}
	}
}

// Pending is a submission whose packet has not been written yet. Dropping
// it is safe.
type Pending struct {
	ch      <-chan Outcome
	stopped <-chan struct{}
}

// Wait blocks until the outbound pump resolves the submission. Submissions
// the pump never picked up resolve as failed with ErrClosed.
func (p *Pending) Wait(ctx context.Context) (Outcome, error) {
	select {
	case o := <-p.ch:
		return o, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	case <-p.stopped:
		select {
		case o := <-p.ch:
			return o, nil
		default:
			return Outcome{State: StateFailed, Err: ErrClosed}, nil
		}
	}
}
