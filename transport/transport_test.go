package transport_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	th "github.com/sb-child/dz-print/internal/testing"
	"github.com/sb-child/dz-print/protocol"
	"github.com/sb-child/dz-print/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	tr     *transport.Transport
	in     *th.FakeIn
	out    *th.FakeOut
	closer *th.Closer
}

func newFixture(t *testing.T, flush time.Duration) *fixture {
	t.Helper()
	f := &fixture{in: th.NewFakeIn(), out: th.NewFakeOut(), closer: &th.Closer{}}
	cfg := transport.Config{
		PacketSize:    16,
		FlushInterval: flush,
		QueueSize:     8,
		WriteTimeout:  time.Second,
		ReadTimeout:   5 * time.Millisecond,
	}
	tr, err := transport.New(cfg, f.in, f.out, f.closer, nil, nil)
	require.NoError(t, err)
	f.tr = tr
	t.Cleanup(func() { _ = tr.Close() })
	return f
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func seq(from, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(from + i)
	}
	return b
}

func TestPacketCapacity(t *testing.T) {
	type testCase struct {
		size int
		want int
	}
	cases := []testCase{
		{size: 2, want: 0},
		{size: 3, want: 1},
		{size: 16, want: 14},
		{size: 64, want: 62},
		{size: 193, want: 191},
		{size: 194, want: 191},
		{size: 195, want: 192},
		{size: 512, want: 509},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, transport.PacketCapacity(tc.size), "size=%d", tc.size)
	}
}

func TestNewRejectsTinyPackets(t *testing.T) {
	_, err := transport.New(transport.Config{PacketSize: 2}, th.NewFakeIn(), th.NewFakeOut(), nil, nil, nil)
	assert.Error(t, err)
}

func TestTimerFlush(t *testing.T) {
	f := newFixture(t, 5*time.Millisecond)
	ctx := testContext(t)

	p1, err := f.tr.Send(ctx, []byte{1, 2, 3})
	require.NoError(t, err)
	p2, err := f.tr.Send(ctx, []byte{4, 5})
	require.NoError(t, err)

	for _, p := range []*transport.Pending{p1, p2} {
		o, err := p.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, transport.StateWritten, o.State)
		assert.NoError(t, o.Err)
	}

	for _, pkt := range f.out.Packets() {
		require.Len(t, pkt, 16)
		assert.Equal(t, []byte{0x1e, 14}, pkt[:2])
	}
	stream := bytes.ReplaceAll(f.out.Stream(), []byte{0}, nil)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, stream)
}

func TestSplitPayloadResolvesWhenFullyCommitted(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := testContext(t)

	p1, err := f.tr.Send(ctx, seq(1, 30))
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	_, err = p1.Wait(short)
	cancel()
	require.ErrorIs(t, err, context.DeadlineExceeded, "two bytes are still queued")

	p2, err := f.tr.Send(ctx, seq(31, 12))
	require.NoError(t, err)

	for _, p := range []*transport.Pending{p1, p2} {
		o, err := p.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, transport.StateWritten, o.State)
	}
	assert.Len(t, f.out.Packets(), 3)
	assert.Equal(t, seq(1, 42), f.out.Stream())
}

func TestRequestReply(t *testing.T) {
	f := newFixture(t, 5*time.Millisecond)
	ctx := testContext(t)
	f.out.OnWrite = func([]byte) {
		f.in.PushFrame(protocol.DevicePrinterStatus, []byte{0x00})
	}

	req := protocol.EncodeHostFrame(protocol.HostGetPrinterStatus, nil, false)
	p, err := f.tr.Request(ctx, req)
	require.NoError(t, err)
	o, err := p.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, transport.StateAwaitingReply, o.State)

	frame, err := o.Reply(ctx)
	require.NoError(t, err)
	assert.Equal(t, protocol.DevicePrinterStatus, frame.Command)
	assert.Equal(t, []byte{0x00}, frame.Payload)
	assert.True(t, bytes.HasPrefix(f.out.Stream(), req))
}

func TestWriteFailure(t *testing.T) {
	f := newFixture(t, 5*time.Millisecond)
	ctx := testContext(t)
	pipe := errors.New("pipe error")
	f.out.FailNext(pipe)

	p, err := f.tr.Request(ctx, protocol.EncodeHostFrame(protocol.HostGetPrinterStatus, nil, false))
	require.NoError(t, err)
	o, err := p.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, transport.StateFailed, o.State)
	assert.ErrorIs(t, o.Err, pipe)

	_, err = o.Reply(ctx)
	assert.ErrorIs(t, err, transport.ErrNoReply)

	// No reply slot was queued, so the next request gets the first frame.
	f.in.PushFrame(protocol.DeviceSoftwareVersion, []byte("1.0\x00"))
	frame, err := f.tr.Call(ctx, protocol.EncodeHostFrame(protocol.HostReadSoftwareVersion, nil, false))
	require.NoError(t, err)
	assert.Equal(t, protocol.DeviceSoftwareVersion, frame.Command)
}

func TestRepliesInSubmissionOrder(t *testing.T) {
	f := newFixture(t, 5*time.Millisecond)
	ctx := testContext(t)

	var outcomes []transport.Outcome
	for _, cmd := range []protocol.HostCommand{protocol.HostGetPrinterStatus, protocol.HostGetSensorStatus} {
		p, err := f.tr.Request(ctx, protocol.EncodeHostFrame(cmd, nil, false))
		require.NoError(t, err)
		o, err := p.Wait(ctx)
		require.NoError(t, err)
		outcomes = append(outcomes, o)
	}

	both := append(
		protocol.EncodeDeviceFrame(protocol.DevicePrinterStatus, []byte{35}),
		protocol.EncodeDeviceFrame(protocol.DeviceSensorStatus, seq(1, 9))...,
	)
	f.in.Push(protocol.Wrap(both))

	first, err := outcomes[0].Reply(ctx)
	require.NoError(t, err)
	second, err := outcomes[1].Reply(ctx)
	require.NoError(t, err)
	assert.Equal(t, protocol.DevicePrinterStatus, first.Command)
	assert.Equal(t, protocol.DeviceSensorStatus, second.Command)
}

func TestFrameAcrossPackets(t *testing.T) {
	f := newFixture(t, 5*time.Millisecond)
	ctx := testContext(t)

	frame := protocol.EncodeDeviceFrame(protocol.DeviceDeviceName, []byte("DP27P\x00"))
	f.in.Push(protocol.Wrap(frame[:3]))
	f.in.Push(protocol.Wrap(frame[3:]))

	got, err := f.tr.Call(ctx, protocol.EncodeHostFrame(protocol.HostReadDeviceName, nil, false))
	require.NoError(t, err)
	assert.Equal(t, []byte("DP27P\x00"), got.Payload)
}

func TestInboundResync(t *testing.T) {
	type testCase struct {
		name    string
		packets [][]byte
	}
	good := protocol.EncodeDeviceFrame(protocol.DeviceHighCommand, []byte{0x7f})
	bad := protocol.EncodeDeviceFrame(protocol.DevicePrinterStatus, []byte{0x01})
	bad[len(bad)-1] ^= 0x10
	cases := []testCase{
		{name: "not an envelope", packets: [][]byte{{0x55, 0x01, 0x02}, protocol.Wrap(good)}},
		{name: "leading garbage", packets: [][]byte{protocol.Wrap(append([]byte{0x00, 0x11, 0x22, 0x33}, good...))}},
		{name: "bad checksum", packets: [][]byte{protocol.Wrap(append(bad, good...))}},
		{name: "padding between frames", packets: [][]byte{protocol.Wrap(append([]byte{0, 0}, good...))}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, 5*time.Millisecond)
			ctx := testContext(t)
			for _, p := range tc.packets {
				f.in.Push(p)
			}
			got, err := f.tr.Call(ctx, protocol.EncodeHostFrame(protocol.HostEnableHighCommand, protocol.HighCommandPayload, false))
			require.NoError(t, err)
			assert.Equal(t, protocol.DeviceHighCommand, got.Command)
			assert.Equal(t, []byte{0x7f}, got.Payload)
		})
	}
}

func TestFatalReadStopsReplies(t *testing.T) {
	f := newFixture(t, 5*time.Millisecond)
	ctx := testContext(t)
	f.in.Fail(errors.New("no device"))

	_, err := f.tr.Call(ctx, protocol.EncodeHostFrame(protocol.HostGetPrinterStatus, nil, false))
	assert.ErrorIs(t, err, transport.ErrClosed)

	require.NoError(t, f.tr.Do(ctx, []byte{0x1b, 0x40}), "writes continue after the inbound pump stops")
}

func TestClose(t *testing.T) {
	f := newFixture(t, time.Hour)
	ctx := testContext(t)

	p, err := f.tr.Send(ctx, []byte{1, 2, 3})
	require.NoError(t, err)

	require.NoError(t, f.tr.Close())
	require.NoError(t, f.tr.Close())
	assert.Equal(t, 1, f.closer.Count())

	o, err := p.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, transport.StateFailed, o.State)
	assert.ErrorIs(t, o.Err, transport.ErrClosed)

	_, err = f.tr.Send(ctx, []byte{4})
	assert.ErrorIs(t, err, transport.ErrClosed)
	select {
	case <-f.tr.Done():
	default:
		t.Fatal("Done not closed")
	}
}
