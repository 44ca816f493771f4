package protocol_test

import (
	"testing"

	"github.com/sb-child/dz-print/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	got := protocol.Wrap([]byte{0x19, 0x89, 0x06, 0x04})
	assert.Equal(t, []byte{0x1e, 0x04, 0x19, 0x89, 0x06, 0x04}, got)

	payload, err := protocol.Unwrap(append(got, []byte("trailing")...))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x19, 0x89, 0x06, 0x04}, payload)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	for n := 0; n < protocol.VarintMax1; n++ {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i * 7)
		}
		wrapped := protocol.Wrap(payload)
		assert.Len(t, wrapped, protocol.EnvelopeOverhead(n)+n)

		got, err := protocol.Unwrap(wrapped)
		require.NoError(t, err, "n=%d", n)
		assert.Equal(t, payload, got)
	}
}

func TestUnwrapInvalid(t *testing.T) {
	type testCase struct {
		name string
		data []byte
	}
	cases := []testCase{
		{name: "empty", data: nil},
		{name: "marker only", data: []byte{0x1e}},
		{name: "wrong marker", data: []byte{0x1f, 0x01, 0x00}},
		{name: "declared length exceeds data", data: []byte{0x1e, 0x05, 0x01, 0x02}},
		{name: "truncated two byte length", data: []byte{0x1e, 0xc1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := protocol.Unwrap(tc.data)
			assert.ErrorIs(t, err, protocol.ErrInvalidEnvelope)
		})
	}
}

func TestSensorReadings(t *testing.T) {
	r, err := protocol.SensorReadings([]byte{0x01, 0x00, 0x10, 0x01, 0x00, 0xff, 0xff, 0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, [4]uint16{0x10, 0x100, 0xffff, 0}, r)

	_, err = protocol.SensorReadings([]byte{0x01})
	assert.Error(t, err)
}

func TestErrorCodes(t *testing.T) {
	assert.True(t, protocol.ErrorNoPaper.Known())
	assert.Equal(t, "no paper", protocol.ErrorNoPaper.String())
	assert.False(t, protocol.ErrorCode(0).Known())
	assert.Equal(t, "status 0", protocol.ErrorCode(0).String())

	p, err := protocol.ParsePaperType("adhesive")
	require.NoError(t, err)
	assert.Equal(t, protocol.PaperAdhesive, p)
	_, err = protocol.ParsePaperType("foil")
	assert.Error(t, err)
}
