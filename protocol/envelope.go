package protocol

import "errors"

// EnvelopeMarker is the first byte of every USB packet.
const EnvelopeMarker = 0x1e

var ErrInvalidEnvelope = errors.New("protocol: invalid usb envelope")

// EnvelopeOverhead returns the envelope bytes added around a payload of n bytes.
func EnvelopeOverhead(n int) int { return 1 + VarintLen(n) }

// Wrap puts payload into a USB envelope.
func Wrap(payload []byte) []byte {
	buf := make([]byte, 0, EnvelopeOverhead(len(payload))+len(payload))
	buf = append(buf, EnvelopeMarker)
	buf = AppendVarint(buf, len(payload))
	return append(buf, payload...)
}

// Unwrap returns the payload carried by the envelope at the front of b.
// Bytes past the declared length are ignored.
func Unwrap(b []byte) ([]byte, error) {
	if len(b) < 2 || b[0] != EnvelopeMarker {
		return nil, ErrInvalidEnvelope
	}
	n, width, err := DecodeVarint(b[1:])
	if err != nil {
		return nil, ErrInvalidEnvelope
	}
	start := 1 + width
	if len(b) < start+n {
		return nil, ErrInvalidEnvelope
	}
	return b[start : start+n], nil
}
