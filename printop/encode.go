package printop

import "encoding/binary"

var (
	opReset      = []byte{0x1b, 0x40}
	opFeed       = []byte{0x1b, 0x4a}
	opPrintLine  = []byte{0x1f, 0x2a}
	opSkipLine   = []byte{0x1f, 0x2b}
	opRepeatLine = []byte{0x1f, 0x2e}
	opNextPaper  = []byte{0x0c}
)

func (ResetPrinter) Encode() [][]byte {
	return [][]byte{clone(opReset)}
}

func (o FeedLines) Encode() [][]byte {
	return chunked(opFeed, o.Count, MaxFeedChunk, 0)
}

// Encode stores each chunk as count-1; the device treats 0 as one repeat.
func (o RepeatLine) Encode() [][]byte {
	return chunked(opRepeatLine, o.Count, MaxRepeatChunk, 1)
}

func (NextPaper) Encode() [][]byte {
	return [][]byte{clone(opNextPaper)}
}

func (Breakpoint) Encode() [][]byte { return nil }

// Encode emits the dot count as a little-endian uint16 followed by the
// packed dots. Lines wider than the device can address become a blank feed.
func (o PrintLine) Encode() [][]byte {
	if o.MaxWidth > MaxPrintLineWidth {
		return FeedLines{Count: 1}.Encode()
	}
	w := min(o.MaxWidth, len(o.Bits))
	c := make([]byte, 0, len(opPrintLine)+2+(w+7)/8)
	c = append(c, opPrintLine...)
	c = binary.LittleEndian.AppendUint16(c, uint16(w))
	c = append(c, pack(o.Bits[:w], 0, (w+7)/8)...)
	return [][]byte{c}
}

// Encode emits the whole-byte skip, the packed byte count and the dots
// shifted right by the remaining sub-byte skip.
func (o SkipPrintLine) Encode() [][]byte {
	if o.MaxWidth > MaxSkipLineWidth || o.Skip > o.MaxWidth || o.Skip < 0 {
		return FeedLines{Count: 1}.Encode()
	}
	w := min(o.MaxWidth-o.Skip, len(o.Bits))
	n := 1 + (w+7)/8
	c := make([]byte, 0, len(opSkipLine)+2+n)
	c = append(c, opSkipLine...)
	c = append(c, byte(o.Skip/8), byte(n))
	c = append(c, pack(o.Bits[:w], o.Skip%8, n)...)
	return [][]byte{c}
}

// chunked splits count into opcodes carrying at most limit each. The count
// byte is stored minus bias.
func chunked(op []byte, count, limit, bias int) [][]byte {
	var out [][]byte
	for count > 0 {
		n := min(count, limit)
		count -= n
		c := make([]byte, 0, len(op)+1)
		c = append(c, op...)
		out = append(out, append(c, byte(n-bias)))
	}
	return out
}

// pack writes dots MSB first into size bytes after offset leading zero bits.
func pack(dots []bool, offset, size int) []byte {
	b := make([]byte, size)
	for i, dot := range dots {
		if !dot {
			continue
		}
		idx := offset + i
		b[idx/8] |= 1 << (7 - idx%8)
	}
	return b
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
