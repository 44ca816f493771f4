package printop_test

import (
	"bytes"
	"testing"

	"github.com/sb-child/dz-print/printop"
	"github.com/stretchr/testify/assert"
)

func TestFeedLinesEncode(t *testing.T) {
	got := printop.FeedLines{Count: 2233}.Encode()
	want := make([][]byte, 0, 9)
	for range 8 {
		want = append(want, []byte{0x1b, 0x4a, 0xff})
	}
	want = append(want, []byte{0x1b, 0x4a, 0xc1})
	assert.Equal(t, want, got)

	assert.Empty(t, printop.FeedLines{}.Encode())
}

func TestRepeatLineEncode(t *testing.T) {
	got := printop.RepeatLine{Count: 8964}.Encode()
	assert.Len(t, got, 47)
	for _, c := range got[:46] {
		assert.Equal(t, []byte{0x1f, 0x2e, 0xbf}, c)
	}
	assert.Equal(t, []byte{0x1f, 0x2e, 0x83}, got[46])

	assert.Empty(t, printop.RepeatLine{Count: 0}.Encode())
	assert.Equal(t, [][]byte{{0x1f, 0x2e, 0x00}}, printop.RepeatLine{Count: 1}.Encode())
}

func TestEncode(t *testing.T) {
	type testCase struct {
		name string
		op   printop.Op
		want [][]byte
	}
	feedOne := [][]byte{{0x1b, 0x4a, 0x01}}
	cases := []testCase{
		{
			name: "reset",
			op:   printop.ResetPrinter{},
			want: [][]byte{{0x1b, 0x40}},
		},
		{
			name: "next paper",
			op:   printop.NextPaper{},
			want: [][]byte{{0x0c}},
		},
		{
			name: "breakpoint",
			op:   printop.Breakpoint{},
			want: nil,
		},
		{
			name: "print line",
			op:   printop.PrintLine{MaxWidth: 10, Bits: []bool{false, false, true, true, true}},
			want: [][]byte{{0x1f, 0x2a, 0x05, 0x00, 0x38}},
		},
		{
			name: "print line clipped to max width",
			op:   printop.PrintLine{MaxWidth: 9, Bits: bools("1111111111")},
			want: [][]byte{{0x1f, 0x2a, 0x09, 0x00, 0xff, 0x80}},
		},
		{
			name: "print line too wide",
			op:   printop.PrintLine{MaxWidth: 65536, Bits: []bool{true}},
			want: feedOne,
		},
		{
			name: "skip print line",
			op:   printop.SkipPrintLine{MaxWidth: 10, Skip: 5, Bits: []bool{false, true}},
			want: [][]byte{{0x1f, 0x2b, 0x00, 0x02, 0x02, 0x00}},
		},
		{
			name: "skip print line whole bytes",
			op:   printop.SkipPrintLine{MaxWidth: 64, Skip: 17, Bits: bools("1000000001")},
			want: [][]byte{{0x1f, 0x2b, 0x02, 0x03, 0x40, 0x20, 0x00}},
		},
		{
			name: "skip print line too wide",
			op:   printop.SkipPrintLine{MaxWidth: 1529, Skip: 1, Bits: []bool{true}},
			want: feedOne,
		},
		{
			name: "skip beyond width",
			op:   printop.SkipPrintLine{MaxWidth: 8, Skip: 9, Bits: []bool{true}},
			want: feedOne,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.op.Encode())
		})
	}
}

func TestFlatten(t *testing.T) {
	got := printop.Flatten(printop.ResetPrinter{}, printop.Breakpoint{}, printop.FeedLines{Count: 2}, printop.NextPaper{})
	assert.True(t, bytes.Equal([]byte{0x1b, 0x40, 0x1b, 0x4a, 0x02, 0x0c}, got))
}

func bools(s string) []bool {
	out := make([]bool, len(s))
	for i := range s {
		out[i] = s[i] == '1'
	}
	return out
}
