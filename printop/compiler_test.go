package printop_test

import (
	"strings"
	"testing"

	"github.com/sb-child/dz-print/bitmap"
	"github.com/sb-child/dz-print/printop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// raster builds a bitmap from rows of '0' and '1'.
func raster(t *testing.T, rows ...string) *bitmap.Bitmap {
	t.Helper()
	w := 0
	if len(rows) > 0 {
		w = len(rows[0])
	}
	bm, err := bitmap.New(w, len(rows), bools(strings.Join(rows, "")))
	require.NoError(t, err)
	return bm
}

func repeatRows(row string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = row
	}
	return out
}

func TestCompilerBlank(t *testing.T) {
	bm := raster(t, repeatRows("00000000", 300)...)
	ops := printop.NewCompiler(bm, 0).All()
	assert.Equal(t, []printop.Op{printop.FeedLines{Count: 300}}, ops)
}

func TestCompilerIdenticalRows(t *testing.T) {
	bm := raster(t, repeatRows("01100110", 250)...)
	ops := printop.NewCompiler(bm, 0).All()
	require.Len(t, ops, 2)
	assert.Equal(t, printop.SkipPrintLine{MaxWidth: 8, Skip: 1, Bits: bools("110011")}, ops[0])
	assert.Equal(t, printop.RepeatLine{Count: 249}, ops[1])

	bm = raster(t, repeatRows("10000000", 5)...)
	ops = printop.NewCompiler(bm, 0).All()
	assert.Equal(t, []printop.Op{
		printop.PrintLine{MaxWidth: 8, Bits: []bool{true}},
		printop.RepeatLine{Count: 4},
	}, ops)
}

func TestCompilerBreakpoints(t *testing.T) {
	bm := raster(t, repeatRows("0000", 25)...)
	ops := printop.NewCompiler(bm, 10).All()
	assert.Equal(t, []printop.Op{
		printop.Breakpoint{},
		printop.FeedLines{Count: 10},
		printop.Breakpoint{},
		printop.FeedLines{Count: 10},
		printop.Breakpoint{},
		printop.FeedLines{Count: 5},
	}, ops)
}

func TestCompilerFirstBreakpointOnly(t *testing.T) {
	bm := raster(t, repeatRows("1111", 3)...)
	ops := printop.NewCompiler(bm, 100).All()
	assert.Equal(t, []printop.Op{
		printop.Breakpoint{},
		printop.PrintLine{MaxWidth: 4, Bits: bools("1111")},
		printop.RepeatLine{Count: 2},
	}, ops)
}

func TestCompilerRepeatStopsAtBreakpoint(t *testing.T) {
	bm := raster(t, repeatRows("0110", 8)...)
	ops := printop.NewCompiler(bm, 4).All()
	assert.Equal(t, []printop.Op{
		printop.Breakpoint{},
		printop.SkipPrintLine{MaxWidth: 4, Skip: 1, Bits: bools("11")},
		printop.RepeatLine{Count: 3},
		printop.Breakpoint{},
		printop.RepeatLine{Count: 4},
	}, ops)
}

func TestCompilerMixed(t *testing.T) {
	bm := raster(t,
		"0000",
		"0000",
		"1010",
		"1010",
		"0011",
		"0000",
	)
	c := printop.NewCompiler(bm, 0)
	want := []printop.Op{
		printop.FeedLines{Count: 2},
		printop.PrintLine{MaxWidth: 4, Bits: bools("101")},
		printop.RepeatLine{Count: 1},
		printop.SkipPrintLine{MaxWidth: 4, Skip: 2, Bits: bools("11")},
		printop.FeedLines{Count: 1},
	}
	for i, w := range want {
		op, ok := c.Next()
		require.True(t, ok, "op %d", i)
		assert.Equal(t, w, op, "op %d", i)
	}
	_, ok := c.Next()
	assert.False(t, ok)
	assert.Equal(t, bm.Height(), c.Cursor())
}

func TestCompilerEmptyBitmap(t *testing.T) {
	bm := raster(t)
	ops := printop.NewCompiler(bm, printop.BreakpointNormal).All()
	assert.Empty(t, ops)
}
