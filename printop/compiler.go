package printop

import "github.com/sb-child/dz-print/bitmap"

// Breakpoint intervals that keep the printer buffer from overflowing at
// each speed. Denser prints may need a smaller interval.
const (
	BreakpointSlowest = 50
	BreakpointSlow    = 75
	BreakpointNormal  = 100
	BreakpointFast    = 110
	BreakpointFastest = 120
)

// Compiler walks a bitmap top to bottom and yields one Op per call to Next.
// A Compiler is single use.
type Compiler struct {
	bm     *bitmap.Bitmap
	bp     int
	cursor int

	lastBreakpoint int
	started        bool
}

// NewCompiler returns a compiler over bm that yields a Breakpoint before
// the first row and every bp rows after it. bp 0 disables breakpoints.
func NewCompiler(bm *bitmap.Bitmap, bp int) *Compiler {
	return &Compiler{bm: bm, bp: max(bp, 0)}
}

// Cursor returns the next unprocessed row.
func (c *Compiler) Cursor() int { return c.cursor }

// Next returns the next operation, or false once every row has been emitted.
func (c *Compiler) Next() (Op, bool) {
	h := c.bm.Height()
	if c.cursor >= h {
		return nil, false
	}

	if c.bp > 0 && (!c.started || (c.cursor%c.bp == 0 && c.lastBreakpoint != c.cursor)) {
		c.lastBreakpoint = c.cursor
		c.started = true
		return Breakpoint{}, true
	}

	if n := c.run(func(y int) bool { return c.bm.IsLineEmpty(y) }); n > 0 {
		c.cursor += n
		return FeedLines{Count: n}, true
	}

	if c.cursor > 0 {
		prev := c.cursor - 1
		if n := c.run(func(y int) bool { return c.bm.SameLines(prev, y) }); n > 0 {
			c.cursor += n
			return RepeatLine{Count: n}, true
		}
	}

	y := c.cursor
	c.cursor++
	first, last := c.bm.FirstInk(y), c.bm.LastInk(y)
	line := c.bm.Line(y)
	if first > 0 {
		return SkipPrintLine{MaxWidth: c.bm.Width(), Skip: first, Bits: line[first : last+1]}, true
	}
	return PrintLine{MaxWidth: c.bm.Width(), Bits: line[:last+1]}, true
}

// All drains the compiler.
func (c *Compiler) All() []Op {
	var ops []Op
	for {
		op, ok := c.Next()
		if !ok {
			return ops
		}
		ops = append(ops, op)
	}
}

// run counts rows from the cursor matching fn, stopping before a run would
// cross the next breakpoint row.
func (c *Compiler) run(fn func(y int) bool) int {
	n := 0
	for y := c.cursor; y < c.bm.Height(); y++ {
		if c.bp > 0 && n > 0 && (c.cursor+n)%c.bp == 0 {
			break
		}
		if !fn(y) {
			break
		}
		n++
	}
	return n
}
