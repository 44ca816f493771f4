// Package printop turns bitmaps into printer operations and encodes them
// into raw opcode sequences.
package printop

import "fmt"

// Device limits on a single opcode.
const (
	MaxFeedChunk      = 255
	MaxRepeatChunk    = 192
	MaxPrintLineWidth = 65535
	MaxSkipLineWidth  = 1528
)

// Op is a semantic print operation produced by a Compiler.
type Op interface {
	// Encode returns the opcode sequences for the operation. The result is
	// nil for Breakpoint and for zero-length feeds and repeats.
	Encode() [][]byte
	fmt.Stringer
}

// ResetPrinter clears the printer's line state.
type ResetPrinter struct{}

// FeedLines advances the paper by Count blank lines.
type FeedLines struct {
	Count int
}

// PrintLine prints Bits starting at the left margin.
type PrintLine struct {
	MaxWidth int
	Bits     []bool
}

// SkipPrintLine prints Bits after Skip blank dots.
type SkipPrintLine struct {
	MaxWidth int
	Skip     int
	Bits     []bool
}

// RepeatLine prints the previous line Count more times.
type RepeatLine struct {
	Count int
}

// NextPaper positions the next label under the print head.
type NextPaper struct{}

// Breakpoint asks the caller to poll the printer status before sending
// more data. It is never encoded.
type Breakpoint struct{}

func (ResetPrinter) String() string { return "ResetPrinter" }
func (o FeedLines) String() string  { return fmt.Sprintf("FeedLines(%d)", o.Count) }
func (o PrintLine) String() string  { return fmt.Sprintf("PrintLine(%d, %d dots)", o.MaxWidth, len(o.Bits)) }
func (o RepeatLine) String() string { return fmt.Sprintf("RepeatLine(%d)", o.Count) }
func (NextPaper) String() string    { return "NextPaper" }
func (Breakpoint) String() string   { return "Breakpoint" }
func (o SkipPrintLine) String() string {
	return fmt.Sprintf("SkipPrintLine(%d, %d, %d dots)", o.MaxWidth, o.Skip, len(o.Bits))
}

// Flatten concatenates the opcodes of ops into one payload.
func Flatten(ops ...Op) []byte {
	var out []byte
	for _, op := range ops {
		for _, c := range op.Encode() {
			out = append(out, c...)
		}
	}
	return out
}
