// Package bitmap holds the monochrome rasters sent to the printer.
package bitmap

import (
	"fmt"
	"image"
	"image/color"
)

// inkThreshold is the demultiplied channel value above which an RGBA pixel
// counts as ink.
const inkThreshold = 127

// Bitmap is an immutable row-major monochrome raster. A true pixel is ink.
type Bitmap struct {
	width  int
	height int
	pix    []bool
}

// New returns a bitmap backed by pix, which must hold width*height pixels.
func New(width, height int, pix []bool) (*Bitmap, error) {
	if width < 0 || height < 0 || len(pix) != width*height {
		return nil, fmt.Errorf("bitmap: %d pixels do not fill %dx%d", len(pix), width, height)
	}
	return &Bitmap{width: width, height: height, pix: pix}, nil
}

// FromGray converts a greyscale image. Only fully black samples become ink.
func FromGray(im *image.Gray) *Bitmap {
	b := im.Bounds()
	bm := blank(b.Dx(), b.Dy())
	for y := 0; y < bm.height; y++ {
		off := im.PixOffset(b.Min.X, b.Min.Y+y)
		row := im.Pix[off : off+bm.width]
		for x, v := range row {
			bm.pix[y*bm.width+x] = v == 0
		}
	}
	return bm
}

// FromImage converts any image. Colors are demultiplied by their alpha and
// a pixel is ink when any channel exceeds 127, which suits renderers that
// draw ink onto a transparent page. *image.Gray input is routed to FromGray.
func FromImage(im image.Image) *Bitmap {
	if g, ok := im.(*image.Gray); ok {
		return FromGray(g)
	}
	b := im.Bounds()
	bm := blank(b.Dx(), b.Dy())
	for y := 0; y < bm.height; y++ {
		for x := 0; x < bm.width; x++ {
			c := color.NRGBAModel.Convert(im.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			bm.pix[y*bm.width+x] = c.R > inkThreshold || c.G > inkThreshold || c.B > inkThreshold
		}
	}
	return bm
}

// FromLuma converts any image by luminance: pixels darker than threshold
// become ink. Use it for ordinary black on white artwork.
func FromLuma(im image.Image, threshold uint8) *Bitmap {
	b := im.Bounds()
	bm := blank(b.Dx(), b.Dy())
	for y := 0; y < bm.height; y++ {
		for x := 0; x < bm.width; x++ {
			g := color.GrayModel.Convert(im.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			bm.pix[y*bm.width+x] = g.Y < threshold
		}
	}
	return bm
}

func blank(w, h int) *Bitmap {
	return &Bitmap{width: w, height: h, pix: make([]bool, w*h)}
}

func (b *Bitmap) Width() int  { return b.width }
func (b *Bitmap) Height() int { return b.height }

// Pixel reports whether (x, y) is ink.
func (b *Bitmap) Pixel(x, y int) bool { return b.pix[y*b.width+x] }

func (b *Bitmap) row(y int) []bool {
	return b.pix[y*b.width : (y+1)*b.width]
}

// Line returns a copy of row y.
func (b *Bitmap) Line(y int) []bool {
	out := make([]bool, b.width)
	copy(out, b.row(y))
	return out
}

// IsLineEmpty reports whether row y has no ink.
func (b *Bitmap) IsLineEmpty(y int) bool {
	for _, p := range b.row(y) {
		if p {
			return false
		}
	}
	return true
}

// SameLines reports whether rows y1 and y2 are identical.
func (b *Bitmap) SameLines(y1, y2 int) bool {
	r1, r2 := b.row(y1), b.row(y2)
	for i := range r1 {
		if r1[i] != r2[i] {
			return false
		}
	}
	return true
}

// FirstInk returns the column of the first ink pixel in row y, or -1.
func (b *Bitmap) FirstInk(y int) int {
	for i, p := range b.row(y) {
		if p {
			return i
		}
	}
	return -1
}

// LastInk returns the column of the last ink pixel in row y, or -1.
func (b *Bitmap) LastInk(y int) int {
	r := b.row(y)
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] {
			return i
		}
	}
	return -1
}
