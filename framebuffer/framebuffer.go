// Package framebuffer implements the packed 1bpp image format scanned out by
// the LCD controller.
//
// Each byte stores 8 pixels, most significant bit first, i.e. bit 7 of the
// row's first byte is the leftmost pixel. A set bit lights the pixel white.
// Rows are padded to a fixed stride of 52 bytes.
package framebuffer

import (
	"image"
	"image/color"

	"github.com/clktmr/playdate/debug"
)

const (
	WIDTH  = 400
	HEIGHT = 240
	STRIDE = 52
)

// Stores pixels packed 1bpp, msb first. Implements draw.Image, so all the
// drawing tools from the standard library can be used. Rendering this way
// goes through At and Set pixel by pixel and is rather slow, prefer Fill and
// Xor for rectangles.
type Frame struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

func New(r image.Rectangle) *Frame {
	// Rows are padded to 32 bit boundaries, like the LCD controller
	// expects. At full width that's a stride of STRIDE.
	stride := ((r.Dx()+7)/8 + 3) &^ 3
	return &Frame{
		Pix:    make([]uint8, stride*r.Dy()),
		Stride: stride,
		Rect:   r,
	}
}

// NewRaw wraps pix, usually memory owned by the firmware. It must hold
// stride bytes for each row in r.
func NewRaw(pix []uint8, stride int, r image.Rectangle) *Frame {
	debug.Assert(len(pix) >= stride*r.Dy(), "framebuffer: short buffer")
	return &Frame{Pix: pix, Stride: stride, Rect: r}
}

func (p *Frame) ColorModel() color.Model { return Model }

func (p *Frame) Bounds() image.Rectangle { return p.Rect }

func (p *Frame) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(p.Rect)) {
		return Black
	}
	offset, mask := p.PixOffset(x, y)
	return Pixel(p.Pix[offset]&mask != 0)
}

func (p *Frame) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	offset, mask := p.PixOffset(x, y)
	if model(c) == White {
		p.Pix[offset] |= mask
	} else {
		p.Pix[offset] &^= mask
	}
}

// PixOffset returns the index of the byte that contains the pixel at (x, y)
// and the mask that selects its bit.
func (p *Frame) PixOffset(x, y int) (offset int, mask uint8) {
	x, y = x-p.Rect.Min.X, y-p.Rect.Min.Y
	return y*p.Stride + x>>3, 0x80 >> (x & 7)
}

// Row returns the backing bytes of row y, including padding.
func (p *Frame) Row(y int) []uint8 {
	offset := (y - p.Rect.Min.Y) * p.Stride
	return p.Pix[offset : offset+p.Stride]
}
