package framebuffer

import "image/color"

// Pixel is the color of a single LCD cell, either lit (White) or unlit
// (Black). The zero value is Black.
type Pixel bool

const (
	Black Pixel = false
	White Pixel = true
)

func (c Pixel) RGBA() (r, g, b, a uint32) {
	if c {
		return 0xffff, 0xffff, 0xffff, 0xffff
	}
	return 0, 0, 0, 0xffff
}

var Model color.Model = color.ModelFunc(model)

func model(c color.Color) color.Color {
	if _, ok := c.(Pixel); ok {
		return c
	}
	r, g, b, a := c.RGBA()
	if a < 0x8000 {
		// Unlit, same as the LCD's rest state.
		return Black
	}
	// Rec. 601 luma
	y := (299*r + 587*g + 114*b) / 1000
	return Pixel(y >= 0x8000)
}
