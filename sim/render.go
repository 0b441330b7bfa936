package sim

import (
	"image"

	"golang.org/x/image/font/basicfont"

	"github.com/clktmr/playdate/framebuffer"
)

// The panel's reflective tint. A lit pixel shows as warm white, an unlit one
// as warm black.
var (
	lcdWhite = [4]uint8{0xb1, 0xaf, 0xa8, 0xff}
	lcdBlack = [4]uint8{0x31, 0x2f, 0x28, 0xff}
)

// lcdState is the presentation set through the Display group. It changes how
// the frame reaches the panel, never the frame's contents.
type lcdState struct {
	scale    int
	inverted bool
	flip     [2]bool
	offset   image.Point
}

// expand renders the packed frame into the RGBA buffer the way the panel
// shows it: the top left corner magnified by scale, mirrored by flip, the
// result moved by offset. Cells the frame doesn't cover stay black. dst must
// hold 4 bytes per LCD pixel.
func expand(src *framebuffer.Frame, st lcdState, dst []uint8) {
	i := 0
	for y := range framebuffer.HEIGHT {
		for x := range framebuffer.WIDTH {
			lx, ly := x-st.offset.X, y-st.offset.Y
			if st.flip[0] {
				lx = framebuffer.WIDTH - 1 - lx
			}
			if st.flip[1] {
				ly = framebuffer.HEIGHT - 1 - ly
			}
			lit := false
			if lx >= 0 && lx < framebuffer.WIDTH &&
				ly >= 0 && ly < framebuffer.HEIGHT {
				offset, mask := src.PixOffset(lx/st.scale, ly/st.scale)
				lit = src.Pix[offset]&mask != 0
			}
			c := lcdBlack
			if lit != st.inverted {
				c = lcdWhite
			}
			copy(dst[i:], c[:])
			i += 4
		}
	}
}

const textHeight = 13

// drawText renders s into the frame in the host font, white on a black box,
// like the firmware's FPS counter.
func drawText(dst *framebuffer.Frame, x, y int, s string) {
	face := basicfont.Face7x13
	mask := face.Mask.(*image.Alpha)
	dst.Fill(image.Rect(x, y, x+face.Advance*len(s), y+textHeight),
		framebuffer.Black)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c > 0x7e {
			c = 0x20
		}
		g := int(c) - 0x20
		for gy := 0; gy < textHeight; gy++ {
			for gx := 0; gx < face.Advance; gx++ {
				if mask.AlphaAt(gx, g*textHeight+gy).A != 0 {
					dst.Set(x+i*face.Advance+gx, y+gy,
						framebuffer.White)
				}
			}
		}
	}
}
