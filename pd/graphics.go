package pd

import (
	"image"

	"github.com/clktmr/playdate/firmware"
	"github.com/clktmr/playdate/framebuffer"
)

// Graphics draws into the working frame. The firmware primitives mark touched
// rows themselves, only direct pixel access through Frame needs an explicit
// MarkUpdated.
type Graphics struct{ pd *PD }

// Clear fills the whole working frame.
func (g Graphics) Clear(c firmware.SolidColor) {
	g.pd.api.Graphics.Clear(c)
}

// Frame returns the working frame as a drawable image. It aliases firmware
// memory and is only valid during the current callback, don't keep it across
// frames.
func (g Graphics) Frame() *framebuffer.Frame {
	return framebuffer.NewRaw(g.pd.api.Graphics.GetFrame(),
		framebuffer.STRIDE,
		image.Rect(0, 0, framebuffer.WIDTH, framebuffer.HEIGHT))
}

// DisplayFrame returns the frame currently scanned out. Treat it as read
// only.
func (g Graphics) DisplayFrame() *framebuffer.Frame {
	return framebuffer.NewRaw(g.pd.api.Graphics.GetDisplayFrame(),
		framebuffer.STRIDE,
		image.Rect(0, 0, framebuffer.WIDTH, framebuffer.HEIGHT))
}

// MarkUpdated reports rows startRow up to and including endRow as dirty.
// Rows written through Frame but never reported may not reach the LCD.
func (g Graphics) MarkUpdated(startRow, endRow int) {
	g.pd.api.Graphics.MarkUpdatedRows(int32(startRow), int32(endRow))
}

// Display pushes the working frame to the LCD right away instead of at the
// end of the update callback.
func (g Graphics) Display() {
	g.pd.api.Graphics.Display()
}

func (g Graphics) FillRect(r image.Rectangle, c firmware.SolidColor) {
	g.pd.api.Graphics.FillRect(int32(r.Min.X), int32(r.Min.Y),
		int32(r.Dx()), int32(r.Dy()), c)
}

func (g Graphics) DrawRect(r image.Rectangle, c firmware.SolidColor) {
	g.pd.api.Graphics.DrawRect(int32(r.Min.X), int32(r.Min.Y),
		int32(r.Dx()), int32(r.Dy()), c)
}

func (g Graphics) DrawLine(p1, p2 image.Point, width int, c firmware.SolidColor) {
	g.pd.api.Graphics.DrawLine(int32(p1.X), int32(p1.Y),
		int32(p2.X), int32(p2.Y), int32(width), c)
}

// FillEllipse fills the ellipse inscribed in r. A nonzero angle pair fills
// only the arc between startAngle and endAngle, measured in degrees
// clockwise from twelve o'clock.
func (g Graphics) FillEllipse(r image.Rectangle, startAngle, endAngle float32, c firmware.SolidColor) {
	g.pd.api.Graphics.FillEllipse(int32(r.Min.X), int32(r.Min.Y),
		int32(r.Dx()), int32(r.Dy()), startAngle, endAngle, c)
}
