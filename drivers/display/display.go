// Package display connects the firmware's working frame to the pix drawing
// library.
package display

import (
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/clktmr/playdate/framebuffer"
	"github.com/clktmr/playdate/pd"
)

// Display implements the pix.Driver interface on the firmware's working
// frame. The firmware scans the frame out after the update callback returns,
// so there is no buffer to swap; Flush reports the rows touched since the
// last flush.
type Display struct {
	gfx  pd.Graphics
	sys  pd.System
	fill image.Uniform

	dirty image.Rectangle

	last      uint32
	frametime time.Duration
}

func NewDisplay(p *pd.PD) *Display {
	return &Display{
		gfx:  p.Graphics(),
		sys:  p.System(),
		last: p.System().Millis(),
	}
}

// SetDir implements pix.Driver: the LCD has a fixed orientation, the returned
// bounds are always the full screen.
func (p *Display) SetDir(dir int) image.Rectangle {
	return image.Rect(0, 0, framebuffer.WIDTH, framebuffer.HEIGHT)
}

func (p *Display) Draw(r image.Rectangle, src image.Image, sp image.Point,
	mask image.Image, mp image.Point, op draw.Op) {
	fb := p.gfx.Frame()
	r = r.Intersect(fb.Bounds())
	if r.Empty() {
		return
	}
	if u, ok := src.(*image.Uniform); ok && mask == nil {
		_, _, _, a := u.C.RGBA()
		if a == 0xffff || op == draw.Src {
			fb.Fill(r, framebuffer.Model.Convert(u.C).(framebuffer.Pixel))
			p.dirty = p.dirty.Union(r)
			return
		}
	}
	draw.DrawMask(fb, r, src, sp, mask, mp, op)
	p.dirty = p.dirty.Union(r)
}

func (p *Display) SetColor(c color.Color) {
	p.fill.C = c
}

func (p *Display) Fill(r image.Rectangle) {
	p.Draw(r, &p.fill, image.Point{}, nil, image.Point{}, draw.Over)
}

// Flush implements pix.Driver: marks the touched rows for scanout and
// restarts the frame clock.
func (p *Display) Flush() {
	if !p.dirty.Empty() {
		p.gfx.MarkUpdated(p.dirty.Min.Y, p.dirty.Max.Y-1)
		p.dirty = image.Rectangle{}
	}
	now := p.sys.Millis()
	p.frametime = time.Duration(now-p.last) * time.Millisecond
	p.last = now
}

func (p *Display) Err(clear bool) error {
	return nil
}

func (p *Display) FPS() float32 {
	return 1e9 / float32(p.frametime)
}

// Duration returns the time between the two most recent flushes.
func (p *Display) Duration() time.Duration {
	return p.frametime
}
