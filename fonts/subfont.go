// Package fonts provides glyph data for pix text output.
package fonts

import (
	"image"
)

// SubfontData provides subfont glyph data for a fixed-width strip: all
// glyphs share one cell size and are stacked vertically in a single alpha
// mask.
type SubfontData struct {
	mask    *image.Alpha
	height  int
	ascent  int
	advance int
}

func NewSubfontData(mask *image.Alpha, height, ascent, advance int) *SubfontData {
	return &SubfontData{mask, height, ascent, advance}
}

func (p *SubfontData) Advance(i int) int {
	return p.advance
}

func (p *SubfontData) Glyph(i int) (img image.Image, origin image.Point, advance int) {
	b := p.mask.Bounds()
	r := image.Rect(b.Min.X, b.Min.Y+i*p.height, b.Max.X, b.Min.Y+(i+1)*p.height)
	img = p.mask.SubImage(r)
	origin = image.Pt(b.Min.X, b.Min.Y+i*p.height+p.ascent)
	advance = p.advance
	return
}
