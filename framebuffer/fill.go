package framebuffer

import "image"

// Fill sets every pixel in r to c. Whole bytes are written at once, only the
// bytes at the row's edges are masked.
func (p *Frame) Fill(r image.Rectangle, c Pixel) {
	fill := uint8(0x00)
	if c {
		fill = 0xff
	}
	p.masked(r,
		func(b *uint8, mask uint8) { *b = *b&^mask | fill&mask },
		func(b []uint8) {
			for i := range b {
				b[i] = fill
			}
		})
}

// Invert flips the single pixel at (x, y).
func (p *Frame) Invert(x, y int) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	offset, mask := p.PixOffset(x, y)
	p.Pix[offset] ^= mask
}

// Xor inverts every pixel in r.
func (p *Frame) Xor(r image.Rectangle) {
	p.masked(r,
		func(b *uint8, mask uint8) { *b ^= mask },
		func(b []uint8) {
			for i := range b {
				b[i] ^= 0xff
			}
		})
}

// masked calls edge for the partial bytes at the left and right border of r
// and span for the whole bytes between them.
func (p *Frame) masked(r image.Rectangle, edge func(*uint8, uint8), span func([]uint8)) {
	r = r.Intersect(p.Rect)
	if r.Empty() {
		return
	}
	x0 := r.Min.X - p.Rect.Min.X
	x1 := r.Max.X - p.Rect.Min.X
	first, last := x0>>3, (x1-1)>>3
	lmask := uint8(0xff) >> (x0 & 7)
	rmask := uint8(0xff) << (7 - (x1-1)&7)

	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := p.Row(y)
		if first == last {
			edge(&row[first], lmask&rmask)
			continue
		}
		edge(&row[first], lmask)
		edge(&row[last], rmask)
		span(row[first+1 : last])
	}
}
