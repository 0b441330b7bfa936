package framebuffer

import (
	"image"
	"math"
)

// Line rasterizes a straight line from p1 to p2, calling plot for every
// covered pixel. The stroke is widened into a square pen of the given width.
// With width 1 every pixel is plotted exactly once.
func Line(p1, p2 image.Point, width int, plot func(x, y int)) {
	if width < 1 {
		width = 1
	}
	pen := func(x, y int) {
		if width == 1 {
			plot(x, y)
			return
		}
		for dy := range width {
			for dx := range width {
				plot(x-width/2+dx, y-width/2+dy)
			}
		}
	}

	dx, dy := abs(p2.X-p1.X), -abs(p2.Y-p1.Y)
	sx, sy := 1, 1
	if p1.X > p2.X {
		sx = -1
	}
	if p1.Y > p2.Y {
		sy = -1
	}
	err := dx + dy
	x, y := p1.X, p1.Y
	for {
		pen(x, y)
		e2 := 2 * err
		if e2 >= dy {
			if x == p2.X {
				return
			}
			err += dy
			x += sx
		}
		if e2 <= dx {
			if y == p2.Y {
				return
			}
			err += dx
			y += sy
		}
	}
}

// Ellipse rasterizes the filled ellipse inscribed in r, calling plot exactly
// once for every covered pixel. A nonzero angle pair restricts the fill to
// the sector between startAngle and endAngle, measured in degrees clockwise
// from twelve o'clock.
func Ellipse(r image.Rectangle, startAngle, endAngle float32, plot func(x, y int)) {
	if r.Empty() {
		return
	}
	full := startAngle == endAngle
	cx := float64(r.Min.X+r.Max.X) / 2
	cy := float64(r.Min.Y+r.Max.Y) / 2
	rx := float64(r.Dx()) / 2
	ry := float64(r.Dy()) / 2

	for y := r.Min.Y; y < r.Max.Y; y++ {
		fy := (float64(y) + 0.5 - cy) / ry
		for x := r.Min.X; x < r.Max.X; x++ {
			fx := (float64(x) + 0.5 - cx) / rx
			if fx*fx+fy*fy > 1 {
				continue
			}
			if !full && !inSector(fx, fy, startAngle, endAngle) {
				continue
			}
			plot(x, y)
		}
	}
}

func inSector(fx, fy float64, start, end float32) bool {
	a := math.Atan2(fx, -fy) * 180 / math.Pi
	if a < 0 {
		a += 360
	}
	s, e := float64(start), float64(end)
	if s <= e {
		return a >= s && a <= e
	}
	return a >= s || a <= e
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
