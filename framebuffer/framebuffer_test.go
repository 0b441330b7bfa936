package framebuffer

import (
	"image"
	"image/color"
	"testing"
)

func TestPixOffset(t *testing.T) {
	fb := New(image.Rect(0, 0, WIDTH, HEIGHT))
	if fb.Stride != STRIDE {
		t.Fatalf("expected stride %v, got %v", STRIDE, fb.Stride)
	}

	tests := map[string]struct {
		x, y   int
		offset int
		mask   uint8
	}{
		"origin":    {0, 0, 0, 0x80},
		"bit0":      {7, 0, 0, 0x01},
		"byte1":     {8, 0, 1, 0x80},
		"rightmost": {399, 0, 49, 0x01},
		"row1":      {0, 1, STRIDE, 0x80},
		"lastRow":   {0, 239, 239 * STRIDE, 0x80},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			offset, mask := fb.PixOffset(tc.x, tc.y)
			if offset != tc.offset || mask != tc.mask {
				t.Fatalf("expected (%v, %#02x), got (%v, %#02x)",
					tc.offset, tc.mask, offset, mask)
			}
		})
	}
}

func TestSetAt(t *testing.T) {
	tests := map[string]struct {
		c        color.Color
		expected Pixel
	}{
		"white":       {color.White, White},
		"black":       {color.Black, Black},
		"pixelWhite":  {White, White},
		"pixelBlack":  {Black, Black},
		"lightGray":   {color.Gray{0xc0}, White},
		"darkGray":    {color.Gray{0x40}, Black},
		"transparent": {color.RGBA{}, Black},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			fb := New(image.Rect(0, 0, 16, 2))
			fb.Set(5, 1, tc.c)
			if got := fb.At(5, 1); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestSetPacking(t *testing.T) {
	fb := New(image.Rect(0, 0, 16, 2))
	fb.Set(0, 0, White)
	fb.Set(3, 0, White)
	fb.Set(8, 0, White)
	fb.Set(15, 1, White)

	// Rows pad to four bytes, (15, 1) lands in the second byte of the
	// second row.
	expected := []uint8{0x90, 0x80, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00}
	for i, v := range expected {
		if fb.Pix[i] != v {
			t.Fatalf("byte %v: expected %#02x, got %#02x", i, v, fb.Pix[i])
		}
	}

	fb.Set(3, 0, Black)
	if fb.Pix[0] != 0x80 {
		t.Fatalf("expected %#02x, got %#02x", 0x80, fb.Pix[0])
	}
}

// reference draws r into fb pixel by pixel via the draw.Image interface.
func reference(fb *Frame, r image.Rectangle, c Pixel) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			fb.Set(x, y, c)
		}
	}
}

func TestFill(t *testing.T) {
	tests := map[string]image.Rectangle{
		"aligned":    image.Rect(0, 0, 8, 2),
		"innerByte":  image.Rect(2, 1, 6, 3),
		"crossByte":  image.Rect(5, 0, 19, 4),
		"fullWidth":  image.Rect(0, 1, 40, 2),
		"rightEdge":  image.Rect(33, 0, 40, 4),
		"clipped":    image.Rect(-5, -5, 100, 100),
		"empty":      image.Rect(4, 4, 4, 8),
		"singlePix":  image.Rect(9, 2, 10, 3),
		"byteBorder": image.Rect(8, 0, 16, 4),
	}
	for name, r := range tests {
		t.Run(name, func(t *testing.T) {
			fb := New(image.Rect(0, 0, 40, 4))
			want := New(image.Rect(0, 0, 40, 4))
			fb.Fill(r, White)
			reference(want, r, White)
			for i := range want.Pix {
				if fb.Pix[i] != want.Pix[i] {
					t.Fatalf("byte %v: expected %#02x, got %#02x",
						i, want.Pix[i], fb.Pix[i])
				}
			}

			// Filling black again must restore an empty frame.
			fb.Fill(r, Black)
			for i, v := range fb.Pix {
				if v != 0 {
					t.Fatalf("byte %v: expected zero, got %#02x", i, v)
				}
			}
		})
	}
}

func TestXor(t *testing.T) {
	fb := New(image.Rect(0, 0, 40, 4))
	fb.Fill(image.Rect(0, 0, 20, 4), White)

	r := image.Rect(10, 1, 30, 3)
	fb.Xor(r)
	for y := range 4 {
		for x := range 40 {
			expected := Pixel(x < 20)
			if (image.Point{x, y}.In(r)) {
				expected = !expected
			}
			if got := fb.At(x, y); got != expected {
				t.Fatalf("pixel (%v, %v): expected %v, got %v",
					x, y, expected, got)
			}
		}
	}

	// Inverting twice restores the original.
	fb.Xor(r)
	for x := range 40 {
		if got := fb.At(x, 2); got != Pixel(x < 20) {
			t.Fatalf("pixel (%v, 2): expected %v, got %v", x, Pixel(x < 20), got)
		}
	}
}

func TestLine(t *testing.T) {
	tests := map[string]struct {
		p1, p2 image.Point
	}{
		"horizontal": {image.Pt(1, 2), image.Pt(8, 2)},
		"vertical":   {image.Pt(3, 0), image.Pt(3, 7)},
		"diagonal":   {image.Pt(0, 0), image.Pt(7, 7)},
		"shallow":    {image.Pt(0, 1), image.Pt(9, 4)},
		"steep":      {image.Pt(1, 0), image.Pt(4, 9)},
		"reverse":    {image.Pt(8, 6), image.Pt(2, 1)},
		"point":      {image.Pt(5, 5), image.Pt(5, 5)},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			plotted := make(map[image.Point]int)
			Line(tc.p1, tc.p2, 1, func(x, y int) { plotted[image.Pt(x, y)]++ })

			for _, p := range []image.Point{tc.p1, tc.p2} {
				if plotted[p] == 0 {
					t.Errorf("endpoint %v not plotted", p)
				}
			}
			for p, n := range plotted {
				if n != 1 {
					t.Errorf("pixel %v plotted %v times", p, n)
				}
			}
			expected := max(abs(tc.p2.X-tc.p1.X), abs(tc.p2.Y-tc.p1.Y)) + 1
			if len(plotted) != expected {
				t.Errorf("expected %v pixels, got %v", expected, len(plotted))
			}
		})
	}
}

func TestEllipse(t *testing.T) {
	r := image.Rect(0, 0, 10, 10)
	count := 0
	full := make(map[image.Point]bool)
	Ellipse(r, 0, 0, func(x, y int) {
		count++
		full[image.Pt(x, y)] = true
	})

	if count != len(full) {
		t.Errorf("expected %v plots, got %v", len(full), count)
	}
	for _, p := range []image.Point{{4, 4}, {5, 5}, {5, 0}, {0, 5}} {
		if !full[p] {
			t.Errorf("pixel %v not covered", p)
		}
	}
	for _, p := range []image.Point{{0, 0}, {9, 9}, {0, 9}, {9, 0}} {
		if full[p] {
			t.Errorf("pixel %v covered outside the ellipse", p)
		}
	}

	// The sector from 0 to 180 degrees is the right half.
	half := make(map[image.Point]bool)
	Ellipse(r, 0, 180, func(x, y int) { half[image.Pt(x, y)] = true })
	for p := range half {
		if !full[p] {
			t.Errorf("sector pixel %v outside the full ellipse", p)
		}
		if p.X < 5 {
			t.Errorf("pixel %v outside the sector", p)
		}
	}
	if len(half) == 0 || len(half) >= len(full) {
		t.Errorf("expected a strict subset, got %v of %v", len(half), len(full))
	}
}

func TestNewRaw(t *testing.T) {
	pix := make([]uint8, STRIDE*HEIGHT)
	fb := NewRaw(pix, STRIDE, image.Rect(0, 0, WIDTH, HEIGHT))
	fb.Set(399, 239, White)
	if pix[239*STRIDE+49] != 0x01 {
		t.Fatalf("expected %#02x, got %#02x", 0x01, pix[239*STRIDE+49])
	}
}
