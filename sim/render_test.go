package sim

import (
	"image"
	"testing"

	"github.com/clktmr/playdate/framebuffer"
)

func pixel(dst []uint8, x, y int) [4]uint8 {
	i := (y*framebuffer.WIDTH + x) * 4
	return [4]uint8{dst[i], dst[i+1], dst[i+2], dst[i+3]}
}

func TestExpand(t *testing.T) {
	frame := framebuffer.New(image.Rect(0, 0, framebuffer.WIDTH, framebuffer.HEIGHT))
	frame.Set(0, 0, framebuffer.White)
	frame.Set(10, 20, framebuffer.White)

	dst := make([]uint8, framebuffer.WIDTH*framebuffer.HEIGHT*4)

	for name, tc := range map[string]struct {
		st       lcdState
		lit, off [][2]int
	}{
		"identity": {
			st:  lcdState{scale: 1},
			lit: [][2]int{{0, 0}, {10, 20}},
			off: [][2]int{{1, 0}, {0, 1}, {11, 20}},
		},
		"scale2": {
			st:  lcdState{scale: 2},
			lit: [][2]int{{0, 0}, {1, 1}, {20, 40}, {21, 41}},
			off: [][2]int{{2, 0}, {22, 40}},
		},
		"offset": {
			st:  lcdState{scale: 1, offset: image.Pt(5, 7)},
			lit: [][2]int{{5, 7}, {15, 27}},
			off: [][2]int{{0, 0}, {4, 7}},
		},
		"flipped": {
			st:  lcdState{scale: 1, flip: [2]bool{true, true}},
			lit: [][2]int{{399, 239}, {389, 219}},
			off: [][2]int{{0, 0}},
		},
		"inverted": {
			st:  lcdState{scale: 1, inverted: true},
			lit: [][2]int{{1, 0}, {5, 5}},
			off: [][2]int{{0, 0}, {10, 20}},
		},
		// Cells the frame doesn't reach follow the inversion too, the
		// whole panel inverts.
		"invertedOffset": {
			st:  lcdState{scale: 1, inverted: true, offset: image.Pt(5, 0)},
			lit: [][2]int{{0, 0}},
			off: [][2]int{{5, 0}},
		},
	} {
		t.Run(name, func(t *testing.T) {
			expand(frame, tc.st, dst)
			for _, p := range tc.lit {
				if pixel(dst, p[0], p[1]) != lcdWhite {
					t.Errorf("(%v, %v) not lit", p[0], p[1])
				}
			}
			for _, p := range tc.off {
				if pixel(dst, p[0], p[1]) != lcdBlack {
					t.Errorf("(%v, %v) lit", p[0], p[1])
				}
			}
		})
	}
}

func TestDrawText(t *testing.T) {
	frame := framebuffer.New(image.Rect(0, 0, framebuffer.WIDTH, framebuffer.HEIGHT))
	frame.Fill(frame.Rect, framebuffer.White)

	drawText(frame, 8, 8, "30")

	// Glyphs render white on a black box, the surroundings stay untouched.
	lit, dark := 0, 0
	for y := 8; y < 8+textHeight; y++ {
		for x := 8; x < 8+7*2; x++ {
			if frame.At(x, y) == framebuffer.White {
				lit++
			} else {
				dark++
			}
		}
	}
	if lit == 0 || dark == 0 {
		t.Fatalf("expected glyphs on a cleared box, got %v lit of %v", lit, lit+dark)
	}
	if frame.At(7, 8) != framebuffer.White {
		t.Fatal("pixel left of the box overwritten")
	}
	if frame.At(8+7*2, 8) != framebuffer.White {
		t.Fatal("pixel right of the box overwritten")
	}
}
