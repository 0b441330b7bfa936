package basicfont13

import (
	"image"
	"testing"

	"golang.org/x/image/font/basicfont"
)

func ink(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
				return true
			}
		}
	}
	return false
}

func TestGlyphs(t *testing.T) {
	face := NewFace()
	sf := face.Subfonts[0]

	img, origin, advance := sf.Data.Glyph(int('A' - sf.First) + sf.Offset)
	if advance != 7 {
		t.Errorf("expected advance 7, got %v", advance)
	}
	b := img.Bounds()
	if b.Dx() != 7 || b.Dy() != Height {
		t.Errorf("expected 7x%v cell, got %vx%v", Height, b.Dx(), b.Dy())
	}
	if origin.Y != b.Min.Y+Ascent {
		t.Errorf("expected baseline %v, got %v", b.Min.Y+Ascent, origin.Y)
	}
	if !ink(img) {
		t.Error("expected ink in 'A'")
	}

	img, _, _ = sf.Data.Glyph(int(' '-sf.First) + sf.Offset)
	if ink(img) {
		t.Error("expected blank space glyph")
	}

	rf := face.Subfonts[1]
	img, _, _ = rf.Data.Glyph(int(rune(0xfffd)-rf.First) + rf.Offset)
	if !ink(img) {
		t.Error("expected ink in the replacement glyph")
	}
	if !img.Bounds().In(basicfont.Face7x13.Mask.Bounds()) {
		t.Error("replacement glyph outside the mask")
	}
}
