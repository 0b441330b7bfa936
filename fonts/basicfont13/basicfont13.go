// basicfont 7x13
package basicfont13

import (
	"image"

	"github.com/embeddedgo/display/font/subfont"
	"golang.org/x/image/font/basicfont"

	"github.com/clktmr/playdate/fonts"
)

const (
	Height = 13
	Ascent = 11
)

func NewFace() *subfont.Face {
	data := fonts.NewSubfontData(
		basicfont.Face7x13.Mask.(*image.Alpha),
		Height, Ascent, basicfont.Face7x13.Advance,
	)
	return &subfont.Face{
		Height: Height,
		Ascent: Ascent,
		Subfonts: []*subfont.Subfont{
			{First: 0x0020, Last: 0x007e, Offset: 0, Data: data},
			{First: 0xfffd, Last: 0xfffd, Offset: 95, Data: data},
		},
	}
}
