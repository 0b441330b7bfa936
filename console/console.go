// Package console runs games on the desktop simulator and shows text output
// on the device screen.
package console

import (
	"bytes"
	"image"
	"image/color"

	"github.com/embeddedgo/display/pix"

	"github.com/clktmr/playdate/drivers/display"
	"github.com/clktmr/playdate/drivers/input"
	"github.com/clktmr/playdate/firmware"
	"github.com/clktmr/playdate/fonts/basicfont13"
	"github.com/clktmr/playdate/pd"
)

var font = basicfont13.NewFace()

var nl = []byte{'\n'}

// Console is a full-screen scrollable log view. It implements io.Writer and
// redraws on every write, so output stays visible even if the game stalls
// right afterwards.
//
// Like all drawing it is confined to the callback dispatch goroutine.
type Console struct {
	buf    bytes.Buffer
	scroll image.Point

	area *pix.Area
	tw   *pix.TextWriter
}

func New(p *pd.PD) *Console {
	disp := pix.NewDisplay(display.NewDisplay(p))
	a := disp.NewArea(disp.Bounds())
	tw := a.NewTextWriter(font)
	tw.SetColor(color.White)
	return &Console{area: a, tw: tw}
}

func (v *Console) Write(p []byte) (n int, err error) {
	n, err = v.buf.Write(p)
	v.Draw()
	return
}

// Update scrolls the view: up and down move by a line, left and right by a
// glyph, the crank by a line per detent. Call it once per frame after the
// input was polled.
func (v *Console) Update(in *input.Input) {
	scroll := v.scroll
	pressed := in.Pressed()
	switch {
	case pressed&firmware.ButtonUp != 0:
		v.scroll.Y++
	case pressed&firmware.ButtonDown != 0:
		v.scroll.Y--
	case pressed&firmware.ButtonLeft != 0:
		v.scroll.X += font.Advance(' ')
	case pressed&firmware.ButtonRight != 0:
		v.scroll.X -= font.Advance(' ')
	}
	v.scroll.Y -= in.Ticks(24)
	if v.scroll != scroll {
		v.Draw()
	}
}

// Draw renders the tail of the buffer, newest line at the bottom, and pushes
// the touched rows to the LCD.
func (v *Console) Draw() {
	bounds := v.area.Bounds()
	view := v.visible(bounds.Dy())

	v.area.SetColor(color.Black)
	v.area.Fill(bounds)
	for y := bounds.Min.Y; ; y += int(font.Height) {
		line, rest, more := bytes.Cut(view, nl)
		v.tw.Pos = image.Pt(bounds.Min.X+v.scroll.X, y)
		v.tw.WriteString(string(line))
		if !more {
			break
		}
		view = rest
	}
	v.area.Flush()
}

// visible returns the byte range of the buffer on screen: everything above
// the scrolled-away tail that still fits the view height. The scroll is
// clamped against the buffer while at it.
func (v *Console) visible(height int) []byte {
	maxLines := max(1, height/int(font.Height))

	b := v.buf.Bytes()
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	lineCnt := bytes.Count(b, nl) + 1
	v.scroll.Y = min(max(0, v.scroll.Y), max(0, lineCnt-maxLines))

	end := len(b)
	for range v.scroll.Y {
		end = bytes.LastIndexByte(b[:end], '\n')
	}
	start := end
	for range maxLines {
		idx := bytes.LastIndexByte(b[:start], '\n')
		if idx == -1 {
			return b[:end]
		}
		start = idx
	}
	return b[start+1 : end]
}
