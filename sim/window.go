package sim

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/clktmr/playdate/firmware"
	"github.com/clktmr/playdate/framebuffer"
)

var keymap = map[ebiten.Key]firmware.Buttons{
	ebiten.KeyArrowLeft:  firmware.ButtonLeft,
	ebiten.KeyArrowRight: firmware.ButtonRight,
	ebiten.KeyArrowUp:    firmware.ButtonUp,
	ebiten.KeyArrowDown:  firmware.ButtonDown,
	ebiten.KeyZ:          firmware.ButtonB,
	ebiten.KeyX:          firmware.ButtonA,
}

var padmap = map[ebiten.StandardGamepadButton]firmware.Buttons{
	ebiten.StandardGamepadButtonLeftLeft:    firmware.ButtonLeft,
	ebiten.StandardGamepadButtonLeftRight:   firmware.ButtonRight,
	ebiten.StandardGamepadButtonLeftTop:     firmware.ButtonUp,
	ebiten.StandardGamepadButtonLeftBottom:  firmware.ButtonDown,
	ebiten.StandardGamepadButtonRightRight:  firmware.ButtonB,
	ebiten.StandardGamepadButtonRightBottom: firmware.ButtonA,
}

// Characters swallowed by the key bindings above, not forwarded as key
// events.
const boundChars = "zZxXdD[]{}"

// Crank degrees per tick on the bracket keys.
const crankStep = 6

// window drives the game from ebiten's loop. Update runs the callbacks,
// Draw presents the scanout. Both run on the same goroutine, which makes it
// the process's dispatch thread.
type window struct {
	host    *host
	handler Handler

	panel *ebiten.Image
	rgba  []uint8

	pads  []ebiten.GamepadID
	chars []rune

	inited  bool
	crashed bool
	focused bool
	paused  bool
	menuSel int
	wait    int32
}

func (w *window) Update() error {
	if w.host.crash != "" {
		w.crashed = true
	}
	if w.crashed {
		if ebiten.IsWindowBeingClosed() {
			return ebiten.Termination
		}
		return nil
	}

	if !w.inited {
		w.inited = true
		w.focused = ebiten.IsFocused()
		w.deliver(firmware.EventInit, 0)
		if w.crashed {
			return nil
		}
	}

	if ebiten.IsWindowBeingClosed() {
		w.deliver(firmware.EventTerminate, 0)
		return ebiten.Termination
	}

	if focused := ebiten.IsFocused(); focused != w.focused {
		w.focused = focused
		if focused {
			w.deliver(firmware.EventUnlock, 0)
		} else {
			w.deliver(firmware.EventLock, 0)
		}
		if w.crashed {
			return nil
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		w.screenshot()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		w.paused = !w.paused
		if w.paused {
			w.menuSel = 0
			w.deliver(firmware.EventPause, 0)
		} else {
			w.deliver(firmware.EventResume, 0)
		}
		if w.crashed {
			return nil
		}
	}
	if w.paused {
		w.updateMenu()
		return nil
	}

	w.pollInput()
	w.forwardKeys()
	if w.crashed || w.host.update == nil {
		return nil
	}

	if w.wait > 0 {
		w.wait--
		return nil
	}
	rc := w.call(w.host.update)
	if w.crashed {
		return nil
	}
	w.host.flush()
	if rc == 0 {
		w.deliver(firmware.EventTerminate, 0)
		return ebiten.Termination
	}
	w.wait = rc - 1
	return nil
}

// deliver forwards one event to the game, trapping a halt.
func (w *window) deliver(e firmware.SystemEvent, arg uint32) {
	defer w.trap()
	w.handler(w.host.api, e, arg)
}

// call runs a game callback, trapping a halt. On a halt the zero return
// stands in, checked by the caller through w.crashed.
func (w *window) call(f func() int32) (rc int32) {
	defer w.trap()
	return f()
}

// trap resolves the panic a halt unwinds with into the crash screen.
func (w *window) trap() {
	r := recover()
	if r == nil {
		return
	}
	w.host.fail(fmt.Sprint(r))
	w.crashed = true
}

func (w *window) pollInput() {
	h := w.host

	held := firmware.Buttons(0)
	for key, b := range keymap {
		if ebiten.IsKeyPressed(key) {
			held |= b
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		h.docked = !h.docked
	}
	if !h.docked {
		step := float32(crankStep)
		if ebiten.IsKeyPressed(ebiten.KeyShiftLeft) ||
			ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
			step *= 4
		}
		if ebiten.IsKeyPressed(ebiten.KeyBracketRight) {
			h.crank += step
		}
		if ebiten.IsKeyPressed(ebiten.KeyBracketLeft) {
			h.crank -= step
		}
		_, wheel := ebiten.Wheel()
		h.crank += float32(wheel) * crankStep
	}

	if h.peripherals&firmware.PeripheralAccelerometer != 0 {
		// Resting flat unless a stick tilts the device.
		h.accel = [3]float32{0, 0, 1}
	}

	w.pads = ebiten.AppendGamepadIDs(w.pads[:0])
	for _, id := range w.pads {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		for btn, b := range padmap {
			if ebiten.IsStandardGamepadButtonPressed(id, btn) {
				held |= b
			}
		}
		sx := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickHorizontal)
		sy := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisRightStickVertical)
		if !h.docked && sx*sx+sy*sy > 0.25 {
			// The stick's direction is the crank's absolute
			// position, approached over the shortest arc.
			target := float32(math.Atan2(sx, -sy) * (180 / math.Pi))
			d := target - crankAngle(h.crank)
			if d > 180 {
				d -= 360
			} else if d < -180 {
				d += 360
			}
			h.crank += d
		}
		if h.peripherals&firmware.PeripheralAccelerometer != 0 {
			ax := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
			ay := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
			az := math.Sqrt(max(0, 1-ax*ax-ay*ay))
			h.accel = [3]float32{float32(ax), float32(ay), float32(az)}
		}
	}

	h.held = held
}

// forwardKeys hands typed characters without a binding to the game as key
// events. Releases aren't tracked, the device's keyboard protocol only
// reports them for its own keys anyway.
func (w *window) forwardKeys() {
	w.chars = ebiten.AppendInputChars(w.chars[:0])
	for _, r := range w.chars {
		if strings.ContainsRune(boundChars, r) {
			continue
		}
		w.deliver(firmware.EventKeyPressed, uint32(r))
		if w.crashed {
			return
		}
	}
}

func (w *window) updateMenu() {
	h := w.host
	if len(h.menuOrder) == 0 {
		return
	}
	if w.menuSel >= len(h.menuOrder) {
		w.menuSel = 0
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		w.menuSel = (w.menuSel + 1) % len(h.menuOrder)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		w.menuSel = (w.menuSel + len(h.menuOrder) - 1) % len(h.menuOrder)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) ||
		inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		w.chooseMenu(h.menuOrder[w.menuSel])
	}
}

func (w *window) chooseMenu(handle uintptr) {
	defer w.trap()
	w.host.choose(handle)
}

func (w *window) Draw(screen *ebiten.Image) {
	if w.panel == nil {
		w.panel = ebiten.NewImage(framebuffer.WIDTH, framebuffer.HEIGHT)
		w.rgba = make([]uint8, framebuffer.WIDTH*framebuffer.HEIGHT*4)
	}
	expand(w.host.scanout, w.host.lcd, w.rgba)
	w.panel.WritePixels(w.rgba)
	screen.DrawImage(w.panel, nil)

	if w.crashed {
		w.drawCrash(screen)
		return
	}
	if w.paused {
		w.drawMenu(screen)
	}
}

func (w *window) Layout(_, _ int) (int, int) {
	return framebuffer.WIDTH, framebuffer.HEIGHT
}

var (
	overlayBack = color.RGBA{0x10, 0x10, 0x10, 0xe0}
	overlayText = color.RGBA{0xee, 0xee, 0xee, 0xff}
	overlayDim  = color.RGBA{0x9a, 0x9a, 0x9a, 0xff}
)

func (w *window) drawMenu(screen *ebiten.Image) {
	const left = framebuffer.WIDTH - 150
	face := basicfont.Face7x13
	ebitenutil.DrawRect(screen, left, 0, 150, framebuffer.HEIGHT, overlayBack)

	y := 28
	for i, handle := range w.host.menuOrder {
		entry := w.host.menu[handle]
		line := entry.title
		switch {
		case entry.checkbox && entry.value != 0:
			line = "[x] " + line
		case entry.checkbox:
			line = "[ ] " + line
		case len(entry.options) > 0:
			line += ": " + entry.options[entry.value]
		}
		c := overlayDim
		if i == w.menuSel {
			c = overlayText
			text.Draw(screen, ">", face, left+6, y, c)
		}
		text.Draw(screen, line, face, left+16, y, c)
		y += 18
	}
	if len(w.host.menuOrder) == 0 {
		text.Draw(screen, "paused", face, left+16, y, overlayText)
	}
	text.Draw(screen, "esc resumes", face, left+16,
		framebuffer.HEIGHT-10, overlayDim)
}

func (w *window) drawCrash(screen *ebiten.Image) {
	face := basicfont.Face7x13
	ebitenutil.DrawRect(screen, 0, 0,
		framebuffer.WIDTH, framebuffer.HEIGHT, overlayBack)
	text.Draw(screen, "game halted", face, 16, 32, overlayText)
	y := 56
	for _, line := range wrap(w.host.crash, 52) {
		text.Draw(screen, line, face, 16, y, overlayDim)
		y += 16
	}
	text.Draw(screen, "close the window to exit", face, 16,
		framebuffer.HEIGHT-12, overlayDim)
}

// wrap splits s into lines of at most width characters, breaking at spaces
// where possible.
func wrap(s string, width int) []string {
	var lines []string
	for len(s) > width {
		cut := strings.LastIndexByte(s[:width], ' ')
		if cut <= 0 {
			cut = width
		}
		lines = append(lines, s[:cut])
		s = strings.TrimLeft(s[cut:], " ")
	}
	return append(lines, s)
}

// screenshot saves the current scanout, as presented, next to the working
// directory's other artifacts.
func (w *window) screenshot() {
	buf := make([]uint8, framebuffer.WIDTH*framebuffer.HEIGHT*4)
	expand(w.host.scanout, w.host.lcd, buf)
	img := &image.RGBA{
		Pix:    buf,
		Stride: framebuffer.WIDTH * 4,
		Rect:   image.Rect(0, 0, framebuffer.WIDTH, framebuffer.HEIGHT),
	}
	name := "screenshot-" + time.Now().Format("20060102-150405") + ".png"
	f, err := os.Create(name)
	if err == nil {
		err = png.Encode(f, img)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		fmt.Fprintln(w.host.logw, "screenshot:", err)
		return
	}
	fmt.Fprintln(w.host.logw, "saved", name)
}
