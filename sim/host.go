package sim

import (
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"time"
	"unsafe"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/clktmr/playdate/firmware"
	"github.com/clktmr/playdate/framebuffer"
)

// The device caps the update callback at 50 Hz and defaults to 30.
const (
	defaultRefreshRate = 30
	maxRefreshRate     = 50
)

// host owns the device state behind the capability table. All of it is
// confined to the game loop goroutine, except that the sound mixer and the
// network transfers guard their own state with locks.
type host struct {
	api *firmware.API
	cfg Config

	crash string
	logw  io.Writer

	// Realloc blocks, keyed by their base address to keep them alive.
	heap map[unsafe.Pointer][]byte

	held, prev  firmware.Buttons
	crank, read float32
	docked      bool
	accel       [3]float32
	peripherals firmware.Peripherals
	crankSounds bool

	start time.Time
	epoch time.Time

	// frame is drawn into by the game, scanout is what the window shows.
	// The dirty rows are the inclusive range copied on the next flush,
	// empty while dirtyLo > dirtyHi.
	frame            *framebuffer.Frame
	scanout          *framebuffer.Frame
	dirtyLo, dirtyHi int

	lcd      lcdState
	autoLock bool
	lang     firmware.Language

	menu       map[uintptr]*menuItem
	menuOrder  []uintptr
	nextHandle uintptr

	update func() int32

	files *fileHost
	net   *netHost
	snd   *soundHost
}

type menuItem struct {
	title    string
	options  []string
	checkbox bool
	value    int32
	callback func(item uintptr)
}

func newHost(cfg Config) *host {
	h := &host{
		cfg:     cfg,
		logw:    os.Stdout,
		heap:    make(map[unsafe.Pointer][]byte),
		start:   time.Now(),
		frame:   framebuffer.New(image.Rect(0, 0, framebuffer.WIDTH, framebuffer.HEIGHT)),
		scanout: framebuffer.New(image.Rect(0, 0, framebuffer.WIDTH, framebuffer.HEIGHT)),
		lcd:     lcdState{scale: 1},
		menu:    make(map[uintptr]*menuItem),
	}
	h.epoch = h.start
	h.clean()
	h.files = newFileHost(cfg.BundleDir, cfg.DataDir)
	h.net = newNetHost(cfg.Offline)
	h.snd = newSoundHost(h.files, cfg.Mute, h.logw)

	h.api = &firmware.API{
		System: &firmware.System{
			Realloc:           h.realloc,
			Error:             h.fail,
			LogToConsole:      func(msg string) { fmt.Fprintln(h.logw, msg) },
			SetUpdateCallback: func(update func() int32) { h.update = update },

			GetButtonState:        h.buttonState,
			GetCrankAngle:         func() float32 { return crankAngle(h.crank) },
			GetCrankChange:        h.crankChange,
			IsCrankDocked:         func() bool { return h.docked },
			SetCrankSoundsEnabled: func(enabled bool) { h.crankSounds = enabled },

			SetPeripheralsEnabled: func(mask firmware.Peripherals) { h.peripherals = mask },
			GetAccelerometer: func() (x, y, z float32) {
				return h.accel[0], h.accel[1], h.accel[2]
			},

			GetCurrentTimeMilliseconds: func() uint32 {
				return uint32(time.Since(h.start).Milliseconds())
			},
			GetElapsedTime: func() float32 {
				return float32(time.Since(h.epoch).Seconds())
			},
			ResetElapsedTime: func() { h.epoch = time.Now() },

			// A desktop host has wall power.
			GetBatteryPercentage: func() float32 { return 100 },
			GetBatteryVoltage:    func() float32 { return 4.2 },
			GetLanguage:          func() firmware.Language { return h.lang },
			SetAutoLockDisabled:  func(disable bool) { h.autoLock = disable },
			DrawFPS:              h.drawFPS,

			AddMenuItem: func(title string, callback func(uintptr)) uintptr {
				return h.addMenu(&menuItem{title: title, callback: callback})
			},
			AddCheckmarkMenuItem: func(title string, value int32, callback func(uintptr)) uintptr {
				return h.addMenu(&menuItem{
					title: title, checkbox: true,
					value: value, callback: callback,
				})
			},
			AddOptionsMenuItem: func(title string, options []string, callback func(uintptr)) uintptr {
				return h.addMenu(&menuItem{
					title: title, options: options, callback: callback,
				})
			},
			RemoveMenuItem:   h.removeMenu,
			GetMenuItemValue: h.menuValue,
			SetMenuItemValue: h.setMenuValue,
		},
		Display: &firmware.Display{
			GetWidth:       func() int32 { return framebuffer.WIDTH },
			GetHeight:      func() int32 { return framebuffer.HEIGHT },
			SetRefreshRate: h.setRefreshRate,
			SetInverted:    func(inverted bool) { h.lcd.inverted = inverted },
			SetScale:       h.setScale,
			SetOffset: func(dx, dy int32) {
				h.lcd.offset = image.Pt(int(dx), int(dy))
			},
			SetFlipped: func(x, y bool) { h.lcd.flip = [2]bool{x, y} },
		},
		Graphics: &firmware.Graphics{
			Clear:           h.clear,
			GetFrame:        func() []byte { return h.frame.Pix },
			GetDisplayFrame: func() []byte { return h.scanout.Pix },
			MarkUpdatedRows: func(start, end int32) { h.mark(int(start), int(end)) },
			Display:         func() { h.mark(0, framebuffer.HEIGHT-1); h.flush() },

			FillRect:    h.fillRect,
			DrawRect:    h.drawRect,
			DrawLine:    h.drawLine,
			FillEllipse: h.fillEllipse,
		},
		File:    h.files.api(),
		Sound:   h.snd.api(),
		Network: h.net.api(),
	}
	return h
}

func (h *host) close() {
	h.snd.close()
	h.net.close()
	h.files.close()
}

// fail shows the crash screen. The firmware's Error never returns, the
// host's returns into halt which panics the callback off the stack, trapped
// again by the window.
func (h *host) fail(msg string) {
	if h.crash == "" {
		h.crash = msg
		fmt.Fprintln(os.Stderr, "sim:", msg)
	}
}

// realloc hands out host memory. Blocks stay referenced until freed or
// resized, like the firmware's heap.
func (h *host) realloc(ptr unsafe.Pointer, size uintptr) unsafe.Pointer {
	if size == 0 {
		if ptr != nil {
			delete(h.heap, ptr)
		}
		return nil
	}
	buf := make([]byte, size)
	if ptr != nil {
		copy(buf, h.heap[ptr])
		delete(h.heap, ptr)
	}
	p := unsafe.Pointer(&buf[0])
	h.heap[p] = buf
	return p
}

func (h *host) buttonState() (current, pushed, released firmware.Buttons) {
	current = h.held
	pushed = h.held &^ h.prev
	released = h.prev &^ h.held
	h.prev = h.held
	return
}

// crankAngle folds an accumulated rotation into the 0 to 360 range.
func crankAngle(crank float32) float32 {
	a := float32(math.Mod(float64(crank), 360))
	if a < 0 {
		a += 360
	}
	return a
}

func (h *host) crankChange() float32 {
	change := h.crank - h.read
	h.read = h.crank
	return change
}

func (h *host) setRefreshRate(rate float32) {
	if rate <= 0 {
		ebiten.SetTPS(ebiten.SyncWithFPS)
		return
	}
	ebiten.SetTPS(int(min(rate, maxRefreshRate) + 0.5))
}

func (h *host) setScale(scale uint32) {
	switch scale {
	case 1, 2, 4, 8:
		h.lcd.scale = int(scale)
	}
}

func (h *host) addMenu(item *menuItem) uintptr {
	if len(h.menu) >= 3 {
		return 0
	}
	h.nextHandle++
	h.menu[h.nextHandle] = item
	h.menuOrder = append(h.menuOrder, h.nextHandle)
	return h.nextHandle
}

func (h *host) removeMenu(item uintptr) {
	delete(h.menu, item)
	for i, v := range h.menuOrder {
		if v == item {
			h.menuOrder = append(h.menuOrder[:i], h.menuOrder[i+1:]...)
			break
		}
	}
}

func (h *host) menuValue(item uintptr) int32 {
	if entry := h.menu[item]; entry != nil {
		return entry.value
	}
	return 0
}

func (h *host) setMenuValue(item uintptr, value int32) {
	if entry := h.menu[item]; entry != nil {
		entry.value = value
	}
}

// choose acts like the user selecting a pause menu entry: checkmarks toggle,
// options advance, then the item's callback runs.
func (h *host) choose(handle uintptr) {
	entry := h.menu[handle]
	if entry == nil {
		return
	}
	switch {
	case entry.checkbox:
		entry.value ^= 1
	case len(entry.options) > 0:
		entry.value = (entry.value + 1) % int32(len(entry.options))
	}
	if entry.callback != nil {
		entry.callback(handle)
	}
}

func (h *host) mark(lo, hi int) {
	lo, hi = max(lo, 0), min(hi, framebuffer.HEIGHT-1)
	if lo > hi {
		return
	}
	h.dirtyLo, h.dirtyHi = min(h.dirtyLo, lo), max(h.dirtyHi, hi)
}

func (h *host) clean() {
	h.dirtyLo, h.dirtyHi = framebuffer.HEIGHT, -1
}

// flush pushes the dirty rows of the working frame to the scanout, like the
// firmware does after each update callback.
func (h *host) flush() {
	if h.dirtyLo > h.dirtyHi {
		return
	}
	lo, hi := h.dirtyLo*framebuffer.STRIDE, (h.dirtyHi+1)*framebuffer.STRIDE
	copy(h.scanout.Pix[lo:hi], h.frame.Pix[lo:hi])
	h.clean()
}

func (h *host) drawFPS(x, y int32) {
	s := fmt.Sprintf("%.0f", ebiten.ActualTPS())
	h.mark(int(y), int(y)+textHeight-1)
	drawText(h.frame, int(x), int(y), s)
}

func (h *host) plot(c firmware.SolidColor) func(x, y int) {
	switch c {
	case firmware.ColorWhite:
		return func(x, y int) { h.mark(y, y); h.frame.Set(x, y, framebuffer.White) }
	case firmware.ColorBlack:
		return func(x, y int) { h.mark(y, y); h.frame.Set(x, y, framebuffer.Black) }
	case firmware.ColorXOR:
		return func(x, y int) { h.mark(y, y); h.frame.Invert(x, y) }
	}
	return func(x, y int) {}
}

func (h *host) clear(c firmware.SolidColor) {
	h.fillRect(0, 0, framebuffer.WIDTH, framebuffer.HEIGHT, c)
}

func (h *host) fillRect(x, y, w, d int32, c firmware.SolidColor) {
	r := image.Rect(int(x), int(y), int(x+w), int(y+d))
	switch c {
	case firmware.ColorWhite:
		h.frame.Fill(r, framebuffer.White)
	case firmware.ColorBlack:
		h.frame.Fill(r, framebuffer.Black)
	case firmware.ColorXOR:
		h.frame.Xor(r)
	default:
		return
	}
	h.mark(r.Min.Y, r.Max.Y-1)
}

func (h *host) drawRect(x, y, w, d int32, c firmware.SolidColor) {
	h.fillRect(x, y, w, 1, c)
	h.fillRect(x, y+d-1, w, 1, c)
	h.fillRect(x, y+1, 1, d-2, c)
	h.fillRect(x+w-1, y+1, 1, d-2, c)
}

func (h *host) drawLine(x1, y1, x2, y2, width int32, c firmware.SolidColor) {
	framebuffer.Line(image.Pt(int(x1), int(y1)), image.Pt(int(x2), int(y2)),
		int(width), h.plot(c))
}

func (h *host) fillEllipse(x, y, w, d int32, startAngle, endAngle float32, c firmware.SolidColor) {
	framebuffer.Ellipse(image.Rect(int(x), int(y), int(x+w), int(y+d)),
		startAngle, endAngle, h.plot(c))
}
