package testing

import (
	"image"
	"math"
	"time"
	"unsafe"

	"github.com/clktmr/playdate/firmware"
	"github.com/clktmr/playdate/framebuffer"
)

// HaltError is the panic raised by the scripted crash screen. On hardware
// System.Error never returns, tests observe a halt by recovering this value.
type HaltError struct {
	Msg string
}

func (e *HaltError) Error() string { return "halt: " + e.Msg }

// Host simulates the device. NewHost returns it with a fully populated
// capability table whose entries record what the game does and serve
// scripted input, files and responses.
//
// Exported fields may be set before handing the table to the code under
// test and inspected afterwards. Like the real table, the host is not safe
// for concurrent use.
type Host struct {
	API *firmware.API

	Logs   []string     // console output, one entry per log call
	Halted *HaltError   // set by the first crash screen message
	Update func() int32 // the update callback registered by the game

	// Frame is the working frame the game draws into.
	Frame *framebuffer.Frame
	// Scanout receives a copy of Frame on every push to the LCD.
	Scanout *framebuffer.Frame
	// Dirty records the row ranges reported by the game.
	Dirty [][2]int
	// Flushes counts explicit frame pushes.
	Flushes int

	// LCD state as last set by the game.
	RefreshRate float32
	Inverted    bool
	Scale       int
	Offset      image.Point
	Flipped     [2]bool

	// HeapLimit caps the total bytes served by Realloc, zero means
	// unlimited.
	HeapLimit uintptr

	// Device state served to the game.
	BatteryLevel     float32
	BatteryVolts     float32
	Lang             firmware.Language
	Peripherals      firmware.Peripherals
	AutoLockDisabled bool
	CrankSounds      bool

	now     uint32
	elapsed uint32

	held, prev  firmware.Buttons
	crank, read float32
	docked      bool
	accel       [3]float32

	menu       map[uintptr]*menuEntry
	menuOrder  []uintptr
	nextHandle uintptr

	allocs map[unsafe.Pointer][]byte
	used   uintptr

	files  map[string]*hostFile
	open   map[uintptr]*hostOpen
	nextFD uintptr
	// SpaceLeft caps the filesystem size in bytes, zero means unlimited.
	SpaceLeft int

	samples map[uintptr]*hostSample
	players map[uintptr]*hostPlayer
	// Outputs records the active sound outputs, headphone and speaker.
	Outputs [2]bool
	// SoundLengths scripts the duration in seconds reported for loaded
	// sound files, by path.
	SoundLengths map[string]float32

	conns map[uintptr]*hostConn
	// Requests records every request issued by the game.
	Requests []HostRequest
	// Responses scripts the reply served for a request path.
	Responses map[string]*HostResponse
	// Wifi is the association status served to the game.
	Wifi firmware.WifiStatus
	// Access is the reply served for access requests.
	Access firmware.AccessReply
	// NetEnabled records the last SetEnabled call.
	NetEnabled bool
}

type menuEntry struct {
	title    string
	options  []string
	checkbox bool
	value    int32
	callback func(item uintptr)
}

func NewHost() *Host {
	h := &Host{
		Frame:        framebuffer.New(image.Rect(0, 0, framebuffer.WIDTH, framebuffer.HEIGHT)),
		Scanout:      framebuffer.New(image.Rect(0, 0, framebuffer.WIDTH, framebuffer.HEIGHT)),
		RefreshRate:  30,
		Scale:        1,
		BatteryLevel: 100,
		BatteryVolts: 4.2,
		Access:       firmware.AccessAllow,
		Wifi:         firmware.WifiConnected,
		menu:         make(map[uintptr]*menuEntry),
		allocs:       make(map[unsafe.Pointer][]byte),
		files:        make(map[string]*hostFile),
		open:         make(map[uintptr]*hostOpen),
		samples:      make(map[uintptr]*hostSample),
		players:      make(map[uintptr]*hostPlayer),
		conns:        make(map[uintptr]*hostConn),
		Responses:    make(map[string]*HostResponse),
		SoundLengths: make(map[string]float32),
	}
	h.API = &firmware.API{
		System: &firmware.System{
			Realloc:           h.realloc,
			Error:             h.error,
			LogToConsole:      func(msg string) { h.Logs = append(h.Logs, msg) },
			SetUpdateCallback: func(update func() int32) { h.Update = update },

			GetButtonState:        h.buttonState,
			GetCrankAngle:         h.crankAngle,
			GetCrankChange:        h.crankChange,
			IsCrankDocked:         func() bool { return h.docked },
			SetCrankSoundsEnabled: func(enabled bool) { h.CrankSounds = enabled },

			SetPeripheralsEnabled: func(mask firmware.Peripherals) { h.Peripherals = mask },
			GetAccelerometer: func() (x, y, z float32) {
				return h.accel[0], h.accel[1], h.accel[2]
			},

			GetCurrentTimeMilliseconds: func() uint32 { return h.now },
			GetElapsedTime:             func() float32 { return float32(h.now-h.elapsed) / 1000 },
			ResetElapsedTime:           func() { h.elapsed = h.now },

			GetBatteryPercentage: func() float32 { return h.BatteryLevel },
			GetBatteryVoltage:    func() float32 { return h.BatteryVolts },
			GetLanguage:          func() firmware.Language { return h.Lang },
			SetAutoLockDisabled:  func(disable bool) { h.AutoLockDisabled = disable },
			DrawFPS:              func(x, y int32) {},

			AddMenuItem: func(title string, callback func(uintptr)) uintptr {
				return h.addMenu(&menuEntry{title: title, callback: callback})
			},
			AddCheckmarkMenuItem: func(title string, value int32, callback func(uintptr)) uintptr {
				return h.addMenu(&menuEntry{
					title: title, checkbox: true,
					value: value, callback: callback,
				})
			},
			AddOptionsMenuItem: func(title string, options []string, callback func(uintptr)) uintptr {
				return h.addMenu(&menuEntry{
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
			SetRefreshRate: func(rate float32) { h.RefreshRate = rate },
			SetInverted:    func(inverted bool) { h.Inverted = inverted },
			SetScale:       func(scale uint32) { h.Scale = int(scale) },
			SetOffset:      func(dx, dy int32) { h.Offset = image.Pt(int(dx), int(dy)) },
			SetFlipped:     func(x, y bool) { h.Flipped = [2]bool{x, y} },
		},
		Graphics: &firmware.Graphics{
			Clear:           h.clear,
			GetFrame:        func() []byte { return h.Frame.Pix },
			GetDisplayFrame: func() []byte { return h.Scanout.Pix },
			MarkUpdatedRows: func(start, end int32) {
				h.Dirty = append(h.Dirty, [2]int{int(start), int(end)})
			},
			Display: func() {
				copy(h.Scanout.Pix, h.Frame.Pix)
				h.Flushes++
			},

			FillRect:    h.fillRect,
			DrawRect:    h.drawRect,
			DrawLine:    h.drawLine,
			FillEllipse: h.fillEllipse,
		},
		File:    h.fileAPI(),
		Sound:   h.soundAPI(),
		Network: h.netAPI(),
	}
	return h
}

// error shows the crash screen. The real one never returns, the scripted one
// panics with a HaltError instead.
func (h *Host) error(msg string) {
	if h.Halted == nil {
		h.Halted = &HaltError{Msg: msg}
	}
	panic(h.Halted)
}

// realloc hands out host memory. Blocks stay alive until freed or resized,
// like the firmware's heap.
func (h *Host) realloc(ptr unsafe.Pointer, size uintptr) unsafe.Pointer {
	if size == 0 {
		if ptr != nil {
			h.used -= uintptr(len(h.allocs[ptr]))
			delete(h.allocs, ptr)
		}
		return nil
	}
	var old []byte
	if ptr != nil {
		old = h.allocs[ptr]
	}
	if h.HeapLimit != 0 && h.used-uintptr(len(old))+size > h.HeapLimit {
		return nil
	}
	buf := make([]byte, size)
	copy(buf, old)
	if ptr != nil {
		delete(h.allocs, ptr)
		h.used -= uintptr(len(old))
	}
	p := unsafe.Pointer(&buf[0])
	h.allocs[p] = buf
	h.used += size
	return p
}

// AdvanceTime moves the millisecond clock forward.
func (h *Host) AdvanceTime(d time.Duration) {
	h.now += uint32(d.Milliseconds())
}

// Press adds buttons to the held set. The edge shows up in the next button
// state query.
func (h *Host) Press(b firmware.Buttons) { h.held |= b }

// Release removes buttons from the held set.
func (h *Host) Release(b firmware.Buttons) { h.held &^= b }

// Crank turns the crank by the given angle, negative values turn it
// backwards.
func (h *Host) Crank(degrees float32) { h.crank += degrees }

// Dock docks or undocks the crank.
func (h *Host) Dock(docked bool) { h.docked = docked }

// Accelerate sets the readings served by the accelerometer, in units of
// standard gravity.
func (h *Host) Accelerate(x, y, z float32) { h.accel = [3]float32{x, y, z} }

func (h *Host) buttonState() (current, pushed, released firmware.Buttons) {
	current = h.held
	pushed = h.held &^ h.prev
	released = h.prev &^ h.held
	h.prev = h.held
	return
}

func (h *Host) crankAngle() float32 {
	a := float32(math.Mod(float64(h.crank), 360))
	if a < 0 {
		a += 360
	}
	return a
}

func (h *Host) crankChange() float32 {
	change := h.crank - h.read
	h.read = h.crank
	return change
}

func (h *Host) addMenu(entry *menuEntry) uintptr {
	if len(h.menu) >= 3 {
		return 0
	}
	h.nextHandle++
	h.menu[h.nextHandle] = entry
	h.menuOrder = append(h.menuOrder, h.nextHandle)
	return h.nextHandle
}

func (h *Host) removeMenu(item uintptr) {
	delete(h.menu, item)
	for i, v := range h.menuOrder {
		if v == item {
			h.menuOrder = append(h.menuOrder[:i], h.menuOrder[i+1:]...)
			break
		}
	}
}

func (h *Host) menuValue(item uintptr) int32 {
	if entry := h.menu[item]; entry != nil {
		return entry.value
	}
	return 0
}

func (h *Host) setMenuValue(item uintptr, value int32) {
	if entry := h.menu[item]; entry != nil {
		entry.value = value
	}
}

// MenuTitles returns the pause menu entries in the order they were added.
func (h *Host) MenuTitles() []string {
	titles := make([]string, 0, len(h.menuOrder))
	for _, handle := range h.menuOrder {
		titles = append(titles, h.menu[handle].title)
	}
	return titles
}

// ChooseMenu acts like the user selecting the named pause menu entry:
// checkmarks toggle, options advance to the next one, then the item's
// callback runs. It reports whether the entry exists.
func (h *Host) ChooseMenu(title string) bool {
	for _, handle := range h.menuOrder {
		entry := h.menu[handle]
		if entry.title != title {
			continue
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
		return true
	}
	return false
}

func (h *Host) plot(c firmware.SolidColor) func(x, y int) {
	switch c {
	case firmware.ColorWhite:
		return func(x, y int) { h.Frame.Set(x, y, framebuffer.White) }
	case firmware.ColorBlack:
		return func(x, y int) { h.Frame.Set(x, y, framebuffer.Black) }
	case firmware.ColorXOR:
		return h.Frame.Invert
	}
	return func(x, y int) {}
}

func (h *Host) clear(c firmware.SolidColor) {
	h.fillRect(0, 0, framebuffer.WIDTH, framebuffer.HEIGHT, c)
}

func (h *Host) fillRect(x, y, w, d int32, c firmware.SolidColor) {
	r := image.Rect(int(x), int(y), int(x+w), int(y+d))
	switch c {
	case firmware.ColorWhite:
		h.Frame.Fill(r, framebuffer.White)
	case firmware.ColorBlack:
		h.Frame.Fill(r, framebuffer.Black)
	case firmware.ColorXOR:
		h.Frame.Xor(r)
	}
}

func (h *Host) drawRect(x, y, w, d int32, c firmware.SolidColor) {
	h.fillRect(x, y, w, 1, c)
	h.fillRect(x, y+d-1, w, 1, c)
	h.fillRect(x, y+1, 1, d-2, c)
	h.fillRect(x+w-1, y+1, 1, d-2, c)
}

func (h *Host) drawLine(x1, y1, x2, y2, width int32, c firmware.SolidColor) {
	framebuffer.Line(image.Pt(int(x1), int(y1)), image.Pt(int(x2), int(y2)),
		int(width), h.plot(c))
}

func (h *Host) fillEllipse(x, y, w, d int32, startAngle, endAngle float32, c firmware.SolidColor) {
	framebuffer.Ellipse(image.Rect(int(x), int(y), int(x+w), int(y+d)),
		startAngle, endAngle, h.plot(c))
}
