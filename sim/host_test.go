package sim

import (
	"testing"
	"unsafe"

	"github.com/clktmr/playdate/firmware"
	"github.com/clktmr/playdate/framebuffer"
)

func newTestHost(t *testing.T) *host {
	t.Helper()
	cfg := Config{BundleDir: t.TempDir(), DataDir: t.TempDir(), Mute: true}
	cfg.setDefaults()
	h := newHost(cfg)
	t.Cleanup(h.close)
	return h
}

func TestRealloc(t *testing.T) {
	h := newTestHost(t)
	alloc := h.api.System.Realloc

	p := alloc(nil, 16)
	if p == nil {
		t.Fatal("allocation failed")
	}
	buf := unsafe.Slice((*byte)(p), 16)
	buf[0], buf[15] = 0xaa, 0x55

	// Growing preserves the old contents.
	p = alloc(p, 64)
	buf = unsafe.Slice((*byte)(p), 64)
	if buf[0] != 0xaa || buf[15] != 0x55 {
		t.Fatalf("contents lost, got %#x %#x", buf[0], buf[15])
	}

	if alloc(p, 0) != nil {
		t.Fatal("free returned memory")
	}
	if len(h.heap) != 0 {
		t.Fatalf("expected an empty heap, got %v blocks", len(h.heap))
	}
}

func TestButtonEdges(t *testing.T) {
	h := newTestHost(t)
	state := h.api.System.GetButtonState

	h.held = firmware.ButtonA | firmware.ButtonLeft
	current, pushed, released := state()
	if current != firmware.ButtonA|firmware.ButtonLeft || pushed != current || released != 0 {
		t.Fatalf("unexpected edges %v %v %v", current, pushed, released)
	}

	// Held buttons stop reporting as pushed.
	_, pushed, released = state()
	if pushed != 0 || released != 0 {
		t.Fatalf("unexpected edges %v %v", pushed, released)
	}

	h.held = firmware.ButtonLeft
	_, pushed, released = state()
	if pushed != 0 || released != firmware.ButtonA {
		t.Fatalf("unexpected edges %v %v", pushed, released)
	}
}

func TestCrank(t *testing.T) {
	h := newTestHost(t)

	h.crank = 450
	if got := h.api.System.GetCrankAngle(); got != 90 {
		t.Fatalf("expected 90, got %v", got)
	}
	h.crank = -90
	if got := h.api.System.GetCrankAngle(); got != 270 {
		t.Fatalf("expected 270, got %v", got)
	}

	if got := h.api.System.GetCrankChange(); got != -90 {
		t.Fatalf("expected the full turn since start, got %v", got)
	}
	h.crank += 30
	if got := h.api.System.GetCrankChange(); got != 30 {
		t.Fatalf("expected 30, got %v", got)
	}
	if got := h.api.System.GetCrankChange(); got != 0 {
		t.Fatalf("expected no movement, got %v", got)
	}
}

func TestDirtyRowFlush(t *testing.T) {
	h := newTestHost(t)
	gfx := h.api.Graphics

	gfx.FillRect(0, 10, 16, 2, firmware.ColorWhite)
	if h.dirtyLo != 10 || h.dirtyHi != 11 {
		t.Fatalf("unexpected dirty range %v..%v", h.dirtyLo, h.dirtyHi)
	}
	if h.scanout.Pix[10*framebuffer.STRIDE] != 0 {
		t.Fatal("scanout updated before flush")
	}
	h.flush()
	if h.scanout.Pix[10*framebuffer.STRIDE] != 0xff {
		t.Fatal("dirty row not flushed")
	}
	if h.dirtyLo <= h.dirtyHi {
		t.Fatal("dirty range not reset")
	}

	// Rows written without marking are never scanned out.
	h.frame.Set(0, 100, framebuffer.White)
	h.flush()
	if h.scanout.Pix[100*framebuffer.STRIDE] != 0 {
		t.Fatal("unmarked row flushed")
	}
	gfx.MarkUpdatedRows(100, 100)
	h.flush()
	if h.scanout.Pix[100*framebuffer.STRIDE] == 0 {
		t.Fatal("marked row not flushed")
	}

	// Display pushes everything at once.
	h.frame.Set(0, 200, framebuffer.White)
	gfx.Display()
	if h.scanout.Pix[200*framebuffer.STRIDE] == 0 {
		t.Fatal("display skipped a row")
	}
}

func TestDrawPrimitivesMark(t *testing.T) {
	h := newTestHost(t)
	gfx := h.api.Graphics

	gfx.DrawLine(0, 50, 100, 60, 1, firmware.ColorWhite)
	if h.dirtyLo != 50 || h.dirtyHi != 60 {
		t.Fatalf("unexpected dirty range %v..%v", h.dirtyLo, h.dirtyHi)
	}
	h.clean()

	gfx.FillEllipse(10, 20, 40, 30, 0, 0, firmware.ColorBlack)
	if h.dirtyLo < 20 || h.dirtyHi > 49 || h.dirtyLo > h.dirtyHi {
		t.Fatalf("unexpected dirty range %v..%v", h.dirtyLo, h.dirtyHi)
	}
	h.clean()

	// Clipped draws never mark rows outside the panel.
	gfx.FillRect(0, -20, 10, 500, firmware.ColorWhite)
	if h.dirtyLo != 0 || h.dirtyHi != framebuffer.HEIGHT-1 {
		t.Fatalf("unexpected dirty range %v..%v", h.dirtyLo, h.dirtyHi)
	}
}

func TestMenuItems(t *testing.T) {
	h := newTestHost(t)
	sys := h.api.System

	var fired []uintptr
	callback := func(item uintptr) { fired = append(fired, item) }

	plain := sys.AddMenuItem("restart", callback)
	check := sys.AddCheckmarkMenuItem("music", 1, callback)
	opts := sys.AddOptionsMenuItem("mode", []string{"easy", "hard", "wild"}, callback)
	if plain == 0 || check == 0 || opts == 0 {
		t.Fatal("menu items not added")
	}
	if sys.AddMenuItem("overflow", nil) != 0 {
		t.Fatal("expected the fourth item to be rejected")
	}

	// Choosing toggles checkmarks and advances options before the
	// callback runs.
	h.choose(check)
	if sys.GetMenuItemValue(check) != 0 {
		t.Fatal("checkmark not toggled")
	}
	h.choose(opts)
	h.choose(opts)
	if sys.GetMenuItemValue(opts) != 2 {
		t.Fatalf("expected option 2, got %v", sys.GetMenuItemValue(opts))
	}
	h.choose(opts)
	if sys.GetMenuItemValue(opts) != 0 {
		t.Fatal("options didn't wrap")
	}
	h.choose(plain)
	want := []uintptr{check, opts, opts, opts, plain}
	if len(fired) != len(want) {
		t.Fatalf("expected %v callbacks, got %v", len(want), len(fired))
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("callback %v: expected handle %v, got %v", i, want[i], fired[i])
		}
	}

	sys.SetMenuItemValue(check, 1)
	if sys.GetMenuItemValue(check) != 1 {
		t.Fatal("value not set")
	}

	sys.RemoveMenuItem(plain)
	if len(h.menuOrder) != 2 {
		t.Fatalf("expected 2 items, got %v", len(h.menuOrder))
	}
	if sys.AddMenuItem("again", nil) == 0 {
		t.Fatal("slot not freed")
	}
}

func TestFailKeepsFirst(t *testing.T) {
	h := newTestHost(t)
	h.fail("out of memory")
	h.fail("later")
	if h.crash != "out of memory" {
		t.Fatalf("unexpected crash %q", h.crash)
	}
}

func TestTimeSources(t *testing.T) {
	h := newTestHost(t)
	sys := h.api.System

	ms := sys.GetCurrentTimeMilliseconds()
	if sys.GetCurrentTimeMilliseconds() < ms {
		t.Fatal("clock went backwards")
	}
	sys.ResetElapsedTime()
	if got := sys.GetElapsedTime(); got < 0 || got > 1 {
		t.Fatalf("unexpected elapsed time %v", got)
	}
	if sys.GetBatteryPercentage() != 100 {
		t.Fatal("a desktop host always has wall power")
	}
}
