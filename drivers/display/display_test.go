package display

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/clktmr/playdate/framebuffer"
	"github.com/clktmr/playdate/pd"
	pdtesting "github.com/clktmr/playdate/testing"
)

func TestMain(m *testing.M) { pdtesting.TestMain(m) }

var host *pdtesting.Host

func setup(t *testing.T) (*pd.PD, *pdtesting.Host) {
	t.Helper()
	if host == nil {
		host = pdtesting.NewHost()
		if _, err := pd.Init(host.API); err != nil {
			t.Fatal(err)
		}
	}
	host.Frame.Fill(host.Frame.Bounds(), framebuffer.Black)
	host.Dirty = nil
	return pd.Get(), host
}

func TestFill(t *testing.T) {
	p, h := setup(t)
	d := NewDisplay(p)

	d.SetColor(color.White)
	d.Fill(image.Rect(10, 2, 30, 8))

	if got := h.Frame.At(10, 2); got != framebuffer.White {
		t.Errorf("expected %v, got %v", framebuffer.White, got)
	}
	if got := h.Frame.At(29, 7); got != framebuffer.White {
		t.Errorf("expected %v, got %v", framebuffer.White, got)
	}
	if got := h.Frame.At(9, 2); got != framebuffer.Black {
		t.Errorf("expected %v, got %v", framebuffer.Black, got)
	}
	if got := h.Frame.At(10, 8); got != framebuffer.Black {
		t.Errorf("expected %v, got %v", framebuffer.Black, got)
	}

	if len(h.Dirty) != 0 {
		t.Fatalf("rows marked before flush: %v", h.Dirty)
	}
	d.Flush()
	if len(h.Dirty) != 1 || h.Dirty[0] != [2]int{2, 7} {
		t.Errorf("expected rows [2 7], got %v", h.Dirty)
	}

	// Nothing touched since the last flush, nothing to mark.
	d.Flush()
	if len(h.Dirty) != 1 {
		t.Errorf("expected no new rows, got %v", h.Dirty)
	}
}

func TestDrawClipped(t *testing.T) {
	p, h := setup(t)
	d := NewDisplay(p)

	d.Draw(image.Rect(-10, -10, 5, 5), image.NewUniform(color.White),
		image.Point{}, nil, image.Point{}, draw.Src)

	if got := h.Frame.At(0, 0); got != framebuffer.White {
		t.Errorf("expected %v, got %v", framebuffer.White, got)
	}
	d.Flush()
	if len(h.Dirty) != 1 || h.Dirty[0] != [2]int{0, 4} {
		t.Errorf("expected rows [0 4], got %v", h.Dirty)
	}
}

func TestDrawMasked(t *testing.T) {
	p, h := setup(t)
	d := NewDisplay(p)

	mask := image.NewAlpha(image.Rect(0, 0, 2, 1))
	mask.SetAlpha(0, 0, color.Alpha{0xff})

	d.Draw(image.Rect(100, 100, 102, 101), image.NewUniform(color.White),
		image.Point{}, mask, image.Point{}, draw.Over)

	if got := h.Frame.At(100, 100); got != framebuffer.White {
		t.Errorf("expected %v, got %v", framebuffer.White, got)
	}
	if got := h.Frame.At(101, 100); got != framebuffer.Black {
		t.Errorf("expected %v, got %v", framebuffer.Black, got)
	}
}

func TestTransparentSrc(t *testing.T) {
	p, h := setup(t)
	d := NewDisplay(p)

	d.SetColor(color.White)
	d.Fill(image.Rect(0, 0, 8, 1))

	// Src with a transparent source clears back to black.
	d.Draw(image.Rect(0, 0, 8, 1), image.NewUniform(color.Transparent),
		image.Point{}, nil, image.Point{}, draw.Src)
	if got := h.Frame.At(0, 0); got != framebuffer.Black {
		t.Errorf("expected %v, got %v", framebuffer.Black, got)
	}
}

func TestFrameClock(t *testing.T) {
	p, h := setup(t)
	d := NewDisplay(p)

	h.AdvanceTime(40 * time.Millisecond)
	d.Flush()
	if got := d.Duration(); got != 40*time.Millisecond {
		t.Errorf("expected %v, got %v", 40*time.Millisecond, got)
	}
	if got := d.FPS(); got != 25.0 {
		t.Errorf("expected 25 fps, got %v", got)
	}
}

func TestSetDir(t *testing.T) {
	p, _ := setup(t)
	d := NewDisplay(p)

	want := image.Rect(0, 0, framebuffer.WIDTH, framebuffer.HEIGHT)
	for _, dir := range []int{0, 1, 2, 3} {
		if got := d.SetDir(dir); got != want {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}
