package input

import (
	"testing"

	"github.com/clktmr/playdate/firmware"
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
	return pd.Get(), host
}

func TestButtonEdges(t *testing.T) {
	p, h := setup(t)
	c := New(p)

	h.Press(firmware.ButtonA | firmware.ButtonLeft)
	c.Poll()

	if got := c.Down(); got != firmware.ButtonA|firmware.ButtonLeft {
		t.Errorf("expected %v, got %v", firmware.ButtonA|firmware.ButtonLeft, got)
	}
	if got := c.Pressed(); got != firmware.ButtonA|firmware.ButtonLeft {
		t.Errorf("expected %v, got %v", firmware.ButtonA|firmware.ButtonLeft, got)
	}
	if got := c.Released(); got != 0 {
		t.Errorf("expected no releases, got %v", got)
	}

	// Still held, no new edges.
	c.Poll()
	if got := c.Pressed(); got != 0 {
		t.Errorf("expected no presses, got %v", got)
	}
	if got := c.Changed(); got != 0 {
		t.Errorf("expected no changes, got %v", got)
	}

	h.Release(firmware.ButtonA)
	c.Poll()
	if got := c.Released(); got != firmware.ButtonA {
		t.Errorf("expected %v, got %v", firmware.ButtonA, got)
	}
	if got := c.Down(); got != firmware.ButtonLeft {
		t.Errorf("expected %v, got %v", firmware.ButtonLeft, got)
	}

	h.Release(firmware.ButtonLeft)
	c.Poll()
}

func TestCrankDelta(t *testing.T) {
	p, h := setup(t)
	c := New(p)

	h.Dock(false)
	h.Crank(350)
	c.Poll()

	h.Crank(20)
	c.Poll()
	if got := c.CrankAngle(); got != 10 {
		t.Errorf("expected angle 10, got %v", got)
	}
	if got := c.CrankDelta(); got != 20 {
		t.Errorf("expected delta 20, got %v", got)
	}

	h.Crank(-30)
	c.Poll()
	if got := c.CrankDelta(); got != -30 {
		t.Errorf("expected delta -30, got %v", got)
	}
}

func TestCrankTicks(t *testing.T) {
	p, h := setup(t)
	c := New(p)

	h.Dock(false)
	c.Poll()

	// Four detents per turn, 45 degrees is half a detent.
	h.Crank(45)
	c.Poll()
	if got := c.Ticks(4); got != 0 {
		t.Errorf("expected 0 ticks, got %v", got)
	}
	h.Crank(45)
	c.Poll()
	if got := c.Ticks(4); got != 1 {
		t.Errorf("expected 1 tick, got %v", got)
	}

	h.Crank(-90)
	c.Poll()
	if got := c.Ticks(4); got != -1 {
		t.Errorf("expected -1 tick, got %v", got)
	}
}

func TestDockEdges(t *testing.T) {
	p, h := setup(t)
	c := New(p)

	h.Dock(true)
	c.Poll()
	c.Poll()
	if c.Docked() {
		t.Error("expected no dock edge while resting")
	}

	h.Dock(false)
	c.Poll()
	if !c.Undocked() {
		t.Error("expected an undock edge")
	}

	h.Dock(true)
	c.Poll()
	if !c.Docked() {
		t.Error("expected a dock edge")
	}
	if c.Undocked() {
		t.Error("expected no undock edge")
	}
}

func TestAccelerometer(t *testing.T) {
	p, h := setup(t)
	c := New(p)

	c.EnableAccelerometer(true)
	h.Accelerate(0.5, -0.25, 1)
	c.Poll()

	x, y, z := c.Accelerometer()
	if x != 0.5 || y != -0.25 || z != 1 {
		t.Errorf("expected (0.5 -0.25 1), got (%v %v %v)", x, y, z)
	}
	c.EnableAccelerometer(false)
}
