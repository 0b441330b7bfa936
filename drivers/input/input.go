// Package input tracks frame-to-frame input state of the device.
//
// The firmware reports edges relative to its own bookkeeping, which advances
// on every query. Polling once per update gives all game code the same view
// of a frame's input.
package input

import (
	"github.com/clktmr/playdate/firmware"
	"github.com/clktmr/playdate/pd"
)

type state struct {
	down   firmware.Buttons
	crank  float32
	docked bool
	ax     float32
	ay     float32
	az     float32
}

type Input struct {
	sys           pd.System
	current, last state
	frac          float32
}

func New(p *pd.PD) *Input {
	return &Input{sys: p.System()}
}

// Poll snapshots the device state. Call it once at the top of every update.
func (c *Input) Poll() {
	c.last = c.current
	cur := &c.current
	cur.down, _, _ = c.sys.Buttons()
	cur.crank = c.sys.CrankAngle()
	cur.docked = c.sys.CrankDocked()
	cur.ax, cur.ay, cur.az = c.sys.Accelerometer()
}

func (c *Input) Down() firmware.Buttons {
	return c.current.down
}

func (c *Input) Changed() firmware.Buttons {
	return c.current.down ^ c.last.down
}

func (c *Input) Pressed() firmware.Buttons {
	return c.Changed() & c.current.down
}

func (c *Input) Released() firmware.Buttons {
	return c.Changed() & c.last.down
}

func (c *Input) EnableAccelerometer(enable bool) {
	c.sys.EnableAccelerometer(enable)
}

func (c *Input) Accelerometer() (x, y, z float32) {
	return c.current.ax, c.current.ay, c.current.az
}
