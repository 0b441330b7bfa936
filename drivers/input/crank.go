package input

func (c *Input) CrankAngle() float32 {
	return c.current.crank
}

// CrankDelta returns the crank movement since the previous poll as the
// shortest way around the circle, positive for clockwise.
func (c *Input) CrankDelta() float32 {
	d := c.current.crank - c.last.crank
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

// Ticks converts crank movement into detents, per of them to a full turn.
// Fractional movement carries over, so per must not change between calls and
// Ticks must run at most once per poll.
func (c *Input) Ticks(per int) int {
	c.frac += c.CrankDelta() * float32(per) / 360
	n := int(c.frac)
	c.frac -= float32(n)
	return n
}

func (c *Input) Docked() bool {
	return c.current.docked && !c.last.docked
}

func (c *Input) Undocked() bool {
	return !c.current.docked && c.last.docked
}
