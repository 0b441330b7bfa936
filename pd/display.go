package pd

// Display adjusts how the LCD scans out the frame. None of the settings touch
// the frame's contents, they only change its presentation.
type Display struct{ pd *PD }

// Size returns the LCD dimensions in pixels.
func (d Display) Size() (w, h int) {
	return int(d.pd.api.Display.GetWidth()), int(d.pd.api.Display.GetHeight())
}

// SetRefreshRate caps the update callback at rate calls per second, at most
// 50. Zero runs the callback as fast as the frame can be pushed out.
func (d Display) SetRefreshRate(rate float32) {
	d.pd.api.Display.SetRefreshRate(rate)
}

// SetInverted swaps black and white on the way to the LCD.
func (d Display) SetInverted(inverted bool) {
	d.pd.api.Display.SetInverted(inverted)
}

// SetScale magnifies the top left part of the frame by factor 1, 2, 4 or 8.
// At scale n only the first WIDTH/n columns and HEIGHT/n rows are shown.
func (d Display) SetScale(scale int) {
	d.pd.api.Display.SetScale(uint32(scale))
}

// SetOffset moves the frame on the LCD. Uncovered cells stay black.
func (d Display) SetOffset(dx, dy int) {
	d.pd.api.Display.SetOffset(int32(dx), int32(dy))
}

// SetFlipped mirrors the frame on the given axes.
func (d Display) SetFlipped(x, y bool) {
	d.pd.api.Display.SetFlipped(x, y)
}
