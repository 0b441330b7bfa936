package pd

import (
	"github.com/clktmr/playdate/firmware"
)

// System exposes input, clocks and device state.
type System struct{ pd *PD }

// Buttons returns the currently held buttons and the ones pushed or released
// since the last frame.
func (s System) Buttons() (current, pushed, released firmware.Buttons) {
	return s.pd.api.System.GetButtonState()
}

// CrankAngle returns the crank position in degrees, 0 pointing up, growing
// clockwise.
func (s System) CrankAngle() float32 { return s.pd.api.System.GetCrankAngle() }

// CrankChange returns the degrees the crank moved since the last frame.
func (s System) CrankChange() float32 { return s.pd.api.System.GetCrankChange() }

func (s System) CrankDocked() bool { return s.pd.api.System.IsCrankDocked() }

// SetCrankSounds toggles the firmware's dock and undock sounds.
func (s System) SetCrankSounds(enabled bool) {
	s.pd.api.System.SetCrankSoundsEnabled(enabled)
}

// EnableAccelerometer powers the accelerometer. It needs a frame before the
// first readings arrive.
func (s System) EnableAccelerometer(enable bool) {
	mask := firmware.PeripheralNone
	if enable {
		mask = firmware.PeripheralAccelerometer
	}
	s.pd.api.System.SetPeripheralsEnabled(mask)
}

// Accelerometer returns acceleration in units of standard gravity.
func (s System) Accelerometer() (x, y, z float32) {
	return s.pd.api.System.GetAccelerometer()
}

// Millis returns milliseconds since an arbitrary point in the past, wrapping
// at 2^32.
func (s System) Millis() uint32 {
	return s.pd.api.System.GetCurrentTimeMilliseconds()
}

// ElapsedTime returns the seconds since the last ResetElapsedTime, with
// sub-millisecond resolution.
func (s System) ElapsedTime() float32 { return s.pd.api.System.GetElapsedTime() }

func (s System) ResetElapsedTime() { s.pd.api.System.ResetElapsedTime() }

// Battery returns the charge in percent and the cell voltage.
func (s System) Battery() (percent, voltage float32) {
	return s.pd.api.System.GetBatteryPercentage(), s.pd.api.System.GetBatteryVoltage()
}

func (s System) Language() firmware.Language { return s.pd.api.System.GetLanguage() }

// SetAutoLockDisabled keeps the device awake while the game idles on input.
func (s System) SetAutoLockDisabled(disable bool) {
	s.pd.api.System.SetAutoLockDisabled(disable)
}

// DrawFPS lets the firmware draw its frame rate gauge at the given position.
func (s System) DrawFPS(x, y int) {
	s.pd.api.System.DrawFPS(int32(x), int32(y))
}
