// Package sim runs a game against a desktop host instead of the device.
//
// Run opens a window showing the LCD at an integer scale and serves a fully
// populated capability table: drawing lands in a simulated frame, sound plays
// through the host's audio device, the File group works on real directories
// and the Network group speaks HTTP with the host's stack. Games built on
// package pd run unchanged.
//
// Keyboard and gamepad both steer the simulated device:
//
//	arrows, d-pad        d-pad
//	x, z                 the A and B buttons
//	[ and ]              turn the crank, shift turns faster
//	mouse wheel          turn the crank
//	right stick          point the crank
//	d                    dock or undock the crank
//	escape               open and close the pause menu
//	f11                  toggle fullscreen
//	f12                  save a screenshot
//
// Characters typed on keys without a binding are forwarded to the game as
// key events. Unfocusing the window locks the simulated device.
package sim
