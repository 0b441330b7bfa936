package pd

import "fmt"

// Set once the crash path is entered. Keeps a panic raised by the firmware's
// Error from being treated like a game panic on its way out.
var halting bool

// halt reports an unrecoverable condition through the firmware's crash screen
// and stops execution. On the device System.Error does not return. If a host
// implementation returns anyway there is no safe state left to resume, so
// halt panics into the host instead.
func halt(format string, args ...any) {
	msg := "fatal: " + fmt.Sprintf(format, args...)
	if !halting {
		halting = true
		if current != nil && current.api.System.Error != nil {
			current.api.System.Error(msg)
		}
	}
	panic(msg)
}

// guard resolves a panic escaping game code to a halt. Must be deferred by
// every trampoline, nothing may unwind into the firmware.
func guard(context string) {
	if r := recover(); r != nil {
		if halting {
			// Raised below Error, keep unwinding.
			panic(r)
		}
		halt("panic in %s: %v", context, r)
	}
}
