//go:build !pddebug

// Package debug provides assertions that can be enabled with the pddebug
// build tag or will otherwise compile to no-ops.
//
// This is not considered idiomatic Go, but catches contract violations early
// on a device that has no debugger attached.
package debug

// Guard more expensive checks (i.e. anything that allocates or walks a data
// structure) with `if debug.Enabled {...}`, otherwise they can't be removed
// in release builds.
const Enabled = false

// Assert panics if b is false.
func Assert(b bool, message string) {}

// Assertf panics with a formatted message if b is false.
func Assertf(b bool, format string, args ...any) {}

// AssertErrNil panics if err is not nil.
func AssertErrNil(err error) {}
