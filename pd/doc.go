// Package pd wraps the Playdate capability table with a safe, typed API and
// implements the callback dispatch that drives a game.
//
// The firmware owns all scheduling. It invokes one callback at a time on a
// single thread and expects every callback to return within the frame budget.
// Nothing in this package blocks, spawns goroutines or retains buffers passed
// across the firmware boundary.
//
// A game registers a factory with Register and forwards the firmware's entry
// point to EventHandler. The first event is always the init event, which
// claims the heap, stores the capability table and constructs the game
// object. From then on the firmware calls the update trampoline once per
// frame until the game returns Stop.
//
// Errors split into two kinds. Expected failures (a missing file, a closed
// connection) are returned as error values from the wrapper methods.
// Unrecoverable conditions (heap exhaustion, contract violations, a panic
// escaping game code) halt the process through the firmware's crash screen,
// there is no unwinding past a trampoline.
package pd
