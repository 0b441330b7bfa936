package pd

import "errors"

// Stop is returned from Game.Update to end the update loop. The firmware
// keeps the process alive until it decides to unload it, further updates are
// absorbed.
var Stop = errors.New("pd: stop")

// Game is what an application implements to be driven by the firmware.
//
// Update runs once per frame. The returned hint is the number of frame ticks
// until the next update, values below 1 mean every frame. Returning Stop ends
// the update loop, any other non-nil error halts the process.
//
// HandleEvent receives the system events from the firmware in the order they
// occur, interleaved with updates. Returning a non-nil error halts the
// process.
type Game interface {
	Update(pd *PD) (hint int, err error)
	HandleEvent(pd *PD, e Event) error
}

// GameFunc constructs the game object. It runs exactly once, during the init
// event, with the capability table already stored.
type GameFunc func(pd *PD) (Game, error)
