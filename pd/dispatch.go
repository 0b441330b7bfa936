package pd

import (
	"github.com/clktmr/playdate/firmware"
	"github.com/clktmr/playdate/mem"
)

// HeapSize is the size of the arena claimed from the firmware during the init
// event. Set it before the init event is dispatched, usually from the same
// place that calls Register.
var HeapSize uintptr = 8 << 20

// The update loop is in exactly one of these states. Terminating is entered
// when the game returns Stop and is never left: the firmware does not
// guarantee it stops invoking callbacks immediately, so everything arriving
// afterwards is absorbed.
const (
	stateRunning = iota
	stateTerminating
)

type runner struct {
	game  Game
	state int
}

var (
	gameRunner *runner
	newGame    GameFunc
)

// Register stores the game factory invoked by the init event. It must be
// called before the firmware delivers the first event.
func Register(f GameFunc) { newGame = f }

// EventHandler is the process entry point the host forwards firmware events
// to. The return value is reserved by the firmware and always zero.
func EventHandler(api *firmware.API, event firmware.SystemEvent, arg uint32) int32 {
	defer guard("event handler")

	if event == firmware.EventInit {
		initGame(api)
		return 0
	}

	r := gameRunner
	if r == nil {
		halt("event %v before init", event)
	}
	if r.state == stateTerminating {
		return 0
	}
	if err := r.game.HandleEvent(current, Event{event, arg}); err != nil {
		halt("event %v: %v", event, err)
	}
	return 0
}

func initGame(api *firmware.API) {
	if current != nil {
		halt("second init event")
	}
	p, err := Init(api)
	if err != nil {
		halt("init: %v", err)
	}
	p.arena = mem.Claim(api.System.Realloc, HeapSize, func(size, align uintptr) {
		halt("out of memory allocating %v bytes", size)
	})
	if newGame == nil {
		halt("no game registered")
	}
	game, err := newGame(p)
	if err != nil {
		halt("game setup: %v", err)
	}
	gameRunner = &runner{game: game, state: stateRunning}
	api.System.SetUpdateCallback(updateTrampoline)
}

// updateTrampoline adapts Game.Update to the firmware's raw convention: a
// positive return is the number of frame ticks until the next update, zero
// stops the update loop.
func updateTrampoline() int32 {
	r := gameRunner
	if r == nil {
		halt("update before init")
	}
	if r.state == stateTerminating {
		return 0
	}
	defer guard("update")

	hint, err := r.game.Update(current)
	if err != nil {
		if err == Stop {
			r.state = stateTerminating
			return 0
		}
		halt("update: %v", err)
	}
	return int32(max(hint, 1))
}
