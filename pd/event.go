package pd

import (
	"fmt"

	"github.com/clktmr/playdate/firmware"
)

// Event is the record handed to Game.HandleEvent. It carries the raw firmware
// fields without translation: Kind is the event code, Arg the keycode for key
// events and zero otherwise.
type Event struct {
	Kind firmware.SystemEvent
	Arg  uint32
}

func (e Event) String() string {
	if e.Kind == firmware.EventKeyPressed || e.Kind == firmware.EventKeyReleased {
		return fmt.Sprintf("%v(%#x)", e.Kind, e.Arg)
	}
	return e.Kind.String()
}
