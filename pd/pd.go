package pd

import (
	"errors"
	"fmt"

	"github.com/clktmr/playdate/firmware"
	"github.com/clktmr/playdate/mem"
)

var (
	ErrAlreadyInitialized = errors.New("pd: already initialized")
	ErrNotInitialized     = errors.New("pd: not initialized")
	ErrIncompleteTable    = errors.New("pd: incomplete capability table")
)

// PD is the typed view on the capability table. There is exactly one instance
// per process, created by the first successful Init. All methods must be
// called from the callback dispatch thread.
type PD struct {
	api   *firmware.API
	arena *mem.Arena
	menu  map[uintptr]*MenuItem
}

// The process-wide handle. Confined to the dispatch thread, see package doc.
var current *PD

// Init validates the capability table and stores it as the process-wide
// handle. A second call fails with ErrAlreadyInitialized and leaves the first
// handle untouched.
//
// Applications usually don't call Init themselves, EventHandler does on the
// init event.
func Init(api *firmware.API) (*PD, error) {
	if current != nil {
		return nil, ErrAlreadyInitialized
	}
	if api == nil || api.System == nil || api.Display == nil ||
		api.Graphics == nil || api.File == nil ||
		api.Sound == nil || api.Network == nil {
		return nil, ErrIncompleteTable
	}
	current = &PD{api: api, menu: make(map[uintptr]*MenuItem)}
	return current, nil
}

// Get returns the handle stored by Init, or nil before initialization.
func Get() *PD { return current }

// Arena returns the game's heap. It is nil until the init event was
// dispatched.
func (p *PD) Arena() *mem.Arena { return p.arena }

func (p *PD) System() System     { return System{p} }
func (p *PD) Display() Display   { return Display{p} }
func (p *PD) Graphics() Graphics { return Graphics{p} }
func (p *PD) FS() FS             { return FS{p} }
func (p *PD) Sound() Sound       { return Sound{p} }
func (p *PD) Net() Net           { return Net{p} }

// Logf writes a formatted message to the device console.
func (p *PD) Logf(format string, args ...any) {
	p.api.System.LogToConsole(fmt.Sprintf(format, args...))
}

// Logf writes a formatted message to the device console. Before
// initialization it is a no-op.
func Logf(format string, args ...any) {
	if current != nil {
		current.Logf(format, args...)
	}
}

// reset drops all process-wide state. Tests only.
func reset() {
	current = nil
	gameRunner = nil
	newGame = nil
	halting = false
}
