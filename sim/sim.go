package sim

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/clktmr/playdate/firmware"
	"github.com/clktmr/playdate/framebuffer"
)

// Config selects how the simulated device presents itself. The zero value is
// usable: a 2x scaled window with sound and network, serving files from the
// working directory.
type Config struct {
	// Title names the window.
	Title string `env:"PDGO_TITLE"`
	// Scale is the window size in LCD pixels, 1 to 8.
	Scale int `env:"PDGO_SCALE"`
	// BundleDir is the read-only game directory behind FileRead opens.
	BundleDir string `env:"PDGO_BUNDLE"`
	// DataDir is the writable directory behind FileReadData, Write and
	// Append opens. It defaults to "data" inside the bundle and is
	// created if missing.
	DataDir string `env:"PDGO_DATA"`
	// Mute keeps the host's audio device closed. The Sound group still
	// accepts players, they just aren't rendered.
	Mute bool `env:"PDGO_MUTE"`
	// Offline simulates a device without wifi: association fails and no
	// connections are handed out.
	Offline bool `env:"PDGO_OFFLINE"`
}

// EnvConfig returns the configuration read from the PDGO_* environment
// variables. Variables left unset keep the zero value.
func EnvConfig() (Config, error) {
	return env.ParseAs[Config]()
}

func (c *Config) setDefaults() {
	if c.Title == "" {
		c.Title = "Playdate"
	}
	if c.Scale < 1 || c.Scale > 8 {
		c.Scale = 2
	}
	if c.BundleDir == "" {
		c.BundleDir = "."
	}
}

// Handler is the process entry point events are forwarded to, usually
// pd.EventHandler. The first call delivers the init event together with the
// capability table.
type Handler func(api *firmware.API, event firmware.SystemEvent, arg uint32) int32

// Run simulates the device until the game stops or the window is closed. It
// must be called from the main goroutine and doesn't return while the game
// runs. All callbacks are invoked from a single goroutine, like the
// firmware's dispatch thread.
//
// A game halt keeps the window open showing the crash screen and is reported
// as an error once the window is closed.
func Run(cfg Config, handler Handler) error {
	if handler == nil {
		return errors.New("sim: nil handler")
	}
	cfg.setDefaults()

	h := newHost(cfg)
	defer h.close()

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(framebuffer.WIDTH*cfg.Scale, framebuffer.HEIGHT*cfg.Scale)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetTPS(defaultRefreshRate)

	w := &window{host: h, handler: handler}
	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("sim: %w", err)
	}
	if h.crash != "" {
		return fmt.Errorf("sim: game halted: %s", h.crash)
	}
	return nil
}
