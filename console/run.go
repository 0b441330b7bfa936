package console

import (
	"fmt"
	"image/color"

	"github.com/caarlos0/env/v11"
	"github.com/embeddedgo/display/pix"

	"github.com/clktmr/playdate/drivers/display"
	"github.com/clktmr/playdate/pd"
	"github.com/clktmr/playdate/sim"
)

// Config selects how the game is hosted. The zero value runs a plain
// simulator window.
type Config struct {
	sim.Config
	// Stats draws frame time and battery charge in the lower right corner.
	Stats bool `env:"PDGO_STATS"`
}

// EnvConfig returns the configuration read from the PDGO_* environment
// variables. Variables left unset keep the zero value.
func EnvConfig() (Config, error) {
	return env.ParseAs[Config]()
}

// Run hosts the game on the desktop simulator until it stops or the window
// is closed. It registers the game factory and hands the event entry point
// to the host, which owns all scheduling from there: init event, update
// callbacks, termination.
//
// Run must be called from the main goroutine and doesn't return while the
// game runs.
func Run(cfg Config, f pd.GameFunc) error {
	if cfg.Stats {
		game := f
		f = func(p *pd.PD) (pd.Game, error) {
			g, err := game(p)
			if err != nil {
				return nil, err
			}
			return newStatsGame(p, g), nil
		}
	}
	pd.Register(f)
	return sim.Run(cfg.Config, pd.EventHandler)
}

// statsGame draws a frame time and battery gauge on top of the wrapped game.
type statsGame struct {
	pd.Game
	disp *display.Display
	area *pix.Area
	tw   *pix.TextWriter
}

func newStatsGame(p *pd.PD, g pd.Game) *statsGame {
	drv := display.NewDisplay(p)
	disp := pix.NewDisplay(drv)
	r := disp.Bounds()
	r.Min.X = r.Max.X - len("999.9ms 100%")*font.Advance('0')
	r.Min.Y = r.Max.Y - int(font.Height)
	a := disp.NewArea(r)
	tw := a.NewTextWriter(font)
	tw.SetColor(color.White)
	return &statsGame{Game: g, disp: drv, area: a, tw: tw}
}

func (g *statsGame) Update(p *pd.PD) (int, error) {
	hint, err := g.Game.Update(p)
	if err != nil {
		return hint, err
	}
	percent, _ := p.System().Battery()
	g.area.SetColor(color.Black)
	g.area.Fill(g.area.Bounds())
	g.tw.Pos = g.area.Bounds().Min
	g.tw.WriteString(fmt.Sprintf("%5.1fms %3.0f%%",
		g.disp.Duration().Seconds()*1000, percent))
	g.area.Flush()
	return hint, nil
}
