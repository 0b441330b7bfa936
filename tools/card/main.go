package card

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/clktmr/playdate/framebuffer"
)

var (
	flags = flag.NewFlagSet("card", flag.ExitOnError)

	title  = flags.String("name", "Untitled", "game title drawn on the card")
	author = flags.String("author", "", "author drawn below the title")
	outdir = flags.String("o", ".", "output directory")
)

const usageString = `Default launcher art generator.

Usage: %s [flags]

Writes card.pdi and icon.pdi with placeholder launcher art to the output
directory, to be referenced from a bundle manifest until real artwork
replaces them.

`

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "card")
	flags.PrintDefaults()
}

const (
	cardW, cardH = 350, 155
	iconSize     = 32
)

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 0 {
		flags.Usage()
		os.Exit(1)
	}

	write(filepath.Join(*outdir, "card.pdi"), drawCard())
	write(filepath.Join(*outdir, "icon.pdi"), drawIcon())
}

func drawCard() image.Image {
	dc := gg.NewContext(cardW, cardH)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(4)
	dc.DrawRoundedRectangle(6, 6, cardW-12, cardH-12, 12)
	dc.Stroke()

	dc.SetFontFace(basicfont.Face7x13)
	dc.DrawStringAnchored(*title, cardW/2, cardH/2-8, 0.5, 0.5)
	if *author != "" {
		dc.DrawStringAnchored(*author, cardW/2, cardH/2+12, 0.5, 0.5)
	}

	// Crank doodle in the lower right corner.
	dc.SetLineWidth(2)
	dc.DrawCircle(cardW-36, cardH-36, 10)
	dc.Stroke()
	dc.DrawLine(cardW-36, cardH-36, cardW-28, cardH-44)
	dc.Stroke()
	dc.DrawCircle(cardW-28, cardH-44, 3)
	dc.Fill()

	return dc.Image()
}

func drawIcon() image.Image {
	dc := gg.NewContext(iconSize, iconSize)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.DrawRoundedRectangle(1, 1, iconSize-2, iconSize-2, 6)
	dc.Fill()

	r, _ := utf8.DecodeRuneInString(*title)
	dc.SetRGB(1, 1, 1)
	dc.SetFontFace(basicfont.Face7x13)
	dc.DrawStringAnchored(strings.ToUpper(string(r)), iconSize/2, iconSize/2, 0.5, 0.5)

	return dc.Image()
}

func write(path string, src image.Image) {
	fb := framebuffer.New(src.Bounds())
	draw.FloydSteinberg.Draw(fb, fb.Bounds(), src, src.Bounds().Min)

	out, err := os.Create(path)
	if err != nil {
		log.Fatalln(err)
	}
	defer out.Close()
	if err := fb.Store(out); err != nil {
		log.Fatalln(err)
	}
}
