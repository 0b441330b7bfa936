package image

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/ericpauley/go-quantize/quantize"

	"github.com/clktmr/playdate/framebuffer"
)

var (
	flags = flag.NewFlagSet("image", flag.ExitOnError)

	dither = flags.Bool("dither", true, "enable Floyd-Steinberg error diffusion")
	levels = flags.Int("levels", 0, "quantize to n colors before dithering, 0 disables")
	out    = flags.String("o", "", "output file, defaults to the input with .pdi extension")

	imagefile string
)

const usageString = `Image to packed 1-bit asset converter.

Usage: %s [flags] <image>

`

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "image")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() == 1 {
		imagefile = flags.Arg(0)
	} else {
		flags.Usage()
		os.Exit(1)
	}

	r, err := os.Open(imagefile)
	if err != nil {
		log.Fatalln(err)
	}
	defer r.Close()

	src, _, err := image.Decode(r)
	if err != nil {
		log.Fatalln(err)
	}

	fb := Convert(src, *levels, *dither)

	outfile := *out
	if outfile == "" {
		outfile = strings.TrimSuffix(imagefile, filepath.Ext(imagefile)) + ".pdi"
	}
	w, err := os.Create(outfile)
	if err != nil {
		log.Fatalln(err)
	}
	defer w.Close()

	if err := fb.Store(w); err != nil {
		log.Fatalln(err)
	}
}

// Convert renders src into a frame. With levels > 0 the image is first
// quantized to that many colors, which flattens photographic gradients into
// larger dither patches. Without dithering every pixel is thresholded on
// luma.
func Convert(src image.Image, levels int, dither bool) *framebuffer.Frame {
	bounds := src.Bounds().Sub(src.Bounds().Min)

	if levels > 0 {
		q := quantize.MedianCutQuantizer{}
		p := q.Quantize(make([]color.Color, 0, levels), src)
		quantized := image.NewPaletted(bounds, p)
		draw.Draw(quantized, bounds, src, src.Bounds().Min, draw.Src)
		src = quantized
	}

	fb := framebuffer.New(bounds)
	var d draw.Drawer = draw.Src
	if dither {
		d = draw.FloydSteinberg
	}
	d.Draw(fb, bounds, src, src.Bounds().Min)
	return fb
}
