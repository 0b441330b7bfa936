package font

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

var (
	flags = flag.NewFlagSet("font", flag.ExitOnError)

	dpi     = flags.Float64("dpi", 72, "screen resolution in Dots Per Inch")
	hinting = flags.String("hinting", "none", "none | full")
	size    = flags.Float64("size", 12, "font size in points")
	start   = flags.Uint("start", 0x20, "Unicode value of first character")
	end     = flags.Uint("end", 0x7e, "Unicode value of last character")
	outdir  = flags.String("o", "", "output directory, defaults to fonts/<name><size>")

	fontfile string
)

const usageString = `TrueType font to glyph strip converter.

Usage: %s [flags] [ttffile]

Renders the glyph range into a fixed-width strip and writes a Go package
providing it as a subfont face. Without a font file the builtin basicfont
is converted.

`

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "font")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	switch flags.NArg() {
	case 0:
		break
	case 1:
		fontfile = flags.Arg(0)
	default:
		flags.Usage()
		os.Exit(1)
	}

	// TODO merge new ranges into an already generated package

	var face font.Face
	var name string
	if fontfile == "" {
		face = basicfont.Face7x13
		name = "basicfont"
	} else {
		fontBytes, err := os.ReadFile(fontfile)
		if err != nil {
			log.Fatalln(err)
		}
		f, err := opentype.Parse(fontBytes)
		if err != nil {
			log.Fatalln(err)
		}

		options := &opentype.FaceOptions{
			Size: *size,
			DPI:  *dpi,
		}
		switch *hinting {
		default:
			options.Hinting = font.HintingNone
		case "full":
			options.Hinting = font.HintingFull
		}
		face, err = opentype.NewFace(f, options)
		if err != nil {
			log.Fatalln(err)
		}
		defer face.Close()
		name, err = f.Name(nil, sfnt.NameIDFull)
		if err != nil {
			name = strings.TrimSuffix(filepath.Base(fontfile), filepath.Ext(fontfile))
		}
	}

	glyphs := render(face, rune(*start), rune(*end))

	pkgname := strings.ReplaceAll(name, " ", "")
	pkgname = fmt.Sprintf("%s%.0f", strings.ToLower(pkgname), *size)
	directory := *outdir
	if directory == "" {
		directory = filepath.Join("fonts", pkgname)
	}
	if err := os.MkdirAll(directory, 0o775); err != nil {
		log.Fatalln(err)
	}

	tmpl, err := template.New("subfontsGoTemplate").Parse(subfontsGoTemplate)
	if err != nil {
		log.Fatalln(err)
	}
	subfontsFile, err := os.Create(filepath.Join(directory, "subfonts.go"))
	if err != nil {
		log.Fatalln(err)
	}
	defer subfontsFile.Close()

	err = tmpl.Execute(subfontsFile, struct {
		Name    string
		Package string
		strip
	}{
		Name:    fmt.Sprintf("%s %g", name, *size),
		Package: pkgname,
		strip:   glyphs,
	})
	if err != nil {
		log.Fatalln(err)
	}
}

type strip struct {
	Height, Ascent, Advance int
	First, Last             rune
	Replacement             int // cell index of U+FFFD, -1 if the face has no such glyph
	Cells                   int
	Mask                    string // packed 1bpp, msb first, rows padded to whole bytes
}

// render draws the glyph range into a vertical strip of uniform cells, one
// glyph per cell. Glyphs missing from the face leave their cell blank.
func render(face font.Face, first, last rune) strip {
	m := face.Metrics()
	s := strip{
		Height:      m.Height.Ceil(),
		Ascent:      m.Ascent.Ceil(),
		First:       first,
		Last:        last,
		Replacement: -1,
	}
	runes := make([]rune, 0, last-first+2)
	for r := first; r <= last; r++ {
		runes = append(runes, r)
		if adv, ok := face.GlyphAdvance(r); ok {
			s.Advance = max(s.Advance, adv.Ceil())
		}
	}
	if _, ok := face.GlyphAdvance('�'); ok && (first > '�' || last < '�') {
		s.Replacement = len(runes)
		runes = append(runes, '�')
	}
	s.Cells = len(runes)
	if s.Advance == 0 {
		log.Fatalln("no glyphs in range")
	}

	mask := image.NewAlpha(image.Rect(0, 0, s.Advance, s.Cells*s.Height))
	drawer := font.Drawer{Dst: mask, Src: image.White, Face: face}
	for i, r := range runes {
		if _, ok := face.GlyphAdvance(r); !ok {
			continue
		}
		drawer.Dot = fixed.P(0, i*s.Height+s.Ascent)
		drawer.DrawString(string(r))
	}

	rowBytes := (s.Advance + 7) / 8
	packed := make([]byte, rowBytes*s.Cells*s.Height)
	for y := range s.Cells * s.Height {
		for x := range s.Advance {
			if mask.AlphaAt(x, y).A >= 0x80 {
				packed[y*rowBytes+x>>3] |= 0x80 >> (x & 7)
			}
		}
	}
	s.Mask = string(packed)
	return s
}

const subfontsGoTemplate = `// {{ .Name }}
package {{ .Package }}

import (
	"image"
	"image/color"

	"github.com/embeddedgo/display/font/subfont"

	"github.com/clktmr/playdate/fonts"
)

const (
	Height  = {{ .Height }}
	Ascent  = {{ .Ascent }}
	Advance = {{ .Advance }}
)

// Glyphs {{ printf "%#04x" .First }} to {{ printf "%#04x" .Last }} in {{ .Advance }}x{{ .Height }} cells, packed one
// bit per pixel, rows padded to whole bytes.
var mask = {{ printf "%q" .Mask }}

func NewFace() *subfont.Face {
	rows := {{ .Cells }} * Height
	alpha := image.NewAlpha(image.Rect(0, 0, Advance, rows))
	rowBytes := (Advance + 7) / 8
	for y := range rows {
		for x := range Advance {
			if mask[y*rowBytes+x>>3]&(0x80>>(x&7)) != 0 {
				alpha.SetAlpha(x, y, color.Alpha{A: 0xff})
			}
		}
	}
	data := fonts.NewSubfontData(alpha, Height, Ascent, Advance)
	return &subfont.Face{
		Height: Height,
		Ascent: Ascent,
		Subfonts: []*subfont.Subfont{
			{First: {{ printf "%#04x" .First }}, Last: {{ printf "%#04x" .Last }}, Offset: 0, Data: data},
{{- if ge .Replacement 0 }}
			{First: 0xfffd, Last: 0xfffd, Offset: {{ .Replacement }}, Data: data},
{{- end }}
		},
	}
}
`
