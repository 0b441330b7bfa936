package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/clktmr/playdate/tools/bundle"
	"github.com/clktmr/playdate/tools/card"
	"github.com/clktmr/playdate/tools/datafs"
	"github.com/clktmr/playdate/tools/disk"
	"github.com/clktmr/playdate/tools/font"
	imagetool "github.com/clktmr/playdate/tools/image"
	"github.com/clktmr/playdate/tools/run"
)

const usageString = `pdgo is a tool for development of Playdate games in Go.

Usage:

	%s <command> [arguments]

The commands are:

	bundle   assemble a runnable game directory
	image    convert images to packed 1-bit assets
	font     generate fonts to be used on the device
	card     generate default launcher card and icon art
	datafs   modify and inspect datastore images
	disk     build a sideload disk image from bundles
	run      launch a bundled game
`

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), usageString, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	log.Default().SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	switch flag.Arg(0) {
	case "bundle":
		bundle.Main(flag.Args())
	case "image":
		imagetool.Main(flag.Args())
	case "font":
		font.Main(flag.Args())
	case "card":
		card.Main(flag.Args())
	case "datafs":
		datafs.Main(flag.Args())
	case "disk":
		disk.Main(flag.Args())
	case "run":
		run.Main(flag.Args())
	default:
		fmt.Fprintf(flag.CommandLine.Output(), "unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}
