package datafs

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/clktmr/playdate/drivers/datastore"
)

func must[T any](ret T, err error) T {
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return ret
}

func check(err error) {
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

const usageString = `Datastore image utility.

Usage:

	%s <command> [arguments]

The commands are:

	format <image> <slots> <size>	create an empty image with the given geometry
	ls <image>			list records
	get <image> <name>	write a record to stdout
	put <image> <name>	store stdin as a record
	rm <image> <name>	delete a record
	mount <image> <dir>	serve the image via fuse
`

var flags = flag.NewFlagSet("datafs", flag.ExitOnError)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "datafs")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() < 2 {
		flags.Usage()
		os.Exit(1)
	}
	image := flags.Arg(1)

	switch flags.Arg(0) {
	case "format":
		if flags.NArg() != 4 {
			flags.Usage()
			os.Exit(1)
		}
		slots := must(strconv.Atoi(flags.Arg(2)))
		size := must(strconv.Atoi(flags.Arg(3)))
		f := must(os.Create(image))
		defer f.Close()
		check(f.Truncate(datastore.ImageSize(slots, size)))
		check(datastore.Format(f, slots, size))
	case "ls":
		store := must(datastore.Read(must(os.Open(image))))
		for _, name := range store.Names() {
			info := must(must(store.Open(name)).Stat())
			fmt.Printf("%6d  %s\n", info.Size(), name)
		}
	case "get":
		if flags.NArg() != 3 {
			flags.Usage()
			os.Exit(1)
		}
		store := must(datastore.Read(must(os.Open(image))))
		must(os.Stdout.Write(must(store.ReadRecord(flags.Arg(2)))))
	case "put":
		if flags.NArg() != 3 {
			flags.Usage()
			os.Exit(1)
		}
		f := must(os.OpenFile(image, os.O_RDWR, 0))
		defer f.Close()
		store := must(datastore.Read(f))
		check(store.WriteRecord(flags.Arg(2), must(io.ReadAll(os.Stdin))))
	case "rm":
		if flags.NArg() != 3 {
			flags.Usage()
			os.Exit(1)
		}
		f := must(os.OpenFile(image, os.O_RDWR, 0))
		defer f.Close()
		store := must(datastore.Read(f))
		check(store.Remove(flags.Arg(2)))
	case "mount":
		if flags.NArg() != 3 {
			flags.Usage()
			os.Exit(1)
		}
		check(mount(image, flags.Arg(2)))
	default:
		fmt.Fprintf(flags.Output(), "unknown command: %s\n", flags.Arg(0))
		flags.Usage()
		os.Exit(1)
	}
}
