package disk

import (
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"

	diskfs "github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem"
)

var (
	flags = flag.NewFlagSet("disk", flag.ExitOnError)

	out    = flags.String("o", "sideload.img", "output image path")
	label  = flags.String("label", "PLAYDATE", "volume label")
	sizeMB = flags.Int64("size", 64, "image size in MB")
)

const usageString = `FAT32 sideload image builder.

Usage: %s [flags] <bundle>...

Copies each bundle directory into /Games/<name> on a freshly formatted FAT32
image, ready to be written to removable media.

`

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "disk")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() < 1 {
		flags.Usage()
		os.Exit(1)
	}

	d, err := diskfs.Create(*out, *sizeMB<<20, diskfs.Raw, diskfs.SectorSizeDefault)
	if err != nil {
		log.Fatalln(err)
	}
	fsys, err := d.CreateFilesystem(disk.FilesystemSpec{
		Partition:   0, // whole disk, no partition table
		FSType:      filesystem.TypeFat32,
		VolumeLabel: *label,
	})
	if err != nil {
		log.Fatalln(err)
	}

	for _, bundle := range flags.Args() {
		name := filepath.Base(filepath.Clean(bundle))
		err := copyTree(fsys, bundle, path.Join("/Games", name))
		if err != nil {
			log.Fatalln(err)
		}
	}

	if err := d.File.Close(); err != nil {
		log.Fatalln(err)
	}
}

func copyTree(fsys filesystem.FileSystem, src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := path.Join(dst, filepath.ToSlash(rel))
		if d.IsDir() {
			return fsys.Mkdir(target)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out, err := fsys.OpenFile(target, os.O_CREATE|os.O_RDWR)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return nil
		}
		_, err = out.Write(data)
		return err
	})
}
