package bundle

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

var (
	flags = flag.NewFlagSet("bundle", flag.ExitOnError)

	out     = flags.String("o", "", "output directory, defaults to <name>.pdx")
	name    = flags.String("name", "", "game title shown in the launcher")
	author  = flags.String("author", "", "author shown in the launcher")
	desc    = flags.String("desc", "", "one line description")
	id      = flags.String("id", "", "bundle identifier in reverse DNS notation")
	version = flags.String("version", "1.0", "version shown in the launcher")
	build   = flags.Int("build", 1, "monotonically increasing build number")
	icon    = flags.String("icon", "", "base path of the card and icon art inside the bundle")
)

const usageString = `Assemble a runnable game directory.

Usage: %s [flags] <binary> [assets...]

The game binary and all asset files or directories are copied into the
bundle, next to the generated manifest.

`

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "bundle")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() < 1 {
		flags.Usage()
		os.Exit(1)
	}
	binary := flags.Arg(0)

	if *name == "" {
		*name = strings.TrimSuffix(filepath.Base(binary), filepath.Ext(binary))
	}
	if *id == "" {
		*id = "com.example." + sanitize(*name)
	}
	if *out == "" {
		*out = sanitize(*name) + ".pdx"
	}

	if err := os.MkdirAll(*out, 0o775); err != nil {
		log.Fatalln(err)
	}

	err := copyFile(filepath.Join(*out, filepath.Base(binary)), binary, 0o775)
	if err != nil {
		log.Fatalln(err)
	}
	for _, asset := range flags.Args()[1:] {
		if err := copyTree(*out, asset); err != nil {
			log.Fatalln(err)
		}
	}

	info := Info{
		Name:        *name,
		Author:      *author,
		Description: *desc,
		BundleID:    *id,
		Version:     *version,
		BuildNumber: *build,
		ImagePath:   *icon,
	}
	f, err := os.Create(filepath.Join(*out, ManifestName))
	if err != nil {
		log.Fatalln(err)
	}
	defer f.Close()
	if err := info.WriteInfo(f); err != nil {
		log.Fatalln(err)
	}
}

// sanitize folds a title into something that works as a filename and a
// bundle id segment.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r | 0x20
		}
		return -1
	}, s)
}

func copyFile(dst, src string, mode os.FileMode) error {
	r, err := os.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()
	w, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}

// copyTree copies a file or directory into dir, keeping the base name.
func copyTree(dir, src string) error {
	stat, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !stat.IsDir() {
		return copyFile(filepath.Join(dir, filepath.Base(src)), src, 0o664)
	}

	root := filepath.Join(dir, filepath.Base(src))
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(root, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0o775)
		}
		return copyFile(dst, path, 0o664)
	})
}
