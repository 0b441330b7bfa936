package datastore

import (
	"errors"
	"io"
	"io/fs"

	"github.com/clktmr/playdate/pd"
)

// Image is a datastore held in memory. Writes stay in memory; use Mount for a
// store persisted on the device filesystem.
type Image []byte

// NewImage returns a formatted in-memory datastore.
func NewImage(slots, size int) (Image, error) {
	img := make(Image, ImageSize(slots, size))
	if err := Format(img, slots, size); err != nil {
		return nil, err
	}
	return img, nil
}

func (img Image) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 || off >= int64(len(img)) {
		return 0, io.EOF
	}
	n = copy(p, img[off:])
	if n < len(p) {
		err = io.EOF
	}
	return
}

func (img Image) WriteAt(p []byte, off int64) (n int, err error) {
	if off < 0 || off > int64(len(img)) {
		return 0, fs.ErrInvalid
	}
	n = copy(img[off:], p)
	if n < len(p) {
		err = io.ErrShortWrite
	}
	return
}

// Mount opens the datastore stored at path on the device filesystem, creating
// a formatted one with the given geometry if there is none yet. Every write
// stores the whole image back to the file.
func Mount(fsys pd.FS, path string, slots, size int) (*FS, error) {
	dev := &deviceImage{fsys: fsys, path: path}

	data, err := fsys.ReadFile(path)
	switch {
	case err == nil:
		dev.data = data
	case errors.Is(err, fs.ErrNotExist):
		dev.data = make(Image, ImageSize(slots, size))
		if err := Format(dev, slots, size); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return Read(dev)
}

type deviceImage struct {
	fsys pd.FS
	path string
	data Image
}

func (d *deviceImage) ReadAt(p []byte, off int64) (int, error) {
	return d.data.ReadAt(p, off)
}

func (d *deviceImage) WriteAt(p []byte, off int64) (int, error) {
	n, err := d.data.WriteAt(p, off)
	if err != nil {
		return n, err
	}
	return n, d.fsys.WriteFile(d.path, d.data)
}
