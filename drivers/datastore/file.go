package datastore

import (
	"io"
	"io/fs"
	"time"
)

// Implements [fs.File] and [fs.FileInfo] as well as [io.ReaderAt]. Reads
// stream the payload as stored; use [FS.ReadRecord] for a checksummed copy.
type File struct {
	io.Reader

	fs  *FS
	idx int
}

func newFile(fs *FS, idx int) (f *File) {
	f = &File{fs: fs, idx: idx}
	f.Reader = io.NewSectionReader(f, 0, f.Size())
	return
}

func (f *File) slot() *slot {
	return &f.fs.slots[f.idx]
}

func (f *File) ReadAt(b []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, fs.ErrInvalid
	}
	size := int64(f.slot().Len)
	if off >= size {
		return 0, io.EOF
	}
	if max := size - off; int64(len(b)) > max {
		b = b[:max]
		err = io.EOF
	}
	n, rerr := f.fs.dev.ReadAt(b, f.fs.payloadOff(f.idx)+off)
	if rerr != nil {
		err = rerr
	}
	return
}

// Seq returns the record's generation counter. It advances on every write and
// wraps.
func (f *File) Seq() uint8 {
	return f.slot().Seq
}

// fs.File implementation

func (f *File) Stat() (fs.FileInfo, error) { return f, nil }
func (f *File) Close() error               { return nil }

// fs.FileInfo implementation

func (f *File) Name() string       { return decodeName(f.slot().Name) }
func (f *File) Size() int64        { return int64(f.slot().Len) }
func (f *File) Mode() fs.FileMode  { return 0666 }
func (f *File) ModTime() time.Time { return time.Time{} }
func (f *File) IsDir() bool        { return f.Mode().IsDir() }
func (f *File) Sys() any           { return nil }
