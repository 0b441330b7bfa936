package pd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/clktmr/playdate/firmware"
)

// Errors without a stdlib counterpart. The common cases map to the fs
// package's sentinels, see mapFSErr.
var (
	ErrNoSpace = errors.New("no space left on device")
	ErrNotDir  = errors.New("not a directory")
	ErrIO      = errors.New("input/output error")
)

// mapFSErr translates a firmware status code into an error that callers can
// test with errors.Is.
func mapFSErr(code firmware.FSErr) error {
	switch code {
	case firmware.FSOK:
		return nil
	case firmware.FSNoEntry:
		return fs.ErrNotExist
	case firmware.FSExists:
		return fs.ErrExist
	case firmware.FSNotDir:
		return ErrNotDir
	case firmware.FSBadHandle:
		return fs.ErrClosed
	case firmware.FSInvalid:
		return fs.ErrInvalid
	case firmware.FSNoSpace:
		return ErrNoSpace
	case firmware.FSIO:
		return ErrIO
	}
	return fmt.Errorf("status %d", int32(code))
}

func wrapFSErr(op, path string, code firmware.FSErr) error {
	if err := mapFSErr(code); err != nil {
		return &fs.PathError{Op: op, Path: path, Err: err}
	}
	return nil
}

// FS is the per game filesystem. Reads search the game's data directory
// first and fall back to the bundle, writes always go to the data directory.
type FS struct{ pd *PD }

// OpenFile opens path with an explicit mode. Most callers are better served
// by Open and Create.
func (p FS) OpenFile(name string, mode firmware.FileOptions) (*File, error) {
	handle, code := p.pd.api.File.Open(name, mode)
	if handle == 0 {
		if code == firmware.FSOK {
			code = firmware.FSInvalid
		}
		return nil, wrapFSErr("open", name, code)
	}
	return &File{pd: p.pd, handle: handle, name: name}, nil
}

// Open opens path for reading.
func (p FS) Open(name string) (*File, error) {
	return p.OpenFile(name, firmware.FileRead|firmware.FileReadData)
}

// Create opens path for writing, truncating it if it exists.
func (p FS) Create(name string) (*File, error) {
	return p.OpenFile(name, firmware.FileWrite)
}

// Append opens path for writing at its end, creating it if necessary.
func (p FS) Append(name string) (*File, error) {
	return p.OpenFile(name, firmware.FileAppend)
}

func (p FS) Stat(name string) (fs.FileInfo, error) {
	stat, code := p.pd.api.File.Stat(name)
	if code != firmware.FSOK {
		return nil, wrapFSErr("stat", name, code)
	}
	return fileInfo{name: name, stat: stat}, nil
}

func (p FS) Mkdir(name string) error {
	return wrapFSErr("mkdir", name, p.pd.api.File.Mkdir(name))
}

// Remove deletes a file or an empty directory.
func (p FS) Remove(name string) error {
	return wrapFSErr("remove", name, p.pd.api.File.Unlink(name, false))
}

// RemoveAll deletes name and any children it contains.
func (p FS) RemoveAll(name string) error {
	return wrapFSErr("remove", name, p.pd.api.File.Unlink(name, true))
}

func (p FS) Rename(from, to string) error {
	return wrapFSErr("rename", from, p.pd.api.File.Rename(from, to))
}

// ReadDir returns the entries of the named directory, sorted by filename.
func (p FS) ReadDir(name string) ([]fs.DirEntry, error) {
	var entries []fs.DirEntry
	code := p.pd.api.File.ListFiles(name, func(entry string, isDir bool) {
		entries = append(entries, dirEntry{
			fsys: p,
			path: path.Join(name, entry),
			name: entry,
			dir:  isDir,
		})
	}, false)
	if code != firmware.FSOK {
		return nil, wrapFSErr("readdir", name, code)
	}
	slices.SortFunc(entries, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return entries, nil
}

// ReadFile returns the contents of the named file.
func (p FS) ReadFile(name string) ([]byte, error) {
	f, err := p.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var size int
	if info, err := f.Stat(); err == nil {
		size = int(info.Size())
	}
	data := make([]byte, 0, size+1)
	for {
		n, err := f.Read(data[len(data):cap(data)])
		data = data[:len(data)+n]
		if err == io.EOF {
			return data, nil
		} else if err != nil {
			return data, err
		}
		if len(data) == cap(data) {
			data = append(data, 0)[:len(data)]
		}
	}
}

// WriteFile writes data to the named file, replacing it if it exists.
func (p FS) WriteFile(name string, data []byte) error {
	f, err := p.Create(name)
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// File is an open file. It implements the io interfaces as far as the mode it
// was opened with allows.
type File struct {
	pd     *PD
	handle uintptr
	name   string
}

func (f *File) Name() string { return f.name }

func (f *File) Read(p []byte) (int, error) {
	n := f.pd.api.File.Read(f.handle, p)
	if n < 0 {
		return 0, wrapFSErr("read", f.name, firmware.FSErr(n))
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return int(n), nil
}

func (f *File) Write(p []byte) (int, error) {
	n := f.pd.api.File.Write(f.handle, p)
	if n < 0 {
		return 0, wrapFSErr("write", f.name, firmware.FSErr(n))
	}
	if int(n) < len(p) {
		return int(n), io.ErrShortWrite
	}
	return int(n), nil
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	if offset > math.MaxInt32 || offset < math.MinInt32 {
		return 0, wrapFSErr("seek", f.name, firmware.FSInvalid)
	}
	code := f.pd.api.File.Seek(f.handle, int32(offset), int32(whence))
	if code != firmware.FSOK {
		return 0, wrapFSErr("seek", f.name, code)
	}
	pos := f.pd.api.File.Tell(f.handle)
	if pos < 0 {
		return 0, wrapFSErr("seek", f.name, firmware.FSErr(pos))
	}
	return int64(pos), nil
}

// Sync flushes buffered writes out to storage.
func (f *File) Sync() error {
	if n := f.pd.api.File.Flush(f.handle); n < 0 {
		return wrapFSErr("sync", f.name, firmware.FSErr(n))
	}
	return nil
}

func (f *File) Close() error {
	return wrapFSErr("close", f.name, f.pd.api.File.Close(f.handle))
}

// Stat queries the file's metadata by its name, like Stat on the filesystem.
func (f *File) Stat() (fs.FileInfo, error) {
	return FS{f.pd}.Stat(f.name)
}

type fileInfo struct {
	name string
	stat firmware.FileStat
}

func (fi fileInfo) Name() string { return path.Base(fi.name) }
func (fi fileInfo) Size() int64  { return int64(fi.stat.Size) }
func (fi fileInfo) IsDir() bool  { return fi.stat.IsDir }
func (fi fileInfo) Sys() any     { return nil }

func (fi fileInfo) Mode() fs.FileMode {
	if fi.stat.IsDir {
		return fs.ModeDir | 0o777
	}
	return 0o666
}

func (fi fileInfo) ModTime() time.Time {
	return time.Date(int(fi.stat.Year), time.Month(fi.stat.Month),
		int(fi.stat.Day), int(fi.stat.Hour), int(fi.stat.Min),
		int(fi.stat.Sec), 0, time.UTC)
}

type dirEntry struct {
	fsys FS
	path string
	name string
	dir  bool
}

func (d dirEntry) Name() string { return d.name }
func (d dirEntry) IsDir() bool  { return d.dir }

func (d dirEntry) Type() fs.FileMode {
	if d.dir {
		return fs.ModeDir
	}
	return 0
}

func (d dirEntry) Info() (fs.FileInfo, error) { return d.fsys.Stat(d.path) }
