package sim

import (
	"errors"
	"io"
	"io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/clktmr/playdate/firmware"
)

// fileHost serves the File group from two real directories, the read-only
// bundle and the writable data directory. Like on the device, reads may
// search both, everything else touches only the data directory.
type fileHost struct {
	bundle, data string

	open map[uintptr]*openFile
	next uintptr
}

type openFile struct {
	f    *os.File
	mode firmware.FileOptions
}

func newFileHost(bundle, data string) *fileHost {
	if data == "" {
		data = filepath.Join(bundle, "data")
	}
	os.MkdirAll(data, 0o777)
	return &fileHost{
		bundle: bundle,
		data:   data,
		open:   make(map[uintptr]*openFile),
	}
}

func (fh *fileHost) api() *firmware.File {
	return &firmware.File{
		Open:      fh.openFile,
		Close:     fh.closeFile,
		Read:      fh.read,
		Write:     fh.write,
		Flush:     fh.flush,
		Tell:      fh.tell,
		Seek:      fh.seek,
		Stat:      fh.stat,
		Mkdir:     fh.mkdir,
		Unlink:    fh.unlink,
		Rename:    fh.rename,
		ListFiles: fh.listFiles,
	}
}

func (fh *fileHost) close() {
	for _, o := range fh.open {
		o.f.Close()
	}
	clear(fh.open)
}

// localize validates a game path and converts it to the host's separators.
// Paths reaching outside the serving directories are rejected.
func localize(name string) (string, bool) {
	name = path.Clean(strings.TrimPrefix(name, "/"))
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return "", false
	}
	return rel, true
}

// fsCode maps a host error onto the firmware's status codes.
func fsCode(err error) firmware.FSErr {
	switch {
	case err == nil:
		return firmware.FSOK
	case errors.Is(err, fs.ErrNotExist):
		return firmware.FSNoEntry
	case errors.Is(err, fs.ErrExist):
		return firmware.FSExists
	case errors.Is(err, fs.ErrInvalid):
		return firmware.FSInvalid
	case errors.Is(err, fs.ErrClosed):
		return firmware.FSBadHandle
	}
	return firmware.FSIO
}

// findRead resolves a read open: the data directory first if the mode allows
// it, then the bundle.
func (fh *fileHost) findRead(rel string, mode firmware.FileOptions) (string, fs.FileInfo, firmware.FSErr) {
	if mode&firmware.FileReadData != 0 {
		full := filepath.Join(fh.data, rel)
		if info, err := os.Stat(full); err == nil {
			return full, info, firmware.FSOK
		}
	}
	if mode&firmware.FileRead != 0 {
		full := filepath.Join(fh.bundle, rel)
		if info, err := os.Stat(full); err == nil {
			return full, info, firmware.FSOK
		}
	}
	return "", nil, firmware.FSNoEntry
}

// readAll loads a whole file through the usual read search, for loaders that
// bypass the handle interface.
func (fh *fileHost) readAll(name string) ([]byte, firmware.FSErr) {
	rel, ok := localize(name)
	if !ok {
		return nil, firmware.FSInvalid
	}
	full, _, code := fh.findRead(rel, firmware.FileRead|firmware.FileReadData)
	if code != firmware.FSOK {
		return nil, code
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fsCode(err)
	}
	return data, firmware.FSOK
}

// parentDir mirrors the firmware's open semantics: the parent must already
// exist as a directory, writes don't create it.
func (fh *fileHost) parentDir(full string) firmware.FSErr {
	info, err := os.Stat(filepath.Dir(full))
	if err != nil {
		return fsCode(err)
	}
	if !info.IsDir() {
		return firmware.FSNotDir
	}
	return firmware.FSOK
}

func (fh *fileHost) openFile(name string, mode firmware.FileOptions) (uintptr, firmware.FSErr) {
	rel, ok := localize(name)
	if !ok {
		return 0, firmware.FSInvalid
	}

	var f *os.File
	var err error
	switch {
	case mode&(firmware.FileRead|firmware.FileReadData) != 0:
		full, info, code := fh.findRead(rel, mode)
		if code != firmware.FSOK {
			return 0, code
		}
		if info.IsDir() {
			return 0, firmware.FSInvalid
		}
		f, err = os.Open(full)
	case mode&firmware.FileWrite != 0:
		full := filepath.Join(fh.data, rel)
		if code := fh.parentDir(full); code != firmware.FSOK {
			return 0, code
		}
		f, err = os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	case mode&firmware.FileAppend != 0:
		full := filepath.Join(fh.data, rel)
		if code := fh.parentDir(full); code != firmware.FSOK {
			return 0, code
		}
		f, err = os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o666)
	default:
		return 0, firmware.FSInvalid
	}
	if err != nil {
		return 0, fsCode(err)
	}

	fh.next++
	fh.open[fh.next] = &openFile{f: f, mode: mode}
	return fh.next, firmware.FSOK
}

func (fh *fileHost) closeFile(fd uintptr) firmware.FSErr {
	o := fh.open[fd]
	if o == nil {
		return firmware.FSBadHandle
	}
	delete(fh.open, fd)
	return fsCode(o.f.Close())
}

func (fh *fileHost) read(fd uintptr, buf []byte) int32 {
	o := fh.open[fd]
	if o == nil {
		return int32(firmware.FSBadHandle)
	}
	if o.mode&(firmware.FileRead|firmware.FileReadData) == 0 {
		return int32(firmware.FSInvalid)
	}
	n, err := o.f.Read(buf)
	if err != nil && err != io.EOF {
		return int32(fsCode(err))
	}
	return int32(n)
}

func (fh *fileHost) write(fd uintptr, buf []byte) int32 {
	o := fh.open[fd]
	if o == nil {
		return int32(firmware.FSBadHandle)
	}
	if o.mode&(firmware.FileWrite|firmware.FileAppend) == 0 {
		return int32(firmware.FSInvalid)
	}
	n, err := o.f.Write(buf)
	if err != nil {
		return int32(fsCode(err))
	}
	return int32(n)
}

func (fh *fileHost) flush(fd uintptr) int32 {
	o := fh.open[fd]
	if o == nil {
		return int32(firmware.FSBadHandle)
	}
	if err := o.f.Sync(); err != nil {
		return int32(firmware.FSIO)
	}
	return 0
}

func (fh *fileHost) tell(fd uintptr) int32 {
	o := fh.open[fd]
	if o == nil {
		return int32(firmware.FSBadHandle)
	}
	pos, err := o.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return int32(fsCode(err))
	}
	return int32(pos)
}

func (fh *fileHost) seek(fd uintptr, pos, whence int32) firmware.FSErr {
	o := fh.open[fd]
	if o == nil {
		return firmware.FSBadHandle
	}
	if whence < io.SeekStart || whence > io.SeekEnd {
		return firmware.FSInvalid
	}
	if _, err := o.f.Seek(int64(pos), int(whence)); err != nil {
		return firmware.FSInvalid
	}
	return firmware.FSOK
}

func (fh *fileHost) stat(name string) (firmware.FileStat, firmware.FSErr) {
	rel, ok := localize(name)
	if !ok {
		return firmware.FileStat{}, firmware.FSInvalid
	}
	_, info, code := fh.findRead(rel, firmware.FileRead|firmware.FileReadData)
	if code != firmware.FSOK {
		return firmware.FileStat{}, code
	}
	t := info.ModTime()
	return firmware.FileStat{
		IsDir: info.IsDir(),
		Size:  uint32(info.Size()),
		Year:  int32(t.Year()),
		Month: int32(t.Month()),
		Day:   int32(t.Day()),
		Hour:  int32(t.Hour()),
		Min:   int32(t.Minute()),
		Sec:   int32(t.Second()),
	}, firmware.FSOK
}

func (fh *fileHost) mkdir(name string) firmware.FSErr {
	rel, ok := localize(name)
	if !ok {
		return firmware.FSInvalid
	}
	full := filepath.Join(fh.data, rel)
	if code := fh.parentDir(full); code != firmware.FSOK {
		return code
	}
	return fsCode(os.Mkdir(full, 0o777))
}

func (fh *fileHost) unlink(name string, recursive bool) firmware.FSErr {
	rel, ok := localize(name)
	if !ok {
		return firmware.FSInvalid
	}
	full := filepath.Join(fh.data, rel)
	info, err := os.Lstat(full)
	if err != nil {
		return fsCode(err)
	}
	if info.IsDir() && !recursive {
		if entries, err := os.ReadDir(full); err == nil && len(entries) > 0 {
			return firmware.FSInvalid
		}
	}
	if recursive {
		return fsCode(os.RemoveAll(full))
	}
	return fsCode(os.Remove(full))
}

func (fh *fileHost) rename(from, to string) firmware.FSErr {
	relFrom, ok := localize(from)
	if !ok {
		return firmware.FSInvalid
	}
	relTo, ok := localize(to)
	if !ok {
		return firmware.FSInvalid
	}
	fullFrom := filepath.Join(fh.data, relFrom)
	if _, err := os.Lstat(fullFrom); err != nil {
		return fsCode(err)
	}
	fullTo := filepath.Join(fh.data, relTo)
	if code := fh.parentDir(fullTo); code != firmware.FSOK {
		return code
	}
	return fsCode(os.Rename(fullFrom, fullTo))
}

func (fh *fileHost) listFiles(name string, callback func(string, bool), showHidden bool) firmware.FSErr {
	rel, ok := localize(name)
	if !ok {
		return firmware.FSInvalid
	}

	// Both directories contribute entries, the data directory shadows the
	// bundle.
	merged := make(map[string]bool)
	found, notDir := false, false
	for _, root := range []string{fh.data, fh.bundle} {
		full := filepath.Join(root, rel)
		info, err := os.Stat(full)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			notDir = true
			continue
		}
		found = true
		entries, err := os.ReadDir(full)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if _, ok := merged[e.Name()]; !ok {
				merged[e.Name()] = e.IsDir()
			}
		}
	}
	switch {
	case found:
	case notDir:
		return firmware.FSNotDir
	default:
		return firmware.FSNoEntry
	}

	for _, entry := range slices.Sorted(maps.Keys(merged)) {
		if !showHidden && strings.HasPrefix(entry, ".") {
			continue
		}
		callback(entry, merged[entry])
	}
	return firmware.FSOK
}
