package testing

import (
	"path"
	"slices"
	"strings"
	"time"

	"github.com/clktmr/playdate/firmware"
)

type hostFile struct {
	data  []byte
	dir   bool
	mtime time.Time
}

type hostOpen struct {
	path string
	file *hostFile
	pos  int
	mode firmware.FileOptions
}

// AddFile seeds the simulated data directory, creating parent directories
// along the way.
func (h *Host) AddFile(name string, data []byte) {
	name = path.Clean(name)
	h.AddDir(path.Dir(name))
	h.files[name] = &hostFile{data: slices.Clone(data), mtime: h.clock()}
}

// AddDir seeds a directory and its parents.
func (h *Host) AddDir(name string) {
	name = path.Clean(name)
	if name == "." || name == "/" {
		return
	}
	h.AddDir(path.Dir(name))
	if h.files[name] == nil {
		h.files[name] = &hostFile{dir: true, mtime: h.clock()}
	}
}

// FileData returns the current contents of a seeded or written file.
func (h *Host) FileData(name string) ([]byte, bool) {
	f := h.files[path.Clean(name)]
	if f == nil || f.dir {
		return nil, false
	}
	return f.data, true
}

// clock derives wall time from the millisecond clock so file timestamps
// advance with AdvanceTime.
func (h *Host) clock() time.Time {
	return time.Date(2024, time.April, 19, 0, 0, 0, 0, time.UTC).
		Add(time.Duration(h.now) * time.Millisecond)
}

func (h *Host) fileAPI() *firmware.File {
	return &firmware.File{
		Open:      h.openFile,
		Close:     h.closeFile,
		Read:      h.readFile,
		Write:     h.writeFile,
		Flush:     h.flushFile,
		Tell:      h.tellFile,
		Seek:      h.seekFile,
		Stat:      h.statFile,
		Mkdir:     h.mkdir,
		Unlink:    h.unlink,
		Rename:    h.rename,
		ListFiles: h.listFiles,
	}
}

// parentDir reports whether the parent of name exists and is a directory.
func (h *Host) parentDir(name string) firmware.FSErr {
	dir := path.Dir(name)
	if dir == "." || dir == "/" {
		return firmware.FSOK
	}
	parent := h.files[dir]
	if parent == nil {
		return firmware.FSNoEntry
	}
	if !parent.dir {
		return firmware.FSNotDir
	}
	return firmware.FSOK
}

func (h *Host) openFile(name string, mode firmware.FileOptions) (uintptr, firmware.FSErr) {
	name = path.Clean(name)
	f := h.files[name]
	if f != nil && f.dir {
		return 0, firmware.FSInvalid
	}

	pos := 0
	switch {
	case mode&(firmware.FileRead|firmware.FileReadData) != 0:
		if f == nil {
			return 0, firmware.FSNoEntry
		}
	case mode&(firmware.FileWrite|firmware.FileAppend) != 0:
		if code := h.parentDir(name); code != firmware.FSOK {
			return 0, code
		}
		if f == nil || mode&firmware.FileWrite != 0 {
			f = &hostFile{mtime: h.clock()}
			h.files[name] = f
		}
		pos = len(f.data)
	default:
		return 0, firmware.FSInvalid
	}

	h.nextFD++
	h.open[h.nextFD] = &hostOpen{path: name, file: f, pos: pos, mode: mode}
	return h.nextFD, firmware.FSOK
}

func (h *Host) closeFile(fd uintptr) firmware.FSErr {
	if h.open[fd] == nil {
		return firmware.FSBadHandle
	}
	delete(h.open, fd)
	return firmware.FSOK
}

func (h *Host) readFile(fd uintptr, buf []byte) int32 {
	o := h.open[fd]
	if o == nil {
		return int32(firmware.FSBadHandle)
	}
	if o.mode&(firmware.FileRead|firmware.FileReadData) == 0 {
		return int32(firmware.FSInvalid)
	}
	if o.pos >= len(o.file.data) {
		return 0
	}
	n := copy(buf, o.file.data[o.pos:])
	o.pos += n
	return int32(n)
}

func (h *Host) writeFile(fd uintptr, buf []byte) int32 {
	o := h.open[fd]
	if o == nil {
		return int32(firmware.FSBadHandle)
	}
	if o.mode&(firmware.FileWrite|firmware.FileAppend) == 0 {
		return int32(firmware.FSInvalid)
	}
	if h.SpaceLeft != 0 && h.totalSize()+len(buf) > h.SpaceLeft {
		return int32(firmware.FSNoSpace)
	}
	if need := o.pos + len(buf); need > len(o.file.data) {
		o.file.data = append(o.file.data, make([]byte, need-len(o.file.data))...)
	}
	copy(o.file.data[o.pos:], buf)
	o.pos += len(buf)
	o.file.mtime = h.clock()
	return int32(len(buf))
}

func (h *Host) totalSize() (n int) {
	for _, f := range h.files {
		n += len(f.data)
	}
	return
}

func (h *Host) flushFile(fd uintptr) int32 {
	if h.open[fd] == nil {
		return int32(firmware.FSBadHandle)
	}
	return 0
}

func (h *Host) tellFile(fd uintptr) int32 {
	o := h.open[fd]
	if o == nil {
		return int32(firmware.FSBadHandle)
	}
	return int32(o.pos)
}

func (h *Host) seekFile(fd uintptr, pos, whence int32) firmware.FSErr {
	o := h.open[fd]
	if o == nil {
		return firmware.FSBadHandle
	}
	target := int(pos)
	switch whence {
	case 1:
		target += o.pos
	case 2:
		target += len(o.file.data)
	}
	if target < 0 {
		return firmware.FSInvalid
	}
	o.pos = target
	return firmware.FSOK
}

func (h *Host) statFile(name string) (firmware.FileStat, firmware.FSErr) {
	f := h.files[path.Clean(name)]
	if f == nil {
		return firmware.FileStat{}, firmware.FSNoEntry
	}
	t := f.mtime
	return firmware.FileStat{
		IsDir: f.dir,
		Size:  uint32(len(f.data)),
		Year:  int32(t.Year()),
		Month: int32(t.Month()),
		Day:   int32(t.Day()),
		Hour:  int32(t.Hour()),
		Min:   int32(t.Minute()),
		Sec:   int32(t.Second()),
	}, firmware.FSOK
}

func (h *Host) mkdir(name string) firmware.FSErr {
	name = path.Clean(name)
	if h.files[name] != nil {
		return firmware.FSExists
	}
	if code := h.parentDir(name); code != firmware.FSOK {
		return code
	}
	h.files[name] = &hostFile{dir: true, mtime: h.clock()}
	return firmware.FSOK
}

func (h *Host) unlink(name string, recursive bool) firmware.FSErr {
	name = path.Clean(name)
	f := h.files[name]
	if f == nil {
		return firmware.FSNoEntry
	}
	if f.dir {
		children := h.children(name)
		if len(children) > 0 && !recursive {
			return firmware.FSInvalid
		}
		for _, child := range children {
			delete(h.files, path.Join(name, child))
		}
	}
	delete(h.files, name)
	return firmware.FSOK
}

func (h *Host) rename(from, to string) firmware.FSErr {
	from, to = path.Clean(from), path.Clean(to)
	f := h.files[from]
	if f == nil {
		return firmware.FSNoEntry
	}
	if code := h.parentDir(to); code != firmware.FSOK {
		return code
	}
	for _, child := range h.children(from) {
		h.files[path.Join(to, child)] = h.files[path.Join(from, child)]
		delete(h.files, path.Join(from, child))
	}
	h.files[to] = f
	delete(h.files, from)
	return firmware.FSOK
}

// children returns all paths below dir, relative to it, deepest first.
func (h *Host) children(dir string) []string {
	var names []string
	prefix := dir + "/"
	if dir == "." || dir == "/" {
		prefix = ""
	}
	for p := range h.files {
		if strings.HasPrefix(p, prefix) {
			names = append(names, strings.TrimPrefix(p, prefix))
		}
	}
	slices.SortFunc(names, func(a, b string) int {
		return strings.Count(b, "/") - strings.Count(a, "/")
	})
	return names
}

func (h *Host) listFiles(name string, callback func(string, bool), showHidden bool) firmware.FSErr {
	name = path.Clean(name)
	if name != "." && name != "/" {
		f := h.files[name]
		if f == nil {
			return firmware.FSNoEntry
		}
		if !f.dir {
			return firmware.FSNotDir
		}
	}

	var entries []string
	for _, child := range h.children(name) {
		if strings.Contains(child, "/") {
			continue
		}
		if !showHidden && strings.HasPrefix(child, ".") {
			continue
		}
		entries = append(entries, child)
	}
	slices.Sort(entries)
	for _, entry := range entries {
		callback(entry, h.files[path.Join(name, entry)].dir)
	}
	return firmware.FSOK
}
